package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListMeta carries pagination details alongside list payloads.
type ListMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// ListEnvelope wraps paginated list responses.
type ListEnvelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data"`
	Meta    ListMeta `json:"meta"`
}

// Success writes a 200 response with the given payload.
func Success(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// List writes a 200 response with items and pagination metadata.
func List(c *fiber.Ctx, items any, meta ListMeta) error {
	return c.JSON(ListEnvelope{Success: true, Data: items, Meta: meta})
}

// Error writes an error response with the given status code.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: msg})
}

// BadRequest writes a 400 response.
func BadRequest(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusBadRequest, msg)
}

// NotFound writes a 404 response.
func NotFound(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusNotFound, msg)
}

// Conflict writes a 409 response.
func Conflict(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusConflict, msg)
}

// ServerError writes a 500 response with a generic message.
func ServerError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, "internal server error")
}

// PageParams reads page and pageSize query parameters, clamped to sane bounds.
func PageParams(c *fiber.Ctx) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize = c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}
