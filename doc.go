// Package main provides the entry point for the Kutumb senior-citizen welfare
// backend. It runs a REST API built on the Fiber framework covering citizen
// registration, officer and beat hierarchy management, scheduled welfare
// visits, SOS alerts and master-data administration. The application uses gorm
// for data persistence and enforces jurisdiction-scoped visibility on every
// listing and report endpoint.
package main
