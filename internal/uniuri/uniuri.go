// Package uniuri generates cryptographically secure random strings, used for
// alert reference codes and temporary passwords.
package uniuri

import (
	"crypto/rand"
	"math"
)

// StdChars is the default alphabet, alphanumeric ASCII.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

const (
	// maxBufLen caps the temporary buffer requested from crypto/rand.
	maxBufLen = 2048

	// minRegenBufLen is the smallest refill request after a partial fill.
	minRegenBufLen = 16

	maxByteValue = 255
	byteRange    = 256
)

// NewLen returns a random string of the given length over StdChars.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// estimatedBufLen returns how many random bytes to request given that values
// above maxByte are rejected.
func estimatedBufLen(need, maxByte int) int {
	return int(math.Ceil(float64(need) * (maxByteValue / float64(maxByte))))
}

// NewLenChars returns a random string of the given length over the provided
// character set (between 2 and 256 characters). Bytes outside the unbiased
// range are rejected so every character is equally likely.
func NewLenChars(length int, chars []byte) string {
	if length == 0 {
		return ""
	}
	clen := len(chars)
	if clen < 2 || clen > byteRange {
		panic("uniuri: wrong charset length for NewLenChars")
	}

	maxRb := maxByteValue - (byteRange % clen)
	bufLen := estimatedBufLen(length, maxRb)
	if bufLen < length {
		bufLen = length
	}
	if bufLen > maxBufLen {
		bufLen = maxBufLen
	}

	buf := make([]byte, bufLen)
	out := make([]byte, length)

	var i int
	for {
		if _, err := rand.Read(buf[:bufLen]); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf[:bufLen] {
			c := int(rb)
			if c > maxRb {
				continue
			}
			out[i] = chars[c%clen]
			i++
			if i == length {
				return string(out)
			}
		}

		bufLen = estimatedBufLen(length-i, maxRb)
		if bufLen < minRegenBufLen && minRegenBufLen < cap(buf) {
			bufLen = minRegenBufLen
		}
		if bufLen > maxBufLen {
			bufLen = maxBufLen
		}
	}
}
