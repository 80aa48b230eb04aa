package utils

import (
	"crypto/rand"
	"fmt"
)

const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateAccessCode returns a short human-readable code, used when the
// conferencing provider response yields nothing usable to derive one from.
func GenerateAccessCode(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	for i := range b {
		b[i] = accessCodeAlphabet[int(b[i])%len(accessCodeAlphabet)]
	}
	return string(b)
}

// GenerateRequestID builds a unique id for a conference create request.
func GenerateRequestID(prefix string, unixMilli int64) string {
	return fmt.Sprintf("%s-%d-%s", prefix, unixMilli, GenerateAccessCode(6))
}
