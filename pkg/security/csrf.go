// Package security holds the CSRF token helpers used by the dashboard.
package security

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateCSRFToken returns 32 random bytes as URL-safe base64 without
// padding. A fresh token is embedded in every rendered dashboard page.
func GenerateCSRFToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
