package utils

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
)

const SessionIDLength = 16

var clientSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// FingerprintSessionID derives a stable session id from the client address and
// user agent for callers that send no X-Session-ID.
func FingerprintSessionID(ip, userAgent string) string {
	return MD5Hash(ip + "|" + userAgent)[:SessionIDLength]
}

// MD5Hash generates MD5 hash of input string
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}

// ValidateSessionID accepts client-supplied ids of 8 to 64 URL-safe characters.
func ValidateSessionID(sessionID string) bool {
	return clientSessionID.MatchString(sessionID)
}
