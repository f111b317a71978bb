package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Prefix is the scheme tag senders put in front of the hex digest
const Prefix = "sha256="

// Compute returns the hex HMAC-SHA256 of payload under secret, without prefix
func Compute(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC verifies a sha256 HMAC hex signature against payload and secret.
// The "sha256=" prefix on the received signature is optional. Empty secret or
// empty signature fails closed.
func VerifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	signatureHex = strings.TrimPrefix(signatureHex, Prefix)
	expected := Compute(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}

// VerifyBearer compares an Authorization header value to "Bearer <secret>"
// in constant time.
func VerifyBearer(secret string, authorization string) bool {
	if secret == "" || authorization == "" {
		return false
	}
	expected := "Bearer " + secret
	return subtle.ConstantTimeCompare([]byte(expected), []byte(authorization)) == 1
}
