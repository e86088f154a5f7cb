package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrSignatureMismatch is returned when a settlement proof fails
// verification. It maps to a client-facing "invalid payment" error,
// distinct from internal failures.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

// SignPayment computes the gateway's settlement signature:
// HMAC-SHA256 over "orderID|paymentID" keyed by the shared secret,
// hex encoded. Exposed for tests and for the sandbox gateway.
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature validates a claimed settlement signature in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureMismatch
	}

	expected := SignPayment(secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
