package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature derives the expected checkout signature for an
// order/payment pair using the gateway key secret.
func ComputeSignature(orderID, paymentID, keySecret string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureMatches compares a supplied signature against the expected one
// in constant time.
func SignatureMatches(orderID, paymentID, keySecret, supplied string) bool {
	expected := ComputeSignature(orderID, paymentID, keySecret)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
