package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, ValidSignature("secret", body, sign("secret", body)))
	assert.False(t, ValidSignature("secret", body, sign("other-secret", body)))
	assert.False(t, ValidSignature("secret", []byte(`tampered`), sign("secret", body)))
	assert.False(t, ValidSignature("secret", body, ""))
}

func TestRatesPerCredit(t *testing.T) {
	rates := Rates{Default: 0.35, Nigeria: 100}

	assert.Equal(t, 100.0, rates.PerCredit("NGN"))
	assert.Equal(t, 100.0, rates.PerCredit("ngn"))
	assert.Equal(t, 0.35, rates.PerCredit("USD"))
	assert.Equal(t, 0.35, rates.PerCredit(""))
}

func TestRatesCreditsFor(t *testing.T) {
	rates := Rates{Default: 0.35, Nigeria: 100}

	// 50,000 kobo = 500 NGN at 100 NGN per credit = 5 credits
	assert.InDelta(t, 5.0, rates.CreditsFor(50000, "NGN"), 1e-9)

	// 700 cents = 7 USD at 0.35 per credit = 20 credits
	assert.InDelta(t, 20.0, rates.CreditsFor(700, "USD"), 1e-9)

	// Broken configuration never mints credits.
	assert.Equal(t, 0.0, Rates{}.CreditsFor(50000, "NGN"))
}
