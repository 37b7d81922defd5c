// Package payment handles credit top-ups: Paystack webhooks, rate lookups
// and wallet top-up QR codes.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaystackVerification is the slice of Paystack's verify response we use.
// The full raw body is stored on the Payment row for audits.
type PaystackVerification struct {
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"` // minor units (kobo/cents)
	Currency string  `json:"currency"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
	Metadata struct {
		UserID string `json:"user_id"`
	} `json:"metadata"`
}

// PaystackClient verifies transactions against the Paystack API.
type PaystackClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewPaystackClient creates a client with the account secret key.
func NewPaystackClient(secretKey string) *PaystackClient {
	return &PaystackClient{
		secretKey:  secretKey,
		baseURL:    "https://api.paystack.co",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// VerifyTransaction confirms a charge by reference with Paystack. Webhook
// payloads are never trusted on their own; only this response decides
// whether credits are granted. Returns the parsed verification plus the raw
// response body.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*PaystackVerification, []byte, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify transaction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read verification response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("paystack verify error (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Status bool                 `json:"status"`
		Data   PaystackVerification `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("failed to decode verification response: %w", err)
	}
	if !envelope.Status {
		return nil, nil, fmt.Errorf("paystack reported verification failure")
	}

	return &envelope.Data, body, nil
}

// ValidSignature checks the x-paystack-signature header: HMAC-SHA512 of the
// raw body under the secret key.
func ValidSignature(secretKey string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
