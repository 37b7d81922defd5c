package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// ErrInvalidSignature rejects webhook calls whose HMAC does not match.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier confirms a charge with the gateway.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*PaystackVerification, []byte, error)
}

// CreditLedger is the slice of the ledger payments need.
type CreditLedger interface {
	Credit(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error)
}

// Rates converts money to credits per currency.
type Rates struct {
	Default float64 // price of one credit in the default currency
	Nigeria float64 // price of one credit in NGN
}

// PerCredit returns the price of one credit in the given currency.
func (r Rates) PerCredit(currency string) float64 {
	if strings.EqualFold(currency, "NGN") {
		return r.Nigeria
	}
	return r.Default
}

// CreditsFor converts a charge in minor units (kobo, cents) to credits.
func (r Rates) CreditsFor(amountMinor float64, currency string) float64 {
	rate := r.PerCredit(currency)
	if rate <= 0 {
		return 0
	}
	return amountMinor / 100 / rate
}

// Service processes verified top-ups into ledger credits.
type Service struct {
	db            *gorm.DB
	verifier      Verifier
	ledger        CreditLedger
	rates         Rates
	webhookSecret string
}

// NewService creates the payment service.
func NewService(db *gorm.DB, verifier Verifier, ledger CreditLedger, rates Rates, webhookSecret string) *Service {
	return &Service{
		db:            db,
		verifier:      verifier,
		ledger:        ledger,
		rates:         rates,
		webhookSecret: webhookSecret,
	}
}

// GetRates returns the configured conversion rates.
func (s *Service) GetRates() Rates {
	return s.rates
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook processes a Paystack event. The signature gate runs first;
// anything but charge.success is acknowledged and dropped. Replayed events
// hit the payments.reference unique index and grant nothing twice.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !ValidSignature(s.webhookSecret, body, signature) {
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode webhook event: %w", err)
	}

	if event.Event != "charge.success" {
		return nil
	}
	if event.Data.Reference == "" {
		return fmt.Errorf("webhook event has no reference")
	}

	return s.processCharge(ctx, event.Data.Reference)
}

func (s *Service) processCharge(ctx context.Context, reference string) error {
	var existing models.Payment
	err := s.db.WithContext(ctx).First(&existing, "reference = ?", reference).Error
	if err == nil {
		utils.LogInfo("webhook replay ignored", map[string]interface{}{
			"reference": reference,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check payment: %w", err)
	}

	verification, raw, err := s.verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	if verification.Status != "success" {
		utils.LogWarn("webhook for unsuccessful charge", map[string]interface{}{
			"reference": reference,
			"status":    verification.Status,
		})
		return nil
	}

	userID, err := uuid.Parse(verification.Metadata.UserID)
	if err != nil {
		return fmt.Errorf("charge metadata has no valid user id: %w", err)
	}

	credits := s.rates.CreditsFor(verification.Amount, verification.Currency)
	if credits <= 0 {
		return fmt.Errorf("charge converts to zero credits (amount %v %s)", verification.Amount, verification.Currency)
	}

	payment := models.Payment{
		UserID:       userID,
		Reference:    reference,
		Amount:       verification.Amount / 100,
		Currency:     verification.Currency,
		Credits:      credits,
		Method:       "paystack",
		Status:       "completed",
		Description:  "Credit purchase",
		Verification: raw,
	}
	// The unique index on reference is the idempotency barrier: a racing
	// duplicate fails here and never reaches the ledger.
	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	if _, err := s.ledger.Credit(ctx, userID, credits, fmt.Sprintf("Credit purchase (%s)", reference)); err != nil {
		return fmt.Errorf("failed to credit user: %w", err)
	}

	utils.LogInfo("payment credited", map[string]interface{}{
		"reference": reference,
		"user_id":   userID.String(),
		"credits":   credits,
		"currency":  verification.Currency,
	})

	return nil
}

// WalletQR renders a user's wallet top-up address as a QR PNG.
func (s *Service) WalletQR(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if user.WalletAddress == "" {
		return nil, fmt.Errorf("user has no wallet address")
	}

	png, err := qrcode.Encode(user.WalletAddress, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}
