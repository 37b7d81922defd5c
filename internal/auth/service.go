// Package auth implements account registration, login and email
// verification. Signup bonuses flow through the credit ledger so they show
// up in the transaction history like any other credit.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/email"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
)

// CreditLedger is the slice of the ledger auth needs for signup bonuses.
type CreditLedger interface {
	Credit(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error)
}

// Service owns the account lifecycle.
type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	ledger CreditLedger
	emails *email.Service

	baseURL        string
	welcomeCredit  float64
	referralCredit float64
}

// NewService creates the auth service.
func NewService(db *gorm.DB, jwtService *JWTService, ledger CreditLedger, emails *email.Service, baseURL string, welcomeCredit, referralCredit float64) *Service {
	return &Service{
		db:             db,
		jwt:            jwtService,
		ledger:         ledger,
		emails:         emails,
		baseURL:        baseURL,
		welcomeCredit:  welcomeCredit,
		referralCredit: referralCredit,
	}
}

// RegisterInput is the signup request.
type RegisterInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an unverified account and mails the verification link.
// Credits are granted at verification time, not here.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, errors.New("name, email and password are required")
	}

	var existing models.User
	err := s.db.WithContext(ctx).First(&existing, "email = ?", input.Email).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var referredBy *uuid.UUID
	if input.ReferralCode != "" {
		var referrer models.User
		if err := s.db.WithContext(ctx).First(&referrer, "referral_code = ?", strings.ToUpper(input.ReferralCode)).Error; err == nil {
			referredBy = &referrer.ID
		}
		// Unknown codes are ignored, signup still succeeds.
	}

	token, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	tokenExpires := time.Now().Add(24 * time.Hour)

	referralCode, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:                     input.Name,
		Email:                    input.Email,
		Password:                 hashed,
		AuthMode:                 "normal",
		ReferralCode:             referralCode,
		ReferredBy:               referredBy,
		VerificationToken:        token,
		VerificationTokenExpires: &tokenExpires,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/api/auth/verify?token=%s", s.baseURL, token)
	subject, body := email.VerificationEmail(user.Name, verifyURL)
	if err := s.emails.SendEmail(user.Email, subject, body); err != nil {
		utils.LogWarn("failed to send verification email", map[string]interface{}{
			"email": user.Email,
			"error": err.Error(),
		})
	}

	jwtToken, err := s.jwt.GenerateToken(&TokenClaims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: &user, Token: jwtToken}, nil
}

// Login authenticates an email/password pair.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", emailAddr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(&TokenClaims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: &user, Token: token}, nil
}

// VerifyEmail confirms the account and grants the signup bonuses: welcome
// credits to the new user and, when they were referred, referral credits to
// the referrer. Verifying twice grants nothing twice.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "verification_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.VerificationTokenExpires == nil || time.Now().After(*user.VerificationTokenExpires) {
		return nil, ErrInvalidToken
	}
	if user.IsVerified {
		return &user, nil
	}

	updates := map[string]interface{}{
		"is_verified":                true,
		"verification_token":         "",
		"verification_token_expires": nil,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	if s.welcomeCredit > 0 {
		if _, err := s.ledger.Credit(ctx, user.ID, s.welcomeCredit, "Welcome credit"); err != nil {
			utils.LogError("failed to grant welcome credit", err, map[string]interface{}{
				"user_id": user.ID.String(),
			})
		}
	}

	if user.ReferredBy != nil && s.referralCredit > 0 {
		if _, err := s.ledger.Credit(ctx, *user.ReferredBy, s.referralCredit, "Referral credit: "+user.Email); err != nil {
			utils.LogError("failed to grant referral credit", err, map[string]interface{}{
				"referrer_id": user.ReferredBy.String(),
			})
		}
	}

	user.IsVerified = true
	return &user, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &user, nil
}

// newReferralCode generates a unique 8-character code.
func (s *Service) newReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code, err := randomToken(4)
		if err != nil {
			return "", err
		}
		code = strings.ToUpper(code)

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("failed to generate unique referral code")
}

func randomToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
