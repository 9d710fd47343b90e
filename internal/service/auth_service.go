package service

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"intervue/internal/bank"
	"intervue/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// candidateAccount is one configured login. Accounts carry the
// interview category the candidate is being screened for.
type candidateAccount struct {
	Password string
	Category string
}

// AuthService issues and validates candidate JWTs
type AuthService struct {
	secret   []byte
	accounts map[string]candidateAccount
	tokenTTL time.Duration
}

// NewAuthService builds the service from the environment. JWT_SECRET
// must be set outside local development; the account table defaults to
// the two demo candidates used by the frontend.
func NewAuthService() *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	accounts := map[string]candidateAccount{
		"mba_candidate":  {Password: envOr("MBA_CANDIDATE_PASSWORD", "mba_pass"), Category: bank.CategoryMBA},
		"bank_candidate": {Password: envOr("BANK_CANDIDATE_PASSWORD", "bank_pass"), Category: bank.CategoryBank},
	}
	return &AuthService{
		secret:   []byte(secret),
		accounts: accounts,
		tokenTTL: 24 * time.Hour,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Login checks credentials and returns a signed token plus the
// candidate's category.
func (s *AuthService) Login(username, password string) (string, string, error) {
	acct, ok := s.accounts[username]
	if !ok || acct.Password != password {
		return "", "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := model.CandidateClaims{
		Username: username,
		Category: acct.Category,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("signing token: %w", err)
	}
	return signed, acct.Category, nil
}

// ValidateToken parses and verifies a candidate token
func (s *AuthService) ValidateToken(tokenString string) (*model.CandidateClaims, error) {
	claims := &model.CandidateClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
