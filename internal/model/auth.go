package model

import "github.com/golang-jwt/jwt/v5"

// CandidateClaims are JWT claims for candidate tokens. Category drives
// which question bank the session draws from.
type CandidateClaims struct {
	Username string `json:"username"`
	Category string `json:"category"` // "mba" or "bank"
	jwt.RegisteredClaims
}

// LoginRequest is the request body for candidate login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token    string `json:"token"`
	Category string `json:"category"`
}
