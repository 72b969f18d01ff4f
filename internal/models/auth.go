package models

import "github.com/golang-jwt/jwt/v5"

// SignupRequest registers a new account. Role defaults to student.
type SignupRequest struct {
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Password   string      `json:"password" validate:"required,min=6"`
	Department string      `json:"department" validate:"required"`
	CGPA       interface{} `json:"cgpa" validate:"required"`
	Skills     interface{} `json:"skills"`
	Resume     string      `json:"resume"`
	Role       Role        `json:"role"`
}

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token alongside the account summary.
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	AccountID string  `json:"account_id"`
	Role      Role    `json:"role"`
	Email     string  `json:"email"`
	CompanyID *string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}
