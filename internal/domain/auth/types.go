package auth

import "time"

// Config drives token issuance and validation.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Token is a signed bearer token.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from a validated token.
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}
