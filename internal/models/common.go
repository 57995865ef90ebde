package models

import "github.com/golang-jwt/jwt/v5"

// Pagination is the envelope metadata for paginated endpoints.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size,omitempty"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// JWTClaims carries the authenticated user identity extracted from an
// access token.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
