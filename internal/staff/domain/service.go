package domain

import (
	"context"
	"errors"
	"time"
)

type CreateRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Response struct {
	KeyID      string     `json:"key_id"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
}

// SecretResponse carries the plaintext credential. It is returned once, at creation.
type SecretResponse struct {
	KeyID  string `json:"key_id"`
	Role   Role   `json:"role"`
	APIKey string `json:"api_key"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*SecretResponse, error)
	List(ctx context.Context) ([]Response, error)
	Revoke(ctx context.Context, keyID string) error
	Authenticate(ctx context.Context, raw string) (Principal, error)
	// EnsureBootstrap registers an operator-supplied credential if its key id is
	// unknown. It reports whether a key was created.
	EnsureBootstrap(ctx context.Context, raw string, role string) (bool, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidKey   = errors.New("invalid_api_key")
	ErrInvalidKeyID = errors.New("invalid_key_id")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not_found")
)
