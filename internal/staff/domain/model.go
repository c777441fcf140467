package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleOwner       Role = "owner"
	RoleFulfillment Role = "fulfillment"
	RoleMarketing   Role = "marketing"
)

func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleFulfillment:
		return RoleFulfillment, nil
	case RoleMarketing:
		return RoleMarketing, nil
	default:
		return "", ErrInvalidRole
	}
}

// Key is a staff API credential. Only the Argon2id hash of the secret is stored.
type Key struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	KeyID      string       `gorm:"column:key_id;type:text;not null;uniqueIndex:ux_staff_keys_key_id"`
	Name       string       `gorm:"type:text;not null"`
	Role       Role         `gorm:"type:text;not null"`
	SecretHash string       `gorm:"column:secret_hash;type:text;not null"`
	IsActive   bool         `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time    `gorm:"not null"`
	UpdatedAt  time.Time    `gorm:"not null"`
	LastUsedAt *time.Time   `gorm:"column:last_used_at"`
	RevokedAt  *time.Time   `gorm:"column:revoked_at"`
}

func (Key) TableName() string { return "staff_keys" }

// Principal is the authenticated caller of an admin endpoint.
type Principal struct {
	KeyID string `json:"key_id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Subject is the casbin subject for the principal.
func (p Principal) Subject() string {
	return "staff:" + p.KeyID
}
