package entities

import (
	"strconv"
	"strings"
	"time"
)

// Account is a login identity: one email, one password hash, one admin bit.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	IsAdmin      bool      `gorm:"not null" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// Subject is the identifier carried in the "sub" claim of issued tokens.
func (a *Account) Subject() string {
	return strconv.FormatUint(uint64(a.ID), 10)
}

// NormalizeEmail trims and lower-cases an address so the unique index
// treats "A@x.com" and "a@x.com" as the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
