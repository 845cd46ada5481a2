package models

import (
	"regexp"
	"strings"
	"time"
)

// ValidationError marks input problems that are rejected before any
// transaction is opened.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	DisplayNameMin = 3
	DisplayNameMax = 24
	PasswordMin    = 6

	// AvatarMaxBytes bounds the inline avatar payload (data URL).
	AvatarMaxBytes = 200_000
)

var alnumRe = regexp.MustCompile(`[a-zA-Z0-9]`)
var spaceRe = regexp.MustCompile(`\s+`)

type User struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Deleted      bool       `json:"deleted"`
	Points       int64      `json:"points"`
	Avatar       string     `json:"avatar,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeletedBy    string     `json:"deleted_by,omitempty"`
}

// IsAdmin reports whether the user currently holds the admin capability.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin && !u.Deleted }

// IsMember reports whether the user can cast picks and appear on the
// leaderboard. Admins run the tournament, they do not play in it.
func (u User) IsMember() bool { return !u.Deleted && u.Role != RoleAdmin }

// Normalize substitutes safe defaults for malformed documents so a bad
// record can never crash a reader.
func (u *User) Normalize() {
	if u.DisplayName == "" {
		u.DisplayName = "Unknown"
	}
	if u.Role != RoleAdmin {
		u.Role = RoleMember
	}
	if u.Points < 0 {
		u.Points = 0
	}
}

// NormalizeDisplayName trims and collapses inner whitespace.
func NormalizeDisplayName(name string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
}

func ValidateDisplayName(name string) error {
	if len(name) < DisplayNameMin || len(name) > DisplayNameMax {
		return ValidationError("display name must be 3-24 characters")
	}
	if !alnumRe.MatchString(name) {
		return ValidationError("display name must include at least one letter or number")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < PasswordMin {
		return ValidationError("password must be at least 6 characters")
	}
	return nil
}
