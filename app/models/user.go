package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a storefront customer. Accounts come from registration or from
// the first Google sign-in.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Name       string    `gorm:"size:255" json:"name"`
	Address    string    `gorm:"size:255" json:"address"`
	City       string    `gorm:"size:100" json:"city"`
	PostalCode string    `gorm:"size:20" json:"postalCode"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DisplayName falls back to the username when no name was given.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Username
}

// Admin is a back-office account. Admins live in their own table and are
// created by another admin or by the seed command.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Roles     RoleSet   `gorm:"type:varchar(255);not null" json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ── RoleSet ──────────────────────────────────────────────────────────────────

// RoleSet is a set of role names stored as one comma-joined column.
type RoleSet []string

// NewRoleSet upper-cases, de-duplicates and sorts roles.
func NewRoleSet(roles ...string) RoleSet {
	seen := make(map[string]struct{}, len(roles))
	out := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) Has(role string) bool {
	for _, r := range s {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func (s RoleSet) Value() (driver.Value, error) {
	return strings.Join(NewRoleSet(s...), ","), nil
}

func (s *RoleSet) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("models: cannot scan %T into RoleSet", src)
	}
	*s = NewRoleSet(strings.Split(raw, ",")...)
	return nil
}
