// Package members manages the registered user set: registration records,
// admin approval, and the member directory.
package members

import (
	"time"
)

//go:generate reform

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

//reform:portal.users
type User struct {
	UserID       string    `reform:"user_id,pk" json:"id"`
	FullName     string    `reform:"full_name" json:"full_name"`
	Email        string    `reform:"email" json:"email"`
	Phone        string    `reform:"phone" json:"phone"`
	PasswordHash string    `reform:"password_hash" json:"-"`
	IsApproved   bool      `reform:"is_approved" json:"is_approved"`
	Role         string    `reform:"role" json:"role"`
	CreatedAt    time.Time `reform:"created_at" json:"created_at"`
}

func (u *User) BeforeInsert() error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
