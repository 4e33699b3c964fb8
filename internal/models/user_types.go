package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// User account statuses
const (
	UserStatusUnverified = "unverified"
	UserStatusActive     = "active"
	UserStatusSuspended  = "suspended"
)

// Password wraps bcrypt hashing so handlers never touch the raw hash API.
type Password struct {
	Hash []byte
}

// Set hashes a plaintext password.
func (p *Password) Set(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	p.Hash = hash
	return nil
}

// Matches checks a plaintext password against the stored hash.
func (p *Password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.Hash, []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// User is the model for the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	FullName     string    `json:"fullName" db:"full_name"`
	Phone        string    `json:"phone" db:"phone"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
