package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with its bcrypt hash
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BootstrapAdmin creates the configured admin account when it does not
// exist yet. An existing account is left untouched.
func BootstrapAdmin(ctx context.Context, users storage.UserStore, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:    email,
		Name:     "Administrator",
		Password: hash,
		Role:     models.RoleAdmin,
		Provider: "email",
	}
	if err := users.CreateUser(ctx, user); err != nil && !errors.Is(err, storage.ErrUserExists) {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Printf("[Auth] Bootstrapped admin %s", user.Email)
	return nil
}
