package db

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// InitAdmin makes sure the operator account from ADMIN_USERNAME and
// ADMIN_PASSWORD exists, so a fresh database is usable right away.
func InitAdmin(ctx context.Context, database *Database) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		return nil
	}

	var count int
	if err := database.ExecQueryRow(ctx, "SELECT COUNT(*) FROM users WHERE username = $1", adminUsername).Scan(&count); err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := database.Exec(ctx, "INSERT INTO users (username, password, role) VALUES ($1, $2, 'admin')", adminUsername, string(hashed)); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
