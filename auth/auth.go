// Package auth verifies the shared cookbook password against the stored
// bcrypt hashes. There is no user model: a submitted password is valid if
// it matches any stored hash.
package auth

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Gate struct {
	db   *sql.DB
	log  *zap.Logger
	cost int
}

func NewGate(pool *sql.DB, log *zap.Logger, cost int) *Gate {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Gate{db: pool, log: log, cost: cost}
}

// Verify reports whether the submitted password matches any stored hash.
// A wrong password is (false, nil); only storage unavailability is an error.
func (g *Gate) Verify(ctx context.Context, password string) (bool, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT password_hash FROM passwords`)
	if err != nil {
		return false, fmt.Errorf("load password hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return false, fmt.Errorf("scan password hash: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("load password hashes: %w", err)
	}
	return false, nil
}

// Seed hashes a password and stores it. The hash column is unique, so
// seeding the same hash twice fails at the store.
func (g *Gate) Seed(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := g.db.ExecContext(ctx,
		`INSERT INTO passwords (password_hash) VALUES ($1)`, string(hash)); err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	g.log.Info("cookbook password added")
	return nil
}
