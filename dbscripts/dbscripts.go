// Package dbscripts provisions and resets the cookbook schema. These run
// out-of-band of the serving path, via the admin flags in main.
package dbscripts

import (
	"context"
	"database/sql"
	"fmt"
)

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		recipe_name VARCHAR(255) PRIMARY KEY,
		recipe_description TEXT,
		servings INT
	)`,
	// The pair (recipe_name, ingredient) is deliberately not unique: a
	// recipe may list the same ingredient twice. Amount is free-form text.
	`CREATE TABLE IF NOT EXISTS recipes_ingredients (
		recipe_name VARCHAR(255) REFERENCES recipes(recipe_name),
		ingredient VARCHAR(255),
		unit VARCHAR(255),
		amount VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS recipes_instructions (
		recipe_name VARCHAR(255) REFERENCES recipes(recipe_name),
		step INT,
		instruction TEXT,
		UNIQUE (recipe_name, step)
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		ingredient_name VARCHAR(255) UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS units (
		unit_name VARCHAR(255) UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS passwords (
		password_hash VARCHAR(100) UNIQUE
	)`,
}

// InitTables creates every table the cookbook needs.
func InitTables(ctx context.Context, db *sql.DB) error {
	for _, stmt := range createStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// ResetRecipes empties the recipe tables and the catalogs but keeps the
// stored passwords.
func ResetRecipes(ctx context.Context, db *sql.DB) error {
	// Children before parents, so the foreign keys stay satisfied.
	for _, table := range []string{
		"recipes_instructions", "recipes_ingredients", "recipes", "ingredients", "units",
	} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// ResetAll empties everything, passwords included.
func ResetAll(ctx context.Context, db *sql.DB) error {
	if err := ResetRecipes(ctx, db); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM passwords"); err != nil {
		return fmt.Errorf("reset passwords: %w", err)
	}
	return nil
}
