// Package cookbook is the recipe repository: it translates recipe documents
// into normalized rows and back, enforces name uniqueness and referential
// consistency, and implements edit as delete-then-add with a compensating
// re-add when the second half fails.
package cookbook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cookbook/models"
)

const (
	msgStorageFailure = "Something went wrong. Could not reach the cookbook database."
)

// Cookbook is the repository over the relational store. All methods are
// synchronous; each acquires connections from the shared pool and releases
// them on every exit path.
type Cookbook struct {
	db  *sql.DB
	log *zap.Logger
}

func New(pool *sql.DB, log *zap.Logger) *Cookbook {
	return &Cookbook{db: pool, log: log}
}

// nameExists reports whether a recipe name is already taken, compared
// case-insensitively. It runs against q so callers can check inside a
// transaction.
func nameExists(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE LOWER(recipe_name) = LOWER($1)`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("recipe name lookup: %w", err)
	}
	return n > 0, nil
}

// List returns every recipe fully hydrated, ordered by name. An empty
// cookbook is StatusEmpty, not an error.
func (c *Cookbook) List(ctx context.Context) Result {
	rows, err := c.db.QueryContext(ctx,
		`SELECT recipe_name, recipe_description, servings FROM recipes`)
	if err != nil {
		c.log.Error("list recipes", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer rows.Close()

	byName := map[string]*models.Recipe{}
	for rows.Next() {
		var r models.Recipe
		if err := rows.Scan(&r.Name, &r.Description, &r.Servings); err != nil {
			c.log.Error("scan recipe row", zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
		}
		byName[r.Name] = &r
	}
	if err := rows.Err(); err != nil {
		c.log.Error("list recipes", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}

	if len(byName) == 0 {
		return Result{Status: StatusEmpty, Message: "There are no recipes in the cookbook.", Recipes: []models.Recipe{}}
	}

	ingRows, err := c.db.QueryContext(ctx,
		`SELECT recipe_name, ingredient, unit, amount FROM recipes_ingredients`)
	if err != nil {
		c.log.Error("list ingredients", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var owner string
		var ing models.Ingredient
		if err := ingRows.Scan(&owner, &ing.Name, &ing.Unit, &ing.Amount); err != nil {
			c.log.Error("scan ingredient row", zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
		}
		if r, ok := byName[owner]; ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	if err := ingRows.Err(); err != nil {
		c.log.Error("list ingredients", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}

	instRows, err := c.db.QueryContext(ctx,
		`SELECT recipe_name, step, instruction FROM recipes_instructions ORDER BY step ASC`)
	if err != nil {
		c.log.Error("list instructions", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer instRows.Close()
	for instRows.Next() {
		var owner string
		var inst models.Instruction
		if err := instRows.Scan(&owner, &inst.Step, &inst.Instruction); err != nil {
			c.log.Error("scan instruction row", zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
		}
		if r, ok := byName[owner]; ok {
			r.Instructions = append(r.Instructions, inst)
		}
	}
	if err := instRows.Err(); err != nil {
		c.log.Error("list instructions", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}

	recipes := make([]models.Recipe, 0, len(byName))
	for _, r := range byName {
		recipes = append(recipes, *r)
	}
	sort.Slice(recipes, func(i, j int) bool {
		return strings.ToLower(recipes[i].Name) < strings.ToLower(recipes[j].Name)
	})

	return Result{Status: StatusFound, Message: "Successfully retrieved all recipes.", Recipes: recipes}
}

// GetByName looks a recipe up case-insensitively and hydrates its
// ingredients and ordered instructions.
func (c *Cookbook) GetByName(ctx context.Context, name string) Result {
	var r models.Recipe
	err := c.db.QueryRowContext(ctx,
		`SELECT recipe_name, recipe_description, servings FROM recipes WHERE LOWER(recipe_name) = LOWER($1)`,
		name).Scan(&r.Name, &r.Description, &r.Servings)
	if err == sql.ErrNoRows {
		return Result{Status: StatusNotFound,
			Message: fmt.Sprintf("Could not find recipe with name %s in the cookbook.", name)}
	}
	if err != nil {
		c.log.Error("get recipe", zap.String("name", name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}

	// Child rows are keyed by the exact stored name.
	ingRows, err := c.db.QueryContext(ctx,
		`SELECT ingredient, unit, amount FROM recipes_ingredients WHERE recipe_name = $1`, r.Name)
	if err != nil {
		c.log.Error("get ingredients", zap.String("name", r.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var ing models.Ingredient
		if err := ingRows.Scan(&ing.Name, &ing.Unit, &ing.Amount); err != nil {
			c.log.Error("scan ingredient row", zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
		}
		r.Ingredients = append(r.Ingredients, ing)
	}
	if err := ingRows.Err(); err != nil {
		c.log.Error("get ingredients", zap.String("name", r.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}

	instRows, err := c.db.QueryContext(ctx,
		`SELECT step, instruction FROM recipes_instructions WHERE recipe_name = $1 ORDER BY step ASC`, r.Name)
	if err != nil {
		c.log.Error("get instructions", zap.String("name", r.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer instRows.Close()
	for instRows.Next() {
		var inst models.Instruction
		if err := instRows.Scan(&inst.Step, &inst.Instruction); err != nil {
			c.log.Error("scan instruction row", zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
		}
		r.Instructions = append(r.Instructions, inst)
	}
	if err := instRows.Err(); err != nil {
		c.log.Error("get instructions", zap.String("name", r.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}

	return Result{Status: StatusFound,
		Message: fmt.Sprintf("Successfully retrieved recipe with name %s from the cookbook.", name),
		Recipe:  &r}
}

// Add validates the document and persists the recipe with all its child
// rows in one transaction. Catalog inserts happen after commit and are
// best-effort.
func (c *Cookbook) Add(ctx context.Context, recipe models.Recipe) Result {
	if msg := validateRecipe(recipe); msg != "" {
		return Result{Status: StatusInvalidDocument, Message: msg}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.log.Error("begin add transaction", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer tx.Rollback()

	taken, err := nameExists(ctx, tx, recipe.Name)
	if err != nil {
		c.log.Error("add recipe", zap.String("name", recipe.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	if taken {
		return Result{Status: StatusDuplicateName,
			Message: fmt.Sprintf("Recipe with name %s already exists", recipe.Name)}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (recipe_name, recipe_description, servings) VALUES ($1, $2, $3)`,
		recipe.Name, recipe.Description, recipe.Servings); err != nil {
		c.log.Error("insert recipe row", zap.String("name", recipe.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: "Something went wrong. Could not insert recipe into cookbook."}
	}
	for _, ing := range recipe.Ingredients {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipes_ingredients (recipe_name, ingredient, unit, amount) VALUES ($1, $2, $3, $4)`,
			recipe.Name, ing.Name, ing.Unit, ing.Amount); err != nil {
			c.log.Error("insert ingredient row", zap.String("name", recipe.Name), zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: "Something went wrong. Could not insert recipe into cookbook."}
		}
	}
	for _, inst := range recipe.Instructions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipes_instructions (recipe_name, step, instruction) VALUES ($1, $2, $3)`,
			recipe.Name, inst.Step, inst.Instruction); err != nil {
			c.log.Error("insert instruction row",
				zap.String("name", recipe.Name), zap.Int("step", inst.Step), zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: "Something went wrong. Could not insert recipe into cookbook."}
		}
	}

	if err := tx.Commit(); err != nil {
		c.log.Error("commit add transaction", zap.String("name", recipe.Name), zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: "Something went wrong. Could not insert recipe into cookbook."}
	}

	c.recordCatalog(ctx, recipe)

	return Result{Status: StatusCreated,
		Message: fmt.Sprintf("Successfully added %s into the cookbook.", recipe.Name)}
}

// Remove deletes a recipe and its child rows in one transaction, children
// first, and hands back the pre-delete snapshot.
func (c *Cookbook) Remove(ctx context.Context, name string) Result {
	snapshot := c.GetByName(ctx, name)
	if snapshot.Status == StatusNotFound {
		return Result{Status: StatusNotFound,
			Message: fmt.Sprintf("Recipe with name %s does not exist in the cookbook.", name)}
	}
	if snapshot.Status != StatusFound {
		return snapshot
	}

	stored := snapshot.Recipe.Name

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.log.Error("begin remove transaction", zap.Error(err))
		return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
	}
	defer tx.Rollback()

	// Children before parent, to respect the foreign keys.
	for _, stmt := range []string{
		`DELETE FROM recipes_instructions WHERE recipe_name = $1`,
		`DELETE FROM recipes_ingredients WHERE recipe_name = $1`,
		`DELETE FROM recipes WHERE recipe_name = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, stored); err != nil {
			c.log.Error("delete recipe rows", zap.String("name", stored), zap.Error(err))
			return Result{Status: StatusStorageFailure,
				Message: fmt.Sprintf("An error occurred. Could not remove %s from the cookbook.", name)}
		}
	}

	if err := tx.Commit(); err != nil {
		c.log.Error("commit remove transaction", zap.String("name", stored), zap.Error(err))
		return Result{Status: StatusStorageFailure,
			Message: fmt.Sprintf("An error occurred. Could not remove %s from the cookbook.", name)}
	}

	return Result{Status: StatusDeleted,
		Message: fmt.Sprintf("Successfully removed %s from the cookbook.", name),
		Recipe:  snapshot.Recipe}
}

// Edit replaces a recipe wholesale: snapshot and delete the old one, then
// add the new document. The delete and the add are separate transactions,
// so a failed add triggers a compensating re-add of the snapshot. Both
// halves failing leaves the recipe gone; that is the one outcome that must
// never be logged quietly.
func (c *Cookbook) Edit(ctx context.Context, oldName string, recipe models.Recipe) Result {
	old := c.GetByName(ctx, oldName)
	if old.Status == StatusNotFound {
		return Result{Status: StatusNotFound,
			Message: fmt.Sprintf("Recipe with name %s does not exist in the cookbook.", oldName)}
	}
	if old.Status != StatusFound {
		return old
	}

	if msg := validateRecipe(recipe); msg != "" {
		return Result{Status: StatusInvalidDocument, Message: msg}
	}

	if !strings.EqualFold(recipe.Name, old.Recipe.Name) {
		taken, err := nameExists(ctx, c.db, recipe.Name)
		if err != nil {
			c.log.Error("edit recipe", zap.String("name", recipe.Name), zap.Error(err))
			return Result{Status: StatusStorageFailure, Message: msgStorageFailure}
		}
		if taken {
			return Result{Status: StatusDuplicateName,
				Message: "The edited recipe name already exists in the cookbook."}
		}
	}

	removed := c.Remove(ctx, old.Recipe.Name)
	if removed.Status != StatusDeleted {
		return removed
	}

	added := c.Add(ctx, recipe)
	if added.Status == StatusCreated {
		return Result{Status: StatusUpdated, Message: "Successfully updated recipe"}
	}

	// The new document did not go in; put the snapshot back.
	restored := c.Add(ctx, *removed.Recipe)
	if restored.Status == StatusCreated {
		return Result{Status: StatusUpdateRejected,
			Message: fmt.Sprintf("Could not apply the edit (%s). The original recipe was restored.", added.Message)}
	}

	lost, _ := json.Marshal(removed.Recipe)
	c.log.Error("edit compensation failed, recipe lost",
		zap.String("name", old.Recipe.Name),
		zap.String("restoreFailure", restored.Message),
		zap.ByteString("snapshot", lost))
	return Result{Status: StatusCriticalInconsistency,
		Message: "Something went terribly wrong. Could not edit the recipe and it was instead removed."}
}

// recordCatalog keeps the global ingredient and unit name catalogs up to
// date. Conflicts are expected and everything here is non-fatal.
func (c *Cookbook) recordCatalog(ctx context.Context, recipe models.Recipe) {
	for _, ing := range recipe.Ingredients {
		if _, err := c.db.ExecContext(ctx,
			`INSERT INTO ingredients (ingredient_name) VALUES ($1) ON CONFLICT DO NOTHING`, ing.Name); err != nil {
			c.log.Warn("ingredient catalog insert skipped", zap.String("ingredient", ing.Name), zap.Error(err))
		}
		if _, err := c.db.ExecContext(ctx,
			`INSERT INTO units (unit_name) VALUES ($1) ON CONFLICT DO NOTHING`, ing.Unit); err != nil {
			c.log.Warn("unit catalog insert skipped", zap.String("unit", ing.Unit), zap.Error(err))
		}
	}
}
