package cookbook

import (
	"strings"

	"cookbook/models"
)

const (
	msgInvalidRecipe     = "Recipe must contain name, description, number of servings, ingredient list, and instructions"
	msgInvalidIngredient = "Every ingredient must contain name, unit, and amount"
	msgInvalidStep       = "Every instruction must contain a positive step number and an instruction text"
	msgDuplicateStep     = "Instruction step numbers must be unique within a recipe"
)

// validateRecipe checks the document for the required fields. It returns an
// empty string when the document is acceptable, otherwise the message to
// hand back to the caller.
func validateRecipe(r models.Recipe) string {
	if strings.TrimSpace(r.Name) == "" ||
		strings.TrimSpace(r.Description) == "" ||
		r.Servings <= 0 ||
		len(r.Ingredients) == 0 ||
		len(r.Instructions) == 0 {
		return msgInvalidRecipe
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" ||
			strings.TrimSpace(ing.Unit) == "" ||
			strings.TrimSpace(ing.Amount) == "" {
			return msgInvalidIngredient
		}
	}
	steps := make(map[int]struct{}, len(r.Instructions))
	for _, inst := range r.Instructions {
		if inst.Step <= 0 || strings.TrimSpace(inst.Instruction) == "" {
			return msgInvalidStep
		}
		if _, dup := steps[inst.Step]; dup {
			return msgDuplicateStep
		}
		steps[inst.Step] = struct{}{}
	}
	return ""
}
