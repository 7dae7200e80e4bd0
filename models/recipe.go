package models

// Recipe is the aggregate stored in the cookbook. The name is the primary
// identifying key and is unique case-insensitively.
type Recipe struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Servings     int           `json:"servings"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
}

// Ingredient belongs to exactly one recipe occurrence. Amount is free-form
// text ("2", "1/2", "a pinch") and is never compared or summed.
type Ingredient struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Amount string `json:"amount"`
}

// Instruction is one numbered step. Steps are unique within a recipe and
// returned in ascending order.
type Instruction struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}
