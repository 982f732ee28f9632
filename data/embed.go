package data

import (
	_ "embed"
)

// Seed catalog imported by "filldb -embedded".

//go:embed seed/ingredients.csv
var SeedIngredients string

//go:embed seed/tags.csv
var SeedTags string
