package types

// RecipeType is the kind of beverage a recipe produces.
type RecipeType string

const (
	RecipeTypeBeer     RecipeType = "beer"
	RecipeTypeCider    RecipeType = "cider"
	RecipeTypeWine     RecipeType = "wine"
	RecipeTypeKombucha RecipeType = "kombucha"
	RecipeTypeMead     RecipeType = "mead"
	RecipeTypeOther    RecipeType = "other"
)

// Difficulty of a recipe for the brewer.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IngredientType classifies a recipe ingredient.
type IngredientType string

const (
	IngredientGrain IngredientType = "grain"
	IngredientHop   IngredientType = "hop"
	IngredientYeast IngredientType = "yeast"
	IngredientOther IngredientType = "other"
)

type Ingredient struct {
	Name   string         `json:"name" yaml:"name"`
	Amount string         `json:"amount" yaml:"amount"`
	Type   IngredientType `json:"type" yaml:"type"`
	Timing string         `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// Recipe is a brewing recipe as stored by the daemon.
type Recipe struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Style        string       `json:"style" yaml:"style"`
	Type         RecipeType   `json:"type" yaml:"type"`
	Difficulty   Difficulty   `json:"difficulty" yaml:"difficulty"`
	OG           float64      `json:"originalGravity,omitempty" yaml:"og,omitempty"`
	FG           float64      `json:"finalGravity,omitempty" yaml:"fg,omitempty"`
	ABV          float64      `json:"abv" yaml:"abv,omitempty"`
	IBU          int          `json:"ibu" yaml:"ibu"`
	// BrewTime is the brew day duration in minutes.
	BrewTime     int          `json:"brewTimeMinutes" yaml:"brewTimeMinutes"`
	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients"`
	Instructions []string     `json:"instructions" yaml:"instructions"`
	Notes        string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}
