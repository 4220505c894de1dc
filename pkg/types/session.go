package types

import "time"

// BrewSession is one recorded calculation, kept for brew analytics.
type BrewSession struct {
	ID                 string    `json:"id"`
	RecipeID           string    `json:"recipeId,omitempty"`
	OriginalGravity    float64   `json:"originalGravity"`
	FinalGravity       float64   `json:"finalGravity"`
	ABVPercent         float64   `json:"abvPercent"`
	AttenuationPercent float64   `json:"attenuationPercent"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}
