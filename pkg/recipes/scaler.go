package recipes

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/types"
)

var (
	amountPattern      = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*(.*)$`)
	instructionPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(\s*)(milliliters?|liters?|litres?|ml|L|l|kilograms?|kg|grams?|g)\b`)
)

// Scale returns a copy of r sized for toLiters instead of fromLiters.
// Ingredient amounts and the volumes and weights mentioned in the
// instructions are multiplied by toLiters/fromLiters. Yeast measured in
// packs is rounded up to whole packs. ABV and IBU do not change.
func Scale(r types.Recipe, fromLiters, toLiters float64) (types.Recipe, error) {
	if fromLiters <= 0 || toLiters <= 0 || math.IsInf(fromLiters, 0) || math.IsInf(toLiters, 0) {
		return types.Recipe{}, pkgerrors.Wrapf(calculator.ErrInvalidInput,
			"batch sizes must be positive, got %v and %v", fromLiters, toLiters)
	}
	factor := toLiters / fromLiters

	out := r
	out.Name = fmt.Sprintf("%s (%s L)", r.Name, formatScaledValue(toLiters))

	out.Ingredients = make([]types.Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ing.Amount = scaleAmount(ing.Amount, ing.Type, factor)
		out.Ingredients[i] = ing
	}

	out.Instructions = make([]string, len(r.Instructions))
	for i, s := range r.Instructions {
		out.Instructions[i] = scaleInstruction(s, factor)
	}

	note := fmt.Sprintf("Scaled from %s L to %s L (factor %.2f)",
		formatScaledValue(fromLiters), formatScaledValue(toLiters), factor)
	if out.Notes == "" {
		out.Notes = note
	} else {
		out.Notes = out.Notes + "\n" + note
	}

	return out, nil
}

func scaleAmount(amount string, kind types.IngredientType, factor float64) string {
	m := amountPattern.FindStringSubmatch(strings.TrimSpace(amount))
	if m == nil {
		// "to taste" and similar stay as written.
		return amount
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return amount
	}
	unit := strings.TrimSpace(m[2])

	if kind == types.IngredientYeast && isPackUnit(unit) {
		n := math.Max(1, math.Ceil(v*factor-1e-9))
		if n == 1 {
			return "1 pack"
		}
		return fmt.Sprintf("%d packs", int(n))
	}

	if unit == "" {
		unit = "pcs"
	}
	return formatScaledValue(v*factor) + " " + unit
}

func isPackUnit(unit string) bool {
	u := strings.ToLower(unit)
	return strings.HasPrefix(u, "pack") || strings.HasPrefix(u, "pak")
}

func scaleInstruction(s string, factor float64) string {
	return instructionPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := instructionPattern.FindStringSubmatch(match)
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return match
		}
		return formatScaledValue(v*factor) + m[2] + m[3]
	})
}

// formatScaledValue keeps fewer decimals as values grow.
func formatScaledValue(v float64) string {
	var decimals float64
	switch {
	case v >= 100:
		decimals = 0
	case v >= 1:
		decimals = 1
	default:
		decimals = 2
	}
	p := math.Pow(10, decimals)
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', -1, 64)
}

// SuggestedBatchSizes returns common sizes to scale a recipe of the given
// batch size to, smallest first. The original size is not included.
func SuggestedBatchSizes(original float64) []float64 {
	if original <= 0 {
		return nil
	}
	var out []float64
	seen := map[float64]bool{original: true}
	for _, f := range []float64{0.25, 0.5, 0.75, 1.5, 2} {
		v := math.Round(original*f*2) / 2
		if v < 1 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
