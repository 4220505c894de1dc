package recipes

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/types"
)

func paleAle() types.Recipe {
	return types.Recipe{
		ID:   "pale-ale",
		Name: "Pale Ale",
		ABV:  5.2,
		IBU:  35,
		Ingredients: []types.Ingredient{
			{Name: "Pale Malt", Amount: "4.0 kg", Type: types.IngredientGrain},
			{Name: "Cascade", Amount: "25 g", Type: types.IngredientHop},
			{Name: "Crystal", Amount: "0,3 kg", Type: types.IngredientGrain},
			{Name: "US-05", Amount: "1 pack", Type: types.IngredientYeast},
			{Name: "Irish Moss", Amount: "1", Type: types.IngredientOther},
			{Name: "Salt", Amount: "to taste", Type: types.IngredientOther},
		},
		Instructions: []string{
			"Mash at 65°C for 60 minutes",
			"Sparge with 12 liters of water at 78°C",
			"Add 500 g of sugar",
		},
	}
}

func amounts(r types.Recipe) []string {
	var out []string
	for _, ing := range r.Ingredients {
		out = append(out, ing.Amount)
	}
	return out
}

func TestScaleDown(t *testing.T) {
	r := paleAle()
	got, err := Scale(r, 20, 10)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}

	want := []string{"2 kg", "12.5 g", "0.15 kg", "1 pack", "0.5 pcs", "to taste"}
	if !reflect.DeepEqual(amounts(got), want) {
		t.Errorf("amounts = %q, want %q", amounts(got), want)
	}
	wantSteps := []string{
		"Mash at 65°C for 60 minutes",
		"Sparge with 6 liters of water at 78°C",
		"Add 250 g of sugar",
	}
	if !reflect.DeepEqual(got.Instructions, wantSteps) {
		t.Errorf("instructions = %q, want %q", got.Instructions, wantSteps)
	}
	if got.Name != "Pale Ale (10 L)" {
		t.Errorf("name = %q", got.Name)
	}
	if got.ABV != 5.2 || got.IBU != 35 {
		t.Errorf("ABV/IBU changed: %v/%v", got.ABV, got.IBU)
	}
	if !strings.Contains(got.Notes, "Scaled from 20 L to 10 L (factor 0.50)") {
		t.Errorf("notes = %q", got.Notes)
	}

	// The input is untouched.
	if r.Ingredients[0].Amount != "4.0 kg" || r.Instructions[1] != "Sparge with 12 liters of water at 78°C" {
		t.Errorf("input recipe was modified")
	}
}

func TestScaleYeastRoundsUpToWholePacks(t *testing.T) {
	tests := []struct {
		to   float64
		want string
	}{
		{to: 5, want: "1 pack"},
		{to: 20, want: "1 pack"},
		{to: 30, want: "2 packs"},
		{to: 50, want: "3 packs"},
	}
	for _, tt := range tests {
		got, err := Scale(paleAle(), 20, tt.to)
		if err != nil {
			t.Fatal(err)
		}
		if a := got.Ingredients[3].Amount; a != tt.want {
			t.Errorf("to %v L: yeast = %q, want %q", tt.to, a, tt.want)
		}
	}
}

func TestScaleRejectsBadSizes(t *testing.T) {
	for _, sizes := range [][2]float64{{0, 10}, {20, 0}, {-5, 10}} {
		if _, err := Scale(paleAle(), sizes[0], sizes[1]); !errors.Is(err, calculator.ErrInvalidInput) {
			t.Errorf("Scale(%v, %v): err = %v, want ErrInvalidInput", sizes[0], sizes[1], err)
		}
	}
}

func TestScaleKeepsExistingNotes(t *testing.T) {
	r := paleAle()
	r.Notes = "House favourite"
	got, err := Scale(r, 20, 40)
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes != "House favourite\nScaled from 20 L to 40 L (factor 2.00)" {
		t.Errorf("notes = %q", got.Notes)
	}
	if got.Ingredients[0].Amount != "8 kg" {
		t.Errorf("malt = %q, want 8 kg", got.Ingredients[0].Amount)
	}
}

func TestSuggestedBatchSizes(t *testing.T) {
	if got, want := SuggestedBatchSizes(20), []float64{5, 10, 15, 30, 40}; !reflect.DeepEqual(got, want) {
		t.Errorf("SuggestedBatchSizes(20) = %v, want %v", got, want)
	}
	if got := SuggestedBatchSizes(0); got != nil {
		t.Errorf("SuggestedBatchSizes(0) = %v, want nil", got)
	}
}

func TestScaleDefaults(t *testing.T) {
	list, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range list {
		got, err := Scale(r, 20, 10)
		if err != nil {
			t.Fatalf("%s: %v", r.ID, err)
		}
		if len(got.Ingredients) != len(r.Ingredients) || len(got.Instructions) != len(r.Instructions) {
			t.Errorf("%s: ingredient or instruction count changed", r.ID)
		}
	}
}
