package recipes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/store"
	"github.com/hbassist/hba/pkg/types"
)

func TestDefaults(t *testing.T) {
	list, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("len = %d, want 5", len(list))
	}

	want := map[string]float64{
		"beginner-golden-ale": 4.5,
		"hefeweizen":          5.1,
		"belgian-dubbel":      7.2,
		"american-pale-ale":   5.8,
		"irish-stout":         4.3,
	}
	for _, r := range list {
		abv, ok := want[r.ID]
		if !ok {
			t.Errorf("unexpected recipe %q", r.ID)
			continue
		}
		if r.ABV != abv {
			t.Errorf("%s: ABV = %v, want %v", r.ID, r.ABV, abv)
		}
		if r.Type != types.RecipeTypeBeer {
			t.Errorf("%s: Type = %q", r.ID, r.Type)
		}
		if len(r.Ingredients) == 0 || len(r.Instructions) == 0 {
			t.Errorf("%s: missing ingredients or instructions", r.ID)
		}
	}
}

func TestParseRejectsInvertedGravity(t *testing.T) {
	_, err := parse([]byte(`- {id: bad, name: Bad, og: 1.010, fg: 1.050}`))
	if err == nil {
		t.Fatalf("expected an error for og <= fg")
	}
}

func TestParseRequiresID(t *testing.T) {
	if _, err := parse([]byte(`- {name: Nameless}`)); err == nil {
		t.Fatalf("expected an error for a recipe without id")
	}
}

func TestInstallerInstallsOnce(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewSQLite("file:" + filepath.Join(dir, "hba.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	conf, err := config.NewFile(filepath.Join(dir, "hba.json"))
	if err != nil {
		t.Fatal(err)
	}

	inst := NewInstaller(s, conf)
	n, err := inst.Install(context.Background())
	if err != nil || n != 5 {
		t.Fatalf("Install = %d, %v", n, err)
	}
	if !conf.DefaultRecipesInstalled() {
		t.Fatalf("flag not set after install")
	}

	n, err = inst.Install(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second Install = %d, %v", n, err)
	}

	if err := inst.ResetInstallationFlag(); err != nil {
		t.Fatal(err)
	}
	n, err = inst.Install(context.Background())
	if err != nil || n != 5 {
		t.Fatalf("Install after reset = %d, %v", n, err)
	}

	list, err := s.ListRecipes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 5 {
		t.Errorf("stored %d recipes, want 5 (upsert)", len(list))
	}
}
