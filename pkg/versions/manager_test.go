package versions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hbassist/hba/pkg/store"
	"github.com/hbassist/hba/pkg/types"
)

func TestComponents(t *testing.T) {
	tests := []struct {
		in                  string
		major, minor, patch int
	}{
		{"1.2.3", 1, 2, 3},
		{"v2.0.1", 2, 0, 1},
		{"0.4", 0, 4, 0},
		{"3", 3, 0, 0},
		{"", 1, 0, 0},
		{"0.0.0-dev", 0, 0, 0},
		{"1.5.0+abc", 1, 5, 0},
	}
	for _, tt := range tests {
		major, minor, patch := Components(tt.in)
		if major != tt.major || minor != tt.minor || patch != tt.patch {
			t.Errorf("Components(%q) = %d.%d.%d, want %d.%d.%d",
				tt.in, major, minor, patch, tt.major, tt.minor, tt.patch)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		from, to string
		want     types.VersionType
	}{
		{"1.0.0", "2.0.0", types.VersionTypeMajor},
		{"1.0.0", "1.1.0", types.VersionTypeMinor},
		{"1.0.0", "1.0.1", types.VersionTypePatch},
		{"0.0.0", "1.0.0", types.VersionTypeMajor},
		{"1.0", "1.1", types.VersionTypePatch},
		{"1.0.0", "dev", types.VersionTypePatch},
	}
	for _, tt := range tests {
		if got := ClassifyChange(tt.from, tt.to); got != tt.want {
			t.Errorf("ClassifyChange(%q, %q) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite("file:" + filepath.Join(t.TempDir(), "hba.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRecordLaunch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m := NewManager(s, WithRelease("1.0.0", "1"))
	added, err := m.RecordLaunch(ctx)
	if err != nil || !added {
		t.Fatalf("first RecordLaunch = %v, %v", added, err)
	}
	added, err = m.RecordLaunch(ctx)
	if err != nil || added {
		t.Fatalf("repeated RecordLaunch = %v, %v", added, err)
	}

	m2 := NewManager(s, WithRelease("1.1.0", "2"))
	m2.now = func() time.Time { return time.Now().Add(time.Hour) }
	added, err = m2.RecordLaunch(ctx)
	if err != nil || !added {
		t.Fatalf("upgrade RecordLaunch = %v, %v", added, err)
	}

	history, err := m2.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].Version != "1.1.0" || history[0].Type != types.VersionTypeMinor {
		t.Errorf("newest = %+v", history[0])
	}
	if history[1].Version != "1.0.0" || history[1].Type != types.VersionTypeMajor {
		t.Errorf("oldest = %+v", history[1])
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := NewManager(s, WithRelease("1.0.0", "1"))
	if _, err := m.RecordLaunch(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ClearVersionHistory(ctx); err != nil {
		t.Fatal(err)
	}
	history, _ := m.History(ctx)
	if len(history) != 1 {
		t.Fatalf("cached history len = %d, want 1", len(history))
	}

	m.ClearCache()
	history, err := m.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Fatalf("history after ClearCache len = %d, want 0", len(history))
	}
}

func TestFullVersion(t *testing.T) {
	m := NewManager(nil, WithRelease("1.2.3", "45"))
	if got := m.FullVersion(); got != "1.2.3 (45)" {
		t.Errorf("FullVersion = %q", got)
	}
}
