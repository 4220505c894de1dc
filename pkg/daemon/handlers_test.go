package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/reminder"
	"github.com/hbassist/hba/pkg/reset"
	"github.com/hbassist/hba/pkg/store"
	"github.com/hbassist/hba/pkg/timer"
	"github.com/hbassist/hba/pkg/types"
	"github.com/hbassist/hba/pkg/utils/ptr"
)

type testDaemon struct {
	*Daemon
	dir    string
	router *gin.Engine
}

func newTestDaemon(t *testing.T) *testDaemon {
	t.Helper()
	dir := t.TempDir()

	conf := config.NewFileFromConfig(&config.RawFileConfig{
		DataDir: ptr.To(dir),
	}, filepath.Join(dir, "hba.json"))

	st, err := store.NewStore(defaultDSN(conf))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	d, err := New(conf, st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.hub.Close)

	router := d.Router()
	gin.SetMode(gin.TestMode)
	return &testDaemon{Daemon: d, dir: dir, router: router}
}

func (td *testDaemon) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	td.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func (td *testDaemon) waitReset(t *testing.T) reset.Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := td.reset.Status()
		if st.Phase.Terminal() {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("factory reset did not finish")
	return reset.Status{}
}

func TestCalculateGravity(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPost, "/calculate/gravity", types.GravityRequest{OriginalGravity: "1.050", FinalGravity: "1.010"})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	res := decode[calculator.Result](t, w)
	if math.Abs(res.ABVPercent-5.25) > 1e-9 {
		t.Errorf("ABV = %v, want 5.25", res.ABVPercent)
	}
	if math.Abs(res.AttenuationPercent-80) > 1e-9 {
		t.Errorf("attenuation = %v, want 80", res.AttenuationPercent)
	}

	tests := []types.GravityRequest{
		{OriginalGravity: "abc", FinalGravity: "1.010"},
		{OriginalGravity: "", FinalGravity: "1.010"},
		{OriginalGravity: "1.010", FinalGravity: "1.050"},
		{OriginalGravity: "1.000", FinalGravity: "0.990"},
	}
	for _, tt := range tests {
		w := td.do(t, http.MethodPost, "/calculate/gravity", tt)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%+v: code = %d, want 400", tt, w.Code)
		}
	}
}

func TestCalculateStrikeWaterAndHydrometer(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPost, "/calculate/strike-water", types.StrikeWaterRequest{
		GrainKg: 5, WaterLiters: 15, GrainTemp: 20, TargetTemp: 66,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	sw := decode[types.StrikeWaterResponse](t, w)
	if want := 66 + 46*0.4/3; math.Abs(sw.StrikeTemp-want) > 1e-9 {
		t.Errorf("strike temp = %v, want %v", sw.StrikeTemp, want)
	}

	w = td.do(t, http.MethodPost, "/calculate/strike-water", types.StrikeWaterRequest{WaterLiters: 15})
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero grain: code = %d, want 400", w.Code)
	}

	w = td.do(t, http.MethodPost, "/calculate/hydrometer", types.HydrometerRequest{Gravity: 1.050, SampleTemp: 20})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	hr := decode[types.HydrometerResponse](t, w)
	if math.Abs(hr.CorrectedGravity-1.050) > 1e-9 {
		t.Errorf("corrected = %v, want 1.050", hr.CorrectedGravity)
	}

	w = td.do(t, http.MethodPost, "/calculate/hydrometer", types.HydrometerRequest{Gravity: 1.050, SampleTemp: 30})
	hr = decode[types.HydrometerResponse](t, w)
	if hr.CorrectedGravity <= 1.050 {
		t.Errorf("warm sample corrected = %v, want above 1.050", hr.CorrectedGravity)
	}
}

func TestSettings(t *testing.T) {
	td := newTestDaemon(t)

	if w := td.do(t, http.MethodPut, "/language", "nl-NL"); w.Code != http.StatusCreated {
		t.Fatalf("language: code = %d, body = %s", w.Code, w.Body.String())
	}
	if td.conf.Language() != "nl" {
		t.Errorf("Language = %q, want nl", td.conf.Language())
	}
	if w := td.do(t, http.MethodPut, "/language", "ja"); w.Code != http.StatusBadRequest {
		t.Errorf("unsupported language: code = %d, want 400", w.Code)
	}

	if w := td.do(t, http.MethodPut, "/dark-mode", true); w.Code != http.StatusCreated {
		t.Fatalf("dark mode: code = %d", w.Code)
	}
	if w := td.do(t, http.MethodPut, "/metric", false); w.Code != http.StatusCreated {
		t.Fatalf("metric: code = %d", w.Code)
	}
	if w := td.do(t, http.MethodPut, "/notifications", "yes"); w.Code != http.StatusBadRequest {
		t.Errorf("non-bool body: code = %d, want 400", w.Code)
	}

	w := td.do(t, http.MethodGet, "/config", nil)
	raw := decode[config.RawFileConfig](t, w)
	if !*raw.DarkMode || *raw.UseMetricSystem || *raw.Language != "nl" {
		t.Errorf("config = %s", w.Body.String())
	}

	// Settings are persisted.
	saved, err := config.NewFile(filepath.Join(td.dir, "hba.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !saved.DarkMode() {
		t.Errorf("dark mode not saved")
	}
}

func TestOnboardingInstallsRecipes(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPut, "/onboarding", true)
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	if n := decode[int](t, w); n != 5 {
		t.Errorf("installed = %d, want 5", n)
	}

	w = td.do(t, http.MethodGet, "/recipes", nil)
	if list := decode[[]types.Recipe](t, w); len(list) != 5 {
		t.Errorf("len(recipes) = %d, want 5", len(list))
	}
}

func TestBrewSessions(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodGet, "/brew-sessions", nil)
	if list := decode[[]types.BrewSession](t, w); len(list) != 0 {
		t.Fatalf("sessions = %v", list)
	}

	w = td.do(t, http.MethodPost, "/brew-sessions", types.GravityRequest{OriginalGravity: "1.060", FinalGravity: "1.012", Notes: "IPA"})
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	w = td.do(t, http.MethodPost, "/brew-sessions", types.GravityRequest{OriginalGravity: "1.000", FinalGravity: "1.010"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid session: code = %d, want 400", w.Code)
	}

	w = td.do(t, http.MethodGet, "/brew-sessions", nil)
	list := decode[[]types.BrewSession](t, w)
	if len(list) != 1 || list[0].Notes != "IPA" {
		t.Fatalf("sessions = %+v", list)
	}
	if math.Abs(list[0].ABVPercent-0.048*131.25) > 1e-6 {
		t.Errorf("ABV = %v", list[0].ABVPercent)
	}
}

func TestReminders(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPost, "/reminders", types.ReminderRequest{Schedule: "@daily", Message: "check gravity"})
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	r := decode[reminder.Reminder](t, w)

	if w := td.do(t, http.MethodPost, "/reminders", types.ReminderRequest{Schedule: "nope", Message: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad schedule: code = %d, want 400", w.Code)
	}

	w = td.do(t, http.MethodGet, "/reminders", nil)
	if list := decode[[]reminder.Reminder](t, w); len(list) != 1 {
		t.Fatalf("reminders = %v", list)
	}

	if w := td.do(t, http.MethodDelete, "/reminders/"+r.ID, nil); w.Code != http.StatusOK {
		t.Errorf("delete: code = %d", w.Code)
	}
	if w := td.do(t, http.MethodDelete, "/reminders/"+r.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: code = %d, want 404", w.Code)
	}
}

func TestFactoryResetClearsEverything(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "nl_NL.UTF-8")
	td := newTestDaemon(t)

	td.do(t, http.MethodPut, "/language", "en")
	if td.lang.Language() != "en" {
		t.Fatalf("localizer language = %q, want en", td.lang.Language())
	}
	td.do(t, http.MethodPut, "/dark-mode", true)
	td.do(t, http.MethodPost, "/timers", types.TimerRequest{Name: "Boil", Duration: "1h"})
	td.do(t, http.MethodPut, "/onboarding", true)
	td.do(t, http.MethodPost, "/brew-sessions", types.GravityRequest{OriginalGravity: "1.050", FinalGravity: "1.010"})
	td.do(t, http.MethodPost, "/reminders", types.ReminderRequest{Schedule: "@hourly", Message: "airlock"})
	if _, err := td.versions.RecordLaunch(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{photosDir, thumbnailsDir} {
		dir := filepath.Join(td.dir, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "brew.jpg"), []byte("jpeg"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	w := td.do(t, http.MethodPost, "/reset", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	if st := decode[reset.Status](t, w); st.RunID == "" || st.StepCount != 7 {
		t.Errorf("status = %+v", st)
	}

	st := td.waitReset(t)
	if st.Phase != reset.PhaseCompleted || st.Progress != 1 {
		t.Fatalf("status = %+v", st)
	}

	ctx := context.Background()
	if list, _ := td.store.ListRecipes(ctx); len(list) != 0 {
		t.Errorf("recipes left: %d", len(list))
	}
	if list, _ := td.store.ListBrewSessions(ctx); len(list) != 0 {
		t.Errorf("brew sessions left: %d", len(list))
	}
	if list, _ := td.versions.History(ctx); len(list) != 0 {
		t.Errorf("version history left: %d", len(list))
	}
	if n := len(td.reminders.List()); n != 0 {
		t.Errorf("reminders left: %d", n)
	}
	for _, name := range []string{photosDir, thumbnailsDir} {
		entries, err := os.ReadDir(filepath.Join(td.dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("%s not empty", name)
		}
	}
	if td.conf.DarkMode() || td.conf.HasCompletedOnboarding() || td.conf.DefaultRecipesInstalled() {
		t.Errorf("settings not reset: %v", td.conf.LogrusFields())
	}
	if n := len(td.timers.List()); n != 0 {
		t.Errorf("timers left: %d", n)
	}
	// The chosen language is dropped and the system locale applies again.
	if td.conf.Language() != "nl" || td.lang.Language() != "nl" {
		t.Errorf("language = %q, localizer = %q, want nl from LANG", td.conf.Language(), td.lang.Language())
	}
	if st.Message != "Alle gegevens zijn teruggezet naar de fabrieksinstellingen" {
		t.Errorf("message = %q", st.Message)
	}
	b, err := os.ReadFile(filepath.Join(td.dir, "hba.json"))
	if err != nil {
		t.Fatal(err)
	}
	var saved config.RawFileConfig
	if err := json.Unmarshal(b, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Language != nil {
		t.Errorf("saved language = %q, want unset", *saved.Language)
	}

	w = td.do(t, http.MethodGet, "/reset", nil)
	if got := decode[reset.Status](t, w); got.Phase != reset.PhaseCompleted {
		t.Errorf("GET /reset phase = %q", got.Phase)
	}

	w = td.do(t, http.MethodDelete, "/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear: code = %d", w.Code)
	}
	if got := decode[reset.Status](t, w); got.Phase != reset.PhaseIdle {
		t.Errorf("phase after clear = %q", got.Phase)
	}
}

func TestFactoryResetConflicts(t *testing.T) {
	td := newTestDaemon(t)

	release := make(chan struct{})
	td.reset = reset.NewController([]reset.Step{
		reset.NewStep("block", 1, func(context.Context) error {
			<-release
			return nil
		}),
	}, td.hub)

	if w := td.do(t, http.MethodPost, "/reset", nil); w.Code != http.StatusAccepted {
		t.Fatalf("start: code = %d", w.Code)
	}
	if w := td.do(t, http.MethodPost, "/reset", nil); w.Code != http.StatusConflict {
		t.Errorf("second start: code = %d, want 409", w.Code)
	}
	if w := td.do(t, http.MethodDelete, "/reset", nil); w.Code != http.StatusConflict {
		t.Errorf("clear while running: code = %d, want 409", w.Code)
	}

	close(release)
	if st := td.waitReset(t); st.Phase != reset.PhaseCompleted {
		t.Errorf("phase = %q", st.Phase)
	}
}

func TestGetVersion(t *testing.T) {
	td := newTestDaemon(t)
	w := td.do(t, http.MethodGet, "/version", nil)
	if w.Code != http.StatusOK || decode[string](t, w) == "" {
		t.Errorf("code = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestBrewDayCalculators(t *testing.T) {
	td := newTestDaemon(t)

	hops := []calculator.HopAddition{{AlphaAcids: 5, Grams: 28, BoilMinutes: 60}}
	w := td.do(t, http.MethodPost, "/calculate/ibu", types.IBURequest{BatchLiters: 20, Gravity: 1.050, Hops: hops})
	if w.Code != http.StatusOK {
		t.Fatalf("ibu: code = %d, body = %s", w.Code, w.Body.String())
	}
	want, err := calculator.IBU(hops, 20, 1.050, calculator.Tinseth)
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[types.IBUResponse](t, w); math.Abs(got.IBU-want) > 1e-9 || got.Method != "tinseth" {
		t.Errorf("ibu = %+v, want %v", got, want)
	}
	if w := td.do(t, http.MethodPost, "/calculate/ibu", types.IBURequest{BatchLiters: 20, Gravity: 1.050, Method: "guess", Hops: hops}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown method: code = %d, want 400", w.Code)
	}
	if w := td.do(t, http.MethodPost, "/calculate/ibu", types.IBURequest{Gravity: 1.050, Hops: hops}); w.Code != http.StatusBadRequest {
		t.Errorf("zero batch: code = %d, want 400", w.Code)
	}

	grains := []calculator.GrainAddition{{Name: "Pale", Kilogram: 4, Lovibond: 3}}
	w = td.do(t, http.MethodPost, "/calculate/srm", types.SRMRequest{BatchLiters: 20, Grains: grains})
	if w.Code != http.StatusOK {
		t.Fatalf("srm: code = %d, body = %s", w.Code, w.Body.String())
	}
	srm := decode[types.SRMResponse](t, w)
	if math.Abs(srm.SRM-4.504833510392094) > 1e-9 || srm.Color != calculator.ColorName(srm.SRM) || srm.MCU <= 0 {
		t.Errorf("srm = %+v", srm)
	}

	w = td.do(t, http.MethodPost, "/calculate/priming-sugar", types.PrimingSugarRequest{BatchLiters: 20, TempC: 20, TargetVolumes: 2.4})
	if w.Code != http.StatusOK {
		t.Fatalf("priming sugar: code = %d, body = %s", w.Code, w.Body.String())
	}
	ps := decode[types.PrimingSugarResponse](t, w)
	if math.Abs(ps.Grams-20.5776) > 1e-6 || ps.Sugar != "dextrose" {
		t.Errorf("priming sugar = %+v", ps)
	}

	w = td.do(t, http.MethodPost, "/calculate/priming-sugar", types.PrimingSugarRequest{BatchLiters: 20, TempC: 20, Style: "Wheat", Sugar: "sucrose"})
	if ps := decode[types.PrimingSugarResponse](t, w); ps.TargetVolumes != 3.2 || ps.Sugar != "sucrose" {
		t.Errorf("style priming sugar = %+v", ps)
	}
	if w := td.do(t, http.MethodPost, "/calculate/priming-sugar", types.PrimingSugarRequest{BatchLiters: 20, Style: "cocktail"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown style: code = %d, want 400", w.Code)
	}
}

func TestScaleRecipe(t *testing.T) {
	td := newTestDaemon(t)
	td.do(t, http.MethodPut, "/onboarding", true)

	w := td.do(t, http.MethodGet, "/recipes", nil)
	list := decode[[]types.Recipe](t, w)
	if len(list) == 0 {
		t.Fatal("no recipes installed")
	}
	r := list[0]

	w = td.do(t, http.MethodPost, "/recipes/"+r.ID+"/scale", types.ScaleRequest{ToLiters: td.conf.DefaultBatchSize() * 2})
	if w.Code != http.StatusOK {
		t.Fatalf("scale: code = %d, body = %s", w.Code, w.Body.String())
	}
	scaled := decode[types.Recipe](t, w)
	if scaled.ID != r.ID || scaled.Name == r.Name || len(scaled.Ingredients) != len(r.Ingredients) {
		t.Errorf("scaled = %+v", scaled)
	}

	if w := td.do(t, http.MethodPost, "/recipes/"+r.ID+"/scale", types.ScaleRequest{ToLiters: -1}); w.Code != http.StatusBadRequest {
		t.Errorf("negative size: code = %d, want 400", w.Code)
	}
	if w := td.do(t, http.MethodPost, "/recipes/missing/scale", types.ScaleRequest{ToLiters: 10}); w.Code != http.StatusNotFound {
		t.Errorf("missing recipe: code = %d, want 404", w.Code)
	}
}

func TestTimers(t *testing.T) {
	td := newTestDaemon(t)

	w := td.do(t, http.MethodPost, "/timers", types.TimerRequest{Name: "Boil", Category: "boiling", Duration: "1h"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add: code = %d, body = %s", w.Code, w.Body.String())
	}
	tm := decode[timer.Timer](t, w)
	if tm.State != timer.StateIdle || tm.DurationSeconds != 3600 {
		t.Errorf("timer = %+v", tm)
	}
	for _, bad := range []types.TimerRequest{
		{Name: "Boil", Duration: "soon"},
		{Name: "Boil", Duration: "-5m"},
		{Name: "", Duration: "5m"},
		{Name: "Boil", Category: "frying", Duration: "5m"},
	} {
		if w := td.do(t, http.MethodPost, "/timers", bad); w.Code != http.StatusBadRequest {
			t.Errorf("%+v: code = %d, want 400", bad, w.Code)
		}
	}

	w = td.do(t, http.MethodPost, "/timers/"+tm.ID+"/start", nil)
	if got := decode[timer.Timer](t, w); w.Code != http.StatusOK || got.State != timer.StateRunning {
		t.Errorf("start: code = %d, timer = %+v", w.Code, got)
	}
	w = td.do(t, http.MethodPost, "/timers/all/pause", nil)
	if n := decode[int](t, w); n != 1 {
		t.Errorf("paused = %d, want 1", n)
	}
	w = td.do(t, http.MethodPost, "/timers/"+tm.ID+"/reset", nil)
	if got := decode[timer.Timer](t, w); got.State != timer.StateIdle || got.RemainingSeconds != 3600 {
		t.Errorf("reset: timer = %+v", got)
	}
	if w := td.do(t, http.MethodPost, "/timers/"+tm.ID+"/explode", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown action: code = %d, want 400", w.Code)
	}

	w = td.do(t, http.MethodGet, "/timers", nil)
	if list := decode[[]timer.Timer](t, w); len(list) != 1 {
		t.Fatalf("timers = %+v", list)
	}

	if w := td.do(t, http.MethodDelete, "/timers/"+tm.ID, nil); w.Code != http.StatusOK {
		t.Errorf("remove: code = %d", w.Code)
	}
	if w := td.do(t, http.MethodPost, "/timers/"+tm.ID+"/start", nil); w.Code != http.StatusNotFound {
		t.Errorf("start removed: code = %d, want 404", w.Code)
	}

	td.do(t, http.MethodPost, "/timers", types.TimerRequest{Name: "Mash", Duration: "60m"})
	w = td.do(t, http.MethodDelete, "/timers", nil)
	if n := decode[int](t, w); n != 1 {
		t.Errorf("cleared = %d, want 1", n)
	}
}
