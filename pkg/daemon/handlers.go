package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/i18n"
	"github.com/hbassist/hba/pkg/recipes"
	"github.com/hbassist/hba/pkg/reminder"
	"github.com/hbassist/hba/pkg/reset"
	"github.com/hbassist/hba/pkg/timer"
	"github.com/hbassist/hba/pkg/types"
	"github.com/hbassist/hba/pkg/version"
)

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) saveConfig(c *gin.Context) bool {
	if err := d.conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return false
	}
	return true
}

func (d *Daemon) setLanguage(c *gin.Context) {
	var lang string
	if err := c.BindJSON(&lang); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	code, err := i18n.Match(lang)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	d.conf.SetLanguage(code)
	if !d.saveConfig(c) {
		return
	}
	_ = d.lang.SetLanguage(code)

	logrus.Infof("set language to %s", code)

	c.IndentedJSON(http.StatusCreated, code)
}

// boolSetting builds a handler for a PUT endpoint taking a JSON bool.
func (d *Daemon) boolSetting(name string, set func(bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var b bool
		if err := c.BindJSON(&b); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		set(b)
		if !d.saveConfig(c) {
			return
		}

		logrus.Infof("set %s to %t", name, b)

		c.IndentedJSON(http.StatusCreated, "ok")
	}
}

func (d *Daemon) setUseMetricSystem(c *gin.Context) {
	d.boolSetting("use metric system", d.conf.SetUseMetricSystem)(c)
}

func (d *Daemon) setDarkMode(c *gin.Context) {
	d.boolSetting("dark mode", d.conf.SetDarkMode)(c)
}

func (d *Daemon) setNotificationsEnabled(c *gin.Context) {
	d.boolSetting("notifications enabled", d.conf.SetNotificationsEnabled)(c)
}

// completeOnboarding marks onboarding done and installs the default recipes.
// A false body reopens onboarding.
func (d *Daemon) completeOnboarding(c *gin.Context) {
	var done bool
	if err := c.BindJSON(&done); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	d.conf.SetHasCompletedOnboarding(done)
	if !d.saveConfig(c) {
		return
	}
	if !done {
		c.IndentedJSON(http.StatusCreated, 0)
		return
	}

	n, err := d.installer.Install(c.Request.Context())
	if err != nil {
		logrus.Errorf("failed to install default recipes: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Info("onboarding completed")

	c.IndentedJSON(http.StatusCreated, n)
}

func computeGravity(c *gin.Context) (types.GravityRequest, float64, float64, calculator.Result, bool) {
	var req types.GravityRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return req, 0, 0, calculator.Result{}, false
	}

	og, fg, err := calculator.ParseGravities(req.OriginalGravity, req.FinalGravity)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return req, 0, 0, calculator.Result{}, false
	}

	res, err := calculator.Compute(og, fg)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return req, 0, 0, calculator.Result{}, false
	}

	return req, og, fg, res, true
}

func calculateGravity(c *gin.Context) {
	_, _, _, res, ok := computeGravity(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, res)
}

func calculateHydrometer(c *gin.Context) {
	var req types.HydrometerRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if req.Gravity <= 0 {
		abort(c, http.StatusBadRequest, fmt.Errorf("%w: gravity must be positive", calculator.ErrInvalidInput))
		return
	}

	cal := calculator.DefaultCalibrationTemperature
	if req.CalibrationTemp != nil {
		cal = *req.CalibrationTemp
	}
	g, err := calculator.TemperatureCorrectedGravity(req.Gravity, req.SampleTemp, cal)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.HydrometerResponse{CorrectedGravity: g})
}

func calculateStrikeWater(c *gin.Context) {
	var req types.StrikeWaterRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	t, err := calculator.StrikeWaterTemperature(req.GrainKg, req.WaterLiters, req.GrainTemp, req.TargetTemp)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.StrikeWaterResponse{StrikeTemp: t})
}

func (d *Daemon) getRecipes(c *gin.Context) {
	list, err := d.store.ListRecipes(c.Request.Context())
	if err != nil {
		logrus.Errorf("getRecipes failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []types.Recipe{}
	}
	c.IndentedJSON(http.StatusOK, list)
}

// recordBrewSession computes the gravity metrics and stores them for the
// brew analytics.
func (d *Daemon) recordBrewSession(c *gin.Context) {
	req, og, fg, res, ok := computeGravity(c)
	if !ok {
		return
	}

	s := types.BrewSession{
		ID:                 uuid.NewString(),
		RecipeID:           req.RecipeID,
		OriginalGravity:    og,
		FinalGravity:       fg,
		ABVPercent:         res.ABVPercent,
		AttenuationPercent: res.AttenuationPercent,
		Notes:              req.Notes,
		CreatedAt:          time.Now().UTC(),
	}
	if err := d.store.RecordBrewSession(c.Request.Context(), s); err != nil {
		logrus.Errorf("recordBrewSession failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, s)
}

func (d *Daemon) getBrewSessions(c *gin.Context) {
	list, err := d.store.ListBrewSessions(c.Request.Context())
	if err != nil {
		logrus.Errorf("getBrewSessions failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []types.BrewSession{}
	}
	c.IndentedJSON(http.StatusOK, list)
}

func (d *Daemon) getVersions(c *gin.Context) {
	list, err := d.versions.History(c.Request.Context())
	if err != nil {
		logrus.Errorf("getVersions failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []types.VersionEntry{}
	}
	c.IndentedJSON(http.StatusOK, list)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func (d *Daemon) getReminders(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.reminders.List())
}

func (d *Daemon) addReminder(c *gin.Context) {
	var req types.ReminderRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	r, err := d.reminders.Add(req.Schedule, req.Message)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, r)
}

func (d *Daemon) removeReminder(c *gin.Context) {
	id := c.Param("id")
	if err := d.reminders.Remove(id); err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			abort(c, http.StatusNotFound, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, "ok")
}

func (d *Daemon) startReset(c *gin.Context) {
	h, err := d.reset.Start()
	if err != nil {
		if errors.Is(err, reset.ErrAlreadyRunning) {
			abort(c, http.StatusConflict, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	logrus.WithField("runId", h.RunID()).Info("factory reset requested")

	c.IndentedJSON(http.StatusAccepted, d.reset.Status())
}

func (d *Daemon) getReset(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.reset.Status())
}

func (d *Daemon) clearReset(c *gin.Context) {
	if err := d.reset.Reset(); err != nil {
		if errors.Is(err, reset.ErrInvalidStateTransition) {
			abort(c, http.StatusConflict, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, d.reset.Status())
}

func calculateIBU(c *gin.Context) {
	var req types.IBURequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	method := calculator.UtilizationMethod(strings.ToLower(req.Method))
	if method == "" {
		method = calculator.Tinseth
	}
	ibu, err := calculator.IBU(req.Hops, req.BatchLiters, req.Gravity, method)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.IBUResponse{IBU: ibu, Method: string(method)})
}

func calculateSRM(c *gin.Context) {
	var req types.SRMRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	srm, err := calculator.SRM(req.Grains, req.BatchLiters)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	mcu, err := calculator.MCU(req.Grains, req.BatchLiters)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.SRMResponse{SRM: srm, MCU: mcu, Color: calculator.ColorName(srm)})
}

func calculatePrimingSugar(c *gin.Context) {
	var req types.PrimingSugarRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	target := req.TargetVolumes
	if target == 0 {
		v, ok := calculator.StyleCO2[strings.ToLower(req.Style)]
		if !ok {
			abort(c, http.StatusBadRequest, fmt.Errorf("%w: unknown style %q, set targetVolumes", calculator.ErrInvalidInput, req.Style))
			return
		}
		target = v
	}
	sugar := calculator.SugarType(strings.ToLower(req.Sugar))
	if sugar == "" {
		sugar = calculator.Dextrose
	}

	g, err := calculator.PrimingSugar(req.BatchLiters, req.TempC, target, sugar)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.PrimingSugarResponse{
		Grams:         g,
		Sugar:         string(sugar),
		TargetVolumes: target,
		ResidualCO2:   calculator.ResidualCO2(req.TempC),
	})
}

func (d *Daemon) scaleRecipe(c *gin.Context) {
	var req types.ScaleRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if req.FromLiters == 0 {
		req.FromLiters = d.conf.DefaultBatchSize()
	}

	list, err := d.store.ListRecipes(c.Request.Context())
	if err != nil {
		logrus.Errorf("scaleRecipe failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	id := c.Param("id")
	for _, r := range list {
		if r.ID != id {
			continue
		}
		scaled, err := recipes.Scale(r, req.FromLiters, req.ToLiters)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
		c.IndentedJSON(http.StatusOK, scaled)
		return
	}

	abort(c, http.StatusNotFound, fmt.Errorf("recipe %s not found", id))
}

func (d *Daemon) getTimers(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.timers.List())
}

func (d *Daemon) addTimer(c *gin.Context) {
	var req types.TimerRequest
	if err := c.BindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	dur, err := time.ParseDuration(req.Duration)
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("%w: %v", timer.ErrInvalidDuration, err))
		return
	}
	t, err := d.timers.Add(req.Name, timer.Category(req.Category), dur)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, t)
}

// timerAction handles start, pause and reset of one timer. The id "all"
// pauses or resumes every timer.
func (d *Daemon) timerAction(c *gin.Context) {
	id, action := c.Param("id"), c.Param("action")

	if id == "all" {
		var n int
		switch action {
		case "pause":
			n = d.timers.PauseAll()
		case "start", "resume":
			n = d.timers.ResumeAll()
		default:
			abort(c, http.StatusBadRequest, fmt.Errorf("unknown action %q for all timers", action))
			return
		}
		logrus.WithField("count", n).Infof("%s all timers", action)
		c.IndentedJSON(http.StatusOK, n)
		return
	}

	var (
		t   timer.Timer
		err error
	)
	switch action {
	case "start":
		t, err = d.timers.Start(id)
	case "pause":
		t, err = d.timers.Pause(id)
	case "reset":
		t, err = d.timers.Reset(id)
	default:
		abort(c, http.StatusBadRequest, fmt.Errorf("unknown timer action %q", action))
		return
	}
	if err != nil {
		abort(c, timerErrorCode(err), err)
		return
	}

	c.IndentedJSON(http.StatusOK, t)
}

func (d *Daemon) removeTimer(c *gin.Context) {
	if err := d.timers.Remove(c.Param("id")); err != nil {
		abort(c, timerErrorCode(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, "ok")
}

func (d *Daemon) clearTimers(c *gin.Context) {
	n := d.timers.Clear()
	logrus.WithField("count", n).Info("timers cleared")
	c.IndentedJSON(http.StatusOK, n)
}

func timerErrorCode(err error) int {
	switch {
	case errors.Is(err, timer.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, timer.ErrCompleted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
