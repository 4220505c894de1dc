package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/reminder"
	"github.com/hbassist/hba/pkg/reset"
	"github.com/hbassist/hba/pkg/timer"
	"github.com/hbassist/hba/pkg/types"
)

// getJSON decodes the response of a GET request into v.
func (c *Client) getJSON(path string, v any, what string) error {
	ret, err := c.Get(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to get %s", what)
	}
	if err := json.Unmarshal([]byte(ret), v); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return nil
}

// sendJSON encodes body, sends it and decodes the response into v when v is
// not nil.
func (c *Client) sendJSON(method, path string, body, v any, what string) error {
	var data string
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to marshal %s", what)
		}
		data = string(b)
	}
	ret, err := c.Send(method, path, data)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to %s", what)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(ret), v); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal %s response", what)
	}
	return nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	var conf config.RawFileConfig
	if err := c.getJSON("/config", &conf, "config"); err != nil {
		return nil, err
	}
	return &conf, nil
}

// SetLanguage returns the language the daemon selected.
func (c *Client) SetLanguage(lang string) (string, error) {
	var code string
	err := c.sendJSON("PUT", "/language", lang, &code, "set language")
	return code, err
}

func (c *Client) SetUseMetricSystem(enabled bool) (string, error) {
	return c.Put("/metric", strconv.FormatBool(enabled))
}

func (c *Client) SetDarkMode(enabled bool) (string, error) {
	return c.Put("/dark-mode", strconv.FormatBool(enabled))
}

func (c *Client) SetNotificationsEnabled(enabled bool) (string, error) {
	return c.Put("/notifications", strconv.FormatBool(enabled))
}

// CompleteOnboarding returns the number of default recipes installed.
func (c *Client) CompleteOnboarding() (int, error) {
	var n int
	err := c.sendJSON("PUT", "/onboarding", true, &n, "complete onboarding")
	return n, err
}

func (c *Client) CalculateGravity(og, fg string) (*calculator.Result, error) {
	var res calculator.Result
	req := types.GravityRequest{OriginalGravity: og, FinalGravity: fg}
	if err := c.sendJSON("POST", "/calculate/gravity", req, &res, "calculate"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CorrectGravity(req types.HydrometerRequest) (float64, error) {
	var res types.HydrometerResponse
	if err := c.sendJSON("POST", "/calculate/hydrometer", req, &res, "correct gravity"); err != nil {
		return 0, err
	}
	return res.CorrectedGravity, nil
}

func (c *Client) StrikeWater(req types.StrikeWaterRequest) (float64, error) {
	var res types.StrikeWaterResponse
	if err := c.sendJSON("POST", "/calculate/strike-water", req, &res, "calculate strike water"); err != nil {
		return 0, err
	}
	return res.StrikeTemp, nil
}

func (c *Client) CalculateIBU(req types.IBURequest) (*types.IBUResponse, error) {
	var res types.IBUResponse
	if err := c.sendJSON("POST", "/calculate/ibu", req, &res, "calculate IBU"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CalculateSRM(req types.SRMRequest) (*types.SRMResponse, error) {
	var res types.SRMResponse
	if err := c.sendJSON("POST", "/calculate/srm", req, &res, "calculate SRM"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) PrimingSugar(req types.PrimingSugarRequest) (*types.PrimingSugarResponse, error) {
	var res types.PrimingSugarResponse
	if err := c.sendJSON("POST", "/calculate/priming-sugar", req, &res, "calculate priming sugar"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetRecipes() ([]types.Recipe, error) {
	var list []types.Recipe
	err := c.getJSON("/recipes", &list, "recipes")
	return list, err
}

// ScaleRecipe returns the recipe resized to toLiters. A zero fromLiters
// uses the configured batch size.
func (c *Client) ScaleRecipe(id string, fromLiters, toLiters float64) (*types.Recipe, error) {
	var r types.Recipe
	req := types.ScaleRequest{FromLiters: fromLiters, ToLiters: toLiters}
	if err := c.sendJSON("POST", "/recipes/"+url.PathEscape(id)+"/scale", req, &r, "scale recipe"); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RecordBrewSession(req types.GravityRequest) (*types.BrewSession, error) {
	var s types.BrewSession
	if err := c.sendJSON("POST", "/brew-sessions", req, &s, "record brew session"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetBrewSessions() ([]types.BrewSession, error) {
	var list []types.BrewSession
	err := c.getJSON("/brew-sessions", &list, "brew sessions")
	return list, err
}

func (c *Client) GetVersions() ([]types.VersionEntry, error) {
	var list []types.VersionEntry
	err := c.getJSON("/versions", &list, "version history")
	return list, err
}

func (c *Client) GetVersion() (string, error) {
	var v string
	err := c.getJSON("/version", &v, "version")
	return v, err
}

func (c *Client) GetReminders() ([]reminder.Reminder, error) {
	var list []reminder.Reminder
	err := c.getJSON("/reminders", &list, "reminders")
	return list, err
}

func (c *Client) AddReminder(schedule, message string) (*reminder.Reminder, error) {
	var r reminder.Reminder
	req := types.ReminderRequest{Schedule: schedule, Message: message}
	if err := c.sendJSON("POST", "/reminders", req, &r, "add reminder"); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RemoveReminder(id string) error {
	_, err := c.Delete("/reminders/" + url.PathEscape(id))
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to remove reminder %s", id)
	}
	return nil
}

// ===== Timer APIs =====

func (c *Client) GetTimers() ([]timer.Timer, error) {
	var list []timer.Timer
	err := c.getJSON("/timers", &list, "timers")
	return list, err
}

func (c *Client) AddTimer(name, category string, d time.Duration) (*timer.Timer, error) {
	var t timer.Timer
	req := types.TimerRequest{Name: name, Category: category, Duration: d.String()}
	if err := c.sendJSON("POST", "/timers", req, &t, "add timer"); err != nil {
		return nil, err
	}
	return &t, nil
}

// TimerAction runs start, pause or reset on the timer.
func (c *Client) TimerAction(id, action string) (*timer.Timer, error) {
	var t timer.Timer
	path := "/timers/" + url.PathEscape(id) + "/" + action
	if err := c.sendJSON("POST", path, nil, &t, action+" timer"); err != nil {
		return nil, err
	}
	return &t, nil
}

// PauseAllTimers pauses every running timer, or resumes every paused one
// when resume is set. It returns how many timers changed.
func (c *Client) PauseAllTimers(resume bool) (int, error) {
	action := "pause"
	if resume {
		action = "resume"
	}
	var n int
	err := c.sendJSON("POST", "/timers/all/"+action, nil, &n, action+" all timers")
	return n, err
}

func (c *Client) RemoveTimer(id string) error {
	_, err := c.Delete("/timers/" + url.PathEscape(id))
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to remove timer %s", id)
	}
	return nil
}

func (c *Client) ClearTimers() (int, error) {
	var n int
	err := c.sendJSON("DELETE", "/timers", nil, &n, "clear timers")
	return n, err
}

// ===== Factory reset APIs =====

// StartReset returns ErrConflict when a reset is already running.
func (c *Client) StartReset() (*reset.Status, error) {
	var st reset.Status
	if err := c.sendJSON("POST", "/reset", nil, &st, "start factory reset"); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) GetReset() (*reset.Status, error) {
	var st reset.Status
	if err := c.getJSON("/reset", &st, "factory reset status"); err != nil {
		return nil, err
	}
	return &st, nil
}

// ClearReset returns ErrConflict while a reset is running.
func (c *Client) ClearReset() (*reset.Status, error) {
	var st reset.Status
	if err := c.sendJSON("DELETE", "/reset", nil, &st, "clear factory reset"); err != nil {
		return nil, err
	}
	return &st, nil
}

// WaitReset polls the reset status every interval until the run identified
// by runID is completed or failed. onUpdate, if not nil, is called for every
// status that differs from the previous one.
func (c *Client) WaitReset(ctx context.Context, runID string, interval time.Duration, onUpdate func(reset.Status)) (*reset.Status, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last reset.Status
	for {
		st, err := c.GetReset()
		if err != nil {
			return nil, err
		}
		if runID != "" && st.RunID != runID {
			return nil, pkgerrors.Errorf("factory reset %s is no longer current", runID)
		}
		if onUpdate != nil && (st.Phase != last.Phase || st.Progress != last.Progress || st.Step != last.Step) {
			onUpdate(*st)
		}
		last = *st
		if st.Phase.Terminal() {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
