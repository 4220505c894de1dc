package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/events"
	"github.com/hbassist/hba/pkg/i18n"
	"github.com/hbassist/hba/pkg/recipes"
	"github.com/hbassist/hba/pkg/reminder"
	"github.com/hbassist/hba/pkg/reset"
	"github.com/hbassist/hba/pkg/store"
	"github.com/hbassist/hba/pkg/timer"
	"github.com/hbassist/hba/pkg/versions"
)

const (
	resetStateFile = "reset-state.json"
	photosDir      = "photos"
	thumbnailsDir  = "thumbnails"
)

// Daemon holds the services behind the HTTP API.
type Daemon struct {
	conf      config.Config
	store     store.Store
	hub       *events.EventHub
	reset     *reset.Controller
	reminders *reminder.Scheduler
	timers    *timer.Manager
	versions  *versions.Manager
	installer *recipes.Installer
	lang      *i18n.Localizer
}

// New wires the services around an initialized store.
func New(conf config.Config, st store.Store) (*Daemon, error) {
	lang, err := i18n.New(conf.Language())
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		conf:  conf,
		store: st,
		hub:   events.NewEventHub(),
		lang:  lang,
	}
	d.reminders = reminder.NewScheduler(d.hub)
	d.timers = timer.NewManager(d.hub)
	d.versions = versions.NewManager(st)
	d.installer = recipes.NewInstaller(st, conf)

	opts := []reset.Option{reset.WithMessages(d.lang.T)}
	if dir := conf.DataDir(); dir != "" {
		opts = append(opts, reset.WithStatePath(filepath.Join(dir, resetStateFile)))
	}
	d.reset = reset.NewController(d.resetSteps(), d.hub, opts...)

	return d, nil
}

func (d *Daemon) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/config", d.getConfig)
	router.PUT("/language", d.setLanguage)
	router.PUT("/metric", d.setUseMetricSystem)
	router.PUT("/dark-mode", d.setDarkMode)
	router.PUT("/notifications", d.setNotificationsEnabled)
	router.PUT("/onboarding", d.completeOnboarding)
	router.POST("/calculate/gravity", calculateGravity)
	router.POST("/calculate/hydrometer", calculateHydrometer)
	router.POST("/calculate/strike-water", calculateStrikeWater)
	router.POST("/calculate/ibu", calculateIBU)
	router.POST("/calculate/srm", calculateSRM)
	router.POST("/calculate/priming-sugar", calculatePrimingSugar)
	router.GET("/recipes", d.getRecipes)
	router.POST("/recipes/:id/scale", d.scaleRecipe)
	router.POST("/brew-sessions", d.recordBrewSession)
	router.GET("/brew-sessions", d.getBrewSessions)
	router.GET("/versions", d.getVersions)
	router.GET("/version", getVersion)
	router.GET("/reminders", d.getReminders)
	router.POST("/reminders", d.addReminder)
	router.DELETE("/reminders/:id", d.removeReminder)
	router.GET("/timers", d.getTimers)
	router.POST("/timers", d.addTimer)
	router.DELETE("/timers", d.clearTimers)
	router.POST("/timers/:id/:action", d.timerAction)
	router.DELETE("/timers/:id", d.removeTimer)
	router.POST("/reset", d.startReset)
	router.GET("/reset", d.getReset)
	router.DELETE("/reset", d.clearReset)

	return router
}

// logEvents logs every event received on ch until the hub closes.
func logEvents(ch <-chan events.Event, lang *i18n.Localizer) {
	for ev := range ch {
		switch ev.Name {
		case events.TimerDone:
			p, err := events.DecodeAs[events.TimerEvent](ev)
			if err != nil {
				logrus.WithError(err).Warn("malformed timer event")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"id":       p.ID,
				"category": p.Category,
			}).Info(lang.T("TimerCompleted", map[string]any{"Name": p.Name}))
		case events.ResetPhase:
			p, err := events.DecodeAs[events.ResetPhaseEvent](ev)
			if err != nil {
				logrus.WithError(err).Warn("malformed reset phase event")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"runId": p.RunID,
				"from":  p.From,
				"to":    p.To,
			}).Info(p.Message)
		case events.ResetProgress:
			p, err := events.DecodeAs[events.ResetProgressEvent](ev)
			if err != nil {
				logrus.WithError(err).Warn("malformed reset progress event")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"runId":    p.RunID,
				"progress": p.Progress,
				"step":     p.Step,
			}).Debug("factory reset progress")
		default:
			logrus.WithField("event", ev.Name).Debug("event published")
		}
	}
}

func defaultDSN(conf config.Config) config.StorageConfig {
	s := conf.Storage()
	if s.Driver == "sqlite" && s.DSN == "" {
		s.DSN = "file:" + filepath.Join(conf.DataDir(), "hba.db") + "?_pragma=busy_timeout(5000)"
	}
	return s
}

// Options configure Run. Empty fields keep the values from the config file.
type Options struct {
	ConfigPath   string
	SocketPath   string
	AllowNonRoot bool

	// DataDir and Storage override the config file. They are written back
	// the next time the daemon saves the config.
	DataDir string
	Storage config.StorageConfig
}

func (o Options) apply(conf config.Config) {
	if o.DataDir != "" {
		conf.SetDataDir(o.DataDir)
	}
	if o.Storage.Driver != "" {
		conf.SetStorage(o.Storage)
	}
}

func Run(opts Options) error {
	unixSocketPath := opts.SocketPath
	conf, err := config.NewFile(opts.ConfigPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	opts.apply(conf)
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	if err := os.MkdirAll(conf.DataDir(), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create data directory %s", conf.DataDir())
	}

	st, err := store.NewStore(defaultDSN(conf))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logrus.Errorf("failed to close store: %v", err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = st.Init(ctx)
	cancel()
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"driver":  conf.Storage().Driver,
		"dataDir": conf.DataDir(),
	}).Info("storage ready")

	d, err := New(conf, st)
	if err != nil {
		return err
	}
	go logEvents(d.hub.Subscribe(), d.lang)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := d.versions.RecordLaunch(ctx); err != nil {
		logrus.Errorf("failed to record version: %v", err)
	}
	if conf.HasCompletedOnboarding() {
		if _, err := d.installer.Install(ctx); err != nil {
			logrus.Errorf("failed to install default recipes: %v", err)
		}
	}
	cancel()

	d.reminders.Start()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			opts.apply(conf)
			logrus.Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler: d.Router(),
	}

	// Remove a stale socket left by an unclean shutdown.
	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	if st := d.reset.Status(); st.Phase == reset.PhaseRunning {
		logrus.WithField("step", st.Step).Warn("exiting during a factory reset, it will be marked failed on next start")
	}

	logrus.Info("stopping reminders and timers")
	d.reminders.Stop()
	d.timers.Clear()
	d.hub.Close()

	logrus.Info("exiting")
	return nil
}
