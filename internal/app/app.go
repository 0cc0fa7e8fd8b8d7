// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/gopxl/beep/v2"

	"github.com/tejashwikalptaru/goradio/internal/adapter/artwork"
	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/analysis"
	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/stream"
	"github.com/tejashwikalptaru/goradio/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/goradio/internal/adapter/repository/catalog"
	"github.com/tejashwikalptaru/goradio/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/goradio/internal/adapter/scheduler"
	fyneui "github.com/tejashwikalptaru/goradio/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/logger"
	"github.com/tejashwikalptaru/goradio/internal/ports"
	"github.com/tejashwikalptaru/goradio/internal/service"
	"github.com/tejashwikalptaru/goradio/res"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	config  Config
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus  ports.EventBus
	scheduler *scheduler.Loop
	output    stream.Output
	sources   ports.MediaSourceFactory
	graphs    ports.AnalysisGraphFactory
	artwork   ports.ArtworkProvider

	// Repositories
	catalog         ports.StationCatalog
	preferencesRepo ports.PreferencesRepository

	// Services
	controller        *service.PlaybackController
	stationService    *service.StationService
	preferenceService *service.PreferenceService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{config: config}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 2: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 3: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Trace bus traffic at debug level. Level samples arrive every frame and are skipped.
	if config.LogLevel <= slog.LevelDebug {
		busLogger := app.logger.With(slog.String("component", "eventbus"))
		syncBus.SubscribeAll(func(event domain.Event) {
			if event.Type() == domain.EventLevelSampled {
				return
			}
			busLogger.Debug("event published", slog.String("type", string(event.Type())))
		})
	}

	// Step 4: Create repositories
	stations, err := loadCatalog(config.CatalogPath)
	if err != nil {
		return nil, err
	}
	app.catalog = stations
	app.preferencesRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())
	app.logger.Info("station catalog loaded", slog.Int("stations", stations.Len()))

	// Step 5: Create the audio pipeline infrastructure
	app.sources = app.newSourceFactory()
	app.graphs = analysis.NewFactory(app.logger)
	app.scheduler = scheduler.NewLoop(app.logger, config.FrameRate)
	app.artwork = artwork.NewFetcher(app.logger, nil)

	// Step 6: Create services (with dependency injection)
	app.preferenceService = service.NewPreferenceService(app.logger, app.preferencesRepo, app.eventBus)
	app.stationService = service.NewStationService(app.logger, app.catalog, app.eventBus)

	// Step 7: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.catalog.All())

	app.controller = service.NewPlaybackController(
		app.logger,
		app.sources,
		app.graphs,
		app.scheduler,
		app.eventBus,
		app.mainWindow.Visualizer(),
		service.ControllerConfig{
			Analysis:        config.Analysis,
			Volume:          app.preferenceService.GetVolume(),
			StrictLifecycle: config.StrictLifecycle,
		},
	)

	// Step 8: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger,
		app.controller,
		app.stationService,
		app.preferenceService,
		app.artwork,
		app.eventBus,
		app.mainWindow,
	)
	app.mainWindow.SetPresenter(app.presenter)

	return app, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.LoadBytes(res.Stations, catalog.EmbeddedSource)
	}
	return catalog.LoadFile(path)
}

// newSourceFactory picks the media source implementation for the configured output.
func (a *Application) newSourceFactory() ports.MediaSourceFactory {
	if a.config.UseMockAudio {
		factory := mock.NewFactory()
		factory.SetLogger(a.logger.With(slog.String("engine", "mock")))
		return factory
	}

	rate := beep.SampleRate(a.config.SampleRate)
	if a.config.AudioOutput == OutputNull {
		a.output = stream.NewNullOutput(rate)
	} else {
		a.output = stream.NewSpeaker(rate)
	}

	userAgent := GetVersionInfo().UserAgent(a.config.AppName)
	return stream.NewFactory(a.logger, stream.NewHTTPClient(a.config.ConnectTimeout), a.output, userAgent)
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() error {
	a.logger.Info("GoRadio started")

	if a.config.Autoplay {
		a.presenter.PlayFirstStation()
	}

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// GetServices returns the application services (for testing).
func (a *Application) GetServices() (*service.PlaybackController, *service.StationService, *service.PreferenceService) {
	return a.controller, a.stationService, a.preferenceService
}

// GetEventBus returns the event bus (for testing).
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application (for testing).
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetPresenter returns the presenter (for testing).
func (a *Application) GetPresenter() *fyneui.Presenter {
	return a.presenter
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")
		var errs []error

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		// Release the live pipeline before the scheduler goes away
		if a.controller != nil {
			if err := a.controller.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("playback controller: %w", err))
			}
		}

		if a.scheduler != nil {
			if err := a.scheduler.Close(); err != nil {
				errs = append(errs, fmt.Errorf("scheduler: %w", err))
			}
		}

		if a.output != nil {
			if err := a.output.Close(); err != nil {
				errs = append(errs, fmt.Errorf("audio output: %w", err))
			}
		}

		if a.preferenceService != nil {
			if err := a.preferenceService.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("preference service: %w", err))
			}
		}

		if a.eventBus != nil {
			if err := a.eventBus.Close(); err != nil {
				errs = append(errs, fmt.Errorf("event bus: %w", err))
			}
		}

		a.shutdownErr = errors.Join(errs...)
		if a.shutdownErr != nil {
			a.logger.Warn("application shutdown finished with errors", slog.Any("error", a.shutdownErr))
			return
		}
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}
