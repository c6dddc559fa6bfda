// Package app wires the CLI configuration, the logger, the scene, and the
// host loop (windowed or headless) around the engine.
package app

import (
	"fmt"
	"log/slog"

	"github.com/hakutaku/hakoniwa/pkg/audio"
	"github.com/hakutaku/hakoniwa/pkg/cli"
	"github.com/hakutaku/hakoniwa/pkg/engine"
	"github.com/hakutaku/hakoniwa/pkg/logger"
	"github.com/hakutaku/hakoniwa/pkg/script"
	"github.com/hakutaku/hakoniwa/pkg/vm"
)

// Application is the top-level wiring. It owns the parsed configuration and
// the engine for the current session.
type Application struct {
	config *cli.Config
	log    *slog.Logger
	engine *engine.Engine
	player *audio.Player
}

// New creates an Application.
func New() *Application {
	return &Application{}
}

// Run parses arguments, builds the scene, and drives the host loop until the
// session ends.
func (app *Application) Run(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	app.log.Info("application started", "headless", app.config.Headless, "scene", app.config.ScenePath)

	host := vm.NewHost(app.log, app.setupAudio())
	app.engine = engine.NewEngine(host, app.log)

	if app.config.ScenePath != "" {
		if err := app.loadSceneSources(); err != nil {
			return fmt.Errorf("failed to load scene: %w", err)
		}
	}
	InstallDemoScene(app.engine)
	app.engine.Start()

	if app.config.Headless {
		return app.runHeadless()
	}
	return app.runWindowed()
}

// setupAudio prepares the MIDI player when a SoundFont is configured. Audio
// stays disabled in headless mode and when no SoundFont is given; the audio
// builtins become no-ops then.
func (app *Application) setupAudio() vm.AudioPlayer {
	if app.config.Headless || app.config.SoundFont == "" {
		return nil
	}
	player, err := audio.NewPlayer(app.config.SoundFont, app.config.ScenePath, nil)
	if err != nil {
		app.log.Warn("audio disabled", "error", err)
		return nil
	}
	app.player = player
	return player
}

// loadSceneSources reads the scene's script sources so halt diagnostics can
// reference original lines. Handler bodies come from the external compiler's
// artifacts; until a scene ships them, the embedded demo handlers run.
func (app *Application) loadSceneSources() error {
	loader := script.NewLoader(app.config.ScenePath)
	sources, err := loader.LoadAllSources()
	if err != nil {
		return err
	}
	app.log.Info("scene sources loaded", "count", len(sources))
	for _, s := range sources {
		app.log.Debug("script source", "name", s.FileName, "size", s.Size)
	}
	return nil
}
