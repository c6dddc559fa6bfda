package app

import (
	"time"

	"github.com/hakutaku/hakoniwa/pkg/engine"
)

// headlessTickRate matches the windowed host's 60 ticks per second.
const headlessTickRate = 60

// runHeadless drives the engine on a wall-clock ticker without a window.
// The loop runs until the timeout elapses; a halted engine also ends the run
// since no further dispatch can happen.
func (app *Application) runHeadless() error {
	app.log.Info("headless mode", "timeout", app.config.Timeout)

	ticker := time.NewTicker(time.Second / headlessTickRate)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if app.config.Timeout > 0 {
		timer := time.NewTimer(app.config.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-deadline:
			app.log.Info("timeout reached, terminating", "state", app.engine.State().String())
			return nil
		case <-ticker.C:
			app.engine.Update()
			if app.engine.State() == engine.StateHalted {
				info := app.engine.RuntimeErrorInfo()
				app.log.Error("engine halted, terminating",
					"script", info.Script, "line", info.Line, "message", info.Message)
				return nil
			}
		}
	}
}
