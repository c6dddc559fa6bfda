package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/hakutaku/hakoniwa/pkg/engine"
	"github.com/hakutaku/hakoniwa/pkg/vm"
)

func newDemoEngine() *engine.Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.NewEngine(vm.NewHost(log, nil), log)
	InstallDemoScene(e)
	e.Start()
	return e
}

func TestDemoSceneRunsWithoutHalting(t *testing.T) {
	e := newDemoEngine()

	for i := 0; i < 300; i++ {
		e.Update()
		if e.State() != engine.StateRunning {
			t.Fatalf("tick %d: state = %v, expected Running", i, e.State())
		}
	}
}

func TestDemoBallMovesAndStaysOnScreen(t *testing.T) {
	e := newDemoEngine()

	var ball *engine.Object
	for _, obj := range e.Objects() {
		if obj.Name == "ball" {
			ball = obj
		}
	}
	if ball == nil {
		t.Fatal("demo scene has no ball object")
	}

	startX, startY := ball.X, ball.Y
	for i := 0; i < 600; i++ {
		e.Update()
		if ball.X < -float64(ballSize) || ball.X > demoScreenW+ballSize ||
			ball.Y < -float64(ballSize) || ball.Y > demoScreenH+ballSize {
			t.Fatalf("tick %d: ball escaped the screen at (%v, %v)", i, ball.X, ball.Y)
		}
	}
	if ball.X == startX && ball.Y == startY {
		t.Error("ball did not move")
	}
}

func TestDemoSceneObjects(t *testing.T) {
	e := newDemoEngine()

	objs := e.Objects()
	if len(objs) != 2 {
		t.Fatalf("expected 2 demo objects, got %d", len(objs))
	}
	if objs[0].Kind != engine.KindSprite {
		t.Errorf("first object kind = %v, expected sprite", objs[0].Kind)
	}
	if objs[1].Kind != engine.KindText || objs[1].Text == "" {
		t.Errorf("second object should be a captioned text object")
	}
}
