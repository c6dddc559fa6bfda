package engine

import (
	"fmt"

	"github.com/hakutaku/hakoniwa/pkg/script"
	"github.com/hakutaku/hakoniwa/pkg/vm"
)

// ObjectKind is the closed set of scene object kinds the scheduler knows.
type ObjectKind int

const (
	KindPlain ObjectKind = iota
	KindSprite
	KindText
)

func (k ObjectKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindSprite:
		return "sprite"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Object is a scene object. Script is optional; objects without one never
// receive events. Text carries the display string for KindText objects and is
// ignored for other kinds.
type Object struct {
	Name   string
	Kind   ObjectKind
	X, Y   float64
	Script *script.Script
	Text   string

	// scope is the script instance state, created when the object is
	// registered. It persists across handler invocations.
	scope *vm.Scope
}

// ObjectName implements vm.ObjectHandle.
func (o *Object) ObjectName() string { return o.Name }

// MoveTo implements vm.ObjectHandle.
func (o *Object) MoveTo(x, y float64) {
	o.X, o.Y = x, y
}

// Scope returns the object's script instance scope, or nil before the object
// is registered.
func (o *Object) Scope() *vm.Scope { return o.scope }
