// Package vm implements the cooperative runner: a step-driven interpreter for
// compiled event handlers that suspends at loop checkpoints so the scheduler
// can interleave many handlers on a single goroutine.
package vm

// Scope represents a variable scope with parent lookup. Each object gets one
// scope holding its script instance state; every handler invocation runs in a
// child scope so event arguments never leak into the object scope.
//
// All access happens on the scheduler goroutine, so Scope is not locked.
type Scope struct {
	variables map[string]any
	parent    *Scope
}

// NewScope creates a new scope with an optional parent scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		variables: make(map[string]any),
		parent:    parent,
	}
}

// Get retrieves a variable value by name, searching the current scope first
// and then parent scopes.
func (s *Scope) Get(name string) (any, bool) {
	if value, ok := s.variables[name]; ok {
		return value, true
	}
	if s.parent != nil {
		return s.parent.Get(name)
	}
	return nil, false
}

// Set assigns a variable. If the name exists in this scope or a parent, that
// scope is updated; otherwise the variable is created in the current scope.
func (s *Scope) Set(name string, value any) {
	for scope := s; scope != nil; scope = scope.parent {
		if _, ok := scope.variables[name]; ok {
			scope.variables[name] = value
			return
		}
	}
	s.variables[name] = value
}

// SetLocal sets a variable only in the current scope. Used to bind event
// arguments without touching the object scope.
func (s *Scope) SetLocal(name string, value any) {
	s.variables[name] = value
}

// Has reports whether the variable exists in this scope or any parent.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Size returns the number of variables in the current scope only.
func (s *Scope) Size() int {
	return len(s.variables)
}
