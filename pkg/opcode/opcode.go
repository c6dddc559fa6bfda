// Package opcode defines the instruction set shared by the external script
// compiler and the cooperative runner. The compiler produces OpCode sequences
// per event handler; the runner drives them step by step, suspending at loop
// checkpoints.
package opcode

// Cmd represents an OpCode command type.
// Each Cmd corresponds to a specific operation that the runner can execute.
type Cmd string

// OpCode command types for all supported operations.
const (
	// Assign assigns a value to a variable.
	// Args: [Variable(name), value]
	Assign Cmd = "Assign"

	// Call invokes a host builtin with arguments.
	// Args: [functionName, arg1, arg2, ...]
	Call Cmd = "Call"

	// BinaryOp performs a binary operation (+, -, *, /, %, ==, !=, <, <=, >, >=, &&, ||).
	// Args: [operator, leftOperand, rightOperand]
	BinaryOp Cmd = "BinaryOp"

	// UnaryOp performs a unary operation (-, !).
	// Args: [operator, operand]
	UnaryOp Cmd = "UnaryOp"

	// If executes conditional branching.
	// Args: [condition, thenBlock []OpCode, elseBlock []OpCode]
	If Cmd = "If"

	// While executes a while loop. The runner suspends at the start of every
	// iteration and when the loop is exited; Line and EndLine delimit the loop
	// range in compiled code.
	// Args: [condition, bodyBlock []OpCode]
	While Cmd = "While"

	// For executes a for loop with init, condition, post, and body. Suspension
	// behavior matches While.
	// Args: [initBlock []OpCode, condition, postBlock []OpCode, bodyBlock []OpCode]
	For Cmd = "For"

	// Break breaks out of the current loop.
	// Args: []
	Break Cmd = "Break"

	// Continue continues to the next iteration of the current loop.
	// Args: []
	Continue Cmd = "Continue"
)

// OpCode represents a single compiled statement or expression.
// The Args can contain various types including:
//   - Primitive values (int64, float64, string)
//   - Variable references (Variable type)
//   - Nested OpCode structures for expressions
//   - Slices of OpCode for block statements
//
// Line is the statement's line number in compiled code. EndLine is set on loop
// opcodes (While, For) and is the compiled line of the loop's closing delimiter;
// together with the script identity they form the loop invocation key.
type OpCode struct {
	Cmd     Cmd
	Args    []any
	Line    int
	EndLine int
}

// Variable represents a variable reference in OpCode arguments.
// This type distinguishes variable references from literal string values.
// When the runner encounters a Variable in Args, it resolves it by name from
// the current scope.
type Variable string
