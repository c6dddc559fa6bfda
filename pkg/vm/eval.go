package vm

import (
	"fmt"

	"github.com/hakutaku/hakoniwa/pkg/opcode"
)

// evalValue evaluates a value that may be a Variable, a nested expression
// OpCode, or a literal. An unresolvable variable is a runtime error; scripts
// must assign before they read.
func (r *Runner) evalValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case opcode.Variable:
		resolved, ok := r.scope.Get(string(v))
		if !ok {
			return nil, r.errorf("undefined variable %q", string(v))
		}
		return resolved, nil

	case opcode.OpCode:
		return r.evalExpr(v)

	default:
		return v, nil
	}
}

// evalExpr evaluates an expression opcode: BinaryOp, UnaryOp, or a Call used
// for its result value.
func (r *Runner) evalExpr(op opcode.OpCode) (any, error) {
	if op.Line > 0 {
		r.line = op.Line
	}

	switch op.Cmd {
	case opcode.BinaryOp:
		return r.evalBinary(op)
	case opcode.UnaryOp:
		return r.evalUnary(op)
	case opcode.Call:
		return r.execCall(op)
	default:
		return nil, r.errorf("opcode %q is not an expression", op.Cmd)
	}
}

func (r *Runner) evalBinary(op opcode.OpCode) (any, error) {
	if len(op.Args) < 3 {
		return nil, r.errorf("malformed BinaryOp opcode: %d args", len(op.Args))
	}
	operator, ok := op.Args[0].(string)
	if !ok {
		return nil, r.errorf("BinaryOp operator must be string, got %T", op.Args[0])
	}

	left, err := r.evalValue(op.Args[1])
	if err != nil {
		return nil, err
	}

	// Short-circuit logical operators before evaluating the right side.
	switch operator {
	case "&&":
		if !toBool(left) {
			return int64(0), nil
		}
		right, err := r.evalValue(op.Args[2])
		if err != nil {
			return nil, err
		}
		return boolToInt(toBool(right)), nil
	case "||":
		if toBool(left) {
			return int64(1), nil
		}
		right, err := r.evalValue(op.Args[2])
		if err != nil {
			return nil, err
		}
		return boolToInt(toBool(right)), nil
	}

	right, err := r.evalValue(op.Args[2])
	if err != nil {
		return nil, err
	}

	switch operator {
	case "+":
		if ls, ok := left.(string); ok {
			return ls + toString(right), nil
		}
		if rs, ok := right.(string); ok {
			return toString(left) + rs, nil
		}
		return r.arith(operator, left, right)
	case "-", "*", "/", "%":
		return r.arith(operator, left, right)
	case "==", "!=", "<", "<=", ">", ">=":
		return r.compare(operator, left, right)
	default:
		return nil, r.errorf("unknown binary operator %q", operator)
	}
}

// arith performs numeric arithmetic with int64/float64 promotion: the result
// is float64 when either operand is.
func (r *Runner) arith(operator string, left, right any) (any, error) {
	if !isNumeric(left) || !isNumeric(right) {
		return nil, r.errorf("operator %q requires numeric operands, got %T and %T", operator, left, right)
	}

	if isFloat(left) || isFloat(right) {
		lf, _ := toFloat64(left)
		rf, _ := toFloat64(right)
		switch operator {
		case "+":
			return lf + rf, nil
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, r.errorf("division by zero")
			}
			return lf / rf, nil
		case "%":
			return nil, r.errorf("operator %% requires integer operands")
		}
	}

	li, _ := toInt64(left)
	ri, _ := toInt64(right)
	switch operator {
	case "+":
		return li + ri, nil
	case "-":
		return li - ri, nil
	case "*":
		return li * ri, nil
	case "/":
		if ri == 0 {
			return nil, r.errorf("division by zero")
		}
		return li / ri, nil
	case "%":
		if ri == 0 {
			return nil, r.errorf("division by zero")
		}
		return li % ri, nil
	}
	return nil, r.errorf("unknown arithmetic operator %q", operator)
}

// compare evaluates a comparison, returning 1 or 0. Two strings compare
// lexically; numbers compare after promotion; == and != fall back to Go
// equality for anything else.
func (r *Runner) compare(operator string, left, right any) (any, error) {
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			return boolToInt(compareOrdered(operator, ls, rs)), nil
		}
	}

	if isNumeric(left) && isNumeric(right) {
		lf, _ := toFloat64(left)
		rf, _ := toFloat64(right)
		return boolToInt(compareOrdered(operator, lf, rf)), nil
	}

	switch operator {
	case "==":
		return boolToInt(left == right), nil
	case "!=":
		return boolToInt(left != right), nil
	}
	return nil, r.errorf("operator %q cannot compare %T and %T", operator, left, right)
}

func compareOrdered[T string | float64](operator string, a, b T) bool {
	switch operator {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func (r *Runner) evalUnary(op opcode.OpCode) (any, error) {
	if len(op.Args) < 2 {
		return nil, r.errorf("malformed UnaryOp opcode: %d args", len(op.Args))
	}
	operator, ok := op.Args[0].(string)
	if !ok {
		return nil, r.errorf("UnaryOp operator must be string, got %T", op.Args[0])
	}

	operand, err := r.evalValue(op.Args[1])
	if err != nil {
		return nil, err
	}

	switch operator {
	case "-":
		switch v := operand.(type) {
		case int64:
			return -v, nil
		case int:
			return int64(-v), nil
		case float64:
			return -v, nil
		default:
			return nil, r.errorf("operator - requires a numeric operand, got %T", operand)
		}
	case "!":
		return boolToInt(!toBool(operand)), nil
	default:
		return nil, r.errorf("unknown unary operator %q", operator)
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// toInt64 converts a value to int64.
func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}

// toFloat64 converts a value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// toString converts a value to its script string form.
func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toBool converts a value to bool: non-zero numbers and non-empty strings
// are true.
func toBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return v != nil
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	default:
		return false
	}
}

func isFloat(v any) bool {
	_, ok := v.(float64)
	return ok
}
