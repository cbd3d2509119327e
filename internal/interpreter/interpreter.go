// Package interpreter tree-walks a parsed program to evaluate its
// entry-point function without compiling to WebAssembly.
package interpreter

import (
	"fmt"
	"math"

	"github.com/strager/hobbyc/internal/ast"
	"github.com/strager/hobbyc/internal/diagnostics"
)

// frame holds the named locals of one active function call: its
// parameters (in bound from the caller, out zero-initialized) plus every
// variable written by an InitAssignment in its body.
type frame struct {
	locals map[string]int32
}

// Execute evaluates program's entry point with a synthetic out slot for
// exitCode and returns its final value.
func Execute(program *ast.Program) (int32, error) {
	main := program.MainFunction()
	if main == nil {
		return 0, &diagnostics.RuntimeError{Message: "program has no entry point"}
	}
	result, err := callFunction(program, main, nil)
	if err != nil {
		return 0, err
	}
	return result, nil
}

// callFunction populates a fresh frame for fn from args, evaluates its
// body, and returns the value of its sole out parameter (0 if it has
// none). A callee with an inout parameter, or with more than one out
// parameter, is rejected — neither is implemented.
func callFunction(program *ast.Program, fn *ast.Function, args map[string]int32) (int32, error) {
	f := &frame{locals: map[string]int32{}}

	outCount := 0
	outName := ""
	for _, p := range fn.Type.Parameters {
		switch p.Direction {
		case ast.In:
			f.locals[p.Name] = args[p.Name]
		case ast.Out:
			f.locals[p.Name] = 0
			outCount++
			outName = p.Name
		case ast.InOut:
			return 0, &diagnostics.RuntimeError{Message: fmt.Sprintf("function %q: inout parameters are not implemented", fn.Name)}
		}
	}
	if outCount > 1 {
		return 0, &diagnostics.RuntimeError{Message: fmt.Sprintf("function %q: more than one out parameter is not implemented", fn.Name)}
	}

	if _, err := evalExpr(program, f, fn.Body); err != nil {
		return 0, err
	}

	if outCount == 0 {
		return 0, nil
	}
	return f.locals[outName], nil
}

func evalExpr(program *ast.Program, f *frame, expr *ast.Expression) (int32, error) {
	switch expr.Kind {
	case ast.LiteralExpr:
		return expr.IntValue, nil

	case ast.VarRefExpr:
		v, ok := f.locals[expr.VarName]
		if !ok {
			return 0, &diagnostics.RuntimeError{Message: fmt.Sprintf("undeclared variable %q", expr.VarName)}
		}
		return v, nil

	case ast.InitAssignmentExpr:
		v, err := evalExpr(program, f, expr.InitValue)
		if err != nil {
			return 0, err
		}
		f.locals[expr.InitVar] = v
		return 0, nil // "no value"

	case ast.BinaryOpExpr:
		return evalBinary(program, f, expr)

	case ast.CallExpr:
		return evalCall(program, f, expr)

	default:
		return 0, &diagnostics.RuntimeError{Message: "internal error: unhandled expression kind"}
	}
}

// evalBinary performs two's-complement i32 arithmetic: add/sub/mul wrap
// silently via uint32 casting, matching WebAssembly's i32.add/sub/mul and
// Go's own wraparound rules; divide and modulo truncate toward zero, and
// fail on division by zero or on the single unrepresentable quotient
// INT_MIN / -1.
func evalBinary(program *ast.Program, f *frame, expr *ast.Expression) (int32, error) {
	lhs, err := evalExpr(program, f, expr.LHS)
	if err != nil {
		return 0, err
	}
	rhs, err := evalExpr(program, f, expr.RHS)
	if err != nil {
		return 0, err
	}

	switch expr.Op {
	case ast.Add:
		return int32(uint32(lhs) + uint32(rhs)), nil
	case ast.Subtract:
		return int32(uint32(lhs) - uint32(rhs)), nil
	case ast.Multiply:
		return int32(uint32(lhs) * uint32(rhs)), nil
	case ast.Divide:
		if rhs == 0 {
			return 0, &diagnostics.RuntimeError{Message: "division by zero"}
		}
		if lhs == math.MinInt32 && rhs == -1 {
			return 0, &diagnostics.RuntimeError{Message: "integer overflow in division"}
		}
		return lhs / rhs, nil
	case ast.Modulo:
		if rhs == 0 {
			return 0, &diagnostics.RuntimeError{Message: "division by zero"}
		}
		if lhs == math.MinInt32 && rhs == -1 {
			return 0, nil
		}
		return lhs % rhs, nil
	default:
		return 0, &diagnostics.RuntimeError{Message: "internal error: unhandled binary operator"}
	}
}

// evalCall evaluates each `in` argument, executes the callee with those
// bindings, and yields its sole out value (or 0, "no value", if it has
// none).
func evalCall(program *ast.Program, f *frame, expr *ast.Expression) (int32, error) {
	callee := program.FunctionByName(expr.FunctionName)
	if callee == nil {
		return 0, &diagnostics.RuntimeError{Message: fmt.Sprintf("call to undefined function %q", expr.FunctionName)}
	}

	args := map[string]int32{}
	for _, a := range expr.Arguments {
		if a.Direction != ast.In {
			continue
		}
		v, err := evalExpr(program, f, a.Expr)
		if err != nil {
			return 0, err
		}
		args[a.Name] = v
	}

	return callFunction(program, callee, args)
}
