package interpreter

import (
	"math"
	"testing"

	"github.com/nalgeon/be"

	"github.com/strager/hobbyc/internal/ast"
	"github.com/strager/hobbyc/internal/diagnostics"
	"github.com/strager/hobbyc/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	program, err := parser.Parse([]byte(src), "test.hobby")
	be.Err(t, err, nil)
	return program
}

func TestExecuteLiteral(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 42i32; };`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	be.Equal(t, result, int32(42))
}

func TestExecuteArithmeticLeftToRight(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 10i32 - 3i32 - 2i32; };`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	be.Equal(t, result, int32(5))
}

func TestExecuteArithmeticPrecedenceIsFlat(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 2i32 + 3i32 * 4i32; };`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	// Left-to-right, no precedence: (2 + 3) * 4 = 20, not 14.
	be.Equal(t, result, int32(20))
}

func TestExecuteCallWithInParameter(t *testing.T) {
	src := `
		def double = fun(in x: i32, out y: i32) { y = x * 2i32; };
		def main = fun(out exitCode: i32) { exitCode = double(in x: 21i32); };
	`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	be.Equal(t, result, int32(42))
}

func TestExecuteCallWithNoOutParameterYieldsZero(t *testing.T) {
	src := `
		def noop = fun(in x: i32) { x = x; };
		def main = fun(out exitCode: i32) { exitCode = noop(in x: 99i32); };
	`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	be.Equal(t, result, int32(0))
}

func TestParseAcceptsUncalledInOutFunction(t *testing.T) {
	src := `
		def increment = fun(inout x: i32) { x = x; };
		def main = fun(out exitCode: i32) { exitCode = 1i32; };
	`
	_, err := parser.Parse([]byte(src), "test.hobby")
	be.Err(t, err, nil)
}

func TestExecuteDivisionByZero(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 1i32 / 0i32; };`
	program := mustParse(t, src)
	_, err := Execute(program)
	be.Equal(t, err != nil, true)
	_, ok := err.(*diagnostics.RuntimeError)
	be.Equal(t, ok, true)
}

func TestExecuteModuloByZero(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 1i32 % 0i32; };`
	program := mustParse(t, src)
	_, err := Execute(program)
	be.Equal(t, err != nil, true)
}

func TestExecuteDivisionOverflow(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = (-2147483648i32) / (-1i32); };`
	program := mustParse(t, src)
	_, err := Execute(program)
	be.Equal(t, err != nil, true)
}

func TestExecuteModuloOverflowIsRepresentable(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = (-2147483648i32) % (-1i32); };`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	be.Equal(t, result, int32(0))
}

func TestExecuteAdditionWraps(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 2147483647i32 + 1i32; };`
	program := mustParse(t, src)
	result, err := Execute(program)
	be.Err(t, err, nil)
	be.Equal(t, result, int32(math.MinInt32))
}

func TestExecuteInOutFunctionRejected(t *testing.T) {
	src := `
		def swap = fun(inout x: i32) { x = x; };
		def main = fun(out exitCode: i32) { exitCode = swap(inout x: 1i32); };
	`
	program := mustParse(t, src)
	_, err := Execute(program)
	be.Equal(t, err != nil, true)
	_, ok := err.(*diagnostics.RuntimeError)
	be.Equal(t, ok, true)
}

func TestExecuteCallToUndefinedFunctionFails(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = missing(); };`
	program := mustParse(t, src)
	_, err := Execute(program)
	be.Equal(t, err != nil, true)
}

func TestExecuteIsDeterministic(t *testing.T) {
	src := `def main = fun(out exitCode: i32) { exitCode = 3i32 * 7i32; };`
	program := mustParse(t, src)
	r1, err1 := Execute(program)
	r2, err2 := Execute(program)
	be.Err(t, err1, nil)
	be.Err(t, err2, nil)
	be.Equal(t, r1, r2)
}
