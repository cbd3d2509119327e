// Package wasmgen translates a parsed program into a byte-exact
// WebAssembly 1.0 binary module.
package wasmgen

import (
	"io"

	"github.com/strager/hobbyc/internal/ast"
	"github.com/strager/hobbyc/internal/diagnostics"
)

const (
	opI32Const  = 0x41
	opI32Add    = 0x6A
	opI32Sub    = 0x6B
	opI32Mul    = 0x6C
	opI32DivS   = 0x6D
	opI32RemS   = 0x6F
	opCall      = 0x10
	opEnd       = 0x0B
	valueTypeI32 = 0x7F
	funcTypeTag = 0x60

	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10

	externKindFunc   = 0x00
	externKindMemory = 0x02

	procExitModule = "wasi_snapshot_preview1"
	procExitName   = "proc_exit"
)

// wasmFuncType is the WASM-level signature derived from a hobby FuncType:
// `in` parameters become WASM params, `out` parameters become WASM
// results.
type wasmFuncType struct {
	ins  []byte
	outs []byte
}

// Compile writes a complete WebAssembly 1.0 module for program to w.
//
// The whole module is assembled into an in-memory buffer first: every
// EmitError for an unsupported construct is detected and returned before a
// single byte reaches w, and the one real write to w happens at the very
// end. This is the nearest Go rendering of a sink that starts tolerating
// writes as no-ops after its first failure — Go's io.Writer has no such
// mode, so instead nothing is written to the real sink until there is
// nothing left that could fail.
func Compile(program *ast.Program, w io.Writer) error {
	main := program.MainFunction()
	if main == nil {
		return &diagnostics.EmitError{Message: "program has no entry point"}
	}

	functions := append([]ast.Function{}, program.Functions...)
	startFunc := ast.Function{Name: "_start", SourceFile: "generated", Type: ast.Type{Kind: ast.FuncTypeKind}}
	functions = append(functions, startFunc)

	procExitType := ast.Type{
		Kind: ast.FuncTypeKind,
		Parameters: []ast.FuncParameter{
			{Name: "exitCode", Direction: ast.In, Type: ast.I32},
		},
	}

	typeList := append(collectFuncTypes(program.Types), startFunc.Type, procExitType)

	typeIndex := func(t ast.Type) (int, error) {
		for i, candidate := range typeList {
			if candidate.Equal(t) {
				return i, nil
			}
		}
		return 0, &diagnostics.EmitError{Message: "internal error: function type not found in type section"}
	}

	wasmTypes := make([]wasmFuncType, len(typeList))
	for i, t := range typeList {
		wt, err := translateFuncType(t)
		if err != nil {
			return err
		}
		wasmTypes[i] = wt
	}

	// Index space: imports first (proc_exit is index 0), then every
	// function (user functions in declaration order, then _start last).
	funcIndex := map[string]uint32{}
	nextIndex := uint32(1)
	for _, fn := range functions {
		funcIndex[fn.Name] = nextIndex
		nextIndex++
	}
	// _start was appended last above and its name is unique ("_start" is
	// not a legal hobby identifier a user program could define), so this
	// assignment cannot collide with a user function.

	mainIdx, ok := funcIndex[main.Name]
	if !ok {
		return &diagnostics.EmitError{Message: "internal error: entry point missing from function index"}
	}
	startIdx := funcIndex["_start"]

	var buf []byte
	buf = append(buf, 0x00, 0x61, 0x73, 0x6D)
	buf = append(buf, 0x01, 0x00, 0x00, 0x00)

	buf, err := encodeTypeSection(buf, wasmTypes)
	if err != nil {
		return err
	}

	procExitTypeIdx, err := typeIndex(procExitType)
	if err != nil {
		return err
	}
	buf = encodeImportSection(buf, uint32(procExitTypeIdx))

	funcTypeIdxs := make([]uint32, len(functions))
	for i, fn := range functions {
		idx, err := typeIndex(fn.Type)
		if err != nil {
			return err
		}
		funcTypeIdxs[i] = uint32(idx)
	}
	buf = encodeFunctionSection(buf, funcTypeIdxs)

	buf = encodeMemorySection(buf)
	buf = encodeExportSection(buf, startIdx)

	buf, err = encodeCodeSection(buf, functions, len(functions)-1, mainIdx)
	if err != nil {
		return err
	}

	if _, err := w.Write(buf); err != nil {
		return &diagnostics.EmitError{Message: "writing module: " + err.Error()}
	}
	return nil
}

// collectFuncTypes returns, in order, every FuncTypeKind entry of types —
// the builtin i32 type (also interned into the program) is not itself a
// WASM type-section entry.
func collectFuncTypes(types []ast.Type) []ast.Type {
	var funcTypes []ast.Type
	for _, t := range types {
		if t.Kind == ast.FuncTypeKind {
			funcTypes = append(funcTypes, t)
		}
	}
	return funcTypes
}

// translateFuncType maps a hobby function type's parameters onto WASM
// value types: `in` parameters become the function's params, `out`
// parameters become its results. `inout` and more than one `out`
// parameter are unsupported.
func translateFuncType(t ast.Type) (wasmFuncType, error) {
	var wt wasmFuncType
	for _, p := range t.Parameters {
		switch p.Direction {
		case ast.InOut:
			return wasmFuncType{}, &diagnostics.EmitError{Message: "inout parameter direction is not implemented"}
		case ast.Out:
			vt, err := valueTypeOf(p.Type)
			if err != nil {
				return wasmFuncType{}, err
			}
			wt.outs = append(wt.outs, vt)
		default: // in
			vt, err := valueTypeOf(p.Type)
			if err != nil {
				return wasmFuncType{}, err
			}
			wt.ins = append(wt.ins, vt)
		}
	}
	if len(wt.outs) > 1 {
		return wasmFuncType{}, &diagnostics.EmitError{Message: "multiple out parameters are not implemented"}
	}
	return wt, nil
}

func valueTypeOf(t ast.Type) (byte, error) {
	if t.Kind != ast.BuiltinTypeKind || t.BuiltinName != "i32" {
		return 0, &diagnostics.EmitError{Message: "unsupported parameter type: only i32 is implemented"}
	}
	return valueTypeI32, nil
}

func appendULEB128Vector(buf []byte, count int) []byte {
	return appendULEB128(buf, uint32(count))
}

func encodeTypeSection(buf []byte, types []wasmFuncType) ([]byte, error) {
	var payload []byte
	payload = appendULEB128Vector(payload, len(types))
	for _, t := range types {
		payload = append(payload, funcTypeTag)
		payload = appendULEB128Vector(payload, len(t.ins))
		payload = append(payload, t.ins...)
		payload = appendULEB128Vector(payload, len(t.outs))
		payload = append(payload, t.outs...)
	}
	return appendSection(buf, secType, payload), nil
}

func appendName(buf []byte, name string) []byte {
	buf = appendULEB128Vector(buf, len(name))
	return append(buf, name...)
}

func encodeImportSection(buf []byte, procExitTypeIdx uint32) []byte {
	var payload []byte
	payload = appendULEB128Vector(payload, 1)
	payload = appendName(payload, procExitModule)
	payload = appendName(payload, procExitName)
	payload = append(payload, externKindFunc)
	payload = appendULEB128(payload, procExitTypeIdx)
	return appendSection(buf, secImport, payload)
}

func encodeFunctionSection(buf []byte, typeIdxs []uint32) []byte {
	var payload []byte
	payload = appendULEB128Vector(payload, len(typeIdxs))
	for _, idx := range typeIdxs {
		payload = appendULEB128(payload, idx)
	}
	return appendSection(buf, secFunction, payload)
}

func encodeMemorySection(buf []byte) []byte {
	var payload []byte
	payload = appendULEB128Vector(payload, 1)
	payload = append(payload, 0x01) // limits flag: min and max present
	payload = appendULEB128(payload, 0)
	payload = appendULEB128(payload, 1024)
	return appendSection(buf, secMemory, payload)
}

func encodeExportSection(buf []byte, startIdx uint32) []byte {
	var payload []byte
	payload = appendULEB128Vector(payload, 2)
	payload = appendName(payload, "_start")
	payload = append(payload, externKindFunc)
	payload = appendULEB128(payload, startIdx)
	payload = appendName(payload, "memory")
	payload = append(payload, externKindMemory)
	payload = appendULEB128(payload, 0)
	return appendSection(buf, secExport, payload)
}

// encodeCodeSection encodes one body per function in functions, in order.
// startIndex identifies the synthesized `_start` function within functions
// (always its last element, per Compile's construction) so its body is
// generated rather than compiled from an (absent) AST.
func encodeCodeSection(buf []byte, functions []ast.Function, startIndex int, mainIdx uint32) ([]byte, error) {
	var payload []byte
	payload = appendULEB128Vector(payload, len(functions))
	for i := range functions {
		fn := &functions[i]
		var body []byte
		if i == startIndex {
			body = appendStartBody(body, mainIdx)
		} else {
			var err error
			body, err = compileExpression(body, fn.Body)
			if err != nil {
				return nil, err
			}
		}
		body = append(body, opEnd)

		var entry []byte
		entry = appendULEB128Vector(entry, 0) // locals: always empty
		entry = append(entry, body...)

		payload = appendULEB128Vector(payload, len(entry))
		payload = append(payload, entry...)
	}
	return appendSection(buf, secCode, payload), nil
}

// appendStartBody emits the synthesized `_start` body: call the user
// entry point, then call proc_exit (import index 0) with its result.
func appendStartBody(body []byte, mainIdx uint32) []byte {
	body = append(body, opCall)
	body = appendULEB128(body, mainIdx)
	body = append(body, opCall)
	body = appendULEB128(body, 0)
	return body
}

// compileExpression performs a postorder walk, emitting stack-machine
// bytecode. VarRef and Call are not implemented in emission: every
// emittable function body must be pure arithmetic over literals.
func compileExpression(buf []byte, expr *ast.Expression) ([]byte, error) {
	switch expr.Kind {
	case ast.LiteralExpr:
		buf = append(buf, opI32Const)
		buf = appendSLEB128(buf, int64(expr.IntValue))
		return buf, nil

	case ast.InitAssignmentExpr:
		return compileExpression(buf, expr.InitValue)

	case ast.BinaryOpExpr:
		var err error
		buf, err = compileExpression(buf, expr.LHS)
		if err != nil {
			return nil, err
		}
		buf, err = compileExpression(buf, expr.RHS)
		if err != nil {
			return nil, err
		}
		op, err := binaryOpcode(expr.Op)
		if err != nil {
			return nil, err
		}
		return append(buf, op), nil

	case ast.VarRefExpr:
		return nil, &diagnostics.EmitError{Message: "variable references are not implemented in emission"}

	case ast.CallExpr:
		return nil, &diagnostics.EmitError{Message: "calls are not implemented in emission"}

	default:
		return nil, &diagnostics.EmitError{Message: "unsupported expression variant"}
	}
}

func binaryOpcode(op ast.BinaryOperator) (byte, error) {
	switch op {
	case ast.Add:
		return opI32Add, nil
	case ast.Subtract:
		return opI32Sub, nil
	case ast.Multiply:
		return opI32Mul, nil
	case ast.Divide:
		return opI32DivS, nil
	case ast.Modulo:
		return opI32RemS, nil
	default:
		return 0, &diagnostics.EmitError{Message: "unsupported binary operator"}
	}
}

func appendSection(buf []byte, id byte, payload []byte) []byte {
	buf = append(buf, id)
	buf = appendULEB128Vector(buf, len(payload))
	return append(buf, payload...)
}
