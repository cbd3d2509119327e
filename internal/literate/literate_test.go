package literate

import (
	"bytes"
	"os"
	"testing"

	"github.com/nalgeon/be"

	"github.com/strager/hobbyc/internal/interpreter"
	"github.com/strager/hobbyc/internal/parser"
	"github.com/strager/hobbyc/internal/wasmgen"
)

func TestLoadScenariosFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/scenarios.md")
	if err != nil {
		t.Fatal(err)
	}

	scenarios, err := Load(data)
	be.Err(t, err, nil)
	be.Equal(t, len(scenarios), 3)

	be.Equal(t, scenarios[0].Name, "literal exit code")
	be.Equal(t, scenarios[0].Kind, Execute)
	be.Equal(t, scenarios[0].ExitCode, int32(42))

	be.Equal(t, scenarios[1].Name, "left-to-right arithmetic")
	be.Equal(t, scenarios[1].Kind, Execute)
	be.Equal(t, scenarios[1].ExitCode, int32(20))

	be.Equal(t, scenarios[2].Name, "module header")
	be.Equal(t, scenarios[2].Kind, EmitPrefix)
	be.Equal(t, scenarios[2].EmitPrefix, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
}

// TestScenariosFixtureEndToEnd drives every scenario in testdata/scenarios.md
// through the real parser plus either the interpreter or the emitter,
// keeping the fixture executable instead of merely documentary.
func TestScenariosFixtureEndToEnd(t *testing.T) {
	data, err := os.ReadFile("testdata/scenarios.md")
	if err != nil {
		t.Fatal(err)
	}
	scenarios, err := Load(data)
	be.Err(t, err, nil)

	for _, s := range scenarios {
		program, err := parser.Parse([]byte(s.Source), s.Name)
		be.Err(t, err, nil)

		switch s.Kind {
		case Execute:
			got, err := interpreter.Execute(program)
			be.Err(t, err, nil)
			be.Equal(t, got, s.ExitCode)

		case EmitPrefix:
			var buf bytes.Buffer
			err := wasmgen.Compile(program, &buf)
			be.Err(t, err, nil)
			be.True(t, len(buf.Bytes()) >= len(s.EmitPrefix))
			be.Equal(t, bytes.Equal(buf.Bytes()[:len(s.EmitPrefix)], s.EmitPrefix), true)
		}
	}
}

func TestLoadRejectsMissingAssertionFence(t *testing.T) {
	md := []byte("## Test: no assertion\n\n```hobby\ndef main = fun(out exitCode: i32) { exitCode = 0i32; };\n```\n")
	_, err := Load(md)
	be.Equal(t, err != nil, true)
}

func TestLoadRejectsMissingSourceFence(t *testing.T) {
	md := []byte("## Test: no source\n\n```execute\n0\n```\n")
	_, err := Load(md)
	be.Equal(t, err != nil, true)
}

func TestLoadRejectsDuplicateSourceFence(t *testing.T) {
	md := []byte(
		"## Test: dup\n\n```hobby\ndef main = fun(out exitCode: i32) { exitCode = 0i32; };\n```\n\n" +
			"```hobby\ndef main = fun(out exitCode: i32) { exitCode = 1i32; };\n```\n\n```execute\n0\n```\n")
	_, err := Load(md)
	be.Equal(t, err != nil, true)
}
