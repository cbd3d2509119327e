package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "hobby.toml"))
	be.Err(t, err, nil)
	be.Equal(t, m.Build.Output, "")
	be.Equal(t, m.Build.Execute, false)
	be.Equal(t, m.Build.Verbose, false)
}

func TestLoadParsesBuildTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hobby.toml")
	content := "[build]\noutput = \"out.wasm\"\nexecute = true\nverbose = true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	be.Err(t, err, nil)
	be.Equal(t, m.Build.Output, "out.wasm")
	be.Equal(t, m.Build.Execute, true)
	be.Equal(t, m.Build.Verbose, true)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hobby.toml")
	if err := os.WriteFile(path, []byte("this is not [ valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	be.Equal(t, err != nil, true)
}
