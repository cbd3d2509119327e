// Command hobbyc compiles or interprets a single hobby-language source
// file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/strager/hobbyc/internal/diagnostics"
	"github.com/strager/hobbyc/internal/interpreter"
	"github.com/strager/hobbyc/internal/manifest"
	"github.com/strager/hobbyc/internal/parser"
	"github.com/strager/hobbyc/internal/wasmgen"
)

const version = "0.1.0"

func showUsage() {
	fmt.Fprintf(os.Stderr, `hobbyc - compiler for the hobby language

Usage:
    hobbyc [flags] <file>

Flags:
    -v, --version      print version and exit
    -x, --execute      interpret instead of emitting a binary
    -o, --output FILE  output path (default "a.wasm")
        --verbose      log compilation phases
`)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("hobbyc", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = showUsage

	printVersion := fs.Bool("v", false, "print version and exit")
	fs.BoolVar(printVersion, "version", false, "print version and exit")
	execute := fs.Bool("x", false, "interpret instead of emitting a binary")
	fs.BoolVar(execute, "execute", false, "interpret instead of emitting a binary")
	output := fs.String("o", "", "output path")
	fs.StringVar(output, "output", "", "output path")
	verbose := fs.Bool("verbose", false, "log compilation phases")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *printVersion {
		fmt.Println("hobbyc version " + version)
		return 0
	}

	if fs.NArg() != 1 {
		diagnostics.PrintError(fmt.Errorf("expected exactly one input file, got %d", fs.NArg()))
		fs.Usage()
		return 1
	}
	inputPath := fs.Arg(0)

	mf, err := loadManifestFor(inputPath)
	if err != nil {
		diagnostics.PrintError(fmt.Errorf("loading manifest: %w", err))
		return 1
	}

	// CLI flags override manifest defaults: a manifest value applies only
	// to a flag that was not passed on the command line.
	passed := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { passed[f.Name] = true })
	if !passed["x"] && !passed["execute"] && mf.Build.Execute {
		*execute = true
	}
	if *output == "" {
		*output = mf.Build.Output
	}
	if *output == "" {
		*output = "a.wasm"
	}
	if !passed["verbose"] && mf.Build.Verbose {
		*verbose = true
	}

	log := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			log = l
		}
		defer log.Sync()
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		diagnostics.PrintError(fmt.Errorf("reading %s: %w", inputPath, err))
		return 1
	}

	log.Info("parsing", zap.String("file", inputPath))
	program, err := parser.Parse(source, inputPath)
	if err != nil {
		diagnostics.PrintError(err)
		return 1
	}

	if *execute {
		log.Info("interpreting")
		exitCode, err := interpreter.Execute(program)
		if err != nil {
			diagnostics.PrintError(err)
			return 1
		}
		return int(exitCode)
	}

	log.Info("emitting", zap.String("output", *output))
	out, err := os.Create(*output)
	if err != nil {
		diagnostics.PrintError(fmt.Errorf("creating %s: %w", *output, err))
		return 1
	}
	compileErr := wasmgen.Compile(program, out)
	closeErr := out.Close()
	if compileErr != nil {
		diagnostics.PrintError(compileErr)
		os.Remove(*output)
		return 1
	}
	if closeErr != nil {
		diagnostics.PrintError(fmt.Errorf("writing %s: %w", *output, closeErr))
		return 1
	}

	return 0
}

// loadManifestFor discovers hobby.toml next to the input file, falling
// back to the current directory. Either location missing the file yields
// an all-default manifest.
func loadManifestFor(inputPath string) (*manifest.Manifest, error) {
	candidate := filepath.Join(filepath.Dir(inputPath), "hobby.toml")
	if _, err := os.Stat(candidate); err == nil {
		return manifest.Load(candidate)
	}
	return manifest.Load("hobby.toml")
}
