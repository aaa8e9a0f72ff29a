// layerc compiles TL schema files and reports what they contain.
//
// Usage:
//
//	layerc [--strict] [--verbose] schema.tl [more.tl ...]
//
// Every file is parsed, malformed statements are reported, and the combined
// definitions are compiled into records, unions and calls. The exit code is
// nonzero when compilation fails, or when --strict is set and any statement
// failed to parse.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ankit-chaubey/layer/compiler"
	"github.com/ankit-chaubey/layer/tl"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("layerc", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	strict := fs.Bool("strict", false, "treat parse diagnostics as errors")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: layerc [flags] <schema.tl> [more.tl ...]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	log := newLogger(*verbose)
	defer log.Sync()

	var (
		defs        []tl.Definition
		layer       int
		diagnostics int
	)
	for _, path := range files {
		text, err := os.ReadFile(path)
		if err != nil {
			log.Error("read schema", zap.String("file", path), zap.Error(err))
			return 1
		}
		schema := tl.Parse(string(text))
		log.Debug("parsed schema",
			zap.String("file", path),
			zap.Int("definitions", len(schema.Definitions)),
			zap.Int("diagnostics", len(schema.Diagnostics)),
			zap.Int("layer", schema.Layer))

		for _, d := range schema.Diagnostics {
			log.Warn("malformed statement",
				zap.String("file", path),
				zap.String("statement", d.Statement),
				zap.Error(d.Err))
		}
		diagnostics += len(schema.Diagnostics)
		defs = append(defs, schema.Definitions...)
		if schema.Layer > layer {
			layer = schema.Layer
		}
	}

	if *strict && diagnostics > 0 {
		log.Error("parse failed", zap.Int("diagnostics", diagnostics))
		return 1
	}

	arts, err := compiler.Compile(defs)
	if err != nil {
		log.Error("compile failed", zap.Error(err))
		return 1
	}
	arts.Layer = layer

	printSummary(os.Stdout, arts, defs)
	return 0
}

// newLogger builds a console logger on stderr, keeping stdout for the
// summary output.
func newLogger(verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func printSummary(w *os.File, arts *compiler.Artifacts, defs []tl.Definition) {
	if arts.Layer != 0 {
		fmt.Fprintf(w, "layer %d\n", arts.Layer)
	}
	fmt.Fprintf(w, "%d records, %d unions, %d calls\n",
		len(arts.Records), len(arts.Unions), len(arts.Calls))

	byNamespace := compiler.Namespaces(defs)
	keys := make([]string, 0, len(byNamespace))
	for k := range byNamespace {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := k
		if name == "" {
			name = "(root)"
		}
		fmt.Fprintf(w, "  %-24s %d\n", name, len(byNamespace[k]))
	}
}
