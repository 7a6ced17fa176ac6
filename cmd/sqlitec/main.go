// Command sqlitec is the driver for the core: it owns every concern the
// core itself stays out of (spec §1) — reading migration/query files off
// disk, loading the YAML configuration, invoking the compiler, and
// running the reference codegen backend against the resulting IR.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/basilisk-labs/sqlitec/codegen"
	"github.com/basilisk-labs/sqlitec/compiler"
	"github.com/basilisk-labs/sqlitec/config"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/ir"
)

var version = "dev"

type options struct {
	Config     string `short:"c" long:"config" description:"YAML configuration file" default:"sqlitec.yaml"`
	Migrations string `long:"migrations" description:"directory of Migrations/NUMBER.sql files" default:"Migrations"`
	Queries    string `long:"queries" description:"directory of Queries/*.sql files" default:"Queries"`
	Package    string `long:"package" description:"Go package name for generated code" default:"queries"`
	Verbose    bool   `short:"v" long:"verbose" description:"log at debug level"`
	Version    bool   `long:"version" description:"show this version"`
}

func parseOptions(args []string) *options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options]"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	return &opts
}

func main() {
	opts := parseOptions(os.Args[1:])

	log := logrus.New()
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatal(err)
	}

	migFiles, err := readSQLDir(opts.Migrations)
	if err != nil {
		log.Fatalf("reading migrations: %v", err)
	}
	queryFiles, err := readSQLDir(opts.Queries)
	if err != nil {
		log.Fatalf("reading queries: %v", err)
	}

	sess := compiler.NewSession()

	migResults, err := compiler.CompileMigrations(sess, migFiles)
	if err != nil {
		log.Fatalf("compiling migrations: %v", err)
	}
	if logDiagnostics(log, migResults) {
		log.Fatal("aborting: migrations contain errors")
	}

	queryResults, err := compiler.CompileQueries(sess, queryFiles, 0)
	if err != nil {
		log.Fatalf("compiling queries: %v", err)
	}
	if logDiagnostics(log, queryResults) {
		log.Fatal("aborting: queries contain errors")
	}

	var stmts []*ir.Statement
	for _, r := range queryResults {
		stmts = append(stmts, r.Statements...)
	}

	file, err := codegen.Generate(opts.Package, cfg, stmts)
	if err != nil {
		log.Fatalf("generating code: %v", err)
	}

	outDir := "."
	if cfg.Options.CreateOutputDirectory {
		outDir = opts.Package
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Fatalf("creating output directory: %v", err)
		}
	}
	outPath := filepath.Join(outDir, "queries_gen.go")

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("creating %s: %v", outPath, err)
	}
	defer out.Close()
	if err := file.Render(out); err != nil {
		log.Fatalf("rendering %s: %v", outPath, err)
	}

	log.Infof("wrote %d quer%s to %s", len(stmts), plural(len(stmts)), outPath)
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// readSQLDir reads every *.sql file directly under dir (non-recursive)
// into compiler.Files, sorted by name; compiler.CompileMigrations
// re-sorts migrations numerically and rejects non-numeric names itself.
func readSQLDir(dir string) ([]compiler.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]compiler.File, 0, len(names))
	for _, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		files = append(files, compiler.File{
			Name: filepath.Join(dir, name),
			Text: string(text),
		})
	}
	return files, nil
}

// logDiagnostics prints every result's diagnostics and reports whether any
// were error-level, per spec §7: the driver aborts codegen on any error.
func logDiagnostics(log *logrus.Logger, results []compiler.Result) bool {
	hadError := false
	for _, r := range results {
		for _, d := range r.Diagnostics {
			entry := log.WithField("file", r.File)
			if d.Level == diag.Error {
				hadError = true
				entry.Error(d.Message)
			} else {
				entry.Warn(d.Message)
			}
		}
	}
	return hadError
}
