package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/basilisk-labs/sqlitec/compiler"
	"github.com/basilisk-labs/sqlitec/diag"
)

func TestReadSQLDirSortsAndSkipsNonSQL(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.sql", "1.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- "+name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	files, err := readSQLDir(dir)
	if err != nil {
		t.Fatalf("readSQLDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 sql files, got %d", len(files))
	}
	if filepath.Base(files[0].Name) != "1.sql" || filepath.Base(files[1].Name) != "2.sql" {
		t.Fatalf("expected sorted order, got %v", files)
	}
}

func TestLogDiagnosticsReportsErrors(t *testing.T) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	results := []compiler.Result{
		{File: "a.sql", Diagnostics: []diag.Diagnostic{{Message: "warn", Level: diag.Warning}}},
	}
	if logDiagnostics(log, results) {
		t.Fatalf("expected no error from a warning-only result")
	}

	results = append(results, compiler.Result{
		File:        "b.sql",
		Diagnostics: []diag.Diagnostic{{Message: "boom", Level: diag.Error}},
	})
	if !logDiagnostics(log, results) {
		t.Fatalf("expected an error once an error-level diagnostic is present")
	}
}

func TestPlural(t *testing.T) {
	if plural(1) != "y" {
		t.Fatalf("expected singular suffix for 1")
	}
	if plural(0) != "ies" || plural(2) != "ies" {
		t.Fatalf("expected plural suffix for 0 and 2")
	}
}
