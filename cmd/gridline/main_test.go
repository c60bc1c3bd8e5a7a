package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestOpenDocumentEmptyPathReturnsFreshDocument(t *testing.T) {
	doc, err := openDocument("", discardLogger())
	if err != nil {
		t.Fatalf("openDocument returned error: %v", err)
	}
	if doc.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", doc.FilePath())
	}
}

func TestOpenDocumentMissingFileStartsEmptyWithPathSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.grd")
	doc, err := openDocument(path, discardLogger())
	if err != nil {
		t.Fatalf("openDocument returned error: %v", err)
	}
	if doc.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", doc.FilePath(), path)
	}
}

func TestOpenDocumentLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.grd")
	if err := os.WriteFile(path, []byte("A1: 42\n"), 0o644); err != nil {
		t.Fatalf("WriteFile setup failed: %v", err)
	}
	doc, err := openDocument(path, discardLogger())
	if err != nil {
		t.Fatalf("openDocument returned error: %v", err)
	}
	if doc.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", doc.FilePath(), path)
	}
}
