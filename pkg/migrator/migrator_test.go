package migrator

import (
	"testing"
	"testing/fstest"

	"github.com/caelus-deploy/caelus/pkg/logger"
)

func TestOpen_InvalidMigrationSet(t *testing.T) {
	files := fstest.MapFS{
		"00001_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"00001_b.sql": {Data: []byte("-- +goose Up\nSELECT 2;\n")},
	}
	if _, err := Open("postgres://localhost:1/none", files, logger.Discard()); err == nil {
		t.Fatal("expected an error for duplicate migration versions")
	}
}

func TestOpen_NoMigrations(t *testing.T) {
	if _, err := Open("postgres://localhost:1/none", fstest.MapFS{}, logger.Discard()); err == nil {
		t.Fatal("expected an error for an empty migration set")
	}
}
