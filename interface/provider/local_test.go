package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mholt/archiver"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
)

func TestLocalImageProvider(t *testing.T) {
	// LC81391162018338LGN00 was acquired 2018-12-04
	root := t.TempDir()
	archiveDir := filepath.Join(root, "2018", "12", "04")
	if err := os.MkdirAll(archiveDir, 0766); err != nil {
		t.Fatal(err.Error())
	}

	srcDir := t.TempDir()
	band := filepath.Join(srcDir, "LC81391162018338LGN00_B4.TIF")
	if err := os.WriteFile(band, []byte("raster"), 0644); err != nil {
		t.Fatal(err.Error())
	}
	if err := archiver.Archive([]string{band}, filepath.Join(archiveDir, "LC81391162018338LGN00.tar.gz")); err != nil {
		t.Fatal(err.Error())
	}

	ip := NewLocalImageProvider(root)
	localDir := t.TempDir()
	if err := ip.Download(context.Background(), &entities.Scene{EntityID: "LC81391162018338LGN00"}, localDir); err != nil {
		t.Fatal(err.Error())
	}
	if _, err := os.Stat(filepath.Join(localDir, "LC81391162018338LGN00_B4.TIF")); err != nil {
		t.Error("expected the band file to be extracted")
	}
}

func TestLocalImageProviderNotFound(t *testing.T) {
	ip := NewLocalImageProvider(t.TempDir())
	err := ip.Download(context.Background(), &entities.Scene{EntityID: "LC81391162018338LGN00"}, t.TempDir())
	if err == nil {
		t.Fatal("expected an error")
	}
	var notFound ErrProductNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
