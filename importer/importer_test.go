package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/geomatics-lab/landsat-ingest/interface/gis"
)

// fakeImporter implements gis.RasterImporter
type fakeImporter struct {
	imported []string
	failing  map[string]bool
}

func (f *fakeImporter) Import(ctx context.Context, file string, layer gis.Layer) error {
	if f.failing[layer.Name] {
		return fmt.Errorf("gdal failure")
	}
	f.imported = append(f.imported, layer.Name)
	return nil
}

// fakeRegistry implements gis.LayerRegistry
type fakeRegistry struct {
	layers map[string]gis.Layer
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{layers: map[string]gis.Layer{}}
}

func (f *fakeRegistry) RegisterLayer(ctx context.Context, layer gis.Layer) error {
	if _, ok := f.layers[layer.Name]; ok {
		return gis.ErrAlreadyExists{Type: "layer", ID: layer.Name}
	}
	f.layers[layer.Name] = layer
	return nil
}

func (f *fakeRegistry) Layers(ctx context.Context, pattern string) ([]gis.Layer, error) {
	layers := []gis.Layer{}
	for _, layer := range f.layers {
		layers = append(layers, layer)
	}
	return layers, nil
}

func (f *fakeRegistry) Close() error { return nil }

func testSceneFiles() []SceneFiles {
	return []SceneFiles{
		{
			Dir:   "/data/LC08_L1TP_229083_20190113_20190131_01_T1",
			Scene: "LC08_L1TP_229083_20190113_20190131_01_T1",
			Files: []string{
				"LC08_L1TP_229083_20190113_20190131_01_T1_B4.TIF",
				"LC08_L1TP_229083_20190113_20190131_01_T1_B5.TIF",
				"LC08_L1TP_229083_20190113_20190131_01_T1_MTL.txt",
			},
		},
	}
}

func TestPlan(t *testing.T) {
	entries, collisions := Plan(testSceneFiles())
	if len(collisions) != 0 {
		t.Fatalf("unexpected collisions: %v", collisions)
	}
	if len(entries) != 3 {
		t.Fatalf("expecting 3, found %d entries", len(entries))
	}
	if entries[0].Layer.Name != "LC08_L1TP_229083_20190113_20190131_01_T1_B4" || entries[0].Layer.Band != 4 {
		t.Errorf("got %v", entries[0].Layer)
	}
	// not a band file, the stem is kept
	if entries[2].Layer.Name != "LC08_L1TP_229083_20190113_20190131_01_T1_MTL" || entries[2].Layer.Band != 0 {
		t.Errorf("got %v", entries[2].Layer)
	}
}

func TestPlanCollision(t *testing.T) {
	scenes := testSceneFiles()
	// same band twice, the layer name collides
	scenes[0].Files = []string{
		"LC08_L1TP_229083_20190113_20190131_01_T1_B4.TIF",
		"LC08_L1TP_229083_20190113_20190131_01_T1_B4.tif",
	}

	entries, collisions := Plan(scenes)
	if len(entries) != 1 {
		t.Fatalf("expecting 1, found %d entries: the first file keeps the layer", len(entries))
	}
	if !strings.HasSuffix(entries[0].File, "_B4.TIF") {
		t.Errorf("got %s", entries[0].File)
	}
	if len(collisions) != 1 {
		t.Fatalf("expecting 1, found %d collisions", len(collisions))
	}
	if collisions[0].Layer != "LC08_L1TP_229083_20190113_20190131_01_T1_B4" {
		t.Errorf("got %s", collisions[0].Layer)
	}
}

func TestRun(t *testing.T) {
	entries, _ := Plan(testSceneFiles())
	fake := &fakeImporter{}
	registry := newFakeRegistry()
	imp := Importer{Importer: fake, Registry: registry}

	if err := imp.Run(context.Background(), entries, 0); err != nil {
		t.Fatal(err.Error())
	}
	if len(fake.imported) != 3 {
		t.Errorf("expecting 3, found %d imports", len(fake.imported))
	}
	if len(registry.layers) != 3 {
		t.Errorf("expecting 3, found %d registered layers", len(registry.layers))
	}
}

func TestRunContinuesOnFailure(t *testing.T) {
	entries, _ := Plan(testSceneFiles())
	fake := &fakeImporter{failing: map[string]bool{"LC08_L1TP_229083_20190113_20190131_01_T1_B4": true}}
	imp := Importer{Importer: fake}

	err := imp.Run(context.Background(), entries, 0)
	if err == nil {
		t.Fatal("expected a summary error")
	}
	if err.Error() != "1/3 layers failed to import" {
		t.Errorf("got %q", err.Error())
	}
	if len(fake.imported) != 2 {
		t.Errorf("expecting 2, found %d imports: a failure must not stop the batch", len(fake.imported))
	}
}

func TestFilterRegistered(t *testing.T) {
	entries, _ := Plan(testSceneFiles())
	registry := newFakeRegistry()
	registry.layers["LC08_L1TP_229083_20190113_20190131_01_T1_B4"] = gis.Layer{Name: "LC08_L1TP_229083_20190113_20190131_01_T1_B4"}
	imp := Importer{Importer: &fakeImporter{}, Registry: registry}

	kept, collisions, err := imp.FilterRegistered(context.Background(), entries)
	if err != nil {
		t.Fatal(err.Error())
	}
	if len(kept) != 2 {
		t.Errorf("expecting 2, found %d entries", len(kept))
	}
	if len(collisions) != 1 || collisions[0].Layer != "LC08_L1TP_229083_20190113_20190131_01_T1_B4" {
		t.Errorf("got %v", collisions)
	}
}

func TestFprintPlan(t *testing.T) {
	entries, _ := Plan(testSceneFiles())
	buf := bytes.Buffer{}
	FprintPlan(&buf, entries)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expecting 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "3 files to import." {
		t.Errorf("got %q", lines[0])
	}
	if lines[2] != "  LC08_L1TP_229083_20190113_20190131_01_T1_B4.TIF -> LC08_L1TP_229083_20190113_20190131_01_T1_B4" {
		t.Errorf("got %q", lines[2])
	}
}

// fakeChecker implements ProjectionChecker
type fakeChecker struct {
	mismatching map[string]bool
}

func (f fakeChecker) CheckProjection(ctx context.Context, file string) bool {
	return !f.mismatching[file]
}

func TestFprintPlanChecked(t *testing.T) {
	entries, _ := Plan(testSceneFiles())
	checker := fakeChecker{mismatching: map[string]bool{entries[0].File: true}}
	buf := bytes.Buffer{}
	FprintPlanChecked(context.Background(), &buf, entries, checker)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.HasSuffix(lines[2], "(projection mismatch)") {
		t.Errorf("got %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "(projection ok)") {
		t.Errorf("got %q", lines[3])
	}
}
