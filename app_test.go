package main

import (
	"encoding/json"
	"testing"

	"github.com/chazu/orbis/pkg/config"
)

// newTestApp builds an App on the default config with a coarse kernel grid
// so solid meshing stays quick.
func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Render.KernelCells = 24
	cfg.Lessons.Dir = "examples"
	app, err := NewAppWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewAppWithConfig failed: %v", err)
	}
	return app
}

// TestE2ELayerLesson exercises the full pipeline: lesson source -> engine ->
// scene -> tessellate -> view. This is the same path that the Wails RunLesson
// binding takes, but without the Wails runtime.
func TestE2ELayerLesson(t *testing.T) {
	app := newTestApp(t)

	var source string
	for _, f := range app.Lessons() {
		if f.Name == "layer" {
			source = f.Source
		}
	}
	if source == "" {
		t.Fatal("examples/layer.lesson not found")
	}

	result := app.RunLesson(source)
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("lesson error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if result.Title != "Layers of a sphere" {
		t.Errorf("title = %q", result.Title)
	}
	if len(result.Snapshots) != 8 {
		t.Fatalf("expected 8 snapshots, got %d", len(result.Snapshots))
	}

	v := result.View
	if v.State != "separated" || v.Part != "separated-layer" {
		t.Errorf("ended in %s/%s, want separated/separated-layer", v.State, v.Part)
	}
	if v.Clip.Enabled {
		t.Error("last step turns the slice off")
	}
	if len(v.Pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(v.Pieces))
	}
	wantNames := []string{"band", "top-cap", "bottom-cap"}
	wantY := []float64{0, 1.6, -1.6}
	for i, p := range v.Pieces {
		if p.Name != wantNames[i] {
			t.Errorf("piece %d: name %q, want %q", i, p.Name, wantNames[i])
		}
		if diff := p.Offset.Y - wantY[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("piece %q: offset y %v, want %v", p.Name, p.Offset.Y, wantY[i])
		}
		if len(p.Mesh.Vertices) == 0 || len(p.Mesh.Indices) == 0 {
			t.Errorf("piece %q: empty mesh", p.Name)
		}
		if p.Material.Hex != "#4a90d9" {
			t.Errorf("piece %q: color %q", p.Name, p.Material.Hex)
		}
	}
}

func TestE2EExampleLessonsRunClean(t *testing.T) {
	app := newTestApp(t)
	files := app.Lessons()
	want := []string{"layer", "sector", "segment"}
	if len(files) != len(want) {
		t.Fatalf("expected %d lessons, got %d", len(want), len(files))
	}
	for i, f := range files {
		if f.Name != want[i] {
			t.Errorf("lesson %d: %q, want %q", i, f.Name, want[i])
		}
		t.Run(f.Name, func(t *testing.T) {
			result := app.RunLesson(f.Source)
			for _, e := range result.Errors {
				t.Errorf("lesson error (line %d): %s", e.Line, e.Message)
			}
			if len(result.Snapshots) == 0 {
				t.Error("no snapshots")
			}
			if result.Title == "" {
				t.Error("lesson has no title")
			}
		})
	}
}

func TestShowPartPieces(t *testing.T) {
	tests := []struct {
		part   string
		state  string
		pieces []string
	}{
		{"sphere", "whole", []string{"sphere"}},
		{"zone", "decomposed", []string{"zone"}},
		{"layer", "decomposed", []string{"band", "top-cap", "bottom-cap"}},
		{"segment", "decomposed", []string{"cap", "base"}},
		{"sector", "decomposed", []string{"cap", "base", "cone"}},
	}
	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.part, func(t *testing.T) {
			v := app.ShowPart(tt.part)
			if len(v.Errors) != 0 {
				t.Fatalf("unexpected errors: %+v", v.Errors)
			}
			if v.State != tt.state || v.Part != tt.part {
				t.Errorf("got %s/%s, want %s/%s", v.State, v.Part, tt.state, tt.part)
			}
			if len(v.Pieces) != len(tt.pieces) {
				t.Fatalf("expected %d pieces, got %d", len(tt.pieces), len(v.Pieces))
			}
			for i, p := range v.Pieces {
				if p.Name != tt.pieces[i] {
					t.Errorf("piece %d: %q, want %q", i, p.Name, tt.pieces[i])
				}
				if p.Mesh.Piece != p.Name {
					t.Errorf("piece %q: mesh labelled %q", p.Name, p.Mesh.Piece)
				}
			}
		})
	}
}

func TestSeparateReturnsTargets(t *testing.T) {
	app := newTestApp(t)
	app.SetRadius(2)
	app.ShowPart("layer")

	v := app.Separate()
	if len(v.Targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(v.Targets))
	}
	if v.State != "separated" {
		t.Errorf("state = %s", v.State)
	}
	if v.Bounds.Max.Y < 3.5 {
		t.Errorf("bounds should reach the lifted cap, max y = %v", v.Bounds.Max.Y)
	}

	again := app.Separate()
	if len(again.Targets) != 0 || len(again.Errors) != 0 {
		t.Errorf("second separate should be a no-op, got %d targets, %d errors",
			len(again.Targets), len(again.Errors))
	}
}

func TestMaterialChangeReusesMeshes(t *testing.T) {
	app := newTestApp(t)
	app.ShowPart("segment")
	before := app.cached

	v := app.SetColor("#00ff00")
	if app.cached != before {
		t.Error("recoloring rebuilt the decomposition")
	}
	for _, p := range v.Pieces {
		if p.Material.Hex != "#00ff00" {
			t.Errorf("piece %q: color %q", p.Name, p.Material.Hex)
		}
	}

	v = app.SetOpacity(2)
	if v.Params.Opacity != 1 {
		t.Errorf("opacity should clamp to 1, got %v", v.Params.Opacity)
	}
	v = app.SetWireframe(true)
	if !v.Pieces[0].Material.Wireframe {
		t.Error("wireframe not applied")
	}
	if app.cached != before {
		t.Error("material updates rebuilt the decomposition")
	}
}

func TestSolidMeshes(t *testing.T) {
	app := newTestApp(t)
	app.ShowPart("layer")

	result := app.SolidMeshes()
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Piece != "layer" {
		t.Fatalf("expected one layer mesh, got %+v", len(result.Meshes))
	}
	if len(result.Meshes[0].Indices) == 0 {
		t.Error("layer solid is empty")
	}

	app.Separate()
	result = app.SolidMeshes()
	if len(result.Meshes) != 3 {
		t.Fatalf("separated layer: expected 3 meshes, got %d", len(result.Meshes))
	}

	app.SetSlice(true, 0)
	result = app.SolidMeshes()
	if !result.Clip.Enabled {
		t.Error("clip should be reported")
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
}

func TestPartViewJSON(t *testing.T) {
	app := newTestApp(t)
	v := app.ShowPart("sector")
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	clip := decoded["clip"].(map[string]any)
	normal := clip["normal"].(map[string]any)
	if normal["y"] != -1.0 {
		t.Errorf("clip normal y = %v, want -1", normal["y"])
	}
	pieces := decoded["pieces"].([]any)
	cone := pieces[2].(map[string]any)
	if cone["kind"] != "cone" {
		t.Errorf("piece 2 kind = %v", cone["kind"])
	}
	geom := cone["geometry"].(map[string]any)
	if _, ok := geom["baseRadius"]; !ok {
		t.Errorf("cone geometry not serialized: %v", geom)
	}
}
