package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/orbis/pkg/config"
	"github.com/chazu/orbis/pkg/engine"
	"github.com/chazu/orbis/pkg/kernel"
	"github.com/chazu/orbis/pkg/kernel/manifold"
	"github.com/chazu/orbis/pkg/kernel/sdfx"
	"github.com/chazu/orbis/pkg/logger"
	"github.com/chazu/orbis/pkg/scene"
	"github.com/chazu/orbis/pkg/separation"
	"github.com/chazu/orbis/pkg/solid"
	"github.com/chazu/orbis/pkg/tessellate"
)

// lessonExt is the file extension of lesson scripts in the lessons directory.
const lessonExt = ".lesson"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Every binding returns a complete view of the scene so the frontend never
// has to merge partial updates.
type App struct {
	ctx context.Context

	mu     sync.Mutex
	cfg    *config.Config
	vis    *scene.Visualization
	engine *engine.Engine
	kernel kernel.Kernel
	log    *zap.Logger

	// meshes caches the surface meshes of cached; material changes keep the
	// decomposition and so reuse them.
	cached *solid.Decomposition
	meshes []*kernel.Mesh
}

// VecData is a JSON-serializable vector.
type VecData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vecData(v r3.Vec) VecData { return VecData{X: v.X, Y: v.Y, Z: v.Z} }

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Piece    string    `json:"piece"`
}

func meshData(m *kernel.Mesh) MeshData {
	md := MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		Piece:    m.Piece,
	}
	if md.Vertices == nil {
		md.Vertices = []float32{}
	}
	if md.Normals == nil {
		md.Normals = []float32{}
	}
	if md.Indices == nil {
		md.Indices = []uint32{}
	}
	return md
}

// PieceData is one drawable piece with its placement and material.
type PieceData struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Geometry solid.Geometry `json:"geometry"`
	Position VecData        `json:"position"`
	Rotation VecData        `json:"rotation"`
	Offset   VecData        `json:"offset"`
	Material solid.Material `json:"material"`
	Mesh     MeshData       `json:"mesh"`
}

// ClipData is the slicing plane as the renderer consumes it.
type ClipData struct {
	Enabled bool    `json:"enabled"`
	Offset  float64 `json:"offset"`
	Normal  VecData `json:"normal"`
}

// BoxData is an axis-aligned bounding box.
type BoxData struct {
	Min VecData `json:"min"`
	Max VecData `json:"max"`
}

// ErrorData is a JSON-serializable error for the frontend. Line and Col are
// only set for lesson script errors.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// PartView is the full scene state returned by every binding.
type PartView struct {
	State      string              `json:"state"`
	Part       string              `json:"part"`
	Params     solid.Params        `json:"params"`
	AutoRotate bool                `json:"autoRotate"`
	Clip       ClipData            `json:"clip"`
	Pieces     []PieceData         `json:"pieces"`
	Targets    []separation.Target `json:"targets"`
	Bounds     BoxData             `json:"bounds"`
	Center     VecData             `json:"center"` // camera target
	Errors     []ErrorData         `json:"errors"`
}

// SolidResult carries closed meshes of the current part from the SDF kernel.
type SolidResult struct {
	Meshes []MeshData  `json:"meshes"`
	Errors []ErrorData `json:"errors"`
	Clip   ClipData    `json:"clip"`
	Part   string      `json:"part"`
}

// LessonResult is the outcome of running a lesson script.
type LessonResult struct {
	Title     string            `json:"title"`
	Snapshots []engine.Snapshot `json:"snapshots"`
	View      PartView          `json:"view"`
	Errors    []ErrorData       `json:"errors"`
}

// LessonFile is a lesson script found in the lessons directory.
type LessonFile struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	a, err := NewAppWithConfig(config.Default())
	if err != nil {
		// The defaults always validate.
		panic(err)
	}
	return a
}

// NewAppWithConfig creates an App whose sphere, renderer and lesson settings
// come from cfg.
func NewAppWithConfig(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vis, err := scene.New(cfg.Sphere, solid.Builder{Segments: cfg.Render.Segments})
	if err != nil {
		return nil, err
	}
	k, err := newKernel(cfg.Render)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:    cfg,
		vis:    vis,
		engine: engine.NewEngine(),
		kernel: k,
		log:    logger.Named("app"),
	}, nil
}

func newKernel(rc config.RenderConfig) (kernel.Kernel, error) {
	if rc.Kernel == config.KernelManifold {
		return manifold.New()
	}
	return sdfx.NewWithCells(rc.KernelCells), nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.log.Info("startup",
		zap.Float64("radius", a.cfg.Sphere.Radius),
		zap.Int("segments", a.cfg.Render.Segments),
		zap.String("kernel", a.cfg.Render.Kernel),
		zap.String("lessons", a.cfg.Lessons.Dir))
}

// Current returns the scene as it stands.
func (a *App) Current() PartView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view(nil, nil)
}

// ShowPart displays the named part: sphere, zone, layer, segment or sector.
func (a *App) ShowPart(name string) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	kind, err := solid.ParsePartKind(name)
	if err == nil && kind == solid.SeparatedLayer {
		err = fmt.Errorf("%w: %q is reached with Separate", solid.ErrUnsupportedPart, name)
	}
	if err != nil {
		return a.fail("show part", err)
	}
	if err := a.vis.ChoosePart(kind); err != nil {
		return a.fail("show part", err)
	}
	a.log.Debug("show part", zap.Stringer("part", kind))
	return a.view(nil, nil)
}

// Separate pulls a displayed layer apart. Outside the layer view it leaves
// the scene unchanged and returns no targets.
func (a *App) Separate() PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	targets, err := a.vis.Separate()
	if err != nil {
		return a.fail("separate", err)
	}
	if targets == nil {
		a.log.Debug("separate ignored", zap.Stringer("state", a.vis.State()))
	}
	return a.view(targets, nil)
}

// Isolate moves every displayed piece by distance along the named axis.
func (a *App) Isolate(axis string, distance float64) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	ax, err := separation.ParseAxis(axis)
	if err != nil {
		return a.fail("isolate", err)
	}
	return a.view(a.vis.Isolate(ax, distance), nil)
}

// Reset returns to the whole sphere with the configured defaults.
func (a *App) Reset() PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.vis.Reset(); err != nil {
		return a.fail("reset", err)
	}
	return a.view(nil, nil)
}

// SetRadius rebuilds the scene as the whole sphere at radius r.
func (a *App) SetRadius(r float64) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.vis.SetRadius(r); err != nil {
		return a.fail("set radius", err)
	}
	return a.view(nil, nil)
}

// SetColor recolors every piece. hex is "#rrggbb".
func (a *App) SetColor(hex string) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.vis.SetColor(hex); err != nil {
		return a.fail("set color", err)
	}
	return a.view(nil, nil)
}

// SetOpacity sets the sphere opacity, clamped to [0, 1].
func (a *App) SetOpacity(o float64) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.vis.SetOpacity(o)
	return a.view(nil, nil)
}

// SetWireframe toggles wireframe rendering.
func (a *App) SetWireframe(on bool) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.vis.SetWireframe(on)
	return a.view(nil, nil)
}

// SetAutoRotate toggles the idle rotation of the sphere.
func (a *App) SetAutoRotate(on bool) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.vis.SetAutoRotate(on)
	return a.view(nil, nil)
}

// SetSlice enables or disables the slicing plane at height offset.
func (a *App) SetSlice(enabled bool, offset float64) PartView {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.vis.SetClip(enabled, offset); err != nil {
		return a.fail("set slice", err)
	}
	return a.view(nil, nil)
}

// SolidMeshes meshes the current part as closed solids with the SDF kernel,
// cut by the slicing plane when it is enabled. Parts without volume, such as
// the zone, report an error.
func (a *App) SolidMeshes() SolidResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	clip := a.vis.Clip()
	result := SolidResult{
		Meshes: []MeshData{},
		Errors: []ErrorData{},
		Clip:   clipData(clip),
		Part:   a.vis.Part().String(),
	}
	meshes, err := tessellate.Solids(a.kernel, a.vis.Decomposition(), a.vis.Offsets(), clip.Offset, clip.Enabled)
	if err != nil {
		a.log.Warn("solid meshes", zap.Stringer("part", a.vis.Part()), zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}
	for _, m := range meshes {
		result.Meshes = append(result.Meshes, meshData(m))
	}
	return result
}

// RunLesson evaluates a lesson script and plays it on the scene. The scene is
// reset first so a lesson always starts from the whole sphere. When a step
// fails the snapshots taken before it are kept and the scene stays where the
// lesson stopped.
func (a *App) RunLesson(source string) LessonResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := LessonResult{
		Snapshots: []engine.Snapshot{},
		Errors:    []ErrorData{},
	}

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	lesson, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		a.log.Error("lesson evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		result.View = a.view(nil, nil)
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, ErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		result.View = a.view(nil, nil)
		return result
	}
	result.Title = lesson.Title

	if err := a.vis.Reset(); err != nil {
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		result.View = a.view(nil, nil)
		return result
	}
	snaps, err := engine.Play(lesson, a.vis)
	result.Snapshots = snaps
	if err != nil {
		a.log.Warn("lesson stopped", zap.String("title", lesson.Title), zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
	}

	var targets []separation.Target
	if n := len(snaps); n > 0 {
		targets = snaps[n-1].Targets
	}
	result.View = a.view(targets, nil)
	a.log.Info("lesson played",
		zap.String("title", lesson.Title),
		zap.Int("steps", len(lesson.Steps)),
		zap.Int("played", len(snaps)))
	return result
}

// Lessons lists the lesson scripts in the configured lessons directory,
// sorted by name. A missing directory yields an empty list.
func (a *App) Lessons() []LessonFile {
	files, err := readLessons(a.cfg.Lessons.Dir)
	if err != nil {
		a.log.Warn("list lessons", zap.String("dir", a.cfg.Lessons.Dir), zap.Error(err))
	}
	return files
}

func readLessons(dir string) ([]LessonFile, error) {
	files := []LessonFile{}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return files, nil
	}
	if err != nil {
		return files, fmt.Errorf("read lessons: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != lessonExt {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return files, fmt.Errorf("read lesson %s: %w", e.Name(), err)
		}
		files = append(files, LessonFile{
			Name:   strings.TrimSuffix(e.Name(), lessonExt),
			Source: string(src),
		})
	}
	return files, nil
}

// fail logs err and returns the unchanged scene carrying it.
func (a *App) fail(op string, err error) PartView {
	a.log.Warn(op, zap.Error(err))
	return a.view(nil, []ErrorData{{Message: err.Error()}})
}

// view renders the scene into a PartView. Caller must hold a.mu.
func (a *App) view(targets []separation.Target, errs []ErrorData) PartView {
	if targets == nil {
		targets = []separation.Target{}
	}
	if errs == nil {
		errs = []ErrorData{}
	}
	v := PartView{
		State:      a.vis.State().String(),
		Part:       a.vis.Part().String(),
		Params:     a.vis.Params(),
		AutoRotate: a.vis.AutoRotate(),
		Clip:       clipData(a.vis.Clip()),
		Pieces:     []PieceData{},
		Targets:    targets,
		Errors:     errs,
	}

	d := a.vis.Decomposition()
	if d == nil {
		return v
	}
	b := a.vis.Bounds()
	v.Bounds = BoxData{Min: vecData(b.Min), Max: vecData(b.Max)}
	v.Center = vecData(solid.Centroid(d))

	meshes, err := a.surfaceMeshes(d)
	if err != nil {
		a.log.Error("tessellate", zap.Stringer("part", d.Part), zap.Error(err))
		v.Errors = append(v.Errors, ErrorData{Message: "tessellation failed: " + err.Error()})
		return v
	}
	mats := a.vis.Materials()
	offsets := a.vis.Offsets()
	for i, md := range d.Pieces {
		p := PieceData{
			Name:     md.Name,
			Kind:     md.Kind().String(),
			Geometry: md.Geometry,
			Position: vecData(md.Transform.Position),
			Rotation: vecData(md.Transform.Rotation),
			Material: mats[i],
			Mesh:     meshData(meshes[i]),
		}
		if i < len(offsets) {
			p.Offset = vecData(offsets[i])
		}
		v.Pieces = append(v.Pieces, p)
	}
	return v
}

// surfaceMeshes tessellates d once and reuses the result until the scene
// builds a new decomposition.
func (a *App) surfaceMeshes(d *solid.Decomposition) ([]*kernel.Mesh, error) {
	if a.cached == d && a.meshes != nil {
		return a.meshes, nil
	}
	for _, ve := range solid.Validate(d) {
		a.log.Warn("decomposition", zap.Stringer("part", d.Part), zap.String("finding", ve.Error()))
	}
	meshes, err := tessellate.Decomposition(d)
	if err != nil {
		return nil, err
	}
	a.cached, a.meshes = d, meshes
	return meshes, nil
}

func clipData(c scene.Clip) ClipData {
	return ClipData{Enabled: c.Enabled, Offset: c.Offset, Normal: vecData(c.Normal())}
}
