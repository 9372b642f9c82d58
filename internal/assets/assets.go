// Package assets prepares the read-only model library and scene layout the
// simulation is built from.
package assets

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rangefire/rangefire/internal/data"
	"github.com/rangefire/rangefire/internal/geom"
	"github.com/rangefire/rangefire/internal/render"
)

// Models the simulation instantiates on its own, regardless of the scene.
const (
	ModelBulletHole = "bulletHole"
	ModelBulletLine = "bulletLine"
	ModelWeapon     = "weapon"
)

var ErrMissingModel = errors.New("missing model")

// Model is a prepared model: collision mesh and render descriptor.
type Model struct {
	Name   string
	Mesh   *geom.Mesh
	Visual render.Descriptor
}

// Library holds every prepared model and the scene layout.
type Library struct {
	models map[string]*Model
	scene  *data.SceneLayout
}

func NewLibrary(scene *data.SceneLayout, models ...*Model) *Library {
	if scene == nil {
		scene = data.DefaultScene()
	}
	l := &Library{models: make(map[string]*Model, len(models)), scene: scene}
	for _, m := range models {
		l.models[m.Name] = m
	}
	return l
}

func (l *Library) Model(name string) (*Model, bool) {
	m, ok := l.models[name]
	return m, ok
}

func (l *Library) Scene() *data.SceneLayout { return l.scene }

func (l *Library) Len() int { return len(l.models) }

// Validate checks that every model the scene and the simulation refer to
// is present.
func (l *Library) Validate() error {
	need := []string{ModelBulletHole, ModelBulletLine, ModelWeapon}
	for _, p := range l.scene.Ground {
		need = append(need, p.Model)
	}
	for _, p := range l.scene.Targets {
		need = append(need, p.Model)
	}
	for _, name := range need {
		if _, ok := l.models[name]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingModel, name)
		}
	}
	return nil
}

// Build turns a model table entry into a prepared model.
func Build(e *data.ModelEntry) (*Model, error) {
	mesh, err := geom.NewMesh(e.Vertices, e.Indices)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", e.Name, err)
	}
	glyph, _ := utf8.DecodeRuneInString(e.Glyph)
	if glyph == utf8.RuneError {
		glyph = '#'
	}
	return &Model{
		Name:   e.Name,
		Mesh:   mesh,
		Visual: render.Descriptor{Model: e.Name, Glyph: glyph, Color: e.Color},
	}, nil
}

// Loader reads the model table and scene from disk.
type Loader struct {
	ModelsPath string
	ScenePath  string // empty: built-in layout
	Log        *zap.Logger
}

// Load reads both files concurrently, then builds every mesh in parallel.
// The first failure cancels the remaining work.
func (l Loader) Load(ctx context.Context) (*Library, error) {
	var (
		table *data.ModelTable
		scene *data.SceneLayout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		table, err = data.LoadModelTable(l.ModelsPath)
		return err
	})
	g.Go(func() error {
		var err error
		scene, err = data.LoadSceneLayout(l.ScenePath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := table.Names()
	models := make([]*Model, len(names))
	g, gctx = errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := Build(table.Get(name))
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lib := NewLibrary(scene, models...)
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	if l.Log != nil {
		l.Log.Info("assets loaded",
			zap.Int("models", lib.Len()),
			zap.Int("targets", len(scene.Targets)),
		)
	}
	return lib, nil
}
