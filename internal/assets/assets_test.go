package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/geom"
)

const tri = `vertices: [0, 0, 0,  1, 0, 0,  0, 1, 0]
  indices: [0, 1, 2]`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func fullModels() string {
	out := ""
	for _, name := range []string{"ground", "target", "bulletHole", "bulletLine", "weapon"} {
		out += "- name: " + name + "\n  glyph: \"x\"\n  " + tri + "\n"
	}
	return out
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	l := Loader{ModelsPath: writeFile(t, dir, "models.yaml", fullModels()), Log: zap.NewNop()}
	lib, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if lib.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", lib.Len())
	}
	m, ok := lib.Model("target")
	if !ok || m.Mesh.TriangleCount() != 1 || m.Visual.Glyph != 'x' || m.Visual.Model != "target" {
		t.Fatalf("target model = %+v", m)
	}
	if len(lib.Scene().Targets) != 1 {
		t.Fatal("default scene not used")
	}
}

func TestLoaderMissingModel(t *testing.T) {
	dir := t.TempDir()
	models := "- name: ground\n  " + tri + "\n"
	l := Loader{ModelsPath: writeFile(t, dir, "models.yaml", models)}
	_, err := l.Load(context.Background())
	if !errors.Is(err, ErrMissingModel) {
		t.Fatalf("err = %v, want ErrMissingModel", err)
	}
}

func TestLoaderBadMesh(t *testing.T) {
	dir := t.TempDir()
	models := fullModels() + "- name: broken\n  vertices: [0, 0]\n  indices: [0]\n"
	l := Loader{ModelsPath: writeFile(t, dir, "models.yaml", models)}
	_, err := l.Load(context.Background())
	if !errors.Is(err, geom.ErrInvalidMesh) {
		t.Fatalf("err = %v, want ErrInvalidMesh", err)
	}
}

func TestLoaderMissingFiles(t *testing.T) {
	dir := t.TempDir()
	l := Loader{
		ModelsPath: writeFile(t, dir, "models.yaml", fullModels()),
		ScenePath:  filepath.Join(dir, "absent.yaml"),
	}
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing scene")
	}
}

func TestLoaderCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := Loader{ModelsPath: writeFile(t, dir, "models.yaml", fullModels())}
	if _, err := l.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestShippedAssets(t *testing.T) {
	l := Loader{
		ModelsPath: filepath.Join("..", "..", "assets", "models.yaml"),
		ScenePath:  filepath.Join("..", "..", "assets", "scene.yaml"),
		Log:        zap.NewNop(),
	}
	lib, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(lib.Scene().Targets); n != 4 {
		t.Fatalf("targets = %d, want 4", n)
	}
	weapon, _ := lib.Model(ModelWeapon)
	if weapon.Mesh.TriangleCount() != 12 {
		t.Fatalf("weapon triangles = %d, want 12", weapon.Mesh.TriangleCount())
	}
}
