package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Placement puts one model instance into the range. Rotation is in degrees
// around the x, y and z axes, applied in that order.
type Placement struct {
	Model    string     `yaml:"model"`
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"`
	Scale    float32    `yaml:"scale"` // 0 means 1
}

// SceneLayout is the static layout of the shooting range.
type SceneLayout struct {
	Ground  []Placement `yaml:"ground"`
	Targets []Placement `yaml:"targets"`
	Player  struct {
		Position [3]float32 `yaml:"position"`
		Yaw      float32    `yaml:"yaw"` // degrees
	} `yaml:"player"`
}

// DefaultScene is the layout used when no scene file is configured: the
// ground plane and one target 20m ahead of the player at head height.
func DefaultScene() *SceneLayout {
	return &SceneLayout{
		Ground:  []Placement{{Model: "ground"}},
		Targets: []Placement{{Model: "target", Position: [3]float32{0, 5, -20}}},
	}
}

// LoadSceneLayout loads scene.yaml. An empty path returns DefaultScene.
func LoadSceneLayout(path string) (*SceneLayout, error) {
	if path == "" {
		return DefaultScene(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var s SceneLayout
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	for i, p := range append(append([]Placement(nil), s.Ground...), s.Targets...) {
		if p.Model == "" {
			return nil, fmt.Errorf("parse scene: placement %d has no model", i)
		}
	}
	return &s, nil
}
