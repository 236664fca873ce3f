// Package libcfg holds the scene configuration read from TOML.
package libcfg

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type Shadow struct {
	Resolution int     `toml:"resolution"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
	// DiskScale divides the PCF sampling disk radius.
	DiskScale float32 `toml:"disk_scale"`
	Enabled   bool    `toml:"enabled"`
}

type Light struct {
	Start     [3]float32 `toml:"start"`
	Amplitude float32    `toml:"amplitude"`
	Rate      float32    `toml:"rate"`
	Paused    bool       `toml:"paused"`
}

type Camera struct {
	Position [3]float32 `toml:"position"`
	Yaw      float32    `toml:"yaw"`
	Pitch    float32    `toml:"pitch"`
}

type Assets struct {
	Root    string `toml:"root"`
	Index   string `toml:"index"`
	Texture string `toml:"texture"`
	// Fallback is a pack texture name used when Texture cannot be loaded.
	Fallback string `toml:"fallback"`
}

// Model places an additional glTF asset into the scene.
type Model struct {
	Path      string     `toml:"path"`
	Translate [3]float32 `toml:"translate"`
	Rotate    [3]float32 `toml:"rotate"`
	Scale     float32    `toml:"scale"`
	Gamma     bool       `toml:"gamma"`
}

type Scene struct {
	Window Window  `toml:"window"`
	Shadow Shadow  `toml:"shadow"`
	Light  Light   `toml:"light"`
	Camera Camera  `toml:"camera"`
	Assets Assets  `toml:"assets"`
	Models []Model `toml:"model"`
}

func Default() *Scene {
	return &Scene{
		Window: Window{
			Title:  "PointShadow",
			Width:  1800,
			Height: 1600,
		},
		Shadow: Shadow{
			Resolution: 1024,
			Near:       1,
			Far:        25,
			DiskScale:  25,
			Enabled:    true,
		},
		Light: Light{
			Amplitude: 3,
			Rate:      0.5,
		},
		Camera: Camera{
			Position: [3]float32{0, 0, 3},
			Yaw:      -90,
		},
		Assets: Assets{
			Index:    "assets/index.json",
			Texture:  "resources/textures/grass.jpeg",
			Fallback: "grass",
		},
	}
}

// Load decodes a TOML file over the defaults. Unknown keys are an error.
func Load(path string) (*Scene, error) {
	scene := Default()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open scene config %q: %w", path, err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err = dec.Decode(scene); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("could not decode scene config %q:\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("could not decode scene config %q: %w", path, err)
	}

	if err = scene.normalize(); err != nil {
		return nil, fmt.Errorf("could not expand paths of scene config %q: %w", path, err)
	}

	if err = scene.Validate(); err != nil {
		return nil, fmt.Errorf("scene config %q is invalid: %w", path, err)
	}

	return scene, nil
}

func (scene *Scene) normalize() (err error) {
	if scene.Assets.Root, err = homedir.Expand(scene.Assets.Root); err != nil {
		return err
	}
	for i := range scene.Models {
		if scene.Models[i].Path, err = homedir.Expand(scene.Models[i].Path); err != nil {
			return err
		}
		if scene.Models[i].Scale == 0 {
			scene.Models[i].Scale = 1
		}
	}
	return nil
}

func (scene *Scene) Validate() error {
	if scene.Window.Width <= 0 || scene.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", scene.Window.Width, scene.Window.Height)
	}
	if scene.Shadow.Resolution <= 0 {
		return fmt.Errorf("shadow resolution %d must be positive", scene.Shadow.Resolution)
	}
	if scene.Shadow.Near <= 0 || scene.Shadow.Far <= scene.Shadow.Near {
		return fmt.Errorf("shadow planes near=%v far=%v must satisfy 0 < near < far", scene.Shadow.Near, scene.Shadow.Far)
	}
	if scene.Shadow.DiskScale <= 0 {
		return fmt.Errorf("shadow disk_scale %v must be positive", scene.Shadow.DiskScale)
	}
	for i, model := range scene.Models {
		if model.Path == "" {
			return fmt.Errorf("model %d has no path", i)
		}
	}
	return nil
}
