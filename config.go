package drape

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Calibration holds the constants that register the 3D canvas against the
// flat base image. They were tuned by hand for the shipped asset pack. The
// light and overlay planes overfill the camera frustum at their depth (50
// units against a frustum about 44.3 high at the defaults), so their edges
// stay off the canvas.
type Calibration struct {
	// CanvasSize is the side of the square drawing surface, in pixels.
	CanvasSize int `yaml:"canvas_size" json:"canvas_size"`

	FOV            float64 `yaml:"fov" json:"fov"`
	CameraDistance float64 `yaml:"camera_distance" json:"camera_distance"`
	Near           float64 `yaml:"near" json:"near"`
	Far            float64 `yaml:"far" json:"far"`

	PlaneSize  float64 `yaml:"plane_size" json:"plane_size"`
	LightDepth float64 `yaml:"light_depth" json:"light_depth"`
	// OverlayDepth must be greater than LightDepth so the overlay is drawn
	// after the light plane.
	OverlayDepth float64 `yaml:"overlay_depth" json:"overlay_depth"`

	// MeshScale is applied to X and Y of the loaded garment model.
	MeshScale float64 `yaml:"mesh_scale" json:"mesh_scale"`

	// AmbientShadowCoupling is how much ambient light the shadow slider
	// removes per unit of shadow.
	AmbientShadowCoupling float64 `yaml:"ambient_shadow_coupling" json:"ambient_shadow_coupling"`

	// RevealSeconds is the fade-in after a rebuild. Zero disables it.
	RevealSeconds float64 `yaml:"reveal_seconds" json:"reveal_seconds"`
}

// DefaultCalibration returns the values matching the shipped assets.
func DefaultCalibration() Calibration {
	return Calibration{
		CanvasSize:            600,
		FOV:                   25,
		CameraDistance:        100,
		Near:                  0.1,
		Far:                   2000,
		PlaneSize:             50,
		LightDepth:            0.01,
		OverlayDepth:          0.02,
		MeshScale:             25,
		AmbientShadowCoupling: 0.5,
		RevealSeconds:         0.25,
	}
}

// WindowConfig configures the host window.
type WindowConfig struct {
	Title      string `yaml:"title" json:"title"`
	Resizable  bool   `yaml:"resizable" json:"resizable"`
	ShowFPS    bool   `yaml:"show_fps" json:"show_fps"`
	ClearColor Color  `yaml:"clear_color" json:"clear_color"`
}

// AssetConfig locates the asset pack.
type AssetConfig struct {
	// Root is the directory holding one subdirectory per piece plus patterns/.
	Root        string `yaml:"root" json:"root"`
	PatternFile string `yaml:"pattern_file" json:"pattern_file"`
	// MaxPatternSize downsizes larger pattern tiles on load. Zero keeps the
	// original size.
	MaxPatternSize int `yaml:"max_pattern_size" json:"max_pattern_size"`
	// Workers limits concurrent resource loads per piece.
	Workers int `yaml:"workers" json:"workers"`
}

// Config is the full preview configuration.
type Config struct {
	Window      WindowConfig `yaml:"window" json:"window"`
	Assets      AssetConfig  `yaml:"assets" json:"assets"`
	Calibration Calibration  `yaml:"calibration" json:"calibration"`
	Piece       PieceID      `yaml:"piece" json:"piece"`
	Debug       bool         `yaml:"debug" json:"debug"`
	SnapshotDir string       `yaml:"snapshot_dir" json:"snapshot_dir"`
	// SnapshotFormat is "png" or "webp".
	SnapshotFormat string `yaml:"snapshot_format" json:"snapshot_format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:      "drape",
			ClearColor: Color{1, 1, 1, 1},
		},
		Assets: AssetConfig{
			Root:        "assets",
			PatternFile: "1_texture_3d.jpg",
			Workers:     4,
		},
		Calibration:    DefaultCalibration(),
		Piece:          DefaultPiece,
		SnapshotDir:    "snapshots",
		SnapshotFormat: "png",
	}
}

// LoadConfig reads a YAML or JSON file (chosen by extension) over
// DefaultConfig. Fields missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decodeConfig(data, configFormat(path), &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func configFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func decodeConfig(data []byte, format string, cfg *Config) error {
	if format == "json" {
		return json.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// WriteConfig encodes cfg as "yaml" or "json".
func WriteConfig(w io.Writer, cfg Config, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(cfg)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Validate reports settings the preview cannot run with.
func (c Config) Validate() error {
	cal := c.Calibration
	switch {
	case cal.CanvasSize <= 0:
		return fmt.Errorf("calibration.canvas_size must be positive, got %d", cal.CanvasSize)
	case cal.FOV <= 0 || cal.FOV >= 180:
		return fmt.Errorf("calibration.fov must be in (0, 180), got %g", cal.FOV)
	case cal.Near <= 0 || cal.Far <= cal.Near:
		return fmt.Errorf("calibration near/far invalid: %g/%g", cal.Near, cal.Far)
	case cal.OverlayDepth <= cal.LightDepth:
		return fmt.Errorf("calibration.overlay_depth (%g) must exceed light_depth (%g)", cal.OverlayDepth, cal.LightDepth)
	case cal.PlaneSize <= 0:
		return fmt.Errorf("calibration.plane_size must be positive, got %g", cal.PlaneSize)
	}
	switch c.SnapshotFormat {
	case "", "png", "webp":
	default:
		return fmt.Errorf("snapshot_format must be png or webp, got %q", c.SnapshotFormat)
	}
	return nil
}
