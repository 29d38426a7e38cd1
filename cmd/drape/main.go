// Command drape opens the interactive pattern preview. Drag on the garment to
// move the pattern; the remaining parameters come from the config file or a
// script.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/phanxgames/drape"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	assets     string
	piece      string
	size       int
	debug      bool
	fps        bool
	script     string
	logPath    string

	logFile *os.File
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	var opts options
	defer opts.closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd(&opts).ExecuteContext(ctx)
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "drape",
		Short: "Interactive textile pattern preview",
		Long: `drape - interactive textile pattern preview

Shows a pattern tile mapped onto a garment model, lit and composited over
the product photo. Drag on the garment to move the pattern.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			var runner *drape.TestRunner
			if opts.script != "" {
				data, err := os.ReadFile(opts.script)
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				if runner, err = drape.LoadTestScript(data); err != nil {
					return err
				}
			}
			return drape.Run(cmd.Context(), cfg, runner)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml or .json)")
	flags.StringVar(&opts.assets, "assets", "", "Asset pack root directory")
	flags.StringVarP(&opts.piece, "piece", "p", "", "Piece to show first")
	flags.IntVar(&opts.size, "size", 0, "Canvas size in pixels")
	flags.BoolVar(&opts.debug, "debug", false, "Log per-frame timing")
	flags.BoolVar(&opts.fps, "fps", false, "Show the FPS overlay")
	flags.StringVar(&opts.logPath, "log", "", "Append log output to this file")
	root.Flags().StringVar(&opts.script, "script", "", "JSON test script to run, then exit")

	root.AddCommand(piecesCmd(), configCmd(opts), thumbnailCmd(), snapshotCmd(opts))
	return root
}

// load reads the config file, if any, and applies flags that were set.
func (o *options) load(cmd *cobra.Command) (drape.Config, error) {
	cfg := drape.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = drape.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("assets") {
		cfg.Assets.Root = o.assets
	}
	if flags.Changed("piece") {
		cfg.Piece = drape.PieceID(o.piece)
	}
	if flags.Changed("size") {
		cfg.Calibration.CanvasSize = o.size
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("fps") {
		cfg.Window.ShowFPS = o.fps
	}
	if o.logPath != "" {
		f, err := os.OpenFile(o.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return cfg, fmt.Errorf("open log: %w", err)
		}
		o.logFile = f
		drape.LogOutput = f
	}
	return cfg, cfg.Validate()
}

// closeLog closes the --log file, if one was opened, and points logging back
// at stderr.
func (o *options) closeLog() {
	if o.logFile == nil {
		return
	}
	drape.LogOutput = os.Stderr
	_ = o.logFile.Close()
	o.logFile = nil
}

func piecesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pieces",
		Short: "List the known pieces and their asset files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := drape.NewLoader(nil, drape.DefaultConfig().Assets)
			out := cmd.OutOrStdout()
			for _, id := range drape.Pieces {
				fmt.Fprintln(out, id)
				for k := drape.ResourceKind(0); k < drape.ResourcePattern; k++ {
					p, err := l.Resolve(id, k)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "  %-8s %s\n", k, p)
				}
			}
			return nil
		},
	}
}

func configCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return drape.WriteConfig(cmd.OutOrStdout(), cfg, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	return cmd
}

func thumbnailCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "thumbnail <pattern> <out.png|out.webp>",
		Short: "Write a square preview of a pattern tile",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open pattern: %w", err)
			}
			defer f.Close()
			img, _, err := image.Decode(f)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[1], err)
			}
			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(args[1])), ".")
			if err := drape.EncodeImage(out, drape.Thumbnail(img, size), format); err != nil {
				out.Close()
				return fmt.Errorf("encode %s: %w", args[1], err)
			}
			return out.Close()
		},
	}
	cmd.Flags().IntVar(&size, "size", 128, "Thumbnail side in pixels")
	return cmd
}

func snapshotCmd(opts *options) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load a piece, capture the composed view and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if label == "" {
				label = string(cfg.Piece)
			}
			// A few frames after loading let the reveal fade finish.
			frames := int(cfg.Calibration.RevealSeconds*60) + 2
			script, err := snapshotScript(label, frames)
			if err != nil {
				return err
			}
			runner, err := drape.LoadTestScript(script)
			if err != nil {
				return err
			}
			return drape.Run(cmd.Context(), cfg, runner)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Snapshot label (defaults to the piece)")
	return cmd
}

type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// snapshotScript returns the script that waits for the load and the reveal,
// captures one snapshot labeled label and runs one more frame to write it.
func snapshotScript(label string, frames int) ([]byte, error) {
	return json.Marshal(struct {
		Steps []scriptStep `json:"steps"`
	}{[]scriptStep{
		{Action: "await-load"},
		{Action: "wait", Frames: frames},
		{Action: "snapshot", Label: label},
		{Action: "wait", Frames: 1},
	}})
}
