// Command forcegraph lays out graphs with a force simulation and renders
// the result as SVG, JSON, or DOT, either once from the command line or
// behind an HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
	"github.com/TFMV/forcegraph/server"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "forcegraph",
		Short:        "forcegraph computes force-directed layouts for graphs",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	logger := func() *log.Logger {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		return log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		})
	}

	root.AddCommand(newLayoutCmd(logger))
	root.AddCommand(newServeCmd(logger))

	return root.Execute()
}

// preset is the TOML layout-parameter file loaded with --preset.
type preset struct {
	MaxIteration    *int     `toml:"max_iteration"`
	EdgeStrength    *float64 `toml:"edge_strength"`
	NodeStrength    *float64 `toml:"node_strength"`
	CoulombDisScale *float64 `toml:"coulomb_dis_scale"`
	Damping         *float64 `toml:"damping"`
	MaxSpeed        *float64 `toml:"max_speed"`
	MinMovement     *float64 `toml:"min_movement"`
	Interval        *float64 `toml:"interval"`
	Factor          *float64 `toml:"factor"`
	LinkDistance    *float64 `toml:"link_distance"`
	Gravity         *float64 `toml:"gravity"`
	PreventOverlap  *bool    `toml:"prevent_overlap"`
	CollideStrength *float64 `toml:"collide_strength"`
	NodeSpacing     *float64 `toml:"node_spacing"`
	Width           *float64 `toml:"width"`
	Height          *float64 `toml:"height"`
	Seed            *int64   `toml:"seed"`
	WorkerEnabled   *bool    `toml:"worker_enabled"`
}

// apply merges the preset onto opts; unset keys keep their defaults.
func (p *preset) apply(opts *physics.Options) {
	if p.MaxIteration != nil {
		opts.MaxIteration = *p.MaxIteration
	}
	if p.EdgeStrength != nil {
		opts.EdgeStrength = *p.EdgeStrength
	}
	if p.NodeStrength != nil {
		opts.NodeStrength = *p.NodeStrength
	}
	if p.CoulombDisScale != nil {
		opts.CoulombDisScale = *p.CoulombDisScale
	}
	if p.Damping != nil {
		opts.Damping = *p.Damping
	}
	if p.MaxSpeed != nil {
		opts.MaxSpeed = *p.MaxSpeed
	}
	if p.MinMovement != nil {
		opts.MinMovement = *p.MinMovement
	}
	if p.Interval != nil {
		opts.Interval = *p.Interval
	}
	if p.Factor != nil {
		opts.Factor = *p.Factor
	}
	if p.LinkDistance != nil {
		opts.LinkDistance = *p.LinkDistance
	}
	if p.Gravity != nil {
		opts.Gravity = *p.Gravity
	}
	if p.PreventOverlap != nil {
		opts.PreventOverlap = *p.PreventOverlap
	}
	if p.CollideStrength != nil {
		opts.CollideStrength = *p.CollideStrength
	}
	if p.NodeSpacing != nil {
		opts.NodeSpacing = *p.NodeSpacing
	}
	if p.Width != nil {
		opts.Width = *p.Width
	}
	if p.Height != nil {
		opts.Height = *p.Height
	}
	if p.Seed != nil {
		opts.Seed = *p.Seed
	}
	if p.WorkerEnabled != nil {
		opts.WorkerEnabled = *p.WorkerEnabled
	}
}

func loadPreset(path string, opts *physics.Options) error {
	var p preset
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return fmt.Errorf("failed to load preset %s: %w", path, err)
	}
	p.apply(opts)
	return nil
}

func newLayoutCmd(logger func() *log.Logger) *cobra.Command {
	var (
		dataFile   string
		outputFile string
		format     string
		presetFile string
		iterations int
		noise      float64
		seed       int64
		workers    bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out a graph from a JSON file and render it",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := logger()
			ctx := signalContext(lg)

			data, err := os.ReadFile(dataFile)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			graph, err := ingest.NewJSONProcessor(nil).ProcessData(data)
			if err != nil {
				return fmt.Errorf("failed to process data: %w", err)
			}

			opts := physics.DefaultOptions()
			opts.Animate = false
			if graph.Width > 0 {
				opts.Width = graph.Width
			}
			if graph.Height > 0 {
				opts.Height = graph.Height
			}
			if presetFile != "" {
				if err := loadPreset(presetFile, &opts); err != nil {
					return err
				}
			}
			if iterations > 0 {
				opts.MaxIteration = iterations
			}
			if seed != 0 {
				opts.Seed = seed
			}
			opts.WorkerEnabled = workers

			lg.Info("laying out graph",
				"nodes", len(graph.Nodes),
				"edges", len(graph.Edges),
				"maxIteration", opts.MaxIteration)

			start := time.Now()
			var layout physics.Layout = physics.NewForceLayout(opts)
			if noise > 0 {
				layout = physics.NewNoiseLayout(layout, noise)
			}
			if err := layout.Initialize(graph); err != nil {
				return fmt.Errorf("layout initialization failed: %w", err)
			}
			for {
				select {
				case <-ctx.Done():
					lg.Warn("interrupted, writing partial layout")
				default:
				}
				done, err := layout.Step()
				if err != nil {
					return fmt.Errorf("layout failed: %w", err)
				}
				if done || ctx.Err() != nil {
					break
				}
			}
			lg.Debug("simulation finished", "elapsed", time.Since(start))

			outOpts := render.NewDefaultOptions(format)
			if graph.Width > 0 {
				outOpts.Width = graph.Width
			}
			if graph.Height > 0 {
				outOpts.Height = graph.Height
			}
			renderer, err := render.GetRenderer(format)
			if err != nil {
				return err
			}
			output, err := renderer.Render(graph, outOpts)
			if err != nil {
				return fmt.Errorf("rendering failed: %w", err)
			}

			out := outputFile
			if out == "" {
				out = "output." + format
			}
			if err := os.WriteFile(out, output, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			lg.Info("processing complete", "output", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "path to the JSON graph file")
	cmd.Flags().StringVar(&outputFile, "output", "", "path to the output file (defaults to output.<format>)")
	cmd.Flags().StringVar(&format, "format", "svg", "output format: svg, json, dot")
	cmd.Flags().StringVar(&presetFile, "preset", "", "path to a TOML layout preset")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "maximum simulation steps (overrides preset)")
	cmd.Flags().Float64Var(&noise, "noise", 0, "simplex jitter amplitude applied after convergence")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible layouts")
	cmd.Flags().BoolVar(&workers, "workers", false, "parallelize the repulsion phase")
	cmd.MarkFlagRequired("data")

	return cmd
}

func newServeCmd(logger func() *log.Logger) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := logger()
			ctx := signalContext(lg)
			return server.Start(ctx, server.Config{Port: port, Logger: lg})
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	return cmd
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext(lg *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		lg.Info("received shutdown signal, gracefully shutting down")
		cancel()
	}()
	return ctx
}
