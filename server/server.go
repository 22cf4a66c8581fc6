// Package server exposes the layout engine over HTTP: clients POST a graph
// document and receive it back with computed positions, as JSON or SVG.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
)

// maxBodyBytes caps uploaded graph documents.
const maxBodyBytes = 8 << 20

// Config holds the server settings.
type Config struct {
	Port   int
	Logger *log.Logger
}

// layoutParams is the optional "layout" section of an upload, overriding
// the engine defaults for this one request.
type layoutParams struct {
	MaxIteration    *int     `json:"maxIteration"`
	EdgeStrength    *float64 `json:"edgeStrength"`
	NodeStrength    *float64 `json:"nodeStrength"`
	Gravity         *float64 `json:"gravity"`
	LinkDistance    *float64 `json:"linkDistance"`
	MinMovement     *float64 `json:"minMovement"`
	PreventOverlap  *bool    `json:"preventOverlap"`
	CollideStrength *float64 `json:"collideStrength"`
	Width           *float64 `json:"width"`
	Height          *float64 `json:"height"`
	Seed            *int64   `json:"seed"`
	WorkerEnabled   *bool    `json:"workerEnabled"`
}

// NewRouter builds the HTTP routes served by Start.
func NewRouter(logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Post("/api/layout", handleLayout(logger))
	return r
}

// Start launches the web server on the configured port and blocks until it
// exits or ctx is canceled.
func Start(ctx context.Context, config Config) error {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := NewRouter(logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleLayout runs the force layout on an uploaded graph and returns the
// result. The Accept header selects the output: image/svg+xml for SVG,
// anything else for JSON.
func handleLayout(logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			httpError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		processor := ingest.NewJSONProcessor(nil)
		graph, err := processor.ProcessData(body)
		if err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}

		opts := physics.DefaultOptions()
		opts.Animate = false
		// The document's canvas drives both the simulation bounds and the
		// render viewport; explicit layout params still override.
		if graph.Width > 0 {
			opts.Width = graph.Width
		}
		if graph.Height > 0 {
			opts.Height = graph.Height
		}
		applyParams(body, &opts)

		format := "json"
		if r.Header.Get("Accept") == "image/svg+xml" {
			format = "svg"
		}
		outOpts := render.NewDefaultOptions(format)
		if graph.Width > 0 {
			outOpts.Width = graph.Width
		}
		if graph.Height > 0 {
			outOpts.Height = graph.Height
		}

		start := time.Now()
		output, err := render.Generate(r.Context(), graph, outOpts, opts)
		if err != nil {
			logger.Error("layout failed", "err", err)
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Debug("layout complete",
			"nodes", len(graph.Nodes),
			"edges", len(graph.Edges),
			"elapsed", time.Since(start))

		if format == "svg" {
			w.Header().Set("Content-Type", "image/svg+xml")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Write(output)
	}
}

// applyParams merges the optional per-request layout overrides into opts.
func applyParams(body []byte, opts *physics.Options) {
	var doc struct {
		Layout *layoutParams `json:"layout"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || doc.Layout == nil {
		return
	}
	p := doc.Layout
	if p.MaxIteration != nil {
		opts.MaxIteration = *p.MaxIteration
	}
	if p.EdgeStrength != nil {
		opts.EdgeStrength = *p.EdgeStrength
	}
	if p.NodeStrength != nil {
		opts.NodeStrength = *p.NodeStrength
	}
	if p.Gravity != nil {
		opts.Gravity = *p.Gravity
	}
	if p.LinkDistance != nil {
		opts.LinkDistance = *p.LinkDistance
	}
	if p.MinMovement != nil {
		opts.MinMovement = *p.MinMovement
	}
	if p.PreventOverlap != nil {
		opts.PreventOverlap = *p.PreventOverlap
	}
	if p.CollideStrength != nil {
		opts.CollideStrength = *p.CollideStrength
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

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
