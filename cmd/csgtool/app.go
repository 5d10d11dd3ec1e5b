package main

import (
	"context"
	"errors"

	"github.com/chazu/bspcsg/pkg/config"
	"github.com/chazu/bspcsg/pkg/engine"
	"github.com/chazu/bspcsg/pkg/graph"
	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/chazu/bspcsg/pkg/kernel/bsp"
	"github.com/chazu/bspcsg/pkg/kernel/manifold"
	"github.com/chazu/bspcsg/pkg/kernel/sdfx"
	"github.com/chazu/bspcsg/pkg/tessellate"
	"github.com/sirupsen/logrus"
)

// colorPalette colours parts that have no material colour of their own.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the script to mesh pipeline.
type App struct {
	engine *engine.Engine
	tess   *tessellate.Tessellator
	log    logrus.FieldLogger
}

// Diagnostic is an error or warning tied to a script position when one is
// known. Line and Col are zero otherwise.
type Diagnostic struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Result is everything one evaluation produced.
type Result struct {
	Meshes   []*kernel.Mesh `json:"meshes"`
	Errors   []Diagnostic   `json:"errors"`
	Warnings []Diagnostic   `json:"warnings"`

	// Superseded is set when a newer evaluation on the same App replaced
	// this one. Such a result carries no meshes and should be dropped.
	Superseded bool `json:"-"`
}

// OK reports whether the evaluation produced no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// NewApp builds an App from cfg. It fails only when the configured kernel
// is not compiled in.
func NewApp(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	k, err := newKernel(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Timeout()),
			engine.WithDefaults(cfg.Defaults()),
		),
		tess: tessellate.New(k).WithLogger(log),
		log:  log,
	}, nil
}

func newKernel(cfg *config.Config) (kernel.Kernel, error) {
	switch cfg.Kernel {
	case config.KernelSdfx:
		return sdfx.NewWithCells(cfg.Sdfx.MeshCells), nil
	case config.KernelManifold:
		return manifold.New()
	default:
		return bsp.New(), nil
	}
}

// Evaluate takes script source and returns meshes and diagnostics. The
// slices in the result are never nil.
func (a *App) Evaluate(ctx context.Context, source string) Result {
	result := Result{
		Meshes:   []*kernel.Mesh{},
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}

	// Step 1: Evaluate the script into a design graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if errors.Is(err, engine.ErrSuperseded) {
		a.log.Debug("evaluation superseded")
		result.Superseded = true
		return result
	}
	if err != nil {
		a.log.WithError(err).Error("evaluation failed")
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, Diagnostic{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Validate the graph before handing it to the kernel.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		msg := w.Message
		if n := g.Get(w.NodeID); n != nil {
			msg = n.DisplayName() + ": " + msg
		}
		result.Warnings = append(result.Warnings, Diagnostic{Message: msg})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, Diagnostic{Message: e.Error()})
		}
		return result
	}

	// Step 3: Tessellate the design graph into triangle meshes.
	meshes, err := a.tess.Run(ctx, g)
	if err != nil {
		a.log.WithError(err).Error("tessellation failed")
		result.Errors = append(result.Errors, Diagnostic{Message: "tessellation failed: " + err.Error()})
		return result
	}

	for i, m := range meshes {
		if m.Color == "" {
			m.Color = colorPalette[i%len(colorPalette)]
		}
		result.Meshes = append(result.Meshes, m)
	}
	a.log.WithFields(logrus.Fields{
		"parts": len(result.Meshes),
		"nodes": g.NodeCount(),
	}).Info("evaluated")
	return result
}
