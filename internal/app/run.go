package app

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/vk/spikegridgo/internal/ctxlog"
	"github.com/vk/spikegridgo/internal/encode"
	"github.com/vk/spikegridgo/internal/engine"
	"github.com/vk/spikegridgo/internal/netcfg"
	"github.com/vk/spikegridgo/internal/stream"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}

	a.logger.Debug("Loading network definition...", "path", a.config.NetworkPath)
	net, err := netcfg.Load(a.config.NetworkPath)
	if err != nil {
		return fmt.Errorf("failed to load network: %w", err)
	}
	a.logger.Info("Network loaded.",
		"layers", len(net.Graph.Layers()),
		"connections", len(net.Graph.Connections()),
		"monitors", len(net.Graph.Monitors()))

	net.Graph.SetLearning(a.config.Learning)

	engineCfg := a.resolveEngineConfig(net.Engine)
	eng, err := engine.New(ctx, engineCfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	shutdownDone := false
	defer func() {
		if !shutdownDone {
			if err := eng.Shutdown(); err != nil {
				a.logger.Error("Engine shutdown failed.", "error", err)
			}
		}
	}()

	var emitter *stream.Emitter
	if a.config.StreamURL != "" {
		emitter, err = stream.Connect(ctx, stream.Options{URL: a.config.StreamURL})
		if err != nil {
			return fmt.Errorf("failed to connect step-report emitter: %w", err)
		}
		defer emitter.Close()
	}

	a.logger.Info("🚀 Starting simulation...",
		"steps", a.config.Steps,
		"workers", engineCfg.Workers,
		"strategy", engineCfg.Strategy.String())

	rng := rand.New(rand.NewPCG(a.config.Seed, a.config.Seed))
	for step := 0; step < a.config.Steps; step++ {
		a.injectInputs(rng, net, step)

		report, err := eng.RunStep(ctx, net.Graph)
		if err != nil {
			return fmt.Errorf("step %d failed: %w", step, err)
		}

		a.logger.Debug("Step complete.", "step", report.Step, "tasks", report.TaskCount(), "duration", report.Duration)
		if emitter != nil {
			if err := emitter.Emit(report); err != nil {
				a.logger.Warn("Failed to emit step report.", "step", report.Step, "error", err)
			}
		}
	}

	net.Graph.Normalize()

	shutdownDone = true
	if err := eng.Shutdown(); err != nil {
		return fmt.Errorf("engine shutdown failed: %w", err)
	}

	a.logger.Info("🏁 Simulation finished.", "steps", a.config.Steps)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// resolveEngineConfig layers the CLI overrides on top of the network file's
// engine block.
func (a *App) resolveEngineConfig(fileCfg engine.Config) engine.Config {
	cfg := fileCfg
	if a.config.Workers >= 0 {
		cfg.Workers = a.config.Workers
	}
	if a.config.Strategy != "" {
		// Validated by the CLI parser before it reaches Run.
		strategy, err := engine.ParseStrategy(a.config.Strategy)
		if err == nil {
			cfg.Strategy = strategy
		}
	}
	if a.config.StepTimeout > 0 {
		cfg.StepTimeout = a.config.StepTimeout
	}
	return cfg
}

// injectInputs generates fresh external input for every layer carrying an
// input declaration, ahead of the next step. Layers are visited in graph
// order so a fixed seed reproduces the same input sequence.
func (a *App) injectInputs(rng *rand.Rand, net *netcfg.Network, step int) {
	for _, layer := range net.Graph.Layers() {
		spec, ok := net.Inputs[layer.Name()]
		if !ok {
			continue
		}
		var input []float64
		switch spec.Encoding {
		case "regular":
			input = encode.Regular(step, spec.Period, layer.Size())
		case "constant":
			input = encode.Constant(layer.Size(), spec.Value)
		default:
			input = encode.Bernoulli(rng, layer.Size(), spec.Rate)
		}
		// SetInput only fails on a size mismatch, which translate rules out.
		_ = layer.SetInput(input)
	}
}
