package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vk/spikegridgo/internal/sim"
)

// Strategy selects the concurrency backend behind the engine.
type Strategy int

const (
	// StrategyPool runs phases on a fixed set of persistent workers.
	StrategyPool Strategy = iota
	// StrategySpawner spawns one throttled goroutine per task.
	StrategySpawner
)

func (s Strategy) String() string {
	switch s {
	case StrategyPool:
		return "pool"
	case StrategySpawner:
		return "spawn"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a CLI/config string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "pool":
		return StrategyPool, nil
	case "spawn", "spawner":
		return StrategySpawner, nil
	default:
		return 0, fmt.Errorf("invalid strategy %q: must be 'pool' or 'spawn'", s)
	}
}

// DefaultQueueCapacity bounds pending tasks when no capacity is configured.
// It must be at least the largest single-phase task count of the graph.
const DefaultQueueCapacity = 1024

// Config holds the engine's construction parameters.
type Config struct {
	// Workers is the concurrency budget. Zero selects the sequential
	// in-process fallback.
	Workers int
	// Strategy picks the backend; ignored when Workers is zero.
	Strategy Strategy
	// QueueCapacity bounds pending tasks per phase. Zero applies
	// DefaultQueueCapacity.
	QueueCapacity int
	// StepTimeout is the per-phase barrier deadline. Zero disables it.
	StepTimeout time.Duration
}

// Engine owns the executor state for a simulation: it is constructed once at
// setup, passed by reference to every step, and torn down exactly once with
// Shutdown. There are no hidden process-wide singletons.
type Engine struct {
	cfg     Config
	backend Backend
	coord   *Coordinator

	closed atomic.Bool
	steps  atomic.Int64
}

// New creates an engine and, for the pool strategy, starts its workers. The
// context carries the logger used by worker loops for the engine's lifetime.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("worker count must not be negative, got %d", cfg.Workers)
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}

	var backend Backend
	if cfg.Workers > 0 {
		switch cfg.Strategy {
		case StrategyPool:
			pool := NewWorkerPool(cfg.Workers, cfg.QueueCapacity)
			pool.Start(ctx)
			backend = pool
		case StrategySpawner:
			backend = NewThrottledSpawner(cfg.Workers, cfg.QueueCapacity)
		default:
			return nil, fmt.Errorf("unknown strategy %v", cfg.Strategy)
		}
	}

	return &Engine{
		cfg:     cfg,
		backend: backend,
		coord:   NewCoordinator(backend, cfg.StepTimeout),
	}, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// RunStep advances the graph by one timestep through the four phase
// barriers. It fails with ErrEngineClosed after Shutdown.
func (e *Engine) RunStep(ctx context.Context, g *sim.Graph) (*StepReport, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	step := int(e.steps.Add(1)) - 1
	return e.coord.RunStep(ctx, g, step)
}

// Shutdown tears the executor down, waiting for in-flight tasks. It must be
// called exactly once after the last RunStep; a repeat call fails with
// ErrAlreadyStopped.
func (e *Engine) Shutdown() error {
	if e.closed.Swap(true) {
		return ErrAlreadyStopped
	}
	if e.backend != nil {
		return e.backend.Stop()
	}
	return nil
}
