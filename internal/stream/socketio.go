// Package stream publishes per-step reports to a remote socket.io
// collector. It is an optional observer: the engine runs identically with
// streaming disabled, and a slow collector never blocks a phase barrier.
package stream

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/spikegridgo/internal/ctxlog"
	"github.com/vk/spikegridgo/internal/engine"
)

// Options configures the emitter connection.
type Options struct {
	URL                string
	Namespace          string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// Emitter is a connected socket.io client that forwards step reports as
// "step_report" events.
type Emitter struct {
	io *socket.Socket
}

// Connect dials the collector and waits for the initial connection.
func Connect(ctx context.Context, opts Options) (*Emitter, error) {
	logger := ctxlog.FromContext(ctx).With("collector", opts.URL)
	logger.Debug("Connecting step-report emitter.")

	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collector URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	var isConnected atomic.Bool
	done := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		if isConnected.Swap(true) {
			return
		}
		logger.Info("Step-report emitter connected", "namespace", opts.Namespace, "sid", io.Id())
		done <- nil
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			done <- err
			return
		}
		done <- fmt.Errorf("connect_error: %v", errs[0])
	})

	io.Connect()

	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	select {
	case <-connectCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for initial connection to %s", opts.URL)
	case err := <-done:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("collector connection failed: %w", err)
		}
	}

	return &Emitter{io: io}, nil
}

// Emit forwards one step report. Events are fire-and-forget so the
// simulation loop never waits on the collector.
func (e *Emitter) Emit(report *engine.StepReport) error {
	phases := make([]map[string]any, len(report.Phases))
	for i, p := range report.Phases {
		phases[i] = map[string]any{
			"phase":       p.Phase.String(),
			"tasks":       p.Tasks,
			"duration_ms": float64(p.Duration) / float64(time.Millisecond),
		}
	}
	return e.io.Emit("step_report", map[string]any{
		"step":        report.Step,
		"duration_ms": float64(report.Duration) / float64(time.Millisecond),
		"tasks":       report.TaskCount(),
		"phases":      phases,
	})
}

// Close disconnects from the collector.
func (e *Emitter) Close() {
	e.io.Disconnect()
}
