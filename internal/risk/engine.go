package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/metrics"
)

// =============================================================================
// VaR/ES delegate
// =============================================================================

// VaRESEngine turns a horizon-scaled (mu, sigma) into VaR and ES.
// Implementations may be slow or unreliable; callers bound them with a timeout.
type VaRESEngine interface {
	Compute(ctx context.Context, mu, sigma float64) (VaRES, error)
}

// EngineFunc adapts a function to VaRESEngine
type EngineFunc func(ctx context.Context, mu, sigma float64) (VaRES, error)

// Compute implements VaRESEngine
func (f EngineFunc) Compute(ctx context.Context, mu, sigma float64) (VaRES, error) {
	return f(ctx, mu, sigma)
}

// NewEngine builds the configured engine, wrapped with timeout and metrics
func NewEngine(cfg config.VaREngineConfig, client *httputil.Client) (VaRESEngine, error) {
	var engine VaRESEngine
	switch cfg.Mode {
	case "simulated", "":
		engine = &SimulatedEngine{Confidence: cfg.Confidence, Simulations: cfg.Simulations, Seed: cfg.Seed}
	case "parametric":
		engine = &ParametricEngine{Confidence: cfg.Confidence}
	case "process":
		engine = &ProcessEngine{Path: cfg.Path}
	case "http":
		if client == nil {
			return nil, fmt.Errorf("http engine requires a client")
		}
		engine = &HTTPEngine{Client: client, URL: cfg.URL}
	default:
		return nil, fmt.Errorf("unknown var engine mode %q", cfg.Mode)
	}

	name := cfg.Mode
	if name == "" {
		name = "simulated"
	}
	return Instrumented(name, WithTimeout(engine, cfg.Timeout)), nil
}

// WithTimeout bounds every call to the wrapped engine
func WithTimeout(engine VaRESEngine, timeout time.Duration) VaRESEngine {
	if timeout <= 0 {
		return engine
	}
	return EngineFunc(func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return engine.Compute(ctx, mu, sigma)
	})
}

// Instrumented records call outcomes and latency
func Instrumented(name string, engine VaRESEngine) VaRESEngine {
	return EngineFunc(func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		start := time.Now()
		out, err := engine.Compute(ctx, mu, sigma)
		metrics.VaREngineDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		outcome := "ok"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			outcome = "timeout"
		case err != nil:
			outcome = "error"
		}
		metrics.VaREngineCalls.WithLabelValues(name, outcome).Inc()
		return out, err
	})
}

// =============================================================================
// Out-of-process engines
// =============================================================================

// ProcessEngine runs an executable that reads "mu sigma" on stdin
// and prints {"var": ..., "es": ...} on stdout.
type ProcessEngine struct {
	Path string
	Args []string
}

// Compute implements VaRESEngine
func (e *ProcessEngine) Compute(ctx context.Context, mu, sigma float64) (VaRES, error) {
	cmd := exec.CommandContext(ctx, e.Path, e.Args...)
	cmd.Stdin = strings.NewReader(
		strconv.FormatFloat(mu, 'g', -1, 64) + " " + strconv.FormatFloat(sigma, 'g', -1, 64) + "\n",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return VaRES{}, fmt.Errorf("%w: %w", ErrExternalEngine, ctxErr)
		}
		return VaRES{}, fmt.Errorf("%w: %s: %v: %s", ErrExternalEngine, e.Path, err, strings.TrimSpace(stderr.String()))
	}

	return decodeVaRES(stdout.Bytes())
}

// HTTPEngine posts {"mu","sigma"} to a remote engine
type HTTPEngine struct {
	Client *httputil.Client
	URL    string
}

type engineRequest struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Compute implements VaRESEngine
func (e *HTTPEngine) Compute(ctx context.Context, mu, sigma float64) (VaRES, error) {
	var raw json.RawMessage
	if err := e.Client.PostJSON(ctx, e.URL, engineRequest{Mu: mu, Sigma: sigma}, &raw); err != nil {
		return VaRES{}, fmt.Errorf("%w: %w", ErrExternalEngine, err)
	}
	return decodeVaRES(raw)
}

// decodeVaRES treats missing, malformed or non-finite output as an engine failure
func decodeVaRES(data []byte) (VaRES, error) {
	var out struct {
		VaR *float64 `json:"var"`
		ES  *float64 `json:"es"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), &out); err != nil {
		return VaRES{}, fmt.Errorf("%w: malformed output: %v", ErrExternalEngine, err)
	}
	if out.VaR == nil || out.ES == nil {
		return VaRES{}, fmt.Errorf("%w: output missing var or es", ErrExternalEngine)
	}
	if !finite(*out.VaR, *out.ES) {
		return VaRES{}, fmt.Errorf("%w: non-finite output", ErrExternalEngine)
	}
	return VaRES{VaR: *out.VaR, ES: *out.ES}, nil
}
