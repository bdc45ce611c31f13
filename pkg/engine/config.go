package engine

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/gitfleet/gitfleet/pkg/telemetry"
)

// DefaultWorkingDir is the working directory used when none is
// configured.
const DefaultWorkingDir = ".gitfleet_tmp"

// Config describes one run. Selector and Action are mandatory; every
// other field has a usable default filled in by NewRunner. A Config is
// not mutated after construction.
type Config struct {
	// Selector produces the repository URIs to operate on.
	Selector Selector `validate:"required"`

	// Action is applied to every materialized repository.
	Action Action `validate:"required"`

	// FinalizationAction, when set, is applied to every repository in a
	// second pass after the primary action has run everywhere.
	FinalizationAction Action

	// Credentials attaches authentication to clone operations.
	// Defaults to a no-op.
	Credentials Credentials

	// StatusListener receives progress and message updates. Defaults to
	// a listener that discards everything.
	StatusListener StatusListener

	// WorkingDir is the root directory repositories are cloned under.
	// Defaults to DefaultWorkingDir.
	WorkingDir string

	// ContinueOnError selects the lenient failure policy: per-repository
	// errors are recorded and reported but the run carries on. The zero
	// value is the strict policy, which aborts on the first error.
	ContinueOnError bool

	// Cleanup removes the working directory after the run, even when an
	// earlier phase failed.
	Cleanup bool

	// VCS materializes repositories. Defaults to the git binary.
	VCS VCS

	// Logger, when set, receives structured run logging. Nil disables it.
	Logger *zerolog.Logger

	// Metrics, when set, records run/clone/action counters. Nil disables it.
	Metrics *telemetry.Metrics

	// Tracer, when set, wraps each run and phase in spans. Nil disables it.
	Tracer trace.Tracer
}

var validate = validator.New()

// NewRunner validates the configuration, fills in defaults, and returns
// a runner ready to execute runs. Missing mandatory fields are rejected
// here, not at first use.
func NewRunner(cfg Config) (*Runner, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}
	if cfg.Credentials == nil {
		cfg.Credentials = nopCredentials{}
	}
	if cfg.StatusListener == nil {
		cfg.StatusListener = NopListener{}
	}
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = DefaultWorkingDir
	}
	if cfg.VCS == nil {
		cfg.VCS = gitVCS{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("gitfleet")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Runner{cfg: cfg, log: log}, nil
}
