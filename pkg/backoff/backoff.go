// pkg/backoff/backoff.go
package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/YaganovValera/admin-console/pkg/logger"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

var metrics = struct {
	Retries   *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Successes *prometheus.CounterVec
	Delays    *prometheus.HistogramVec
}{
	Retries: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console", Subsystem: "backoff", Name: "retries_total",
			Help: "Number of back-off retry attempts",
		},
		[]string{"policy"},
	),
	Failures: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console", Subsystem: "backoff", Name: "failures_total",
			Help: "Number of operations that gave up after retries",
		},
		[]string{"policy"},
	),
	Successes: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console", Subsystem: "backoff", Name: "successes_total",
			Help: "Number of operations that eventually succeeded",
		},
		[]string{"policy"},
	),
	Delays: promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "console", Subsystem: "backoff", Name: "retry_delay_seconds",
			Help:    "Histogram of retry delays (seconds)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"policy"},
	),
}

const policyExponential = "exponential"

// -----------------------------------------------------------------------------
// Configuration (exponential)
// -----------------------------------------------------------------------------

// Config contains tunables for exponential back-off.
//
// All zero values are treated as "use reasonable default".
type Config struct {
	// InitialInterval is the first delay before retrying.
	InitialInterval time.Duration `mapstructure:"initial_interval"`

	// RandomizationFactor adds ±jitter to each delay (0.0 ≤ f ≤ 1.0).
	RandomizationFactor float64 `mapstructure:"randomization_factor"`

	// Multiplier multiplies the previous delay to get the next one.
	Multiplier float64 `mapstructure:"multiplier"`

	// MaxInterval caps each individual delay.
	MaxInterval time.Duration `mapstructure:"max_interval"`

	// MaxElapsedTime is the total time allowed for all retries before
	// giving up. Zero → unlimited.
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`

	// PerAttemptTimeout limits the execution time of every single
	// attempt. Zero → no per-attempt timeout.
	PerAttemptTimeout time.Duration `mapstructure:"per_attempt_timeout"`
}

func (c *Config) applyDefaults() {
	if c.InitialInterval <= 0 {
		c.InitialInterval = time.Second
	}
	if c.RandomizationFactor <= 0 {
		c.RandomizationFactor = 0.5
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
}

func (c Config) validate() error {
	if c.RandomizationFactor < 0 || c.RandomizationFactor > 1 {
		return fmt.Errorf("backoff: RandomizationFactor must be in [0,1]")
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("backoff: Multiplier must be >= 1")
	}
	return nil
}

// RetryableFunc is a unit of work that may be re-executed until it
// succeeds or the back-off strategy gives up.
type RetryableFunc func(ctx context.Context) error

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// ErrMaxRetries is returned when the function was still failing after all
// retries were exhausted.
type ErrMaxRetries struct {
	Err      error // last error returned by fn
	Attempts int   // number of attempts performed
}

func (e *ErrMaxRetries) Error() string {
	return fmt.Sprintf("backoff: %d attempt(s) failed: %v", e.Attempts, e.Err)
}
func (e *ErrMaxRetries) Unwrap() error { return e.Err }

// Permanent marks an error as non-retryable.
func Permanent(err error) error { return backoff.Permanent(err) }

// -----------------------------------------------------------------------------
// Exponential execution
// -----------------------------------------------------------------------------

// Execute runs fn() with an exponential back-off defined by cfg, emitting
// Prometheus metrics and structured logs via log.
func Execute(ctx context.Context, cfg Config, log *logger.Logger, fn RetryableFunc) error {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("backoff: invalid config: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.RandomizationFactor = cfg.RandomizationFactor
	bo.Multiplier = cfg.Multiplier
	bo.MaxInterval = cfg.MaxInterval
	if cfg.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = cfg.MaxElapsedTime
	} else {
		bo.MaxElapsedTime = 0 // unlimited
	}

	return run(ctx, backoff.WithContext(bo, ctx), policyExponential, cfg.PerAttemptTimeout, log, fn)
}

// -----------------------------------------------------------------------------
// Linear execution
// -----------------------------------------------------------------------------

// Linear is a back-off strategy whose n-th delay is Base×n, without jitter,
// giving up after MaxAttempts retries. The unusual shape (linear growth,
// hard cap, no automatic reset) matches the reconnect contract of the
// trading backend: once the cap is hit the caller must explicitly
// re-initiate the connection to start a new sequence.
type Linear struct {
	Base        time.Duration
	MaxAttempts int

	attempt int
}

// NewLinear returns a Linear strategy with defaults applied
// (base 1s, 5 attempts).
func NewLinear(base time.Duration, maxAttempts int) *Linear {
	if base <= 0 {
		base = time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Linear{Base: base, MaxAttempts: maxAttempts}
}

// NextBackOff implements backoff.BackOff.
func (l *Linear) NextBackOff() time.Duration {
	if l.attempt >= l.MaxAttempts {
		return backoff.Stop
	}
	l.attempt++
	return l.Base * time.Duration(l.attempt)
}

// Reset implements backoff.BackOff. It starts a new linear sequence.
func (l *Linear) Reset() { l.attempt = 0 }

// Attempt returns the number of delays handed out in the current sequence.
func (l *Linear) Attempt() int { return l.attempt }

// Stop is the sentinel NextBackOff returns when the sequence is exhausted.
const Stop = backoff.Stop

// -----------------------------------------------------------------------------
// Shared core
// -----------------------------------------------------------------------------

func run(ctx context.Context, bo backoff.BackOffContext, policy string, perAttempt time.Duration, log *logger.Logger, fn RetryableFunc) error {
	attempts := 0
	operation := func() error {
		attempts++
		if perAttempt > 0 {
			atCtx, cancel := context.WithTimeout(ctx, perAttempt)
			defer cancel()
			return fn(atCtx)
		}
		return fn(ctx)
	}
	notify := func(err error, delay time.Duration) {
		metrics.Retries.WithLabelValues(policy).Inc()
		metrics.Delays.WithLabelValues(policy).Observe(delay.Seconds())
		log.Warn("back-off retry",
			zap.String("policy", policy),
			zap.Int("attempt", attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		metrics.Failures.WithLabelValues(policy).Inc()
		log.Error("back-off give-up",
			zap.String("policy", policy),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return &ErrMaxRetries{Err: err, Attempts: attempts}
	}

	metrics.Successes.WithLabelValues(policy).Inc()
	return nil
}
