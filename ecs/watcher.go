package ecs

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

// Watcher polls ECS for a service's running tasks on a fixed cadence and
// republishes the resolved backends through the reconfigure hook.
type Watcher struct {
	config      Config
	gateway     Gateway
	defaults    []api.Backend
	reconfigure api.ReconfigureFunc
	logger      zerolog.Logger

	mu       sync.Mutex
	backends []api.Backend
	started  bool

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	retryDelay func() time.Duration
}

// New creates a watcher for one service backed by the given gateway.
func New(cfg Config, gw Gateway, defaults []api.Backend, hook api.ReconfigureFunc, logger zerolog.Logger) *Watcher {
	return &Watcher{
		config:      cfg,
		gateway:     gw,
		defaults:    append([]api.Backend(nil), defaults...),
		reconfigure: hook,
		logger: logger.With().
			Str("watcher", Method).
			Str("service", cfg.Service).
			Logger(),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		retryDelay: defaultRetryDelay,
	}
}

// NewFromService validates the service's discovery block, builds AWS
// clients from it, and returns a ready watcher.
func NewFromService(ctx context.Context, svc api.Service, hook api.ReconfigureFunc, logger zerolog.Logger) (*Watcher, error) {
	cfg := FromService(svc)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clients, err := NewAWSClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, NewGateway(clients), svc.DefaultServers, hook, logger), nil
}

// Name returns the service name this watcher discovers.
func (w *Watcher) Name() string { return w.config.Service }

// Validate checks the watcher's configuration.
func (w *Watcher) Validate() error { return w.config.Validate() }

// Start validates the configuration and launches the poll loop. The first
// poll runs immediately.
func (w *Watcher) Start() error {
	if err := w.config.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	w.logger.Info().
		Str("cluster", w.config.Cluster).
		Str("family", w.config.Family).
		Dur("check_interval", w.config.CheckInterval).
		Msg("starting discovery")
	go w.run()
	return nil
}

// Stop signals the loop to exit and waits for the in-flight cycle to
// finish. AWS calls already in flight are not interrupted. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
}

// Backends returns a snapshot of the last published backend list.
func (w *Watcher) Backends() []api.Backend {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]api.Backend(nil), w.backends...)
}

func (w *Watcher) run() {
	defer close(w.done)

	// no mid-call cancellation; stop is checked at cycle boundaries
	ctx := context.Background()

	for {
		select {
		case <-w.stopCh:
			w.logger.Info().Msg("discovery stopped")
			return
		default:
		}

		start := time.Now()
		current, err := resolveBackends(ctx, w.gateway, w.config)
		if err != nil {
			// recoverable regardless of kind; the retain/fallback policy
			// keeps prior backends live while we retry
			delay := w.retryDelay()
			w.logger.Error().Err(err).Dur("retry_in", delay).Msg("discovery cycle failed")
			if !w.sleep(delay) {
				w.logger.Info().Msg("discovery stopped")
				return
			}
			continue
		}

		w.publish(current)

		if remaining := w.config.CheckInterval - time.Since(start); remaining > 0 {
			if !w.sleep(remaining) {
				w.logger.Info().Msg("discovery stopped")
				return
			}
		}
	}
}

// publish swaps in the reconciled backend list and fires the reconfigure
// hook as one atomic step: a reader of Backends never sees a new list
// without the hook having been invoked for it, and never a hook invocation
// before the list is visible.
func (w *Watcher) publish(current []api.Backend) {
	w.mu.Lock()
	defer w.mu.Unlock()

	published, changed := reconcile(w.backends, current, w.defaults)
	if len(current) == 0 {
		if len(w.defaults) > 0 {
			w.logger.Warn().
				Int("default_servers", len(w.defaults)).
				Msg("no backends discovered, falling back to default servers")
		} else {
			w.logger.Warn().
				Int("previous", len(w.backends)).
				Msg("no backends discovered and no default servers, keeping previous backends")
		}
	}
	if !changed {
		return
	}

	w.backends = published
	w.logger.Info().Int("backends", len(published)).Msg("backends changed, reconfiguring")
	if w.reconfigure != nil {
		w.reconfigure(w.config.Service, append([]api.Backend(nil), published...))
	}
}

// sleep waits for d or until Stop is called; reports false when stopping.
func (w *Watcher) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

// defaultRetryDelay is a uniform 1..5s pause after a failed cycle, kept
// independent of check_interval so retries from many watchers don't
// synchronize against the API.
func defaultRetryDelay() time.Duration {
	return time.Duration(1+rand.Intn(5)) * time.Second
}
