package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/bitzstein/synapse-aws-ecs/api"
	"github.com/bitzstein/synapse-aws-ecs/registry"
)

type fileConfig struct {
	Services  []api.Service `toml:"services"`
	StateFile string        `toml:"state_file"`
}

func main() {
	configPath := flag.String("config", "synapse.toml", "path to service configuration")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", "synapse-ecs").
		Logger()

	var cfg fileConfig
	if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
		logger.Fatal().Err(err).Str("config", *configPath).Msg("failed to load configuration")
	}
	if len(cfg.Services) == 0 {
		logger.Fatal().Str("config", *configPath).Msg("no services configured")
	}

	state := newStateWriter(cfg.StateFile)
	hook := func(service string, backends []api.Backend) {
		logger.Info().Str("service", service).Int("backends", len(backends)).Msg("applying new backends")
		if err := state.write(service, backends); err != nil {
			logger.Error().Err(err).Str("state_file", cfg.StateFile).Msg("failed to write state file")
		}
	}

	ctx := context.Background()
	watchers := make([]api.Watcher, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		w, err := registry.New(ctx, svc, hook, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("service", svc.Name).Msg("invalid service configuration")
		}
		watchers = append(watchers, w)
	}
	for _, w := range watchers {
		if err := w.Start(); err != nil {
			logger.Fatal().Err(err).Str("service", w.Name()).Msg("failed to start watcher")
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")
	for _, w := range watchers {
		w.Stop()
	}
}

// stateWriter persists the latest backend list per service as a JSON file
// for downstream configurators to pick up. Writes go through a temp file
// so readers never see a partial document.
type stateWriter struct {
	path string

	mu       sync.Mutex
	services map[string][]api.Backend
}

func newStateWriter(path string) *stateWriter {
	return &stateWriter{
		path:     path,
		services: make(map[string][]api.Backend),
	}
}

func (s *stateWriter) write(service string, backends []api.Backend) error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.services[service] = backends
	data, err := json.MarshalIndent(s.services, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
