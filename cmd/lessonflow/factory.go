package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/config"
	"github.com/aretw0/lessonflow/pkg/adapters/file"
	"github.com/aretw0/lessonflow/pkg/adapters/memory"
	"github.com/aretw0/lessonflow/pkg/adapters/redis"
	"github.com/aretw0/lessonflow/pkg/adapters/sqlite"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/ports"
	"github.com/aretw0/lessonflow/pkg/workspace"
)

const defaultSQLitePath = "lessonflow.db"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the flow store selected by the configuration. The locker
// is nil unless the store is shared between processes.
func openStore(cfg config.Config) (ports.FlowStore, ports.DistributedLocker, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil, nopCloser{}, nil
	case config.DriverFile:
		return file.New(cfg.Store.Path), nil, nopCloser{}, nil
	case config.DriverSQLite:
		path := cfg.Store.Path
		if path == "" {
			path = defaultSQLitePath
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store, nil
	case config.DriverRedis:
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return nil, nil, nil, err
		}
		prefix := cfg.Store.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		r := cfg.Store.Redis
		store := redis.New(r.Addr, r.Password, r.DB, redis.WithPrefix(prefix), redis.WithTTL(ttl))
		return store, redis.NewLocker(store.Client(), prefix), store, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// editorOptions maps the history settings onto editor options.
func editorOptions(cfg config.Config, log *slog.Logger, hooks domain.LifecycleHooks) ([]lessonflow.Option, error) {
	delay, err := cfg.DebounceDelay()
	if err != nil {
		return nil, err
	}
	opts := []lessonflow.Option{
		lessonflow.WithLogger(log),
		lessonflow.WithHistoryLimit(cfg.History.MaxEntries),
		lessonflow.WithLifecycleHooks(hooks),
	}
	if delay > 0 {
		opts = append(opts, lessonflow.WithDebounceDelay(delay))
	}
	return opts, nil
}

// newManager opens the configured store and wraps it in a workspace.
func newManager(cfg config.Config, log *slog.Logger, hooks domain.LifecycleHooks) (*workspace.Manager, io.Closer, error) {
	store, locker, closer, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	edOpts, err := editorOptions(cfg, log, hooks)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	opts := []workspace.Option{
		workspace.WithLogger(log),
		workspace.WithEditorOptions(edOpts...),
	}
	if locker != nil {
		opts = append(opts, workspace.WithLocker(locker))
	}
	return workspace.NewManager(store, opts...), closer, nil
}
