package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/tablescout/tablescout"
	"github.com/tablescout/tablescout/internal/adapters/csvlist"
	"github.com/tablescout/tablescout/internal/adapters/file"
	redisstore "github.com/tablescout/tablescout/internal/adapters/redis"
	"github.com/tablescout/tablescout/internal/cache"
	"github.com/tablescout/tablescout/internal/config"
	"github.com/tablescout/tablescout/pkg/adapters/memory"
	"github.com/tablescout/tablescout/pkg/adapters/openai"
	"github.com/tablescout/tablescout/pkg/adapters/process"
	"github.com/tablescout/tablescout/pkg/adapters/prompts"
	"github.com/tablescout/tablescout/pkg/adapters/rss"
	"github.com/tablescout/tablescout/pkg/adapters/sheets"
	"github.com/tablescout/tablescout/pkg/adapters/tavily"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/persistence/middleware"
	"github.com/tablescout/tablescout/pkg/ports"
)

// BuildConcierge assembles the full engine from configuration: evaluator,
// sources, run store with its persistence middleware, curated list, and
// distributed locking when the store is shared. The returned cleanup closes
// whatever the assembly opened and is safe to call on error.
func BuildConcierge(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*tablescout.Concierge, func(), error) {
	noop := func() {}

	if cfg.OpenAI.APIKey == "" {
		return nil, noop, errors.New("OPENAI_API_KEY is required: the evaluator has no offline mode")
	}

	repo, err := prompts.Open(cfg.PromptsDir)
	if err != nil {
		return nil, noop, fmt.Errorf("open prompt repository %q (run `tablescout init` to seed one): %w", cfg.PromptsDir, err)
	}

	responses := OpenCache(cfg)

	evaluator := openai.New(cfg.OpenAI.APIKey, repo,
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithLocation(cfg.Location),
		openai.WithCache(responses),
		openai.WithLogger(logger),
	)

	opts := []tablescout.Option{
		tablescout.WithEvaluator(evaluator),
		tablescout.WithLogger(logger),
		tablescout.WithLifecycleHooks(hooks),
		tablescout.WithLocation(cfg.Location),
		tablescout.WithQualityFloor(cfg.QualityFloor),
	}

	sourceOpts, err := sourceOptions(cfg, logger, responses)
	if err != nil {
		return nil, noop, err
	}
	opts = append(opts, sourceOpts...)

	store, locker, closeStore, err := openRunStore(cfg)
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() { _ = closeStore() }

	opts = append(opts, tablescout.WithRunStore(store))
	if locker != nil {
		opts = append(opts, tablescout.WithLocker(locker))
	}

	lists, err := OpenLists(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	opts = append(opts, tablescout.WithListStore(lists))

	concierge, err := tablescout.New(cfg.DataDir, opts...)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return concierge, cleanup, nil
}

// sourceOptions builds one WithSource per configured source, in file order;
// discovery walks sources in registration order. Web-search sources share a
// tavily client keyed by source ID, scraper sources share a process runner,
// and each feed source gets its own RSS client.
func sourceOptions(cfg *config.Config, logger *slog.Logger, responses *cache.Cache) ([]tablescout.Option, error) {
	specs := map[domain.SourceID]tavily.SourceSpec{}
	commands := map[domain.SourceID]process.Command{}
	for _, src := range cfg.Source {
		id := domain.SourceID(src.ID)
		switch src.Kind() {
		case config.KindTavily:
			specs[id] = tavily.SourceSpec{Domain: src.Domain, Queries: src.Queries}
		case config.KindProcess:
			commands[id] = process.Command{Path: src.Command, Args: src.Args}
		}
	}

	var webSearch *tavily.Client
	if len(specs) > 0 {
		if cfg.Tavily.APIKey == "" {
			return nil, errors.New("TAVILY_API_KEY is required for web-search sources")
		}
		webSearch = tavily.New(cfg.Tavily.APIKey, specs,
			tavily.WithCache(responses),
			tavily.WithMaxResults(cfg.Tavily.MaxResults),
			tavily.WithSearchDepth(cfg.Tavily.Depth),
			tavily.WithLogger(logger),
		)
	}
	var scrapers *process.Runner
	if len(commands) > 0 {
		scrapers = process.New(commands, process.WithLogger(logger))
	}

	var opts []tablescout.Option
	for _, src := range cfg.Source {
		id := domain.SourceID(src.ID)
		switch src.Kind() {
		case config.KindTavily:
			opts = append(opts, tablescout.WithSource(id, webSearch))
		case config.KindRSS:
			opts = append(opts, tablescout.WithSource(id, rss.NewWithOptions(src.Feeds, rss.WithLogger(logger))))
		case config.KindProcess:
			opts = append(opts, tablescout.WithSource(id, scrapers))
		}
	}
	return opts, nil
}

// OpenStore opens the configured run store for administration commands. The
// closer releases the backing connection when there is one.
func OpenStore(cfg *config.Config) (ports.RunStore, func() error, error) {
	store, _, closer, err := openRunStore(cfg)
	return store, closer, err
}

func openRunStore(cfg *config.Config) (ports.RunStore, ports.DistributedLocker, func() error, error) {
	var (
		store  ports.RunStore
		locker ports.DistributedLocker
		closer = func() error { return nil }
	)

	switch cfg.Store.Kind {
	case "file":
		store = file.New(filepath.Join(cfg.DataDir, "sessions"))
	case "memory":
		store = memory.NewStore()
	case "redis":
		client := backend.NewClient(&backend.Options{Addr: cfg.Store.Redis})
		store = redisstore.NewFromClient(client)
		locker = redisstore.NewLocker(client, "tablescout:")
		closer = client.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}

	mws, err := storeMiddleware(cfg.Store)
	if err != nil {
		_ = closer()
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}

// storeMiddleware translates the store configuration into a middleware
// chain. Order matters: sealing is appended first so masking ends up
// outermost and runs before snapshots are encrypted.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.SealKeyFile != "" {
		sealCfg, err := readSealKeys(cfg.SealKeyFile)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewSealing(sealCfg))
	}
	if len(cfg.MaskPatterns) > 0 {
		mws = append(mws, middleware.NewMasking(cfg.MaskPatterns))
	}
	return mws, nil
}

// readSealKeys parses a seal key file: hex-encoded 32-byte keys, one per
// line. The first key encrypts; the rest still decrypt, which is how keys
// rotate without re-encrypting stored runs.
func readSealKeys(path string) (middleware.SealConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return middleware.SealConfig{}, fmt.Errorf("read seal key file: %w", err)
	}

	var keys [][]byte
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, err := hex.DecodeString(line)
		if err != nil {
			return middleware.SealConfig{}, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		if len(key) != 32 {
			return middleware.SealConfig{}, fmt.Errorf("%s line %d: key is %d bytes, want 32", path, i+1, len(key))
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return middleware.SealConfig{}, fmt.Errorf("%s holds no keys", path)
	}
	return middleware.SealConfig{ActiveKey: keys[0], FallbackKeys: keys[1:]}, nil
}

// OpenLists opens the configured curated list backend.
func OpenLists(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ListStore, error) {
	switch cfg.List.Kind {
	case "csv":
		path := cfg.List.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.DataDir, path)
		}
		return csvlist.New(path)
	case "memory":
		return memory.NewList(), nil
	case "sheets":
		client, err := sheets.OAuthClient(ctx, cfg.List.CredentialsFile, cfg.List.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("google sheets auth: %w", err)
		}
		return sheets.New(ctx, cfg.List.SpreadsheetID,
			sheets.WithSheetName(cfg.List.SheetName),
			sheets.WithHTTPClient(client),
			sheets.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown list kind %q", cfg.List.Kind)
	}
}

// OpenCache builds the collaborator response cache. A disabled cache is
// still returned as a pass-through, so adapters wire it unconditionally.
func OpenCache(cfg *config.Config) *cache.Cache {
	dir := cfg.Cache.Dir
	if dir == "" {
		dir = filepath.Join(cfg.DataDir, "cache")
	}
	opts := []cache.Option{}
	if cfg.Cache.TTLHours > 0 {
		opts = append(opts, cache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour))
	}
	if cfg.Cache.Disabled {
		opts = append(opts, cache.Disabled())
	}
	return cache.New(dir, opts...)
}

// DebugHooks logs every lifecycle event, for --log-level debug sessions.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.Debug("phase enter", "session_id", e.SessionID, "phase", e.Phase, "intent", e.Intent)
		},
		OnPhaseLeave: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.Debug("phase leave", "session_id", e.SessionID, "phase", e.Phase)
		},
		OnCollaboratorCall: func(ctx context.Context, e *domain.CollaboratorEvent) {
			logger.Debug("collaborator call", "session_id", e.SessionID, "step", e.Step, "attempt", e.Attempt)
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			if e.Err != "" {
				logger.Debug("collaborator return", "session_id", e.SessionID, "step", e.Step, "err", e.Err, "class", e.Class)
				return
			}
			logger.Debug("collaborator return", "session_id", e.SessionID, "step", e.Step)
		},
		OnRetry: func(ctx context.Context, e *domain.CollaboratorEvent) {
			logger.Debug("retry", "session_id", e.SessionID, "step", e.Step, "attempt", e.Attempt)
		},
	}
}
