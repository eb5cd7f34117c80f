package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rolodex/internal/config"
	"rolodex/internal/contacts"
	"rolodex/internal/dedupe"
	"rolodex/internal/enrichment"
	"rolodex/internal/identcache"
	"rolodex/internal/logging"
	"rolodex/internal/resolver"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app bundles the wired components behind one open store handle.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *contacts.Store
	cache    *identcache.Cache
	resolver *resolver.Resolver
	engine   *dedupe.Engine
	sweeper  *dedupe.Sweeper
	tracker  *enrichment.Tracker
	planner  *enrichment.Planner
}

// withApp opens the store and hands a fully wired app to fn, closing the
// store when fn returns.
func (c *commandContext) withApp(fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{cfg.LogFilePath()},
	})
	if err != nil {
		return err
	}

	store, err := contacts.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cache := identcache.New(cfg.Cache.Capacity, cfg.CacheTTL(), logger)
	res := resolver.New(store, cache, cfg, logger)
	engine := dedupe.NewEngine(store, cache, cfg, logger)
	tracker := enrichment.NewTracker(store, logger)

	return fn(&app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		cache:    cache,
		resolver: res,
		engine:   engine,
		sweeper:  dedupe.NewSweeper(engine, store, cfg, logger),
		tracker:  tracker,
		planner:  enrichment.NewPlanner(res, store, tracker, logger),
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
