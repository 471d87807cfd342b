// Package main provides the kingdom turn runner: it loads a stored kingdom
// (or founds a new one), plays one full turn from a plan file, and saves it.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/config"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/game/turn"
	"github.com/cory-johannsen/kingdom/internal/observability"
	"github.com/cory-johannsen/kingdom/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	kingdomID := flag.String("kingdom", "", "ID of the stored kingdom to play")
	newName := flag.String("new", "", "found a new kingdom with this name instead of loading one")
	planPath := flag.String("plan", "", "path to a YAML turn plan; empty plays upkeep and events only")
	flag.Parse()

	if (*kingdomID == "") == (*newName == "") {
		log.Fatalf("exactly one of -kingdom or -new is required")
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	plan, err := LoadPlan(*planPath)
	if err != nil {
		logger.Fatal("loading plan", zap.Error(err))
	}

	catStart := time.Now()
	catalog, err := ruleset.LoadCatalog(cfg.Content.Root)
	if err != nil {
		logger.Fatal("loading content", zap.String("root", cfg.Content.Root), zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("structures", len(catalog.Structures())),
		zap.Int("activities", len(catalog.Activities())),
		zap.Int("events", len(catalog.Events())),
		zap.Int("feats", len(catalog.Feats())),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	eng := turn.NewEngine(catalog, turn.Config{
		Strict:                 cfg.Engine.Strict,
		EventChance:            cfg.Engine.EventChance,
		EventChanceStep:        cfg.Engine.EventChanceStep,
		ScriptInstructionLimit: cfg.Engine.ScriptInstructionLimit,
	}, logger)

	seed := cfg.Engine.Seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			logger.Fatal("generating seed", zap.Error(err))
		}
	}
	logger.Info("dice seeded", zap.Uint64("seed", seed))
	roller := dice.NewLoggedRoller(dice.NewSeededSource(seed), logger)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	repo := postgres.NewKingdomRepository(pool.DB())

	var k *kingdom.Kingdom
	if *newName != "" {
		k = eng.NewKingdom(*newName)
		if err := repo.Create(ctx, k); err != nil {
			logger.Fatal("creating kingdom", zap.String("name", *newName), zap.Error(err))
		}
		logger.Info("kingdom founded", zap.String("kingdom_id", k.ID), zap.String("kingdom", k.Name))
	} else {
		k, err = repo.Get(ctx, *kingdomID)
		if errors.Is(err, postgres.ErrKingdomNotFound) {
			logger.Fatal("no such kingdom", zap.String("kingdom_id", *kingdomID))
		}
		if err != nil {
			logger.Fatal("loading kingdom", zap.String("kingdom_id", *kingdomID), zap.Error(err))
		}
	}

	klog := observability.ForKingdom(logger, k.ID, k.Name)
	next, rep, err := playTurn(eng, k, plan, roller, klog)
	if err != nil {
		klog.Fatal("playing turn", zap.Error(err))
	}
	if err := repo.Save(ctx, next); err != nil {
		klog.Fatal("saving kingdom", zap.Error(err))
	}

	printReport(os.Stdout, next, rep)
	klog.Info("turn complete",
		zap.Int("turn", rep.Turn),
		zap.Int("skipped", len(rep.Skipped)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
