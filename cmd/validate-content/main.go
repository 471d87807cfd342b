// Package main checks a rules content tree: it loads every catalog, compiles
// every effect, and exits non-zero if anything is corrupt.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/kingdom/internal/config"
	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/observability"
)

// Summary counts what a content tree defines.
type Summary struct {
	Skills      int
	Structures  int
	Activities  int
	Events      int
	Feats       int
	Milestones  int
	Corruptions int
}

// validate loads the content under root and compiles its effects with a
// lenient guard, counting every corruption the guard reports.
//
// Postcondition: returns a non-nil error when the catalog fails to load or
// validate; compile-time corruption is reported through Summary.Corruptions.
func validate(root string, logger *zap.Logger) (Summary, error) {
	catalog, err := ruleset.LoadCatalog(root)
	if err != nil {
		return Summary{}, err
	}
	var corrupt int
	counting := logger.WithOptions(zap.Hooks(func(e zapcore.Entry) error {
		if e.Level == zapcore.ErrorLevel && e.Message == "catalog corruption" {
			corrupt++
		}
		return nil
	}))
	effect.NewBook(catalog, ruleset.NewGuard(counting, false))
	return Summary{
		Skills:      len(catalog.Tables.SkillNames()),
		Structures:  len(catalog.Structures()),
		Activities:  len(catalog.Activities()),
		Events:      len(catalog.Events()),
		Feats:       len(catalog.Feats()),
		Milestones:  len(catalog.Milestones()),
		Corruptions: corrupt,
	}, nil
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	root := flag.String("root", "", "content root; overrides content.root from the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *root != "" {
		cfg.Content.Root = *root
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	sum, err := validate(cfg.Content.Root, logger)
	if err != nil {
		logger.Fatal("content invalid", zap.String("root", cfg.Content.Root), zap.Error(err))
	}

	fmt.Fprintf(os.Stdout, "%s: %d skills, %d structures, %d activities, %d events, %d feats, %d milestones [%s]\n",
		cfg.Content.Root, sum.Skills, sum.Structures, sum.Activities, sum.Events, sum.Feats, sum.Milestones, time.Since(start))
	if sum.Corruptions > 0 {
		logger.Error("content has corrupt effects", zap.Int("count", sum.Corruptions))
		os.Exit(1)
	}
}
