// Command seed prepares a development database: it runs migrations, registers
// promotion groups and optionally activates a user without going through
// Telegram.
//
//	seed --group=-1001234:Deals --group=-1005678 --activate=42 --plan=1M
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"promo-bot/internal/config"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
	pg "promo-bot/internal/infra/db/postgres"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/usecase"
)

type cli struct {
	Config   string   `help:"Path to the YAML config file." default:"config.yaml"`
	Group    []string `help:"Group to register as chatID[:title]. Repeatable." sep:"none"`
	Activate int64    `help:"Telegram user id to register and activate."`
	Plan     string   `help:"Plan code used with --activate." default:"1M" enum:"1W,1M,3M,1Y"`
}

func main() {
	var args cli
	kong.Parse(&args, kong.Name("seed"), kong.Description("Seed a development database."))

	cfg, err := config.LoadConfig(args.Config, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	groupRepo := pg.NewGroupRepo(pool)
	var registeredBy int64
	if len(cfg.Bot.AdminIDs) > 0 {
		registeredBy = cfg.Bot.AdminIDs[0]
	}
	for _, raw := range args.Group {
		g, err := parseGroup(raw, registeredBy)
		if err != nil {
			logger.Fatal().Err(err).Str("group", raw).Msg("bad --group value")
		}
		if err := groupRepo.Upsert(ctx, repository.NoTX, g); err != nil {
			logger.Fatal().Err(err).Int64("chat_id", g.ChatID).Msg("register group")
		}
		fmt.Printf("group %d (%s) registered\n", g.ChatID, g.DisplayName())
	}

	if args.Activate != 0 {
		userUC := usecase.NewUserUseCase(pg.NewUserRepo(pool), pg.NewReferralRepo(pool), pg.NewTxManager(pool), logger)
		if _, err := userUC.RegisterOrFetch(ctx, args.Activate, "", "seed", ""); err != nil {
			logger.Fatal().Err(err).Msg("register user")
		}
		p, expiry, err := userUC.Activate(ctx, args.Activate, args.Plan)
		if err != nil {
			logger.Fatal().Err(err).Msg("activate user")
		}
		fmt.Printf("user %d activated on %s until %s\n", args.Activate, p.Label, expiry.Format(time.RFC3339))
	}

	n, err := groupRepo.Count(ctx, repository.NoTX)
	if err != nil {
		logger.Fatal().Err(err).Msg("count groups")
	}
	fmt.Printf("seeding complete, %d groups registered\n", n)
}

func parseGroup(raw string, registeredBy int64) (*model.Group, error) {
	idPart, title, _ := strings.Cut(raw, ":")
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("chat id %q: %w", idPart, err)
	}
	return model.NewGroup(id, strings.TrimSpace(title), registeredBy)
}
