package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"giveaway-bot/internal/bot"
	"giveaway-bot/internal/common/config"
	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	"giveaway-bot/internal/features/activation/repository"
	filerepo "giveaway-bot/internal/features/activation/repository/file"
	redisrepo "giveaway-bot/internal/features/activation/repository/redis"
	activationsvc "giveaway-bot/internal/features/activation/service"
	giveawaysvc "giveaway-bot/internal/features/giveaway/service"
	setupsvc "giveaway-bot/internal/features/setup/service"
	apphttp "giveaway-bot/internal/http"
	"giveaway-bot/internal/platform/discord"
	"giveaway-bot/internal/platform/metrics"
	redisplatform "giveaway-bot/internal/platform/redis"
	"giveaway-bot/internal/workers"
)

const serviceName = "giveaway-bot"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{Service: serviceName})
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(logger.Options{Service: serviceName, Debug: cfg.Debug, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Bool("debug", cfg.Debug).Msg("Starting Giveaway Bot")

	m := metrics.New()

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	client := discord.NewClient(session)

	location, err := time.LoadLocation(cfg.Giveaway.DisplayTimezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid display timezone")
	}
	entryEmoji := discordgo.Emoji{
		Name:     cfg.Giveaway.EntryEmojiName,
		ID:       cfg.Giveaway.EntryEmojiID,
		Animated: cfg.Giveaway.EntryEmojiAnimated,
	}

	renderer := giveawaysvc.NewRenderer(client, giveawaysvc.RendererOptions{
		PrizeEmoji: cfg.Giveaway.PrizeEmoji,
		ArrowEmoji: cfg.Giveaway.ArrowEmoji,
		EntryEmoji: entryEmoji.APIName(),
		Location:   location,
	})
	listeners := giveaway.Listeners{renderer, m}

	checks := map[string]apphttp.ReadyCheck{}

	var rdb *redisplatform.Client
	if cfg.Redis.Enabled {
		rdb, err = redisplatform.Open(ctx, redisplatform.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		listeners = append(listeners, workers.NewEventPublisher(rdb, cfg.Redis.EventsStream))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var activationRepo repository.Repository
	switch cfg.Activation.Backend {
	case config.ActivationBackendRedis:
		activationRepo = redisrepo.New(rdb)
	default:
		activationRepo = filerepo.New(cfg.Activation.File)
	}
	activation := activationsvc.NewService(activationRepo)

	registry := giveawaysvc.NewRegistry(client, listeners, cfg.Giveaway.CountdownTick)

	launcher := bot.NewLauncher(client, renderer, registry)
	setups := setupsvc.NewManager(launcher, m, cfg.Giveaway.SetupStepTimeout, cfg.Discord.CommandPrefix+"exit")

	b := bot.New(session, client, registry, setups, activation, bot.Options{
		Prefix:     cfg.Discord.CommandPrefix,
		EntryEmoji: entryEmoji,
	})
	checks["discord"] = b.Ready

	server := apphttp.NewServer(apphttp.Options{
		Port:      cfg.Server.Port,
		Origin:    cfg.Server.Origin,
		Debug:     cfg.Debug,
		Service:   serviceName,
		Giveaways: registry,
		Metrics:   m.Handler(),
		Checks:    checks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })
	if rdb != nil {
		worker := workers.NewRedisStreamWorker(rdb, bot.NewControlHandler(activation, registry))
		g.Go(func() error {
			worker.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Giveaway Bot stopped with error")
	}
	registry.Stop()
	logger.Info().Msg("Giveaway Bot exited")
}
