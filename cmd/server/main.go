package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hdbagent/internal/config"
	"hdbagent/internal/handler"
	"hdbagent/internal/ml"
	"hdbagent/internal/repository"
	"hdbagent/internal/service"
	"hdbagent/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Logging)
	log.Info().Str("version", Version).Str("build_time", BuildTime).Str("git_commit", GitCommit).
		Msg("HDB price agent")

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	store, err := repository.Open(
		"postgres",
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()
	log.Info().Msg("connected to PostgreSQL database")

	// Telemetry is best-effort: a nil recorder disables it entirely
	var recorder *telemetry.Recorder
	if cfg.Telemetry.Enabled {
		recorder, err = telemetry.Open(cfg.Telemetry.Path)
		if err != nil {
			log.Warn().Err(err).Msg("telemetry disabled")
		} else {
			defer recorder.Close()
		}
	}

	// Load the trained price model artifact
	priceModel, err := ml.LoadHedonicModel(cfg.Model.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load price model")
	}

	// Text-generation backend
	generator := service.NewOpenAIClient(&cfg.OpenAI)
	if generator.IsEnabled() {
		log.Info().Str("api_base", cfg.OpenAI.APIBase).Str("model", cfg.OpenAI.ChatModel).
			Msg("text-generation backend initialized")
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set - router fallback and answer writing degrade")
	}

	// Router vocabulary: no fallback, unreachable storage is fatal
	vocab := service.NewVocabCatalog(store)
	if err := vocab.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load router vocabulary")
	}
	log.Info().Int("towns", len(vocab.Towns())).Int("flat_types", len(vocab.FlatTypes())).
		Msg("router vocabulary loaded")

	// Services
	premiums := service.NewPremiumService(store)
	router := service.NewRouter(vocab, generator, recorder, cfg.OpenAI.MaxNewTokens)
	writer := service.NewWriter(generator, cfg.OpenAI.MaxNewTokens)
	registry := service.NewRegistry(
		service.NewPriceTool(store, priceModel, premiums, cfg.Finance, cfg.Model, recorder),
		service.NewSupplyTool(store, recorder),
	)
	agent := service.NewAgent(router, registry, writer)
	askHandler := handler.NewAskHandler(agent)

	// Setup Gin router
	engine := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "hdb-price-agent",
			"version": Version,
		})
	})
	engine.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := engine.Group("/api/v1")
	{
		apiV1.POST("/ask", askHandler.Ask)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting server")

	go func() {
		if err := engine.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
