package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soul-agent/internal/config"
	apihttp "soul-agent/internal/http"
	"soul-agent/internal/llm"
	"soul-agent/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pc := llm.ProviderConfig{
		Provider:        cfg.LLMProvider,
		BaseURL:         cfg.LLMBaseURL,
		Model:           cfg.LLMModel,
		Timeout:         cfg.LLMTimeout,
		DisableThinking: cfg.LLMDisableThinking,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
	}
	if cfg.LLMProvider != llm.ProviderGemini {
		// Sin token el servicio arranca igual: las rutas LLM caen a los fallbacks locales.
		token, err := cfg.ResolveLLMToken()
		if err != nil {
			logger.Warn("llm token not resolved", zap.Error(err))
		}
		pc.APIKey = token
	}

	var llmClient llm.LLMClient
	llmClient, err = llm.NewClient(ctx, pc, logger)
	if err != nil {
		logger.Fatal("llm client init", zap.Error(err))
	}

	var (
		limiter     service.RateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, cache and rate limit disabled", zap.Error(err))
		} else {
			llmClient = llm.NewCachedClient(llmClient, llm.NewRedisCacheStore(redisClient), "soul-agent", cfg.LLMCacheTTL, logger)
			limiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax)
		}
		cancel()
		defer redisClient.Close()
	}

	lex := service.DefaultLexicon()
	if cfg.LexiconFile != "" {
		custom, err := service.LoadLexicon(cfg.LexiconFile)
		if err != nil {
			logger.Fatal("load lexicon", zap.String("path", cfg.LexiconFile), zap.Error(err))
		}
		lex = custom
	}

	jwtSvc := service.NewJWTService(cfg.APIJWTSecret, 0)
	if !jwtSvc.Enabled() {
		logger.Warn("api jwt secret not configured, /api is open")
	}

	personas := service.NewPersonaStore()
	suggestSvc := service.NewSuggestService(llmClient, service.NewConversationAnalyzer(lex), service.NewSafetyChecker(lex), personas, logger)
	peerSvc := service.NewPeerService(llmClient, lex, logger)
	scenarioSvc := service.NewScenarioService(llmClient, logger)
	personaSvc := service.NewPersonaService(llmClient, logger)

	router := apihttp.NewRouter(apihttp.RouterConfig{
		Logger:    logger,
		Suggest:   apihttp.NewSuggestHandler(logger, suggestSvc),
		Persona:   apihttp.NewPersonaHandler(logger, personaSvc, personas),
		Peer:      apihttp.NewPeerHandler(logger, peerSvc),
		Scenario:  apihttp.NewScenarioHandler(logger, scenarioSvc),
		Limiter:   limiter,
		JWT:       jwtSvc,
		StaticDir: cfg.StaticDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.Bool("redis", limiter != nil),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
