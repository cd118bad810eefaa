package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"soul-agent/internal/config"
	"soul-agent/internal/llm"
	"soul-agent/internal/service"
)

const (
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// coach agrupa los servicios que usa la CLI; se construye una vez por comando.
type coach struct {
	logger   *zap.Logger
	suggest  *service.SuggestService
	peer     *service.PeerService
	scenario *service.ScenarioService
	persona  *service.PersonaService
}

func newCoach(llmClient llm.LLMClient, lex *service.Lexicon, logger *zap.Logger) *coach {
	// Sin /api/persona/apply en la CLI: la persona llega por --mbti en cada peticion.
	personas := service.NewPersonaStore()
	return &coach{
		logger:   logger,
		suggest:  service.NewSuggestService(llmClient, service.NewConversationAnalyzer(lex), service.NewSafetyChecker(lex), personas, logger),
		peer:     service.NewPeerService(llmClient, lex, logger),
		scenario: service.NewScenarioService(llmClient, logger),
		persona:  service.NewPersonaService(llmClient, logger),
	}
}

func loadCoach(ctx context.Context) (*coach, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewExample()

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
		token, err := cfg.ResolveLLMToken()
		if err != nil {
			return nil, err
		}
		pc.APIKey = token
	}
	llmClient, err := llm.NewClient(ctx, pc, logger)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	lex := service.DefaultLexicon()
	if cfg.LexiconFile != "" {
		if lex, err = service.LoadLexicon(cfg.LexiconFile); err != nil {
			return nil, err
		}
	}
	return newCoach(llmClient, lex, logger), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coach",
		Short:         "Practica conversaciones con sugerencias y un interlocutor simulado",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newChatCmd(), newScenarioCmd(), newMBTICmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
