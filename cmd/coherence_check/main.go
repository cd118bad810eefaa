package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"soul-agent/internal/config"
	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
	"soul-agent/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// Llamadas simultaneas al proveedor; ModelScope limita la concurrencia por token.
const maxParallelCases = 3

type caseResult struct {
	Case   Case
	Reply  domain.PeerReplyResponse
	Judge  judgeResponse
	Checks heuristics
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewExample()
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
		if pc.APIKey, err = cfg.ResolveLLMToken(); err != nil {
			log.Fatal(err)
		}
	}
	llmClient, err := llm.NewClient(ctx, pc, logger)
	if err != nil {
		log.Fatal(err)
	}

	peerSvc := service.NewPeerService(llmClient, service.DefaultLexicon(), logger)
	results, err := runCases(ctx, peerSvc, llmClient, defaultCases())
	if err != nil {
		log.Fatalf("judge failed: %v", err)
	}
	printReport(os.Stdout, results)
}

// runCases genera la respuesta del interlocutor y la evalua, caso por caso en paralelo.
// El orden del resultado coincide con el de cases.
func runCases(ctx context.Context, peer *service.PeerService, judge llm.LLMClient, cases []Case) ([]caseResult, error) {
	results := make([]caseResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCases)

	for i, c := range cases {
		g.Go(func() error {
			sc := c.Scenario
			reply := peer.Reply(gctx, domain.PeerReplyRequest{
				Conversation: c.Turns,
				Scenario:     &sc,
			})
			jr, err := evaluateResponse(gctx, judge, c, reply.Text)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			results[i] = caseResult{Case: c, Reply: reply, Judge: jr, Checks: runHeuristics(c, reply.Text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printReport(out io.Writer, results []caseResult) {
	var totalRole, totalScenario, totalHum int
	for _, r := range results {
		last := r.Case.Turns[len(r.Case.Turns)-1]
		fmt.Fprintf(out, "%s[%s]%s %s\n", colorCyan, r.Case.Name, colorReset, last.Text)
		fmt.Fprintf(out, "%s[%s]%s %s\n", colorGreen, orDefault(roleTitleOf(r.Case.Scenario.Opponent), "对方"), colorReset, r.Reply.Text)
		fmt.Fprintf(out, "%sJuez🧠%s %q\n", colorCyan, colorReset, r.Judge.Reasoning)
		fmt.Fprintf(out, "%s\n", r.Checks)
		fmt.Fprintf(out, "Scores: Rol %d/5 | Escenario %d/5 | Humanidad %d/5\n\n",
			r.Judge.RoleScore, r.Judge.ScenarioScore, r.Judge.HumanityScore)

		totalRole += r.Judge.RoleScore
		totalScenario += r.Judge.ScenarioScore
		totalHum += r.Judge.HumanityScore
	}

	n := len(results)
	if n == 0 {
		return
	}
	fmt.Fprintln(out, "==== Promedios ====")
	fmt.Fprintf(out, "Rol: %.2f/5 | Escenario: %.2f/5 | Humanidad: %.2f/5\n",
		float64(totalRole)/float64(n), float64(totalScenario)/float64(n), float64(totalHum)/float64(n))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
