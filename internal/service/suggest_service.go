package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
)

const (
	suggestContextTurns  = 12
	suggestMaxTokens     = 512
	suggestTemperature   = 0.7
	maxReturnedCandidate = 3
)

// SuggestService genera, filtra y ordena las respuestas sugeridas para el usuario.
type SuggestService struct {
	llmClient llm.LLMClient
	analyzer  *ConversationAnalyzer
	safety    *SafetyChecker
	personas  *PersonaStore
	prompts   CandidatePromptBuilder
	parser    LLMResponseParser
	logger    *zap.Logger
}

func NewSuggestService(
	llmClient llm.LLMClient,
	analyzer *ConversationAnalyzer,
	safety *SafetyChecker,
	personas *PersonaStore,
	logger *zap.Logger,
) *SuggestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestService{
		llmClient: llmClient,
		analyzer:  analyzer,
		safety:    safety,
		personas:  personas,
		parser:    DefaultLLMResponseParser,
		logger:    logger,
	}
}

// Suggest nunca falla: ante errores del LLM degrada al set local de candidatos.
func (s *SuggestService) Suggest(ctx context.Context, req domain.SuggestRequest) domain.SuggestResponse {
	req.Normalize()
	analysis := s.analyzer.Analyze(req.Conversation)
	analysis.ScenarioKeywords = ScenarioKeywords(req.Scenario)

	relationship := domain.Relationship{Index: analysis.RelationshipIndex, Trend: analysis.Trend}

	// Escenario en el que abre el interlocutor: no hay nada que enviar todavia.
	if len(req.Conversation) == 0 && req.Scenario.StartingParty() == domain.PartyOpponent {
		return domain.SuggestResponse{
			Tip: domain.Tip{
				Text: "当前场景通常由对方先开场，请等待对方发起对话或点击“对方回复”。",
				Tone: domain.ToneNeutral,
				Risk: domain.RiskLow,
			},
			Candidates:   []domain.Candidate{},
			Relationship: relationship,
			Safety:       domain.Safety{Blocked: false, Notes: []string{}},
		}
	}

	tip := BuildTip(analysis, req.EntryType, req.Draft)

	recent := domain.LastTurns(req.Conversation, suggestContextTurns)
	replyMode := replyModeProbe
	if analysis.LastPeerIsQuestion {
		replyMode = replyModeAnswer
	}

	cc := CandidateContext{
		Conversation: recent,
		Draft:        req.Draft,
		UserProfile:  profileOrEmpty(req.UserProfile),
		PeerProfile:  profileOrEmpty(req.PeerProfile),
		Anchor: CandidateAnchor{
			LastRole: analysis.LastRole,
			LastText: analysis.LastText,
			Keywords: analysis.AnchorKeywords,
		},
		Scenario: req.Scenario,
		Memory:   req.Memory,
	}

	raw, err := s.generate(ctx, cc, s.personaHint(req.PersonaWeights), replyMode)
	if err != nil {
		s.logger.Warn("candidate generation failed, using fallback", zap.Error(err), zap.String("reply_mode", replyMode))
		raw = FallbackCandidates(recent, req.Draft, replyMode)
	}

	candidates := make([]domain.Candidate, 0, len(raw))
	for _, c := range raw {
		if s.safety.Check(c.Text).Blocked {
			continue
		}
		risk := NormalizeRisk(c.Risk)
		candidates = append(candidates, domain.Candidate{
			ID:    c.ID,
			Text:  s.safety.Redact(c.Text),
			Why:   c.Why,
			Risk:  risk,
			Score: ScoreCandidate(c.Text, c.Why, risk, analysis),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxReturnedCandidate {
		candidates = candidates[:maxReturnedCandidate]
	}
	if len(candidates) == 0 {
		candidates = []domain.Candidate{{
			ID:    "safe",
			Text:  "不急～可以聊聊你最近在忙什么？",
			Why:   "稳妥推进",
			Risk:  domain.RiskLow,
			Score: 0.7,
		}}
	}

	return domain.SuggestResponse{
		Tip:          tip,
		Candidates:   candidates,
		Relationship: relationship,
		Safety:       s.safety.Check(req.Draft),
	}
}

// personaHint prioriza los pesos del request; si no vienen, usa la persona aplicada al proceso.
func (s *SuggestService) personaHint(weights *domain.PersonaWeights) map[string]int {
	if weights != nil {
		if !weights.Enabled {
			return nil
		}
		return weights.Functions()
	}
	if s.personas == nil {
		return nil
	}
	return s.personas.ActiveFunctions()
}

// generate llama al LLM; solo el error de transporte activa el fallback.
// Una respuesta ilegible devuelve cero candidatos.
func (s *SuggestService) generate(ctx context.Context, cc CandidateContext, persona map[string]int, replyMode string) ([]domain.Candidate, error) {
	raw, err := s.llmClient.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: s.prompts.SystemPrompt()},
			{Role: llm.RoleUser, Content: s.prompts.UserPrompt(cc, persona, replyMode)},
		},
		MaxTokens:   suggestMaxTokens,
		Temperature: suggestTemperature,
	})
	if err != nil {
		return nil, err
	}
	return parseCandidates(s.parser, raw), nil
}

func parseCandidates(p LLMResponseParser, raw string) []domain.Candidate {
	items, ok := p.ParseArray(raw)
	if !ok {
		return nil
	}
	out := make([]domain.Candidate, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(asString(m["text"]))
		if text == "" {
			continue
		}
		out = append(out, domain.Candidate{
			ID:   orDefault(asString(m["id"]), "cand"),
			Text: text,
			Why:  asString(m["why"]),
			Risk: orDefault(asString(m["risk"]), domain.RiskLow),
		})
	}
	return out
}

func profileOrEmpty(p *domain.Profile) *domain.Profile {
	if p == nil {
		return &domain.Profile{}
	}
	return p
}
