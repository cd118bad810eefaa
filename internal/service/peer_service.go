package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
)

const (
	peerContextTurns = 12
	peerMaxTokens    = 300
	peerTemperature  = 0.8
	maxPeerReplies   = 3
	peerCannedReply  = "我们可以继续聊聊刚才的话题～你怎么看？"
)

// PeerService simula al interlocutor para que el usuario practique.
type PeerService struct {
	llmClient llm.LLMClient
	prompts   PeerPromptBuilder
	parser    LLMResponseParser
	logger    *zap.Logger
}

func NewPeerService(llmClient llm.LLMClient, lex *Lexicon, logger *zap.Logger) *PeerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeerService{
		llmClient: llmClient,
		prompts:   NewPeerPromptBuilder(lex),
		parser:    DefaultLLMResponseParser,
		logger:    logger,
	}
}

// Reply devuelve hasta tres variantes; nunca falla, degrada a texto crudo o a una frase fija.
func (s *PeerService) Reply(ctx context.Context, req domain.PeerReplyRequest) domain.PeerReplyResponse {
	recent := domain.LastTurns(req.Conversation, peerContextTurns)
	persona := resolvePeerPersona(req.Opponent, req.Scenario)

	prompt := s.prompts.UserPrompt(persona, FormatTranscript(recent, persona.RoleTitle), lastTextOf(recent, domain.RoleUser))
	raw, err := s.llmClient.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: s.prompts.SystemPrompt()},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   peerMaxTokens,
		Temperature: peerTemperature,
	})
	if err != nil {
		s.logger.Warn("peer reply generation failed", zap.Error(err))
		raw = ""
	}
	raw = strings.TrimSpace(raw)

	replies := parsePeerReplies(s.parser, raw)
	if len(replies) == 0 {
		text := raw
		if text == "" {
			text = peerCannedReply
		}
		replies = []domain.PeerReplyItem{{ID: "default", Text: text}}
	}
	return domain.PeerReplyResponse{Text: replies[0].Text, Replies: replies}
}

func parsePeerReplies(p LLMResponseParser, raw string) []domain.PeerReplyItem {
	if raw == "" {
		return nil
	}
	items, ok := p.ParseArray(raw)
	if !ok {
		return nil
	}
	if len(items) > maxPeerReplies {
		items = items[:maxPeerReplies]
	}
	out := make([]domain.PeerReplyItem, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		if m == nil {
			continue
		}
		text := asString(m["text"])
		if text == "" {
			continue
		}
		out = append(out, domain.PeerReplyItem{
			ID:   orDefault(asString(m["id"]), "alt"),
			Text: text,
			Tone: asString(m["tone"]),
			Why:  asString(m["why"]),
		})
	}
	return out
}
