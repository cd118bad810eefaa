package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
)

func newTestSuggestService(client llm.LLMClient, store *PersonaStore) *SuggestService {
	lex := DefaultLexicon()
	return NewSuggestService(client, NewConversationAnalyzer(lex), NewSafetyChecker(lex), store, nil)
}

func TestSuggestOpponentStartsWaits(t *testing.T) {
	mock := &llm.MockClient{Response: "[]"}
	svc := newTestSuggestService(mock, NewPersonaStore())

	resp := svc.Suggest(context.Background(), domain.SuggestRequest{
		Conversation: []domain.ConversationTurn{},
		Scenario:     &domain.ScenarioContext{Flow: &domain.ScenarioFlow{StartingParty: domain.PartyOpponent}},
	})
	if !strings.HasPrefix(resp.Tip.Text, "当前场景通常由对方先开场") {
		t.Fatalf("unexpected tip: %q", resp.Tip.Text)
	}
	if resp.Tip.Tone != domain.ToneNeutral || resp.Tip.Risk != domain.RiskLow {
		t.Fatalf("unexpected tip tone/risk: %+v", resp.Tip)
	}
	if resp.Candidates == nil || len(resp.Candidates) != 0 {
		t.Fatalf("expected empty candidate list, got %+v", resp.Candidates)
	}
	if resp.Relationship.Index != 50 || resp.Relationship.Trend != domain.TrendFlat {
		t.Fatalf("unexpected relationship: %+v", resp.Relationship)
	}
	if mock.Calls != 0 {
		t.Fatalf("llm must not be called, got %d calls", mock.Calls)
	}
}

func TestSuggestFiltersScoresAndRedacts(t *testing.T) {
	mock := &llm.MockClient{Response: "```json\n[" +
		`{"id":"mirror","text":"我周末一般去爬山，你呢？","why":"承接","risk":"low"},` +
		`{"id":"safe","text":"我喜欢去公园散步","why":"稳妥","risk":"very_low"},` +
		`{"id":"humor","text":"去辱骂别人不是我的爱好哈哈","why":"幽默","risk":"mid"},` +
		`{"id":"contact","text":"加我 13812345678 一起去","why":"直接","risk":"high"},` +
		`{"id":"extra","text":"","why":"x"}` +
		"]\n```"}
	svc := newTestSuggestService(mock, NewPersonaStore())

	resp := svc.Suggest(context.Background(), domain.SuggestRequest{
		Conversation: []domain.ConversationTurn{
			{Role: domain.RoleUser, Text: "你好"},
			{Role: domain.RolePeer, Text: "你周末喜欢去哪里玩？"},
		},
	})

	if resp.Tip.Text != "建议先答再问：给出你的看法或经历" {
		t.Fatalf("unexpected tip %q", resp.Tip.Text)
	}
	if len(resp.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %+v", resp.Candidates)
	}
	ids := []string{resp.Candidates[0].ID, resp.Candidates[1].ID, resp.Candidates[2].ID}
	if strings.Join(ids, ",") != "safe,contact,mirror" {
		t.Fatalf("unexpected order %v", ids)
	}
	if resp.Candidates[0].Risk != domain.RiskLow {
		t.Fatalf("invalid risk must normalise to low, got %q", resp.Candidates[0].Risk)
	}
	if resp.Candidates[1].Text != "加我 [已脱敏] 一起去" {
		t.Fatalf("expected redacted text, got %q", resp.Candidates[1].Text)
	}
	for i := 1; i < len(resp.Candidates); i++ {
		if resp.Candidates[i-1].Score < resp.Candidates[i].Score {
			t.Fatalf("candidates not sorted by score: %+v", resp.Candidates)
		}
	}

	req := mock.LastRequest()
	if req.MaxTokens != 512 || req.Temperature != 0.7 {
		t.Fatalf("unexpected sampling params: %+v", req)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != llm.RoleSystem {
		t.Fatalf("expected system+user messages")
	}
	if !strings.Contains(req.Messages[1].Content, "当前应对模式：answer") {
		t.Fatalf("expected answer mode when peer asked a question")
	}
}

func TestSuggestFallbackOnLLMError(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("timeout")}
	svc := newTestSuggestService(mock, NewPersonaStore())

	resp := svc.Suggest(context.Background(), domain.SuggestRequest{
		Conversation: []domain.ConversationTurn{{Role: domain.RolePeer, Text: "最近在看什么书"}},
		Draft:        "我在看小说",
		EntryType:    domain.EntryTyping,
	})
	if len(resp.Candidates) != 3 {
		t.Fatalf("expected fallback candidates, got %+v", resp.Candidates)
	}
	found := false
	for _, c := range resp.Candidates {
		if c.Text == "我在看小说 想听听你的看法～" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected draft mirror fallback, got %+v", resp.Candidates)
	}
}

func TestSuggestUnparseableYieldsCannedCandidate(t *testing.T) {
	mock := &llm.MockClient{Response: "抱歉，我无法生成"}
	svc := newTestSuggestService(mock, NewPersonaStore())

	resp := svc.Suggest(context.Background(), domain.SuggestRequest{
		Conversation: []domain.ConversationTurn{{Role: domain.RoleUser, Text: "在吗"}},
	})
	if len(resp.Candidates) != 1 {
		t.Fatalf("expected single canned candidate, got %+v", resp.Candidates)
	}
	c := resp.Candidates[0]
	if c.ID != "safe" || c.Text != "不急～可以聊聊你最近在忙什么？" || c.Risk != domain.RiskLow || c.Score != 0.7 {
		t.Fatalf("unexpected canned candidate %+v", c)
	}
}

func TestSuggestPersonaHintSources(t *testing.T) {
	conv := []domain.ConversationTurn{{Role: domain.RoleUser, Text: "你好"}}

	t.Run("pesos del request", func(t *testing.T) {
		mock := &llm.MockClient{Response: "[]"}
		svc := newTestSuggestService(mock, NewPersonaStore())
		svc.Suggest(context.Background(), domain.SuggestRequest{
			Conversation:   conv,
			PersonaWeights: &domain.PersonaWeights{Ni: 35, Te: 25, Enabled: true},
		})
		prompt := mock.LastPrompt()
		if !strings.Contains(prompt, "已知用户八维偏好") || !strings.Contains(prompt, `"Ni":35`) {
			t.Fatalf("expected persona hint from request")
		}
		if strings.Contains(prompt, `"enabled"`) {
			t.Fatalf("enabled flag must not leak into persona hint")
		}
	})

	t.Run("pesos deshabilitados", func(t *testing.T) {
		mock := &llm.MockClient{Response: "[]"}
		store := NewPersonaStore()
		store.Apply(nil, map[string]int{"Fe": 80}, true)
		svc := newTestSuggestService(mock, store)
		svc.Suggest(context.Background(), domain.SuggestRequest{
			Conversation:   conv,
			PersonaWeights: &domain.PersonaWeights{Ni: 35},
		})
		if strings.Contains(mock.LastPrompt(), "已知用户八维偏好") {
			t.Fatalf("disabled request weights must suppress the hint")
		}
	})

	t.Run("persona del proceso", func(t *testing.T) {
		mock := &llm.MockClient{Response: "[]"}
		store := NewPersonaStore()
		store.Apply(nil, map[string]int{"Fe": 80}, true)
		svc := newTestSuggestService(mock, store)
		svc.Suggest(context.Background(), domain.SuggestRequest{Conversation: conv})
		if !strings.Contains(mock.LastPrompt(), `已知用户八维偏好：{"Fe":80}`) {
			t.Fatalf("expected persona hint from applied state")
		}
	})
}

func TestSuggestDraftSafety(t *testing.T) {
	mock := &llm.MockClient{Response: "[]"}
	svc := newTestSuggestService(mock, NewPersonaStore())

	resp := svc.Suggest(context.Background(), domain.SuggestRequest{
		Conversation: []domain.ConversationTurn{{Role: domain.RolePeer, Text: "怎么联系你"}},
		Draft:        "我的手机号是 13812345678",
	})
	if resp.Safety.Blocked {
		t.Fatalf("pii alone must not block")
	}
	if len(resp.Safety.Notes) != 1 {
		t.Fatalf("expected one pii note, got %v", resp.Safety.Notes)
	}

	resp = svc.Suggest(context.Background(), domain.SuggestRequest{
		Conversation: []domain.ConversationTurn{{Role: domain.RolePeer, Text: "怎么联系你"}},
	})
	if resp.Safety.Blocked || len(resp.Safety.Notes) != 0 {
		t.Fatalf("empty draft must be safe, got %+v", resp.Safety)
	}
}
