package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
	"soul-agent/internal/service"
)

func TestDetectRoleInversion(t *testing.T) {
	cases := []struct {
		name   string
		group  string
		resp   string
		expect bool
	}{
		{name: "owner voice", group: "社团", resp: "我们社团每周六都有外拍。", expect: false},
		{name: "visitor voice", group: "社团", resp: "你们社团看起来很有意思！", expect: true},
		{name: "both mentioned", group: "社团", resp: "我们社团和你们社团不一样。", expect: false},
		{name: "no group declared", group: "", resp: "你们社团很好。", expect: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectRoleInversion(tc.group, tc.resp); got != tc.expect {
				t.Fatalf("detectRoleInversion(%q,%q)=%v want %v", tc.group, tc.resp, got, tc.expect)
			}
		})
	}
}

func TestDetectAssistantVoice(t *testing.T) {
	cases := []struct {
		text   string
		expect bool
	}{
		{"作为一个AI，我无法去徒步。", true},
		{"As an AI I cannot say.", true},
		{"以下是几个建议：", true},
		{"可以这样：\n1. 先聊爱好\n2. 再约时间", true},
		{"上周去了香山，人有点多哈哈", false},
		{"嗯，还行吧。", false},
	}

	for _, tc := range cases {
		if got := detectAssistantVoice(tc.text); got != tc.expect {
			t.Fatalf("detectAssistantVoice(%q)=%v want %v", tc.text, got, tc.expect)
		}
	}
}

func TestJudgePromptIncludesHeuristicsAndRules(t *testing.T) {
	h := heuristics{RoleInverted: true}
	prompt := buildJudgePrompt("身份：面试官", "技术面试", h.String(), "我（用户）：你好", "你好", "追问项目")

	needles := []string{
		"rol_invertido=true",
		"voz_asistente=false",
		"Rol máximo 2/5",
		"我（用户）：你好",
		`"role_score"`,
	}
	for _, n := range needles {
		if !strings.Contains(prompt, n) {
			t.Fatalf("prompt missing %q: %q", n, prompt)
		}
	}
}

func TestEvaluateResponseClampsAndPenalizes(t *testing.T) {
	c := defaultCases()[0]
	judge := &llm.MockClient{Response: "```json\n{\"reasoning\":\"ok\",\"role_score\":9,\"scenario_score\":4,\"humanity_score\":0}\n```"}

	jr, err := evaluateResponse(context.Background(), judge, c, "你们社团活动多吗？")
	if err != nil {
		t.Fatalf("evaluateResponse: %v", err)
	}
	if jr.RoleScore != 2 {
		t.Fatalf("expected inverted role capped at 2, got %d", jr.RoleScore)
	}
	if jr.ScenarioScore != 4 || jr.HumanityScore != 1 {
		t.Fatalf("unexpected clamps: %+v", jr)
	}
	if !strings.Contains(judge.LastPrompt(), "摄影社社长") {
		t.Fatalf("expected opponent description in prompt")
	}
}

func TestEvaluateResponseRejectsNonJSON(t *testing.T) {
	judge := &llm.MockClient{Response: "no tengo opinion"}
	if _, err := evaluateResponse(context.Background(), judge, defaultCases()[1], "请继续。"); err == nil {
		t.Fatalf("expected error for non-json judge output")
	}
}

func TestRunCasesKeepsOrder(t *testing.T) {
	peerLLM := &llm.MockClient{Response: `[{"id":"a","text":"我们社团每周都有外拍，要不要来看看？"}]`}
	judge := &llm.MockClient{Response: `{"reasoning":"bien","role_score":5,"scenario_score":4,"humanity_score":4}`}
	peer := service.NewPeerService(peerLLM, service.DefaultLexicon(), nil)

	cases := defaultCases()
	results, err := runCases(context.Background(), peer, judge, cases)
	if err != nil {
		t.Fatalf("runCases: %v", err)
	}
	if len(results) != len(cases) {
		t.Fatalf("expected %d results, got %d", len(cases), len(results))
	}
	for i, r := range results {
		if r.Case.Name != cases[i].Name {
			t.Fatalf("result %d out of order: %q", i, r.Case.Name)
		}
		if r.Judge.RoleScore != 5 {
			t.Fatalf("unexpected role score: %+v", r.Judge)
		}
	}

	var out bytes.Buffer
	printReport(&out, results)
	if !strings.Contains(out.String(), "Rol: 5.00/5") {
		t.Fatalf("expected averages in report, got %q", out.String())
	}
}

func TestRunCasesPropagatesJudgeError(t *testing.T) {
	peer := service.NewPeerService(&llm.MockClient{Response: `[{"text":"嗯"}]`}, nil, nil)
	judge := &llm.MockClient{Err: errors.New("boom")}
	if _, err := runCases(context.Background(), peer, judge, defaultCases()); err == nil {
		t.Fatalf("expected judge error")
	}
}

func TestDescribeOpponent(t *testing.T) {
	if got := describeOpponent(nil); got != "普通聊天对象" {
		t.Fatalf("unexpected nil description %q", got)
	}
	got := describeOpponent(&domain.OpponentProfile{RoleTitle: "面试官", Traits: []string{"严谨", "直接"}})
	if got != "身份：面试官；特质：严谨、直接" {
		t.Fatalf("unexpected description %q", got)
	}
}
