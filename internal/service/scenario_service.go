package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
)

const (
	scenarioMaxTokens   = 600
	scenarioTemperature = 0.3
)

const (
	scenarioSchemaFull = `{"scenario":"...",` +
		`"opponent":{"roleTitle":"","tone":"","traits":[],"domain":""},` +
		`"userGoal":{"goal":"","reason":"","subgoals":[],"successCriteria":[]},` +
		`"flow":{"startingParty":"user|opponent|either","openingHints":[]},` +
		`"anchors":[],"constraints":{"taboo":[],"lengthHint":"","askRatio":""}}`
	scenarioSchemaGoalOnly = `{"userGoal":{"goal":"","reason":""}}`
)

// scenarioPayload es la entrada tal como la ve el LLM.
type scenarioPayload struct {
	TemplateID     string   `json:"templateId"`
	ScenarioText   string   `json:"scenarioText"`
	OpponentHint   string   `json:"opponentHint"`
	UserGoalHint   string   `json:"userGoalHint"`
	Mode           string   `json:"mode"`
	OpponentTraits []string `json:"opponentTraits"`
}

// ScenarioService estructura una descripcion libre en un ScenarioContext.
type ScenarioService struct {
	llmClient llm.LLMClient
	parser    LLMResponseParser
	logger    *zap.Logger
}

func NewScenarioService(llmClient llm.LLMClient, logger *zap.Logger) *ScenarioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScenarioService{
		llmClient: llmClient,
		parser:    DefaultLLMResponseParser,
		logger:    logger,
	}
}

// Analyze nunca falla: si el LLM no responde devuelve un contexto armado solo con la entrada.
func (s *ScenarioService) Analyze(ctx context.Context, in domain.ScenarioInput) domain.ScenarioContext {
	in.Normalize()
	mode := strings.ToLower(in.Mode)

	schema, guide := scenarioSchemaFull,
		"请从‘场景描述/模板’中抽象出简洁的对方形象关键词（3-6条短语，避免单字或空泛词），"+
			"补全对方称谓/语气与可选领域；根据‘对方形象+场景’产出‘我的目标’，并给出简短reason。"+
			"同时判断该场景通常由谁先开场：user(我方主动)/opponent(对方先说，如面试官、客服)/either(均可)，"+
			"并在flow.openingHints中给出1-2条开场建议（若startingParty=opponent则给对方开场示例，否则给我方）。"
	if mode == domain.ScenarioModeGoalOnly {
		schema = scenarioSchemaGoalOnly
		guide = "仅根据给定的‘场景描述’与‘对方形象关键词’推断并精炼一个适合当前轮次的沟通目标，" +
			"用简洁中文表达；必要时给出形成该目标的‘reason’（一句话）。"
	}

	payload := scenarioPayload{
		TemplateID:     in.TemplateID,
		ScenarioText:   in.ScenarioText,
		OpponentHint:   in.OpponentHint,
		UserGoalHint:   in.UserGoalHint,
		Mode:           mode,
		OpponentTraits: in.OpponentTraits,
	}
	usr := "严格按以下JSON Schema输出，不要添加解释：" + schema + "\n" + guide + "\n输入：" + toJSON(payload)

	raw, err := s.llmClient.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "你是沟通教练助手，负责将自然语言的场景与意图结构化为可执行的沟通设定。"},
			{Role: llm.RoleUser, Content: usr},
		},
		MaxTokens:   scenarioMaxTokens,
		Temperature: scenarioTemperature,
	})
	data := map[string]any{}
	if err != nil {
		s.logger.Warn("scenario analysis failed, using input only", zap.Error(err), zap.String("mode", mode))
	} else {
		data = s.parser.ParseObject(raw)
	}
	return buildScenarioContext(in, data)
}

func buildScenarioContext(in domain.ScenarioInput, data map[string]any) domain.ScenarioContext {
	out := domain.ScenarioContext{
		Scenario: orDefault(asString(data["scenario"]), in.ScenarioText),
	}

	if opp := toOpponent(asMap(data["opponent"])); opp != nil {
		out.Opponent = opp
	}

	goal := toUserGoal(asMap(data["userGoal"]))
	if goal == nil {
		goal = &domain.UserGoal{Goal: in.UserGoalHint}
	}
	out.UserGoal = goal

	if c := asMap(data["constraints"]); len(c) > 0 {
		out.Constraints = c
	}
	if anchors, ok := asStringSlice(data["anchors"]); ok && len(anchors) > 0 {
		out.Anchors = anchors
	}
	out.Flow = toFlow(data["flow"])
	return out
}

// toFlow devuelve siempre un flujo (por defecto "either") salvo que el LLM mande
// algo que no es objeto; un valor vacio o ausente cuenta como objeto vacio.
func toFlow(v any) *domain.ScenarioFlow {
	if isEmptyValue(v) {
		v = map[string]any{}
	}
	flow, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	f := &domain.ScenarioFlow{StartingParty: domain.PartyEither}
	switch p := strings.ToLower(strings.TrimSpace(asString(flow["startingParty"]))); p {
	case domain.PartyUser, domain.PartyOpponent, domain.PartyEither:
		f.StartingParty = p
	}
	if hints, ok := asStringSlice(flow["openingHints"]); ok {
		f.OpeningHints = hints
	}
	return f
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func toOpponent(m map[string]any) *domain.OpponentProfile {
	if len(m) == 0 {
		return nil
	}
	o := domain.OpponentProfile{
		RoleTitle: asString(m["roleTitle"]),
		Style:     asString(m["style"]),
		Tone:      asString(m["tone"]),
		Domain:    asString(m["domain"]),
	}
	if traits, ok := asStringSlice(m["traits"]); ok && len(traits) > 0 {
		o.Traits = traits
	}
	if o.IsZero() {
		return nil
	}
	return &o
}

func toUserGoal(m map[string]any) *domain.UserGoal {
	if len(m) == 0 {
		return nil
	}
	g := domain.UserGoal{
		Goal:     asString(m["goal"]),
		Priority: asString(m["priority"]),
		Reason:   asString(m["reason"]),
	}
	if sub, ok := asStringSlice(m["subgoals"]); ok && len(sub) > 0 {
		g.Subgoals = sub
	}
	if sc, ok := asStringSlice(m["successCriteria"]); ok && len(sc) > 0 {
		g.SuccessCriteria = sc
	}
	return &g
}
