package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
	"soul-agent/internal/service"
)

// Una respuesta de chat de mas de esto suele ser un parrafo de asistente.
const maxNaturalReplyRunes = 80

// judgeResponse representa la respuesta estructurada del juez evaluador en formato JSON.
type judgeResponse struct {
	Reasoning     string `json:"reasoning"`
	RoleScore     int    `json:"role_score"`
	ScenarioScore int    `json:"scenario_score"`
	HumanityScore int    `json:"humanity_score"`
}

// heuristics son señales locales que se pasan al juez y limitan sus notas.
type heuristics struct {
	RoleInverted   bool
	AssistantVoice bool
	TooLong        bool
}

func (h heuristics) String() string {
	return fmt.Sprintf(
		"Indicadores heurísticos: rol_invertido=%t, voz_asistente=%t, demasiado_largo=%t",
		h.RoleInverted, h.AssistantVoice, h.TooLong,
	)
}

func runHeuristics(c Case, response string) heuristics {
	return heuristics{
		RoleInverted:   detectRoleInversion(c.OwnGroup, response),
		AssistantVoice: detectAssistantVoice(response),
		TooLong:        utf8.RuneCountInString(strings.TrimSpace(response)) > maxNaturalReplyRunes,
	}
}

func evaluateResponse(ctx context.Context, judge llm.LLMClient, c Case, response string) (judgeResponse, error) {
	h := runHeuristics(c, response)
	prompt := buildJudgePrompt(describeOpponent(c.Scenario.Opponent), c.Scenario.Scenario, h.String(),
		service.FormatTranscript(c.Turns, roleTitleOf(c.Scenario.Opponent)), response, c.ExpectedBehavior)

	raw, err := judge.Generate(ctx, prompt)
	if err != nil {
		return judgeResponse{}, err
	}

	jsonStr := service.CleanLLMJSONResponse(raw)
	if start, end := strings.Index(jsonStr, "{"), strings.LastIndex(jsonStr, "}"); start >= 0 && end > start {
		jsonStr = jsonStr[start : end+1]
	} else {
		return judgeResponse{}, fmt.Errorf("juez devolvió no-json: %q", raw)
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("error parseando JSON juez: %w (raw=%q)", err, raw)
	}

	// clamps simples por si el juez delira con 0/10
	jr.RoleScore = clamp1to5(jr.RoleScore)
	jr.ScenarioScore = clamp1to5(jr.ScenarioScore)
	jr.HumanityScore = clamp1to5(jr.HumanityScore)

	// Penalización dura: hablar desde el lado del usuario rompe el rol.
	if h.RoleInverted && jr.RoleScore > 2 {
		jr.RoleScore = 2
	}
	if h.AssistantVoice && jr.HumanityScore > 2 {
		jr.HumanityScore = 2
	}
	return jr, nil
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// detectRoleInversion marca "你们<grupo>" sin "我们<grupo>": el interlocutor habla como visitante de su propio grupo.
func detectRoleInversion(ownGroup, response string) bool {
	ownGroup = strings.TrimSpace(ownGroup)
	if ownGroup == "" {
		return false
	}
	return strings.Contains(response, "你们"+ownGroup) && !strings.Contains(response, "我们"+ownGroup)
}

var assistantMarkers = []string{
	"作为一个ai",
	"作为ai",
	"作为一个人工智能",
	"作为语言模型",
	"我是一个ai",
	"有什么可以帮您",
	"有什么可以帮你",
	"希望对你有帮助",
	"希望以上",
	"以下是",
	"as an ai",
}

func detectAssistantVoice(response string) bool {
	l := strings.ToLower(strings.ReplaceAll(response, " ", ""))
	for _, m := range assistantMarkers {
		if strings.Contains(l, strings.ReplaceAll(m, " ", "")) {
			return true
		}
	}
	// Listas numeradas en un chat casual.
	return strings.Contains(response, "\n1.") || strings.Contains(response, "\n- ")
}

func describeOpponent(opp *domain.OpponentProfile) string {
	if opp == nil || opp.IsZero() {
		return "普通聊天对象"
	}
	var parts []string
	if opp.RoleTitle != "" {
		parts = append(parts, "身份："+opp.RoleTitle)
	}
	if opp.Style != "" {
		parts = append(parts, "风格："+opp.Style)
	}
	if opp.PersonaHint != "" {
		parts = append(parts, "目标："+opp.PersonaHint)
	}
	if len(opp.Traits) > 0 {
		parts = append(parts, "特质："+strings.Join(opp.Traits, "、"))
	}
	return strings.Join(parts, "；")
}

func roleTitleOf(opp *domain.OpponentProfile) string {
	if opp == nil {
		return ""
	}
	return opp.RoleTitle
}

func buildJudgePrompt(opponent, scenario, heuristicLine, transcript, response, expected string) string {
	return fmt.Sprintf(
		`Eres un juez experto que evalúa a un interlocutor simulado en una práctica de conversación en chino.

Interlocutor: %s
Escenario: %s
%s

Historial:
%s

Respuesta del interlocutor: %q
Expectativa del escenario: %s

Evalúa (1-5):
1) Rol: ¿Habla desde su identidad y lado (p. ej. dueño del club dice 我们社团, no 你们社团)?
   - Si rol_invertido=true => Rol máximo 2/5.
2) Escenario: ¿Responde al último mensaje y avanza la situación planteada?
3) Humanidad: ¿Suena a una persona real en un chat (breve, oral) o a un asistente?
   - Si voz_asistente=true => Humanidad máximo 2/5.
   - Si demasiado_largo=true resta al menos 1 punto en Humanidad.

Responde SOLO JSON (sin markdown):
{
  "reasoning": "...",
  "role_score": 0,
  "scenario_score": 0,
  "humanity_score": 0
}`,
		opponent, scenario, heuristicLine, transcript, response, expected,
	)
}
