package service

import (
	"math"
	"strings"
	"unicode/utf8"

	"soul-agent/internal/domain"
)

const (
	maxAnchorKeywords   = 5
	maxScenarioKeywords = 6
	affectWindow        = 5
)

// Separadores usados para trocear texto en fragmentos-clave.
const keywordSeparators = "，。！？!?,.;:：、()（）[]【】<>《》\"' \n\t"

// ConversationAnalysis resume el estado de la conversacion para tips y ranking.
type ConversationAnalysis struct {
	Affect             float64
	RelationshipIndex  int
	Trend              string
	LastPeerIsQuestion bool
	LastRole           string
	LastText           string
	AnchorKeywords     []string
	ScenarioKeywords   []string
}

// ConversationAnalyzer encapsula el analisis heuristico de afecto y anclas.
type ConversationAnalyzer struct {
	lex *Lexicon
}

func NewConversationAnalyzer(lex *Lexicon) *ConversationAnalyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &ConversationAnalyzer{lex: lex}
}

// ExtractKeywords trocea por separadores, descarta fragmentos de un solo caracter
// y devuelve hasta 5 fragmentos unicos en orden de aparicion.
func ExtractKeywords(text string) []string {
	if text == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(keywordSeparators, r)
	})
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, maxAnchorKeywords)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < 2 {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) == maxAnchorKeywords {
			break
		}
	}
	return out
}

// AffectScore suma +1/-1 por palabra positiva/negativa presente y normaliza a [-1, 1].
func (a *ConversationAnalyzer) AffectScore(text string) float64 {
	score := 0
	for _, w := range a.lex.PositiveWords {
		if strings.Contains(text, w) {
			score++
		}
	}
	for _, w := range a.lex.NegativeWords {
		if strings.Contains(text, w) {
			score--
		}
	}
	return float64(clampInt(score, -3, 3)) / 3.0
}

// Analyze calcula afecto del interlocutor, indice de relacion y anclas del ultimo turno.
func (a *ConversationAnalyzer) Analyze(turns []domain.ConversationTurn) ConversationAnalysis {
	var peerTexts []string
	for _, t := range turns {
		if t.Role == domain.RolePeer && t.Text != "" {
			peerTexts = append(peerTexts, t.Text)
		}
	}

	affect := 0.0
	if len(peerTexts) > 0 {
		window := peerTexts
		if len(window) > affectWindow {
			window = window[len(window)-affectWindow:]
		}
		sum := 0.0
		for _, t := range window {
			sum += a.AffectScore(t)
		}
		affect = sum / float64(len(window))
	}

	res := ConversationAnalysis{
		Affect:            affect,
		RelationshipIndex: clampInt(int(math.Round(50+affect*30)), 0, 100),
		Trend:             trendFor(affect),
		AnchorKeywords:    []string{},
		ScenarioKeywords:  []string{},
	}

	if len(turns) > 0 {
		last := turns[len(turns)-1]
		res.LastRole = last.Role
		res.LastText = last.Text
		if last.Role == domain.RolePeer && last.Text != "" {
			trimmed := strings.TrimSpace(last.Text)
			res.LastPeerIsQuestion = strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？")
		}
		if last.Role == domain.RolePeer {
			res.AnchorKeywords = ExtractKeywords(last.Text)
		}
	}
	return res
}

// ScenarioKeywords junta las anclas del escenario y las palabras clave del objetivo (max 6).
func ScenarioKeywords(sc *domain.ScenarioContext) []string {
	out := []string{}
	if sc == nil {
		return out
	}
	for _, a := range sc.Anchors {
		if a != "" {
			out = append(out, a)
		}
	}
	if sc.UserGoal != nil && sc.UserGoal.Goal != "" {
		out = append(out, ExtractKeywords(sc.UserGoal.Goal)...)
	}
	if len(out) > maxScenarioKeywords {
		out = out[:maxScenarioKeywords]
	}
	return out
}

func trendFor(affect float64) string {
	switch {
	case affect > 0.15:
		return domain.TrendUp
	case affect < -0.15:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}
