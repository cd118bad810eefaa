package service

import (
	"strings"
	"unicode/utf8"

	"soul-agent/internal/domain"
)

const (
	conciseRuneLimit = 40
	shortDraftRunes  = 8
	negativeAffect   = -0.2
)

// BuildTip elige el consejo breve que acompaña a las sugerencias.
func BuildTip(analysis ConversationAnalysis, entryType, draft string) domain.Tip {
	if analysis.LastPeerIsQuestion {
		if draft != "" {
			return domain.Tip{Text: "先回答TA的问题，再补一个小细节", Tone: domain.ToneGentle, Risk: domain.RiskLow}
		}
		return domain.Tip{Text: "建议先答再问：给出你的看法或经历", Tone: domain.ToneGentle, Risk: domain.RiskLow}
	}
	if (entryType == domain.EntryPreSend || entryType == domain.EntryTyping) && draft != "" {
		switch {
		case analysis.Affect < negativeAffect:
			return domain.Tip{Text: "建议降低强度，先共情再提问", Tone: domain.ToneAlert, Risk: domain.RiskMid}
		case utf8.RuneCountInString(draft) < shortDraftRunes:
			return domain.Tip{Text: "建议更具体些，给出一个小细节", Tone: domain.ToneGentle, Risk: domain.RiskLow}
		default:
			return domain.Tip{Text: "保持自然语气，附带一个轻问题", Tone: domain.ToneGentle, Risk: domain.RiskVeryLow}
		}
	}
	if entryType == domain.EntryIdle {
		return domain.Tip{Text: "尝试承接TA的兴趣点，给一个续聊锚点", Tone: domain.ToneNeutral, Risk: domain.RiskLow}
	}
	return domain.Tip{Text: "继续保持节奏～", Tone: domain.ToneGentle, Risk: domain.RiskVeryLow}
}

// ScoreCandidate puntua un candidato en [0, 1] segun preguntas, anclas, brevedad y riesgo.
func ScoreCandidate(text, why, risk string, analysis ConversationAnalysis) float64 {
	base := 0.5
	q := strings.Count(text, "？") + strings.Count(text, "?")
	if analysis.LastPeerIsQuestion {
		// el interlocutor pregunto: primero responder
		switch {
		case q == 0:
			base += 0.12
		case q == 1:
			base += 0.02
		default:
			base -= 0.08
		}
	} else if q >= 1 {
		base += 0.1
	}

	if len(analysis.AnchorKeywords) > 0 {
		matched := containsAny(text, analysis.AnchorKeywords)
		switch {
		case analysis.LastPeerIsQuestion && matched:
			base += 0.15
		case analysis.LastPeerIsQuestion:
			base -= 0.12
		case matched:
			base += 0.06
		}
	}
	if containsAny(text, analysis.ScenarioKeywords) {
		base += 0.06
	}
	if utf8.RuneCountInString(text) <= conciseRuneLimit {
		base += 0.05
	}
	if risk == domain.RiskLow {
		base += 0.08
	}
	if analysis.Affect < negativeAffect && strings.Contains(why, "幽默") {
		base -= 0.05
	}
	return clampFloat(base, 0, 1)
}

// NormalizeRisk deja solo low|mid|high; cualquier otro valor pasa a low.
func NormalizeRisk(risk string) string {
	switch risk {
	case domain.RiskLow, domain.RiskMid, domain.RiskHigh:
		return risk
	default:
		return domain.RiskLow
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}
