package domain

const (
	EntryTyping     = "typing"
	EntryPreSend    = "preSend"
	EntryPostSend   = "postSend"
	EntryPeerMsg    = "peerMsg"
	EntryIdle       = "idle"
	EntryFirstEnter = "firstEnter"
)

const (
	RiskVeryLow = "very_low"
	RiskLow     = "low"
	RiskMid     = "mid"
	RiskHigh    = "high"
)

const (
	ToneGentle  = "gentle"
	ToneNeutral = "neutral"
	ToneAlert   = "alert"
)

const (
	TrendUp   = "up"
	TrendFlat = "flat"
	TrendDown = "down"
)

// SuggestRequest es la entrada de /api/suggest.
type SuggestRequest struct {
	Conversation   []ConversationTurn `json:"conversation" binding:"required,dive"`
	Draft          string             `json:"draft"`
	EntryType      string             `json:"entryType" binding:"omitempty,oneof=typing preSend postSend peerMsg idle firstEnter"`
	UserProfile    *Profile           `json:"userProfile,omitempty"`
	PeerProfile    *Profile           `json:"peerProfile,omitempty"`
	Memory         []MemoryItem       `json:"memory,omitempty" binding:"omitempty,dive"`
	PersonaWeights *PersonaWeights    `json:"personaWeights,omitempty"`
	Scenario       *ScenarioContext   `json:"scenario,omitempty"`
}

// Normalize completa los valores por defecto que el frontend puede omitir.
func (r *SuggestRequest) Normalize() {
	if r.EntryType == "" {
		r.EntryType = EntryTyping
	}
	for i := range r.Memory {
		if r.Memory[i].Type == "" {
			r.Memory[i].Type = MemoryTypeNote
		}
	}
}

type Tip struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
	Risk string `json:"risk"`
}

// Candidate es una respuesta sugerida para que el usuario envie.
type Candidate struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Why   string  `json:"why"`
	Risk  string  `json:"risk"`
	Score float64 `json:"score"`
}

type Relationship struct {
	Index int    `json:"index"`
	Trend string `json:"trend"`
}

type Safety struct {
	Blocked bool     `json:"blocked"`
	Notes   []string `json:"notes"`
}

type SuggestResponse struct {
	Tip          Tip          `json:"tip"`
	Candidates   []Candidate  `json:"candidates"`
	Relationship Relationship `json:"relationship"`
	Safety       Safety       `json:"safety"`
}
