package domain

// OpponentProfile describe al interlocutor simulado.
type OpponentProfile struct {
	Style       string   `json:"style,omitempty"`        // 自然/活泼/理性/温和/专业/俏皮/克制
	PersonaHint string   `json:"persona_hint,omitempty"` // objetivo de practica o ambientacion
	RoleTitle   string   `json:"roleTitle,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	Domain      string   `json:"domain,omitempty"`
	Tone        string   `json:"tone,omitempty"`
}

// IsZero indica si el perfil no trae ningun dato util.
func (o OpponentProfile) IsZero() bool {
	return o.Style == "" && o.PersonaHint == "" && o.RoleTitle == "" &&
		len(o.Traits) == 0 && o.Domain == "" && o.Tone == ""
}

type PeerReplyRequest struct {
	Conversation   []ConversationTurn `json:"conversation" binding:"required,dive"`
	Opponent       *OpponentProfile   `json:"opponent,omitempty"`
	PersonaWeights *PersonaWeights    `json:"personaWeights,omitempty"`
	Scenario       *ScenarioContext   `json:"scenario,omitempty"`
}

type PeerReplyItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Tone string `json:"tone,omitempty"`
	Why  string `json:"why,omitempty"`
}

// PeerReplyResponse mantiene Text por compatibilidad: es la primera respuesta.
type PeerReplyResponse struct {
	Text    string          `json:"text"`
	Replies []PeerReplyItem `json:"replies"`
}
