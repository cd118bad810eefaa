package domain

const (
	RoleUser = "user"
	RolePeer = "peer"
)

// ConversationTurn es un turno del chat que el usuario esta practicando.
type ConversationTurn struct {
	Role string   `json:"role" binding:"required,oneof=user peer"`
	Text string   `json:"text"`
	TS   *float64 `json:"ts,omitempty"`
}

// Profile describe a una de las partes de la conversacion.
type Profile struct {
	Interests []string `json:"interests,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	StylePref string   `json:"stylePref,omitempty"`
}

const (
	MemoryTypeWish       = "wish"
	MemoryTypePreference = "preference"
	MemoryTypeNote       = "note"
)

type MemoryItem struct {
	Type    string `json:"type" binding:"omitempty,oneof=wish preference note"`
	Content string `json:"content" binding:"required"`
}

// LastTurns devuelve como mucho los ultimos n turnos, sin copiar.
func LastTurns(turns []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
