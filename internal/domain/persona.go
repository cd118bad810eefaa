package domain

// JungFunctions es el orden canonico de las ocho funciones cognitivas.
var JungFunctions = []string{"Ni", "Ne", "Si", "Se", "Ti", "Te", "Fi", "Fe"}

// PersonaWeights son las preferencias de funciones del usuario (0-100).
type PersonaWeights struct {
	Ni      int  `json:"Ni"`
	Ne      int  `json:"Ne"`
	Si      int  `json:"Si"`
	Se      int  `json:"Se"`
	Ti      int  `json:"Ti"`
	Te      int  `json:"Te"`
	Fi      int  `json:"Fi"`
	Fe      int  `json:"Fe"`
	Enabled bool `json:"enabled"`
}

// Functions devuelve los pesos como mapa, sin el flag enabled.
func (w PersonaWeights) Functions() map[string]int {
	return map[string]int{
		"Ni": w.Ni, "Ne": w.Ne, "Si": w.Si, "Se": w.Se,
		"Ti": w.Ti, "Te": w.Te, "Fi": w.Fi, "Fe": w.Fe,
	}
}

// WeightsFromFunctions es la inversa de Functions; las claves desconocidas se ignoran.
func WeightsFromFunctions(funcs map[string]int, enabled bool) PersonaWeights {
	return PersonaWeights{
		Ni: funcs["Ni"], Ne: funcs["Ne"], Si: funcs["Si"], Se: funcs["Se"],
		Ti: funcs["Ti"], Te: funcs["Te"], Fi: funcs["Fi"], Fe: funcs["Fe"],
		Enabled: enabled,
	}
}

const (
	DimEI = "EI"
	DimSN = "SN"
	DimTF = "TF"
	DimJP = "JP"
)

type MBTIAnswer struct {
	Dim     string `json:"dim" binding:"required,oneof=EI SN TF JP"`
	Value   int    `json:"value" binding:"required,min=1,max=5"`
	Reverse bool   `json:"reverse"`
}

type MBTISubmitRequest struct {
	Answers []MBTIAnswer `json:"answers" binding:"required,dive"`
	Mode    string       `json:"mode" binding:"omitempty,oneof=quick deep"`
}

type MBTISubmitResponse struct {
	MBTI       string         `json:"mbti"`
	Confidence float64        `json:"confidence"`
	Functions  map[string]int `json:"functions"`
	Advice     []string       `json:"advice"`
}

type MBTIInferRequest struct {
	Conversation []ConversationTurn `json:"conversation" binding:"required,dive"`
}

type MBTIInferResponse struct {
	MBTIGuess      string         `json:"mbtiGuess"`
	Confidence     float64        `json:"confidence"`
	FunctionsGuess map[string]int `json:"functionsGuess"`
	Notes          string         `json:"notes"`
}

// PersonaState es el estado de persona del proceso (solo memoria).
type PersonaState struct {
	MBTI      *string        `json:"mbti"`
	Functions map[string]int `json:"functions"`
	Enabled   bool           `json:"enabled"`
}

const (
	MBTIModeQuick = "quick"
	MBTIModeDeep  = "deep"
)

// MBTIQuestion es una pregunta Likert 1-5; 5 apunta a la primera letra de Dim salvo Reverse.
type MBTIQuestion struct {
	ID      string `json:"id"`
	Dim     string `json:"dim"`
	Text    string `json:"text"`
	Reverse bool   `json:"reverse"`
}
