package domain

const (
	PartyUser     = "user"
	PartyOpponent = "opponent"
	PartyEither   = "either"
)

const (
	ScenarioModeFull     = "full"
	ScenarioModeGoalOnly = "goal_only"
)

type UserGoal struct {
	Goal            string   `json:"goal,omitempty"`
	Subgoals        []string `json:"subgoals,omitempty"`
	SuccessCriteria []string `json:"successCriteria,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

type ScenarioFlow struct {
	StartingParty string   `json:"startingParty,omitempty" binding:"omitempty,oneof=user opponent either"`
	OpeningHints  []string `json:"openingHints,omitempty"`
}

// ScenarioContext es el escenario estructurado que comparten suggest y peer.
type ScenarioContext struct {
	Scenario    string           `json:"scenario,omitempty"`
	Opponent    *OpponentProfile `json:"opponent,omitempty"`
	UserGoal    *UserGoal        `json:"userGoal,omitempty"`
	Constraints map[string]any   `json:"constraints,omitempty"`
	Anchors     []string         `json:"anchors,omitempty"`
	Flow        *ScenarioFlow    `json:"flow,omitempty"`
}

// StartingParty devuelve quien abre la conversacion, "either" por defecto.
func (s *ScenarioContext) StartingParty() string {
	if s == nil || s.Flow == nil || s.Flow.StartingParty == "" {
		return PartyEither
	}
	return s.Flow.StartingParty
}

type ScenarioInput struct {
	TemplateID     string   `json:"templateId,omitempty"`
	ScenarioText   string   `json:"scenarioText,omitempty"`
	OpponentHint   string   `json:"opponentHint,omitempty"`
	UserGoalHint   string   `json:"userGoalHint,omitempty"`
	Mode           string   `json:"mode,omitempty" binding:"omitempty,oneof=full goal_only"`
	OpponentTraits []string `json:"opponentTraits,omitempty"`
}

func (in *ScenarioInput) Normalize() {
	if in.Mode == "" {
		in.Mode = ScenarioModeFull
	}
}
