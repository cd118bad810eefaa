package service

import (
	"fmt"
	"strings"

	"soul-agent/internal/domain"
)

// CandidateContext es el contexto serializado que recibe el generador de candidatos.
type CandidateContext struct {
	Conversation []domain.ConversationTurn `json:"conversation"`
	Draft        string                    `json:"draft"`
	UserProfile  *domain.Profile           `json:"userProfile"`
	PeerProfile  *domain.Profile           `json:"peerProfile"`
	Anchor       CandidateAnchor           `json:"anchor"`
	Scenario     *domain.ScenarioContext   `json:"scenario"`
	Memory       []domain.MemoryItem       `json:"memory,omitempty"`
}

type CandidateAnchor struct {
	LastRole string   `json:"last_role"`
	LastText string   `json:"last_text"`
	Keywords []string `json:"keywords"`
}

// scenarioDigest es la vista reducida del escenario que se incrusta en el prompt.
type scenarioDigest struct {
	Scenario string `json:"scenario"`
	Opponent struct {
		RoleTitle string   `json:"roleTitle"`
		Style     string   `json:"style"`
		Tone      string   `json:"tone"`
		Traits    []string `json:"traits"`
		Domain    string   `json:"domain"`
	} `json:"opponent"`
	UserGoal struct {
		Goal            string   `json:"goal"`
		Subgoals        []string `json:"subgoals"`
		SuccessCriteria []string `json:"successCriteria"`
	} `json:"userGoal"`
}

// CandidatePromptBuilder construye los mensajes para generar respuestas sugeridas al usuario.
type CandidatePromptBuilder struct{}

func (CandidatePromptBuilder) SystemPrompt() string {
	return "你是一位中文沟通教练助手，专门帮助用户提升社交对话技巧。" +
		"你的任务是为用户生成多条候选回复，帮助用户学习如何更好地与对方沟通。"
}

// UserPrompt arma las instrucciones: modo de respuesta, anclas, contexto, escenario y persona.
// persona es nil cuando la preferencia de funciones esta desactivada.
func (CandidatePromptBuilder) UserPrompt(cc CandidateContext, persona map[string]int, replyMode string) string {
	var sb strings.Builder

	sb.WriteString("请基于提供的对话上下文与画像，输出3-6条中文候选回复，槽位包含：镜像/稳妥/幽默。")
	sb.WriteString("\n要求：每条≤2句；避免冒犯、隐私、刻板印象。")

	// Modo de respuesta
	if replyMode == replyModeAnswer {
		sb.WriteString("\n当前应对模式：answer（对方刚提出问题）。")
		sb.WriteString("\n请先直接给出回答/信息/观点，不要以提问开头；整条最多可包含0-1个轻问（可为0）。")
		sb.WriteString("\n尽量具体，结合上下文中的事实或常识补充一个小细节，再视情况加一句轻提问。")
	} else {
		sb.WriteString("\n当前应对模式：probe（推进对话）。")
		sb.WriteString("\n可以包含一个自然追问，用于推动互动。")
	}

	sb.WriteString("\n如果上一条是对方消息，请优先引用上一条中的关键词或关键短语，保持紧密承接；若无法引用请说明原因再简洁回应。")
	sb.WriteString("\n上下文锚点（可能为空）：")
	sb.WriteString(toJSON(cc.Anchor))
	sb.WriteString("\n输出严格为JSON数组：[{\"id\":\"mirror|safe|humor|...\",\"text\":\"...\",\"why\":\"原因\",\"risk\":\"low|mid|high\"}]\n")
	sb.WriteString("上下文：")
	sb.WriteString(toJSON(cc))

	if cc.Scenario != nil {
		writeScenarioIdentity(&sb, cc.Scenario)
	}

	if persona != nil {
		sb.WriteString(fmt.Sprintf("\n已知用户八维偏好：%s。请尽量匹配沟通风格。", toJSON(persona)))
	}
	return sb.String()
}

// writeScenarioIdentity agrega la logica de identidad: el usuario habla desde su rol, no desde el del interlocutor.
func writeScenarioIdentity(sb *strings.Builder, sc *domain.ScenarioContext) {
	var d scenarioDigest
	d.Scenario = sc.Scenario
	d.Opponent.Traits = []string{}
	d.UserGoal.Subgoals = []string{}
	d.UserGoal.SuccessCriteria = []string{}
	if sc.Opponent != nil {
		d.Opponent.RoleTitle = sc.Opponent.RoleTitle
		d.Opponent.Style = sc.Opponent.Style
		d.Opponent.Tone = sc.Opponent.Tone
		d.Opponent.Domain = sc.Opponent.Domain
		if len(sc.Opponent.Traits) > 0 {
			d.Opponent.Traits = sc.Opponent.Traits
		}
	}
	if sc.UserGoal != nil {
		d.UserGoal.Goal = sc.UserGoal.Goal
		if len(sc.UserGoal.Subgoals) > 0 {
			d.UserGoal.Subgoals = sc.UserGoal.Subgoals
		}
		if len(sc.UserGoal.SuccessCriteria) > 0 {
			d.UserGoal.SuccessCriteria = sc.UserGoal.SuccessCriteria
		}
	}

	traits := nonEmpty(d.Opponent.Traits)
	roleTitle := orDefault(d.Opponent.RoleTitle, "对方")
	userGoal := orDefault(d.UserGoal.Goal, "自然交流")

	sb.WriteString("\n场景设定：")
	sb.WriteString(toJSON(d))
	if len(traits) > 0 {
		sb.WriteString("；对方形象关键词：" + strings.Join(traits, "、"))
	}
	sb.WriteString("。\n\n")

	sb.WriteString("【极其重要的身份逻辑】\n")
	sb.WriteString("根据场景描述和对方角色，你需要推断出用户的身份。\n")
	sb.WriteString(fmt.Sprintf("场景描述：%s\n", d.Scenario))
	sb.WriteString(fmt.Sprintf("对方角色：%s\n", roleTitle))
	sb.WriteString(fmt.Sprintf("用户目标：%s\n\n", userGoal))
	sb.WriteString("基于以上信息，请明确：\n")
	sb.WriteString("1. 用户的身份是什么？（例如：如果对方是学弟且场景是社团招新，那用户就是学长/学姐；如果对方是面试官，用户就是求职者）\n")
	sb.WriteString("2. 用户和对方的关系是什么？（引导者vs被引导者？平等关系？）\n")
	sb.WriteString("3. 用户在这个场景中的角色定位是什么？\n\n")

	sb.WriteString("【候选生成要求】\n")
	sb.WriteString("你是为“用户”（而不是对方）生成候选回复。\n")
	sb.WriteString("候选回复必须：\n")
	sb.WriteString("1. 以用户的真实身份口吻说话（根据你的推断）\n")
	sb.WriteString(fmt.Sprintf("2. 适合对%s说的话\n", roleTitle))
	sb.WriteString("3. 符合场景逻辑和社交常识（例如：社团成员介绍自己社团说'我们'，不说'你们'；求职者回答问题，不反问面试官的个人兴趣）\n")
	sb.WriteString("4. 推进用户目标的实现\n\n")

	sb.WriteString("【举例说明】\n")
	sb.WriteString("错误示例：如果用户是学长招新，说'听说你们社团很有趣'←这是学弟的口吻\n")
	sb.WriteString("正确示例：学长招新应说'我们社团最近有个活动很有趣'←这才是学长的口吻\n")
	if len(traits) > 0 {
		sb.WriteString("\n请优先依据对方形象关键词调整语气、关注点与说话方式；若关键词与固定风格冲突，以关键词为准；避免与其相悖的表达。")
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
