package service

import (
	"fmt"
	"strings"

	"soul-agent/internal/domain"
)

// peerPersona es el interlocutor ya resuelto: request + escenario.
type peerPersona struct {
	Style     string
	Hint      string
	RoleTitle string
	Tone      string
	Traits    []string
	Domain    string
	Scenario  string
	Goal      string
	// HasScenario indica si hay que incluir la linea de escenario.
	HasScenario bool
	// Scene son los datos de la linea de escenario: ahi manda el escenario.
	Scene sceneOpponent
}

type sceneOpponent struct {
	RoleTitle string
	Tone      string
	Traits    []string
	Domain    string
}

// resolvePeerPersona combina el perfil del request con el del escenario.
// El estilo del escenario manda. En el resto del prompt manda el request y el
// escenario solo rellena campos vacios; en la linea de escenario es al reves.
func resolvePeerPersona(opp *domain.OpponentProfile, sc *domain.ScenarioContext) peerPersona {
	p := peerPersona{}
	if opp != nil {
		p.Style = strings.TrimSpace(opp.Style)
		p.Hint = strings.TrimSpace(opp.PersonaHint)
		p.RoleTitle = strings.TrimSpace(opp.RoleTitle)
		p.Tone = strings.TrimSpace(opp.Tone)
		p.Traits = nonEmpty(opp.Traits)
		p.Domain = strings.TrimSpace(opp.Domain)
	}
	if sc != nil {
		p.HasScenario = true
		p.Scenario = sc.Scenario
		if sc.UserGoal != nil {
			p.Goal = sc.UserGoal.Goal
		}
		if o := sc.Opponent; o != nil {
			if s := strings.TrimSpace(o.Style); s != "" {
				p.Style = s
			}
			if p.RoleTitle == "" {
				p.RoleTitle = strings.TrimSpace(o.RoleTitle)
			}
			if p.Tone == "" {
				p.Tone = strings.TrimSpace(o.Tone)
			}
			if len(p.Traits) == 0 {
				p.Traits = nonEmpty(o.Traits)
			}
			if p.Domain == "" {
				p.Domain = strings.TrimSpace(o.Domain)
			}
			p.Scene = sceneOpponent{
				RoleTitle: strings.TrimSpace(o.RoleTitle),
				Tone:      strings.TrimSpace(o.Tone),
				Traits:    nonEmpty(o.Traits),
				Domain:    strings.TrimSpace(o.Domain),
			}
		}
		p.Scene.RoleTitle = orDefault(p.Scene.RoleTitle, p.RoleTitle)
		p.Scene.Tone = orDefault(p.Scene.Tone, p.Tone)
		p.Scene.Domain = orDefault(p.Scene.Domain, p.Domain)
		if len(p.Scene.Traits) == 0 {
			p.Scene.Traits = p.Traits
		}
	}
	if p.Style == "" {
		p.Style = "自然"
	}
	return p
}

// PeerPromptBuilder construye el prompt del interlocutor simulado.
type PeerPromptBuilder struct {
	lex *Lexicon
}

func NewPeerPromptBuilder(lex *Lexicon) PeerPromptBuilder {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return PeerPromptBuilder{lex: lex}
}

func (PeerPromptBuilder) SystemPrompt() string {
	return "你是一位中文虚拟聊天对象，目标是自然地与对方交流。" +
		"请根据你在场景中的身份和立场，使用符合该角色的语气、称谓和行为方式。"
}

// FormatTranscript numera los turnos desde la perspectiva del interlocutor.
func FormatTranscript(turns []domain.ConversationTurn, roleTitle string) string {
	if len(turns) == 0 {
		return "（无对话历史）"
	}
	title := orDefault(roleTitle, "对方")
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			lines = append(lines, "我（用户）："+t.Text)
		case domain.RolePeer:
			lines = append(lines, fmt.Sprintf("你（%s）：%s", title, t.Text))
		}
	}
	if len(lines) == 0 {
		return "（无对话历史）"
	}
	return strings.Join(lines, "\n")
}

func (b PeerPromptBuilder) styleDescription(p peerPersona) string {
	if len(p.Traits) > 0 {
		return fmt.Sprintf("请参考对方形象关键词：%s。", strings.Join(p.Traits, "、")) +
			"优先依据这些关键词调整语气、关注点与说话方式；若与固定风格冲突，以关键词为准。"
	}
	return b.lex.StyleDescription(p.Style)
}

// UserPrompt pide tres respuestas (positiva/neutral/negativa) en un array JSON.
func (b PeerPromptBuilder) UserPrompt(p peerPersona, transcript, lastUserMsg string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("请扮演与我聊天的对象，风格：%s（%s）。", p.Style, b.styleDescription(p)))
	if p.Hint != "" {
		sb.WriteString(fmt.Sprintf("对手设定：%s。", p.Hint))
	}
	sb.WriteString("\n")
	if p.RoleTitle != "" {
		sb.WriteString("你的角色：" + p.RoleTitle)
	} else {
		sb.WriteString("你的角色：对话对象")
	}
	sb.WriteString("\n\n")

	if p.HasScenario {
		sb.WriteString(fmt.Sprintf("场景设定：场景：%s；领域：%s；对方：%s，风格：%s，语气：%s，特征：%s；我的目标：%s\n",
			p.Scenario, p.Scene.Domain, p.Scene.RoleTitle, p.Style, p.Scene.Tone, strings.Join(p.Scene.Traits, ","), p.Goal))
	}

	sb.WriteString("\n【对话历史】\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\n")

	sb.WriteString("【回复要求】\n")
	sb.WriteString(fmt.Sprintf("对方（用户）最后一句话是：%s\n", orDefault(lastUserMsg, "（无）")))
	sb.WriteString("你必须针对这句话给出直接、相关的回复。\n\n")
	sb.WriteString("重要规则：\n")
	sb.WriteString("1. 中文输出，每条不超过2句\n")
	sb.WriteString("2. 不要重复问已经回答过的问题（如果对方已经解释了某事，不要再问）\n")
	sb.WriteString("3. 如果对方提出邀请或问你是否有兴趣，应该回应是/否，而不是反问\n")
	sb.WriteString(fmt.Sprintf("4. 理解你的身份定位：作为%s，应结合场景和对话历史决定合适的主动或被动程度\n", p.RoleTitle))
	sb.WriteString(fmt.Sprintf("5. 场景逻辑：作为%s，不要说不符合身份的话（如学弟不会说'我们社团'，应该说'你们社团'）\n\n", p.RoleTitle))
	sb.WriteString("请以 JSON 数组返回 3 条不同态度的回复（积极/中立/委婉拒绝）。\n")
	sb.WriteString(`格式：[{"id":"pos","text":"...","tone":"positive"},{"id":"neut","text":"...","tone":"neutral"},{"id":"neg","text":"...","tone":"negative"}]` + "\n")
	sb.WriteString("只输出 JSON 数组，不要任何解释文字。")
	return sb.String()
}
