package service

import (
	"fmt"

	"soul-agent/internal/domain"
)

const (
	replyModeAnswer = "answer"
	replyModeProbe  = "probe"
)

// FallbackCandidates arma un set local mirror/safe/humor cuando el LLM no responde.
func FallbackCandidates(turns []domain.ConversationTurn, draft, replyMode string) []domain.Candidate {
	if draft != "" {
		return []domain.Candidate{
			{ID: "mirror", Text: draft + " 想听听你的看法～", Why: "承接草稿并抛球", Risk: domain.RiskLow},
			{ID: "safe", Text: "我先说到这里，你这边怎么看？", Why: "稳妥推进", Risk: domain.RiskLow},
			{ID: "humor", Text: "这段我就不剧透啦，交给你来补完？😄", Why: "轻松化", Risk: domain.RiskMid},
		}
	}

	lastRole := ""
	if len(turns) > 0 {
		lastRole = turns[len(turns)-1].Role
	}

	switch lastRole {
	case domain.RolePeer:
		lastPeer := lastTextOf(turns, domain.RolePeer)
		if replyMode == replyModeAnswer {
			return []domain.Candidate{
				{ID: "mirror", Text: fmt.Sprintf("我这边主要是%s这部分的体验比较深～如果你想我可以具体说说。", firstRunes(lastPeer, 10)), Why: "先回答再补充", Risk: domain.RiskLow},
				{ID: "safe", Text: "我的看法是这样……（简单两点）如果你也方便，想听听你的想法。", Why: "给出答案+轻抛球", Risk: domain.RiskLow},
				{ID: "humor", Text: "先交一份简短答卷，再抛个小问题：你会怎么选？", Why: "回答后轻松推进", Risk: domain.RiskMid},
			}
		}
		return []domain.Candidate{
			{ID: "mirror", Text: fmt.Sprintf("关于“%s”，你更在意哪一部分？", firstRunes(lastPeer, 18)), Why: "承接其话题", Risk: domain.RiskLow},
			{ID: "safe", Text: "如果方便的话，能说说具体是怎么想的吗？", Why: "稳妥追问", Risk: domain.RiskLow},
			{ID: "humor", Text: "不如来个快问快答，我先抛一个：你会选A还是B？", Why: "轻松推进", Risk: domain.RiskMid},
		}
	case domain.RoleUser:
		return []domain.Candidate{
			{ID: "mirror", Text: "主要是我这次在某一科状态更好～你最近有什么小高光？", Why: "自述+抛回", Risk: domain.RiskLow},
			{ID: "safe", Text: "我的部分先到这儿，你这边最近有什么想分享的吗？", Why: "稳妥转问", Risk: domain.RiskLow},
			{ID: "humor", Text: "给自己发一张小小“表扬券”，也想听听你的故事～", Why: "轻松转场", Risk: domain.RiskMid},
		}
	}

	// apertura por defecto
	return []domain.Candidate{
		{ID: "mirror", Text: "周末一般怎么放松？我最近迷上了散步。", Why: "开启轻话题", Risk: domain.RiskLow},
		{ID: "safe", Text: "不急，我们可以从兴趣开始聊起～", Why: "稳妥开场", Risk: domain.RiskLow},
		{ID: "humor", Text: "发你一张“聊天启动券”，换你一个小分享？", Why: "幽默破冰", Risk: domain.RiskMid},
	}
}

// lastTextOf devuelve el texto no vacio mas reciente del rol indicado.
func lastTextOf(turns []domain.ConversationTurn, role string) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == role && turns[i].Text != "" {
			return turns[i].Text
		}
	}
	return ""
}

// firstRunes corta s en los primeros n caracteres sin partir runas.
func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
