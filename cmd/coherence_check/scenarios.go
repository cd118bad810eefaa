package main

import "soul-agent/internal/domain"

// Case es una situacion fija para evaluar si el interlocutor simulado se mantiene en su rol.
type Case struct {
	Name     string
	Scenario domain.ScenarioContext
	Turns    []domain.ConversationTurn
	// OwnGroup es el colectivo al que pertenece el interlocutor (p. ej. "社团").
	// Si habla de "你们<OwnGroup>" ha invertido la perspectiva.
	OwnGroup         string
	ExpectedBehavior string
}

func defaultCases() []Case {
	return []Case{
		{
			Name: "Reclutamiento de club",
			Scenario: domain.ScenarioContext{
				Scenario: "新生在社团招新摊位前犹豫要不要加入摄影社",
				Opponent: &domain.OpponentProfile{
					RoleTitle:   "摄影社社长",
					Style:       "活泼",
					PersonaHint: "热情招募新成员",
					Traits:      []string{"热情", "健谈"},
				},
				UserGoal: &domain.UserGoal{Goal: "了解社团活动后再决定是否加入"},
				Flow:     &domain.ScenarioFlow{StartingParty: domain.PartyOpponent},
			},
			Turns: []domain.ConversationTurn{
				{Role: domain.RolePeer, Text: "同学你好！对摄影感兴趣吗？"},
				{Role: domain.RoleUser, Text: "有一点，你们平时都做什么活动？"},
			},
			OwnGroup:         "社团",
			ExpectedBehavior: "Habla como dueño del club (我们社团), invita y describe actividades",
		},
		{
			Name: "Entrevista de trabajo",
			Scenario: domain.ScenarioContext{
				Scenario: "应聘后端开发岗位的技术面试",
				Opponent: &domain.OpponentProfile{
					RoleTitle: "面试官",
					Style:     "专业",
					Traits:    []string{"严谨", "直接"},
				},
				UserGoal: &domain.UserGoal{Goal: "展示项目经验并拿到二面"},
				Flow:     &domain.ScenarioFlow{StartingParty: domain.PartyOpponent},
			},
			Turns: []domain.ConversationTurn{
				{Role: domain.RolePeer, Text: "请先简单介绍一下你最近做的项目。"},
				{Role: domain.RoleUser, Text: "我最近做了一个缓存服务，用 Redis 做限流和缓存。"},
			},
			OwnGroup:         "公司",
			ExpectedBehavior: "Pregunta tecnica de seguimiento, tono profesional, sin elogios de asistente",
		},
		{
			Name: "Cita por app",
			Scenario: domain.ScenarioContext{
				Scenario: "在交友软件上刚匹配，第一次聊天",
				Opponent: &domain.OpponentProfile{
					Style:  "克制",
					Traits: []string{"慢热"},
				},
				Flow: &domain.ScenarioFlow{StartingParty: domain.PartyUser},
			},
			Turns: []domain.ConversationTurn{
				{Role: domain.RoleUser, Text: "嗨，看到你也喜欢徒步，最近去了哪里？"},
			},
			ExpectedBehavior: "Respuesta breve y reservada, sin listas ni tono de asistente",
		},
	}
}
