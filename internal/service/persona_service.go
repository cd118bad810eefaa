package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/llm"
)

const (
	inferMaxTokens   = 400
	inferTemperature = 0.2
)

// Pila cognitiva dominante/auxiliar/terciaria/inferior por tipo.
var cognitiveStacks = map[string][4]string{
	"INTJ": {"Ni", "Te", "Fi", "Se"},
	"ENTJ": {"Te", "Ni", "Se", "Fi"},
	"INFJ": {"Ni", "Fe", "Ti", "Se"},
	"ENFJ": {"Fe", "Ni", "Se", "Ti"},
	"INTP": {"Ti", "Ne", "Si", "Fe"},
	"ENTP": {"Ne", "Ti", "Fe", "Si"},
	"INFP": {"Fi", "Ne", "Si", "Te"},
	"ENFP": {"Ne", "Fi", "Te", "Si"},
	"ISTJ": {"Si", "Te", "Fi", "Ne"},
	"ESTJ": {"Te", "Si", "Ne", "Fi"},
	"ISFJ": {"Si", "Fe", "Ti", "Ne"},
	"ESFJ": {"Fe", "Si", "Ne", "Ti"},
	"ISTP": {"Ti", "Se", "Ni", "Fe"},
	"ESTP": {"Se", "Ti", "Fe", "Ni"},
	"ISFP": {"Fi", "Se", "Ni", "Te"},
	"ESFP": {"Se", "Fi", "Te", "Ni"},
}

var stackWeights = [4]int{35, 25, 15, 10}

const (
	defaultFunctionWeight = 10
	shadowFunctionCap     = 15
)

var mbtiQuestions = []domain.MBTIQuestion{
	{ID: "ei1", Dim: domain.DimEI, Text: "和一群人相处一整天后，我通常觉得更有精神。"},
	{ID: "sn1", Dim: domain.DimSN, Text: "我更相信亲眼看到的细节和事实，而不是直觉。"},
	{ID: "tf1", Dim: domain.DimTF, Text: "做决定时，我优先考虑逻辑是否说得通。"},
	{ID: "jp1", Dim: domain.DimJP, Text: "我喜欢提前把计划安排好，并按计划执行。"},
	{ID: "ei2", Dim: domain.DimEI, Text: "我更喜欢独处或和一两个熟人待在一起。", Reverse: true},
	{ID: "sn2", Dim: domain.DimSN, Text: "我常常被抽象的想法和各种可能性吸引。", Reverse: true},
	{ID: "tf2", Dim: domain.DimTF, Text: "我很在意别人听到我的话之后的感受。", Reverse: true},
	{ID: "jp2", Dim: domain.DimJP, Text: "我喜欢保留选择的余地，走一步看一步。", Reverse: true},
	// deep
	{ID: "ei3", Dim: domain.DimEI, Text: "在聚会上，我通常会主动认识新朋友。"},
	{ID: "sn3", Dim: domain.DimSN, Text: "学习新东西时，我需要具体的步骤和例子。"},
	{ID: "tf3", Dim: domain.DimTF, Text: "指出别人的错误比维持气氛更重要。"},
	{ID: "jp3", Dim: domain.DimJP, Text: "任务没完成之前，我很难放松下来。"},
	{ID: "ei4", Dim: domain.DimEI, Text: "说话前我习惯先在心里想清楚。", Reverse: true},
	{ID: "sn4", Dim: domain.DimSN, Text: "我喜欢用比喻和类比来解释事情。", Reverse: true},
	{ID: "tf4", Dim: domain.DimTF, Text: "朋友倾诉时，我先给安慰而不是解决方案。", Reverse: true},
	{ID: "jp4", Dim: domain.DimJP, Text: "截止日期前的冲刺反而让我效率更高。", Reverse: true},
}

// PersonaService calcula MBTI por cuestionario y lo infiere desde el chat con el LLM.
type PersonaService struct {
	llmClient llm.LLMClient
	parser    LLMResponseParser
	logger    *zap.Logger
}

func NewPersonaService(llmClient llm.LLMClient, logger *zap.Logger) *PersonaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonaService{
		llmClient: llmClient,
		parser:    DefaultLLMResponseParser,
		logger:    logger,
	}
}

// Questions devuelve el cuestionario: quick (8 preguntas) o deep (16).
func (s *PersonaService) Questions(mode string) []domain.MBTIQuestion {
	n := 8
	if mode == domain.MBTIModeDeep {
		n = len(mbtiQuestions)
	}
	out := make([]domain.MBTIQuestion, n)
	copy(out, mbtiQuestions[:n])
	return out
}

// SubmitMBTI puntua las respuestas por dimension y deriva pesos de funciones y consejos.
func (s *PersonaService) SubmitMBTI(req domain.MBTISubmitRequest) domain.MBTISubmitResponse {
	byDim := map[string][]domain.MBTIAnswer{}
	for _, a := range req.Answers {
		byDim[a.Dim] = append(byDim[a.Dim], a)
	}

	ei, eiC := pickLetter(scoreDimension(byDim[domain.DimEI]), "E", "I")
	sn, snC := pickLetter(scoreDimension(byDim[domain.DimSN]), "S", "N")
	tf, tfC := pickLetter(scoreDimension(byDim[domain.DimTF]), "T", "F")
	jp, jpC := pickLetter(scoreDimension(byDim[domain.DimJP]), "J", "P")
	mbti := ei + sn + tf + jp

	advice := make([]string, 0, 2)
	if sn == "S" {
		advice = append(advice, "偏好具体与实例，沟通时给出可执行的小步骤")
	} else {
		advice = append(advice, "偏好愿景与类比，沟通时给出整体框架")
	}
	if tf == "T" {
		advice = append(advice, "偏好逻辑与事实，避免情绪化措辞")
	} else {
		advice = append(advice, "偏好感受与价值，表达共情更易被接受")
	}

	return domain.MBTISubmitResponse{
		MBTI:       mbti,
		Confidence: math.Round((eiC+snC+tfC+jpC)/4*100) / 100,
		Functions:  FunctionsFromMBTI(mbti),
		Advice:     advice,
	}
}

// scoreDimension mapea la media Likert (1..5) a 0..1 hacia la primera letra; 0.5 sin respuestas.
func scoreDimension(answers []domain.MBTIAnswer) float64 {
	if len(answers) == 0 {
		return 0.5
	}
	sum := 0
	for _, a := range answers {
		v := clampInt(a.Value, 1, 5)
		if a.Reverse {
			v = 6 - v
		}
		sum += v
	}
	mean := float64(sum) / float64(len(answers))
	return (mean - 1) / 4
}

func pickLetter(score float64, first, second string) (string, float64) {
	conf := math.Abs(score-0.5) * 2
	if score >= 0.5 {
		return first, conf
	}
	return second, conf
}

// FunctionsFromMBTI asigna 35/25/15/10 a la pila del tipo y 10 al resto (tope 15).
func FunctionsFromMBTI(mbti string) map[string]int {
	funcs := make(map[string]int, len(domain.JungFunctions))
	for _, f := range domain.JungFunctions {
		funcs[f] = defaultFunctionWeight
	}
	stack, ok := cognitiveStacks[strings.ToUpper(mbti)]
	if !ok {
		return funcs
	}
	inStack := map[string]bool{}
	for i, f := range stack {
		funcs[f] = stackWeights[i]
		inStack[f] = true
	}
	for f, v := range funcs {
		if !inStack[f] && v > shadowFunctionCap {
			funcs[f] = shadowFunctionCap
		}
	}
	return funcs
}

// InferMBTI pide al LLM una estimacion a partir del chat. Los errores de transporte
// se devuelven envueltos en ErrLLMUnavailable.
func (s *PersonaService) InferMBTI(ctx context.Context, conv []domain.ConversationTurn) (domain.MBTIInferResponse, error) {
	usr := "基于以下中文聊天记录，推断说话者（第一人称）的MBTI与荣格八维强度（0-100）。" +
		"\n请给出证据点（抽象/具体、情感词密度、疑问/推理词、直接/委婉等），" +
		"\n仅输出JSON对象：{" +
		`"mbti":"INTJ",` +
		`"confidence":0.0,` +
		`"functions":{"Ni":0,"Ne":0,"Si":0,"Se":0,"Ti":0,"Te":0,"Fi":0,"Fe":0},` +
		`"notes":"简要证据"}` +
		"\n聊天记录：" + toJSON(conv)

	raw, err := s.llmClient.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "你是性格与沟通风格分析助手。"},
			{Role: llm.RoleUser, Content: usr},
		},
		MaxTokens:   inferMaxTokens,
		Temperature: inferTemperature,
	})
	if err != nil {
		s.logger.Warn("mbti inference failed", zap.Error(err))
		return domain.MBTIInferResponse{}, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	data := s.parser.ParseObject(raw)
	funcsRaw := asMap(data["functions"])
	funcs := make(map[string]int, len(domain.JungFunctions))
	for _, f := range domain.JungFunctions {
		v, ok := asInt(funcsRaw[f])
		if !ok {
			v = 0
		}
		funcs[f] = clampInt(v, 0, 100)
	}

	mbti := strings.ToUpper(asString(data["mbti"]))
	if r := []rune(mbti); len(r) > 4 {
		mbti = string(r[:4])
	}
	conf, ok := asFloat(data["confidence"])
	if !ok {
		conf = 0
	}

	return domain.MBTIInferResponse{
		MBTIGuess:      mbti,
		Confidence:     conf,
		FunctionsGuess: funcs,
		Notes:          asString(data["notes"]),
	}, nil
}
