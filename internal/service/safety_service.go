package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"soul-agent/internal/domain"
)

const (
	piiRedaction = "[已脱敏]"
	piiNote      = "疑似包含个人敏感信息"
)

// Patrones simples: movil de China continental y numero de identidad.
// El limite de palabra se comprueba aparte en piiMatches, con letras Unicode.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`1[3-9]\p{Nd}{9}`),
	regexp.MustCompile(`\p{Nd}{17}[\p{Nd}xX]`),
}

// isWordRune sigue la definicion Unicode de caracter de palabra: letras, digitos y '_'.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// piiMatches devuelve las coincidencias con limite de palabra Unicode a ambos lados.
func piiMatches(p *regexp.Regexp, text string) [][]int {
	var out [][]int
	for _, loc := range p.FindAllStringIndex(text, -1) {
		if before, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); loc[0] > 0 && isWordRune(before) {
			continue
		}
		if after, _ := utf8.DecodeRuneInString(text[loc[1]:]); loc[1] < len(text) && isWordRune(after) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// SafetyChecker revisa palabras vetadas y datos personales en un texto.
type SafetyChecker struct {
	banned []string
}

func NewSafetyChecker(lex *Lexicon) *SafetyChecker {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &SafetyChecker{banned: lex.BannedWords}
}

// Check bloquea si hay palabras vetadas; los datos personales solo generan nota.
func (s *SafetyChecker) Check(text string) domain.Safety {
	res := domain.Safety{Notes: []string{}}
	t := strings.TrimSpace(text)
	for _, w := range s.banned {
		if strings.Contains(t, w) {
			res.Notes = append(res.Notes, "包含敏感词: "+w)
			res.Blocked = true
		}
	}
	for _, p := range piiPatterns {
		if len(piiMatches(p, t)) > 0 {
			res.Notes = append(res.Notes, piiNote)
		}
	}
	return res
}

// Redact reemplaza los datos personales detectados.
func (s *SafetyChecker) Redact(text string) string {
	out := text
	for _, p := range piiPatterns {
		locs := piiMatches(p, out)
		if len(locs) == 0 {
			continue
		}
		var sb strings.Builder
		last := 0
		for _, loc := range locs {
			sb.WriteString(out[last:loc[0]])
			sb.WriteString(piiRedaction)
			last = loc[1]
		}
		sb.WriteString(out[last:])
		out = sb.String()
	}
	return out
}
