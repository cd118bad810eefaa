package service

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon agrupa las listas de palabras y los estilos de habla del interlocutor.
type Lexicon struct {
	PositiveWords []string          `yaml:"positive_words"`
	NegativeWords []string          `yaml:"negative_words"`
	BannedWords   []string          `yaml:"banned_words"`
	DefaultStyle  string            `yaml:"default_style"`
	PeerStyles    map[string]string `yaml:"peer_styles"`
}

// DefaultLexicon devuelve el lexico embebido. Panic si el YAML embebido esta roto.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex
}

// LoadLexicon lee un lexico desde disco; con path vacio usa el embebido.
func LoadLexicon(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lex.PeerStyles) == 0 {
		return nil, errors.New("lexicon: peer_styles is empty")
	}
	if lex.DefaultStyle == "" {
		lex.DefaultStyle = "自然"
	}
	if _, ok := lex.PeerStyles[lex.DefaultStyle]; !ok {
		return nil, fmt.Errorf("lexicon: default style %q has no description", lex.DefaultStyle)
	}
	lex.PositiveWords = dedupeNonEmpty(lex.PositiveWords)
	lex.NegativeWords = dedupeNonEmpty(lex.NegativeWords)
	lex.BannedWords = dedupeNonEmpty(lex.BannedWords)
	return &lex, nil
}

// StyleDescription devuelve la descripcion del estilo o la del estilo por defecto.
func (l *Lexicon) StyleDescription(style string) string {
	if d, ok := l.PeerStyles[style]; ok {
		return d
	}
	return l.PeerStyles[l.DefaultStyle]
}

func dedupeNonEmpty(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
