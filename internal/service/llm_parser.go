package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Cota de recortes, en caracteres, al buscar un prefijo JSON valido.
const maxTrimAttempts = 4000

var (
	reFenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reFenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// LLMResponseParser centraliza la lógica de limpieza y parseo de respuestas del LLM.
type LLMResponseParser struct{}

// DefaultLLMResponseParser permite uso directo sin instanciar.
var DefaultLLMResponseParser = LLMResponseParser{}

// CleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func CleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")
	s = reFenceStart.ReplaceAllString(s, "")
	s = reFenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SafeJSONParse intenta obtener un valor JSON de una respuesta poco fiable.
// Orden: texto completo, texto limpio, primer valor balanceado, y prefijos del fragmento
// que empieza en el primer '{' o '['.
func (LLMResponseParser) SafeJSONParse(raw string) (any, bool) {
	if v, ok := tryJSON(raw); ok {
		return v, true
	}
	cleaned := CleanLLMJSONResponse(raw)
	if cleaned != raw {
		if v, ok := tryJSON(cleaned); ok {
			return v, true
		}
	}

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return nil, false
	}
	frag := cleaned[start:]
	if balanced := extractFirstJSONValue(frag); balanced != "" {
		if v, ok := tryJSON(balanced); ok {
			return v, true
		}
	}

	return parseTrimmedPrefix(frag)
}

// parseTrimmedPrefix recorta el fragmento caracter a caracter desde el final,
// como mucho maxTrimAttempts veces, hasta que un prefijo sea JSON valido.
func parseTrimmedPrefix(frag string) (any, bool) {
	end := len(frag)
	for i := 0; i < maxTrimAttempts && end > 0; i++ {
		if v, ok := tryJSON(frag[:end]); ok {
			return v, true
		}
		_, size := utf8.DecodeLastRuneInString(frag[:end])
		end -= size
	}
	return nil, false
}

// ParseObject devuelve el objeto JSON de la respuesta o un mapa vacio.
func (p LLMResponseParser) ParseObject(raw string) map[string]any {
	v, ok := p.SafeJSONParse(raw)
	if !ok {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// ParseArray devuelve el array JSON de la respuesta; ok=false si no hay array.
func (p LLMResponseParser) ParseArray(raw string) ([]any, bool) {
	v, ok := p.SafeJSONParse(raw)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

func tryJSON(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// Helpers de lectura tolerante sobre valores decodificados.

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

// asString acepta strings y numeros; el resto se descarta.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asStringSlice(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, it := range arr {
		if s := strings.TrimSpace(asString(it)); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// asInt trunca hacia cero como int() sobre floats.
func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// toJSON serializa sin escapar HTML ni no-ASCII, para incrustar en prompts.
func toJSON(v any) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(sb.String(), "\n")
}
