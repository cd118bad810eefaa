package service

import "strings"

// extractFirstJSONValue devuelve el primer objeto o array balanceado del input.
// Ignora llaves dentro de strings; un cierre que no corresponde o un valor abierto devuelven "".
func extractFirstJSONValue(input string) string {
	start := strings.IndexAny(input, "{[")
	if start == -1 {
		return ""
	}

	closers := make([]byte, 0, 8)
	inString, escaped := false, false
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if closers[len(closers)-1] != ch {
				return ""
			}
			closers = closers[:len(closers)-1]
			if len(closers) == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}
