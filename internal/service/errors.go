package service

import "errors"

// ErrLLMUnavailable envuelve fallos de transporte del LLM cuando no hay degradacion posible.
var ErrLLMUnavailable = errors.New("llm unavailable")
