package service

import (
	"sync"

	"soul-agent/internal/domain"
)

// PersonaStore guarda la persona activa del proceso. No persiste entre reinicios.
type PersonaStore struct {
	mu    sync.RWMutex
	state domain.PersonaState
}

func NewPersonaStore() *PersonaStore {
	return &PersonaStore{}
}

// Get devuelve una copia del estado actual.
func (s *PersonaStore) Get() domain.PersonaState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPersonaState(s.state)
}

// Apply sobrescribe mbti solo si viene, normaliza funciones a 0..100 y siempre fija enabled.
func (s *PersonaStore) Apply(mbti *string, functions map[string]int, enabled bool) domain.PersonaState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mbti != nil {
		v := *mbti
		s.state.MBTI = &v
	}
	if functions != nil {
		norm := make(map[string]int, len(functions))
		for k, v := range functions {
			norm[k] = clampInt(v, 0, 100)
		}
		s.state.Functions = norm
	}
	s.state.Enabled = enabled
	return copyPersonaState(s.state)
}

// ActiveFunctions devuelve los pesos cuando la persona esta habilitada, o nil.
func (s *PersonaStore) ActiveFunctions() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Enabled || s.state.Functions == nil {
		return nil
	}
	return copyPersonaState(s.state).Functions
}

func copyPersonaState(in domain.PersonaState) domain.PersonaState {
	out := domain.PersonaState{Enabled: in.Enabled}
	if in.MBTI != nil {
		v := *in.MBTI
		out.MBTI = &v
	}
	if in.Functions != nil {
		out.Functions = make(map[string]int, len(in.Functions))
		for k, v := range in.Functions {
			out.Functions[k] = v
		}
	}
	return out
}
