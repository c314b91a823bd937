package testutil

import "sync"

// ScriptedSource is an engine.KindSource that returns a fixed sequence of
// kinds, repeating it from the start once exhausted. Each value is reduced
// modulo n.
//
// Thread-safety: safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu     sync.Mutex
	script []int
	calls  int
}

// NewScriptedSource creates a source that yields kinds in order.
func NewScriptedSource(kinds ...int) *ScriptedSource {
	return &ScriptedSource{script: kinds}
}

// IntN returns the next scripted kind modulo n. An empty script yields 0.
func (s *ScriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 || n <= 0 {
		s.calls++
		return 0
	}
	v := s.script[s.calls%len(s.script)] % n
	s.calls++
	return v
}

// Calls returns how many values were drawn.
func (s *ScriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
