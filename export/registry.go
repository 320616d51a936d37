package export

import (
	"fmt"
	"sort"
	"sync"
)

// EmitterRegistry stores PDF emitters by mode.
type EmitterRegistry struct {
	mu       sync.RWMutex
	emitters map[Mode]Emitter
}

// NewEmitterRegistry creates an empty registry.
func NewEmitterRegistry() *EmitterRegistry {
	return &EmitterRegistry{emitters: make(map[Mode]Emitter)}
}

// Register adds an emitter for a mode.
func (r *EmitterRegistry) Register(mode Mode, emitter Emitter) error {
	if mode == "" {
		return NewError(KindValidation, "emitter mode is required", nil)
	}
	if emitter == nil {
		return NewError(KindValidation, "emitter is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emitters[mode]; exists {
		return NewError(KindValidation, fmt.Sprintf("emitter for %q already registered", mode), nil)
	}
	r.emitters[mode] = emitter
	return nil
}

// Resolve returns the emitter for the mode.
func (r *EmitterRegistry) Resolve(mode Mode) (Emitter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	emitter, ok := r.emitters[mode]
	return emitter, ok
}

// Modes lists registered modes in sorted order.
func (r *EmitterRegistry) Modes() []Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Mode, 0, len(r.emitters))
	for mode := range r.emitters {
		out = append(out, mode)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
