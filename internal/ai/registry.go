package ai

import "sync"

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Strategy)
)

// Register installs a strategy for a behavior tag. Later registrations for
// the same tag replace earlier ones, which lets tests substitute behaviors.
func Register(t Type, s Strategy) {
	if s == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = s
}

// Lookup resolves the strategy for a behavior tag.
func Lookup(t Type) (Strategy, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[t]
	return s, ok
}

func init() {
	Register(TypeStatic, StaticStrategy{})
	Register(TypeChasing, ChasingStrategy{})
	Register(TypeSmart, SmartStrategy{})
}
