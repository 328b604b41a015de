/*
registry.go - Planning kind registration and lookup

PURPOSE:
  Lets the planning package register its kinds (slot lists, days, hours)
  while this package stays ignorant of any concrete planning.

USAGE:
  generic.RegisterKind(generic.KindDefinition{Kind: "ramasse", ...})
  def, err := generic.LookupKind("ramasse")
*/
package generic

import (
	"fmt"
	"sort"
	"sync"
)

var (
	kindRegistry = make(map[Kind]KindDefinition)
	registryMu   sync.RWMutex
)

// RegisterKind adds or replaces a planning definition.
func RegisterKind(def KindDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	kindRegistry[def.Kind] = def
}

// LookupKind finds a registered planning definition.
func LookupKind(kind Kind) (KindDefinition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := kindRegistry[kind]
	if !ok {
		return KindDefinition{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def, nil
}

// ListKinds returns all registered definitions sorted by kind.
func ListKinds() []KindDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]KindDefinition, 0, len(kindRegistry))
	for _, d := range kindRegistry {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Kind < result[j].Kind })
	return result
}
