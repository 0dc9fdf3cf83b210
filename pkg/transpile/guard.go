package transpile

import "sync"

// Guard wraps spliced replacement markup so a downstream text filter leaves
// it alone.
type Guard struct {
	Prefix string
	Suffix string
}

var (
	guardMu sync.RWMutex
	guards  = map[string]Guard{
		"textile": {Prefix: "<notextile>", Suffix: "</notextile>"},
	}
)

// RegisterGuard associates a guard with a filter name, replacing any previous
// registration. Call it at startup, before transpiling.
func RegisterGuard(filter string, g Guard) {
	guardMu.Lock()
	defer guardMu.Unlock()
	guards[filter] = g
}

// guardReplacement wraps text with the guards registered for the given
// filters, in the order the filters appear. Filters without a registered
// guard are ignored.
func guardReplacement(text string, filters []string) string {
	guardMu.RLock()
	defer guardMu.RUnlock()
	for _, f := range filters {
		if g, ok := guards[f]; ok {
			text = g.Prefix + text + g.Suffix
		}
	}
	return text
}
