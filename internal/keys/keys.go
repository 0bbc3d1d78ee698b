package keys

import "strings"

// Reserved prefixes mark transient bookkeeping entries (in-flight request
// state, subscription counters). They live only in the mirror and must never
// reach the durable store.
var reserved = [...]string{"$req$", "$sub$"}

// IsInternal reports whether key denotes internal bookkeeping state.
func IsInternal(key string) bool {
	for _, p := range reserved {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
