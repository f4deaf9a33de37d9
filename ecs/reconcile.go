package ecs

import (
	"sort"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

// reconcile decides what backend list to publish after a poll. An empty
// current list falls back to the configured defaults, or retains previous
// when there are no defaults; discovery loss never blanks out a previously
// healthy configuration. changed reports whether published differs from
// previous and therefore needs a reconfigure.
func reconcile(previous, current, defaults []api.Backend) (published []api.Backend, changed bool) {
	candidate := current
	if len(current) == 0 {
		if len(defaults) == 0 {
			return previous, false
		}
		candidate = defaults
	}
	if backendsEqual(previous, candidate) {
		return previous, false
	}
	return candidate, true
}

// backendsEqual compares two backend lists as sets; upstream task ordering
// is not stable across polls.
func backendsEqual(a, b []api.Backend) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := sortedCopy(a), sortedCopy(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedCopy(backends []api.Backend) []api.Backend {
	s := make([]api.Backend, len(backends))
	copy(s, backends)
	sort.Slice(s, func(i, j int) bool {
		if s[i].Name != s[j].Name {
			return s[i].Name < s[j].Name
		}
		if s[i].Host != s[j].Host {
			return s[i].Host < s[j].Host
		}
		return s[i].Port < s[j].Port
	})
	return s
}
