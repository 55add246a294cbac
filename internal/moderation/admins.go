package moderation

import "slices"

// AdminSet is the immutable set of identities allowed to moderate.
type AdminSet struct {
	ids map[int64]struct{}
}

// NewAdminSet builds a set from ids, ignoring non-positive values.
func NewAdminSet(ids ...int64) AdminSet {
	s := AdminSet{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		if id > 0 {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Contains reports membership.
func (s AdminSet) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the members in ascending order.
func (s AdminSet) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of admins.
func (s AdminSet) Len() int { return len(s.ids) }
