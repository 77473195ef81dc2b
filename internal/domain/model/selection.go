package model

import "sort"

// Selection is the set of group IDs a user picked for the next promotion run.
// It is always replaced wholesale.
type Selection struct {
	UserID int64
	groups map[int64]struct{}
}

func NewSelection(userID int64, groupIDs ...int64) *Selection {
	s := &Selection{UserID: userID, groups: make(map[int64]struct{}, len(groupIDs))}
	for _, id := range groupIDs {
		s.groups[id] = struct{}{}
	}
	return s
}

func (s *Selection) Has(groupID int64) bool {
	_, ok := s.groups[groupID]
	return ok
}

// Toggle removes groupID if present, otherwise adds it. It reports whether the
// group is selected afterwards.
func (s *Selection) Toggle(groupID int64) bool {
	if s.Has(groupID) {
		delete(s.groups, groupID)
		return false
	}
	s.groups[groupID] = struct{}{}
	return true
}

func (s *Selection) Len() int { return len(s.groups) }

func (s *Selection) IsEmpty() bool { return len(s.groups) == 0 }

// GroupIDs returns the selected IDs in ascending order.
func (s *Selection) GroupIDs() []int64 {
	out := make([]int64, 0, len(s.groups))
	for id := range s.groups {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
