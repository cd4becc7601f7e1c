package changelog

// PostedSet is the ordered list of update keys that have already been announced.
// It never holds the same key twice.
type PostedSet struct {
	dates []string
	index map[string]struct{}
}

// NewPostedSet creates a set from previously stored keys, dropping duplicates
// while keeping first-seen order
func NewPostedSet(dates []string) *PostedSet {
	s := &PostedSet{
		dates: make([]string, 0, len(dates)),
		index: make(map[string]struct{}, len(dates)),
	}
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Contains reports whether date has already been announced
func (s *PostedSet) Contains(date string) bool {
	_, ok := s.index[date]
	return ok
}

// Add appends date to the set. It returns false if the date was already present.
func (s *PostedSet) Add(date string) bool {
	if s.Contains(date) {
		return false
	}
	s.index[date] = struct{}{}
	s.dates = append(s.dates, date)
	return true
}

// Len returns the number of announced keys
func (s *PostedSet) Len() int {
	return len(s.dates)
}

// Dates returns a copy of the keys in the order they were added
func (s *PostedSet) Dates() []string {
	out := make([]string, len(s.dates))
	copy(out, s.dates)
	return out
}

// Diff returns the updates whose date is not in posted, in document order.
// A heading repeated within current is reported once.
func Diff(posted *PostedSet, current []*Update) []*Update {
	if posted == nil {
		posted = NewPostedSet(nil)
	}

	result := make([]*Update, 0)
	seen := make(map[string]bool)
	for _, u := range current {
		if posted.Contains(u.Date) || seen[u.Date] {
			continue
		}
		seen[u.Date] = true
		result = append(result, u)
	}

	return result
}
