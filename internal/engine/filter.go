package engine

// NameFilter decides which leaf names are imported. Matching is exact and
// case-sensitive; a filter built from no names accepts everything.
type NameFilter struct {
	names map[string]struct{}
}

func NewNameFilter(names []string) NameFilter {
	if len(names) == 0 {
		return NameFilter{}
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return NameFilter{names: set}
}

func (f NameFilter) Matches(name string) bool {
	if f.names == nil {
		return true
	}
	_, ok := f.names[name]
	return ok
}

// AcceptAll reports whether the filter was built without a search criterion.
func (f NameFilter) AcceptAll() bool {
	return f.names == nil
}
