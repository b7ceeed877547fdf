package indexer

// OrderedSet is a string set that remembers insertion order.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet builds a set from items, keeping the first occurrence of each.
func NewOrderedSet(items []string) *OrderedSet {
	s := &OrderedSet{
		items: make([]string, 0, len(items)),
		index: make(map[string]struct{}, len(items)),
	}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add appends item unless present and reports whether it was added.
func (s *OrderedSet) Add(item string) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *OrderedSet) Has(item string) bool {
	_, ok := s.index[item]
	return ok
}

func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the members in insertion order.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
