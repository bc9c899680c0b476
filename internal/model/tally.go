package model

//
// Ordered sets and counters
//

// AddressSet is the set of distinct addresses observed across lookups. The
// zero value is ready to use. Insertion order is preserved.
type AddressSet struct {
	order []string
	seen  map[string]struct{}
}

// Add inserts addr and returns whether it was not already present.
func (s *AddressSet) Add(addr string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, found := s.seen[addr]; found {
		return false
	}
	s.seen[addr] = struct{}{}
	s.order = append(s.order, addr)
	return true
}

// Len returns the number of distinct addresses.
func (s *AddressSet) Len() int {
	return len(s.order)
}

// Addresses returns a copy of the addresses in insertion order.
func (s *AddressSet) Addresses() []string {
	return append([]string{}, s.order...)
}

// ValueCount is a value and the number of times we observed it. Absent
// is true for the bucket counting responses without the header, in which
// case Value is empty.
type ValueCount struct {
	Value  string
	Absent bool
	Count  int
}

// Label returns the value as we print it.
func (vc ValueCount) Label() string {
	if vc.Absent {
		return AbsentHeaderValue
	}
	return vc.Value
}

// tallyKey keeps the absent bucket apart from any observed value.
type tallyKey struct {
	value  string
	absent bool
}

// Tally counts occurrences of string values and of their absence. The
// zero value is ready to use. Entries are returned in the order in which
// values were first seen.
type Tally struct {
	order  []tallyKey
	counts map[tallyKey]int
}

func (t *Tally) add(key tallyKey) {
	if t.counts == nil {
		t.counts = make(map[tallyKey]int)
	}
	if _, found := t.counts[key]; !found {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// Add increments the counter of value.
func (t *Tally) Add(value string) {
	t.add(tallyKey{value: value})
}

// AddAbsent increments the counter of the absent bucket.
func (t *Tally) AddAbsent() {
	t.add(tallyKey{absent: true})
}

// Count returns how many times we observed value.
func (t *Tally) Count(value string) int {
	return t.counts[tallyKey{value: value}]
}

// Len returns the number of distinct values, the absent bucket included.
func (t *Tally) Len() int {
	return len(t.order)
}

// Total returns the sum of all the counters.
func (t *Tally) Total() (total int) {
	for _, count := range t.counts {
		total += count
	}
	return
}

// Entries returns the values and their counters in first-seen order.
func (t *Tally) Entries() []ValueCount {
	out := make([]ValueCount, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, ValueCount{Value: key.value, Absent: key.absent, Count: t.counts[key]})
	}
	return out
}
