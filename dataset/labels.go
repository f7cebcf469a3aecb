package dataset

import "sort"

// LabelMap maps raw annotation labels onto dense class indices.
type LabelMap struct {
	raw   []int
	index map[int]int
}

// NewLabelMap keeps the given raw labels; raw label classify[i] becomes
// class i.
func NewLabelMap(classify []int) LabelMap {
	m := LabelMap{
		raw:   append([]int(nil), classify...),
		index: make(map[int]int, len(classify)),
	}
	for i, l := range classify {
		m.index[l] = i
	}
	return m
}

// labelMapOf keeps every label present in the records, in ascending order.
func labelMapOf(records []Record) LabelMap {
	seen := make(map[int]bool)
	var raw []int
	for _, r := range records {
		if l := r.Label(); !seen[l] {
			seen[l] = true
			raw = append(raw, l)
		}
	}
	sort.Ints(raw)
	return NewLabelMap(raw)
}

// Class returns the class index of a raw label, if it is kept.
func (m LabelMap) Class(raw int) (int, bool) {
	c, ok := m.index[raw]
	return c, ok
}

// Raw returns the raw label of a class index.
func (m LabelMap) Raw(class int) int {
	return m.raw[class]
}

// Len is the number of classes.
func (m LabelMap) Len() int {
	return len(m.raw)
}
