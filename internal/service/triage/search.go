package triage

import (
	"slices"
	"strings"

	"github.com/jwalitptl/clinic-triage/internal/model"
)

// NameIndex is a disposable snapshot of the queue sorted by lower-cased name.
type NameIndex struct {
	keys    []string
	entries []model.Patient
}

// Rebuild discards the previous snapshot and indexes queue from scratch.
func (x *NameIndex) Rebuild(queue []model.Patient) {
	entries := make([]model.Patient, len(queue))
	copy(entries, queue)
	slices.SortStableFunc(entries, func(a, b model.Patient) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	keys := make([]string, len(entries))
	for i, p := range entries {
		keys[i] = strings.ToLower(p.Name)
	}
	x.keys = keys
	x.entries = entries
}

// Find binary searches for an exact case-insensitive name match.
func (x *NameIndex) Find(name string) (model.Patient, bool) {
	i, found := slices.BinarySearch(x.keys, strings.ToLower(name))
	if !found {
		return model.Patient{}, false
	}
	return x.entries[i], true
}

func (x *NameIndex) Len() int {
	return len(x.entries)
}

// Names returns the indexed names in index order.
func (x *NameIndex) Names() []string {
	names := make([]string, len(x.entries))
	for i, p := range x.entries {
		names[i] = p.Name
	}
	return names
}

// LinearSearch returns the first queued patient whose CPF equals cpf or whose
// name equals name ignoring case. Empty criteria never match.
func LinearSearch(queue []model.Patient, cpf, name string) (model.Patient, bool) {
	for _, p := range queue {
		if cpf != "" && p.CPF == cpf {
			return p, true
		}
		if name != "" && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.Patient{}, false
}
