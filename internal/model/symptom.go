package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Symptom is a single self-reported symptom flag.
type Symptom uint8

const (
	SymptomCough Symptom = 1 << iota
	SymptomNausea
	SymptomFever
	SymptomDysentery
	SymptomInfection
	SymptomCovid
	SymptomStroke
	SymptomAccident
)

// AllSymptoms lists every symptom in canonical reporting order.
var AllSymptoms = []Symptom{
	SymptomCough,
	SymptomNausea,
	SymptomFever,
	SymptomDysentery,
	SymptomInfection,
	SymptomCovid,
	SymptomStroke,
	SymptomAccident,
}

var symptomTags = map[Symptom]string{
	SymptomCough:     "COUGH",
	SymptomNausea:    "NAUSEA",
	SymptomFever:     "FEVER",
	SymptomDysentery: "DYSENTERY",
	SymptomInfection: "INFECTION",
	SymptomCovid:     "COVID",
	SymptomStroke:    "STROKE",
	SymptomAccident:  "ACCIDENT",
}

var symptomLabels = map[Symptom]string{
	SymptomCough:     "Cough",
	SymptomNausea:    "Nausea",
	SymptomFever:     "Fever",
	SymptomDysentery: "Dysentery",
	SymptomInfection: "Infection",
	SymptomCovid:     "Covid",
	SymptomStroke:    "Stroke",
	SymptomAccident:  "Accident",
}

// severityWeights is the triage weight of each symptom. The values happen to
// equal the flag bits but the two must not be conflated.
var severityWeights = map[Symptom]int{
	SymptomCough:     1,
	SymptomNausea:    2,
	SymptomFever:     4,
	SymptomDysentery: 8,
	SymptomInfection: 16,
	SymptomCovid:     32,
	SymptomStroke:    64,
	SymptomAccident:  128,
}

// Tag returns the upper-case wire name, e.g. "FEVER".
func (s Symptom) Tag() string {
	if tag, ok := symptomTags[s]; ok {
		return tag
	}
	return fmt.Sprintf("SYMPTOM(%d)", uint8(s))
}

// Label returns the human readable name used in reports.
func (s Symptom) Label() string {
	return symptomLabels[s]
}

// Weight returns the severity contribution of the symptom.
func (s Symptom) Weight() int {
	return severityWeights[s]
}

func (s Symptom) String() string {
	return s.Tag()
}

// ParseSymptom parses a symptom tag, ignoring case and surrounding spaces.
func ParseSymptom(tag string) (Symptom, error) {
	normalized := strings.ToUpper(strings.TrimSpace(tag))
	for _, s := range AllSymptoms {
		if symptomTags[s] == normalized {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown symptom: %q", tag)
}

// SymptomSet is a set of symptoms stored as a bitmask.
type SymptomSet uint8

func NewSymptomSet(symptoms ...Symptom) SymptomSet {
	var set SymptomSet
	for _, s := range symptoms {
		set |= SymptomSet(s)
	}
	return set
}

// ParseSymptomSet builds a set from tags. Duplicates are ignored.
func ParseSymptomSet(tags []string) (SymptomSet, error) {
	var set SymptomSet
	for _, tag := range tags {
		s, err := ParseSymptom(tag)
		if err != nil {
			return 0, err
		}
		set |= SymptomSet(s)
	}
	return set, nil
}

func (set SymptomSet) Has(s Symptom) bool {
	return set&SymptomSet(s) != 0
}

func (set SymptomSet) IsEmpty() bool {
	return set == 0
}

// Symptoms returns the members of the set in canonical order.
func (set SymptomSet) Symptoms() []Symptom {
	out := make([]Symptom, 0, len(AllSymptoms))
	for _, s := range AllSymptoms {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (set SymptomSet) Tags() []string {
	members := set.Symptoms()
	tags := make([]string, len(members))
	for i, s := range members {
		tags[i] = s.Tag()
	}
	return tags
}

func (set SymptomSet) Labels() []string {
	members := set.Symptoms()
	labels := make([]string, len(members))
	for i, s := range members {
		labels[i] = s.Label()
	}
	return labels
}

func (set SymptomSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.Tags())
}

func (set *SymptomSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	parsed, err := ParseSymptomSet(tags)
	if err != nil {
		return err
	}
	*set = parsed
	return nil
}

// Severity is the triage priority of a symptom set: the raw sum of the
// weights of its members. Several light symptoms may outrank a single heavy one.
func Severity(set SymptomSet) int {
	total := 0
	for _, s := range set.Symptoms() {
		total += s.Weight()
	}
	return total
}

// SymptomInfo describes one entry of the symptom catalogue.
type SymptomInfo struct {
	Tag    string `json:"tag"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// SymptomCatalogue returns every known symptom in canonical order.
func SymptomCatalogue() []SymptomInfo {
	out := make([]SymptomInfo, len(AllSymptoms))
	for i, s := range AllSymptoms {
		out[i] = SymptomInfo{Tag: s.Tag(), Label: s.Label(), Weight: s.Weight()}
	}
	return out
}
