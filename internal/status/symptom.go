package status

import (
	"errors"
	"sort"
)

// Symptom is one of the closed set of self-reportable symptoms.
type Symptom string

const (
	Cough       Symptom = "COUGH"
	Temperature Symptom = "TEMPERATURE"
	Anosmia     Symptom = "ANOSMIA"
	Sneeze      Symptom = "SNEEZE"
	Nausea      Symptom = "NAUSEA"
)

// SymptomFromValue resolves a stored symptom value.
func SymptomFromValue(value string) (Symptom, bool) {
	switch Symptom(value) {
	case Cough, Temperature, Anosmia, Sneeze, Nausea:
		return Symptom(value), true
	}
	return "", false
}

// ErrNoSymptoms is returned when a state that requires symptoms is
// constructed without any.
var ErrNoSymptoms = errors.New("at least one symptom is required")

// Symptoms is a non-empty set of reported symptoms. The zero value is empty
// and rejected by every constructor that requires symptoms.
type Symptoms struct {
	set map[Symptom]struct{}
}

// NewSymptoms builds a symptom set. Requiring the first element makes an
// empty set unrepresentable through this constructor.
func NewSymptoms(first Symptom, rest ...Symptom) Symptoms {
	set := make(map[Symptom]struct{}, 1+len(rest))
	set[first] = struct{}{}
	for _, s := range rest {
		set[s] = struct{}{}
	}
	return Symptoms{set: set}
}

// SymptomsFromSlice builds a symptom set from a slice, rejecting empty input.
func SymptomsFromSlice(symptoms []Symptom) (Symptoms, error) {
	if len(symptoms) == 0 {
		return Symptoms{}, ErrNoSymptoms
	}
	return NewSymptoms(symptoms[0], symptoms[1:]...), nil
}

// IsEmpty reports whether the set holds no symptoms. Only the zero value is
// empty.
func (s Symptoms) IsEmpty() bool {
	return len(s.set) == 0
}

// Has reports membership.
func (s Symptoms) Has(symptom Symptom) bool {
	_, ok := s.set[symptom]
	return ok
}

// Slice returns the symptoms in stable order.
func (s Symptoms) Slice() []Symptom {
	out := make([]Symptom, 0, len(s.set))
	for symptom := range s.set {
		out = append(out, symptom)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
