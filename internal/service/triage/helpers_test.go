package triage

import (
	"time"

	"github.com/jwalitptl/clinic-triage/internal/model"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func input(name, cpf string, symptoms ...model.Symptom) model.PatientInput {
	return model.PatientInput{
		Name:      name,
		CPF:       cpf,
		Email:     name + "@example.com",
		BirthDate: time.Date(1990, time.May, 20, 0, 0, 0, 0, time.UTC),
		Symptoms:  model.NewSymptomSet(symptoms...),
	}
}

func cpfs(patients []model.Patient) []string {
	out := make([]string, len(patients))
	for i, p := range patients {
		out[i] = p.CPF
	}
	return out
}

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }))
}
