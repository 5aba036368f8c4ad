package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-triage/internal/model"
)

func TestRender(t *testing.T) {
	patients := []model.Patient{
		{
			ID:        7,
			Name:      "Ana",
			CPF:       "111.111.111-11",
			Email:     "ana@example.com",
			BirthDate: time.Date(1990, time.May, 20, 0, 0, 0, 0, time.UTC),
			Age:       34,
			Symptoms:  model.NewSymptomSet(model.SymptomAccident, model.SymptomCough, model.SymptomFever),
		},
		{
			ID:        8,
			Name:      "Bruno",
			CPF:       "222.222.222-22",
			BirthDate: time.Date(2001, time.January, 2, 0, 0, 0, 0, time.UTC),
			Age:       23,
			Symptoms:  model.NewSymptomSet(model.SymptomCovid),
		},
	}

	want := "ID: 7\n" +
		"Name: Ana\n" +
		"CPF: 111.111.111-11\n" +
		"Email: ana@example.com\n" +
		"Birth date: 20/05/1990\n" +
		"Age: 34\n" +
		"Symptoms: Cough Fever Accident\n" +
		"----------------------------------------\n" +
		"ID: 8\n" +
		"Name: Bruno\n" +
		"CPF: 222.222.222-22\n" +
		"Email: \n" +
		"Birth date: 02/01/2001\n" +
		"Age: 23\n" +
		"Symptoms: Covid\n" +
		"----------------------------------------\n"

	assert.Equal(t, want, Render(patients))
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}
