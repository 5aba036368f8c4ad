package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-triage/internal/model"
	apperrors "github.com/jwalitptl/clinic-triage/pkg/errors"
)

func TestEngine_RegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      model.PatientInput
		message string
	}{
		{"empty cpf", input("Ana", "", model.SymptomFever), "cpf is required"},
		{"malformed cpf", input("Ana", "11111111111", model.SymptomFever), "cpf must match XXX.XXX.XXX-XX"},
		{"empty name", input(" ", "111.111.111-11", model.SymptomFever), "name is required"},
		{"no symptoms", input("Ana", "111.111.111-11"), "at least one symptom is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			_, _, err := e.RegisterOrUpdate(tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, 0, e.QueueLen())
			assert.Equal(t, 0, e.HistoryLen())
		})
	}
}

func TestEngine_RemoveMissingLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine()
	_, _, err := e.RegisterOrUpdate(input("Ana", "111.111.111-11", model.SymptomFever))
	require.NoError(t, err)
	e.Tick()
	e.Tick()

	queueBefore, historyBefore := e.Queue(), e.History()
	stateBefore, progressBefore, remainingBefore := e.Scheduler().State(), e.Scheduler().Progress(), e.Scheduler().Remaining()

	_, err = e.Remove("999.999.999-99")
	assert.True(t, apperrors.IsNotFound(err))

	assert.Equal(t, queueBefore, e.Queue())
	assert.Equal(t, historyBefore, e.History())
	assert.Equal(t, stateBefore, e.Scheduler().State())
	assert.Equal(t, progressBefore, e.Scheduler().Progress())
	assert.Equal(t, remainingBefore, e.Scheduler().Remaining())

	_, err = e.Remove("")
	assert.True(t, apperrors.IsValidation(err))
}

func TestEngine_Search(t *testing.T) {
	e := newTestEngine()
	for _, in := range []model.PatientInput{
		input("Zelia", "111.111.111-11", model.SymptomCough),
		input("Bruno", "222.222.222-22", model.SymptomStroke),
		input("ana", "333.333.333-33", model.SymptomFever),
	} {
		_, _, err := e.RegisterOrUpdate(in)
		require.NoError(t, err)
	}
	queueBefore := e.Queue()

	p, err := e.Search(model.SearchQuery{Name: "ANA", Binary: true})
	require.NoError(t, err)
	assert.Equal(t, "333.333.333-33", p.CPF)

	_, err = e.Search(model.SearchQuery{Name: "Carlos", Binary: true})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, []string{"ana", "Bruno", "Zelia"}, e.Index().Names())
	assert.Equal(t, queueBefore, e.Queue())

	_, err = e.Search(model.SearchQuery{CPF: "111.111.111-11", Binary: true})
	assert.True(t, apperrors.IsValidation(err))

	p, err = e.Search(model.SearchQuery{CPF: "111.111.111-11"})
	require.NoError(t, err)
	assert.Equal(t, "Zelia", p.Name)

	_, err = e.Search(model.SearchQuery{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestEngine_Board(t *testing.T) {
	e := newTestEngine()

	board := e.Board()
	assert.Equal(t, []string{
		model.WaitingPlaceholder, model.WaitingPlaceholder, model.WaitingPlaceholder,
		model.WaitingPlaceholder, model.WaitingPlaceholder,
	}, board.Slots)
	assert.Empty(t, board.Called)
	assert.Equal(t, model.TreatmentStateIdle, board.State)

	_, _, err := e.RegisterOrUpdate(input("Ana", "111.111.111-11", model.SymptomFever))
	require.NoError(t, err)
	_, _, err = e.RegisterOrUpdate(input("Bruno", "222.222.222-22", model.SymptomAccident))
	require.NoError(t, err)

	e.Tick()
	e.Tick()
	e.Tick()

	board = e.Board()
	assert.Equal(t, []string{
		"222.222.222-22", "111.111.111-11",
		model.WaitingPlaceholder, model.WaitingPlaceholder, model.WaitingPlaceholder,
	}, board.Slots)
	assert.Equal(t, "222.222.222-22 1", board.Called)
	assert.Equal(t, model.TreatmentStateTreating, board.State)
	assert.Equal(t, 0, board.Progress)
	assert.Equal(t, 2, board.QueueLength)
}

func TestEngine_BoardSlots(t *testing.T) {
	e := NewEngine(WithBoardSlots(2))
	for _, in := range []model.PatientInput{
		input("Ana", "111.111.111-11", model.SymptomFever),
		input("Bruno", "222.222.222-22", model.SymptomFever),
		input("Carla", "333.333.333-33", model.SymptomFever),
	} {
		_, _, err := e.RegisterOrUpdate(in)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"111.111.111-11", "222.222.222-22"}, e.Board().Slots)
}
