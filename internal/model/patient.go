package model

import (
	"time"
)

// BirthDateLayout is the wire format of birth dates.
const BirthDateLayout = "2006-01-02"

type Patient struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	CPF       string     `json:"cpf"`
	Email     string     `json:"email"`
	BirthDate time.Time  `json:"birth_date"`
	Age       int        `json:"age"`
	Symptoms  SymptomSet `json:"symptoms"`
	Severity  int        `json:"severity"`
}

// PatientInput carries the fields a registration may set.
type PatientInput struct {
	Name      string
	CPF       string
	Email     string
	BirthDate time.Time
	Symptoms  SymptomSet
}

type RegisterPatientRequest struct {
	Name      string   `json:"name" binding:"required"`
	CPF       string   `json:"cpf" binding:"required,cpf"`
	Email     string   `json:"email" binding:"omitempty,email"`
	BirthDate string   `json:"birth_date" binding:"required"`
	Symptoms  []string `json:"symptoms" binding:"required,min=1,dive,symptom"`
}

// AgeAt returns the age in whole years at now. The birthday check compares
// (month, day) pairs lexicographically.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	nowMonth, birthMonth := now.Month(), birth.Month()
	if nowMonth < birthMonth || (nowMonth == birthMonth && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// SearchQuery selects a patient in the active queue. Binary searches match
// on name only; linear scans match on CPF or name.
type SearchQuery struct {
	CPF    string
	Name   string
	Binary bool
}

func (q SearchQuery) Mode() string {
	if q.Binary {
		return "binary"
	}
	return "linear"
}

type SearchResult struct {
	Patient Patient `json:"patient"`
	Report  string  `json:"report"`
	Mode    string  `json:"mode"`
}
