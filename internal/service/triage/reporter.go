package triage

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-triage/internal/model"
)

const (
	reportDateLayout = "02/01/2006"
	reportSeparator  = "----------------------------------------"
)

// Render formats patients as fixed-field blocks, one per patient, in the
// given order.
func Render(patients []model.Patient) string {
	var b strings.Builder
	for _, p := range patients {
		fmt.Fprintf(&b, "ID: %d\n", p.ID)
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
		fmt.Fprintf(&b, "CPF: %s\n", p.CPF)
		fmt.Fprintf(&b, "Email: %s\n", p.Email)
		fmt.Fprintf(&b, "Birth date: %s\n", p.BirthDate.Format(reportDateLayout))
		fmt.Fprintf(&b, "Age: %d\n", p.Age)
		fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(p.Symptoms.Labels(), " "))
		b.WriteString(reportSeparator)
		b.WriteString("\n")
	}
	return b.String()
}
