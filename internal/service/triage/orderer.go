package triage

import "github.com/jwalitptl/clinic-triage/internal/model"

// Prioritize orders the queue by descending severity. Each pass selects the
// first maximum of the unprocessed suffix and moves it to the front of that
// suffix, shifting the skipped entries right, so equal severities keep their
// arrival order. The move is a rotation, not a swap: a swap could carry the
// displaced entry behind a later peer of equal severity.
func Prioritize(queue []model.Patient) {
	for i := range queue {
		best := i
		for j := i + 1; j < len(queue); j++ {
			if queue[j].Severity > queue[best].Severity {
				best = j
			}
		}
		if best == i {
			continue
		}
		selected := queue[best]
		copy(queue[i+1:best+1], queue[i:best])
		queue[i] = selected
	}
}
