package tracking

import "github.com/prylogi/logi-backend/pkg/enums"

// ProjectTimeline renders the full catalog against a current-step pointer.
// Steps at a lower rank are done, the pointer's step is current, and
// everything after is pending. A nil pointer projects the first step as
// current. The projection reads only the pointer, never the event log, so a
// job whose history skipped or revisited steps still renders a coherent
// timeline.
func ProjectTimeline(current *enums.TrackingStep) []TimelineEntry {
	step := enums.TrackingStepCreated
	if current != nil && current.IsValid() {
		step = *current
	}
	currentRank := step.Rank()

	catalog := enums.TrackingStepsInOrder()
	entries := make([]TimelineEntry, 0, len(catalog))
	for _, ranked := range catalog {
		status := StepStatusPending
		switch {
		case ranked.Rank < currentRank:
			status = StepStatusDone
		case ranked.Rank == currentRank:
			status = StepStatusCurrent
		}
		entries = append(entries, TimelineEntry{
			Step:   ranked.Step,
			Rank:   ranked.Rank,
			Status: status,
		})
	}
	return entries
}
