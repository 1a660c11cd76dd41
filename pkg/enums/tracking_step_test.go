package enums

import "testing"

func TestTrackingStepsInOrder(t *testing.T) {
	t.Parallel()

	steps := TrackingStepsInOrder()
	if len(steps) != 9 {
		t.Fatalf("catalog size = %d, want 9", len(steps))
	}

	if steps[0].Step != TrackingStepCreated || steps[0].Rank != 1 {
		t.Fatalf("first entry = %+v", steps[0])
	}
	if steps[8].Step != TrackingStepPaymentReceived || steps[8].Rank != 9 {
		t.Fatalf("last entry = %+v", steps[8])
	}

	for i, entry := range steps {
		if entry.Rank != i+1 {
			t.Fatalf("rank at index %d = %d, want %d", i, entry.Rank, i+1)
		}
		if entry.Step.Rank() != entry.Rank {
			t.Fatalf("Rank() for %s = %d, want %d", entry.Step, entry.Step.Rank(), entry.Rank)
		}
	}
}

func TestTrackingStepRankUnknown(t *testing.T) {
	t.Parallel()

	if rank := TrackingStep("warehoused").Rank(); rank != 0 {
		t.Fatalf("unknown step rank = %d, want 0", rank)
	}
}

func TestParseTrackingStep(t *testing.T) {
	t.Parallel()

	step, err := ParseTrackingStep("in-transit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step != TrackingStepInTransit {
		t.Fatalf("step = %s", step)
	}

	if _, err := ParseTrackingStep("in_transit"); err == nil {
		t.Fatal("expected underscore variant to be rejected")
	}
}

func TestTrackingStepTerminal(t *testing.T) {
	t.Parallel()

	if TrackingStepTerminal.Rank() != 9 {
		t.Fatalf("terminal rank = %d", TrackingStepTerminal.Rank())
	}
}
