package enums

import "fmt"

// TrackingStep is one stage in the fixed nine-stage delivery lifecycle.
type TrackingStep string

const (
	TrackingStepCreated         TrackingStep = "created"
	TrackingStepConfirmed       TrackingStep = "confirmed"
	TrackingStepVehicleAssigned TrackingStep = "vehicle-assigned"
	TrackingStepPickupScheduled TrackingStep = "pickup-scheduled"
	TrackingStepPickedUp        TrackingStep = "picked-up"
	TrackingStepInTransit       TrackingStep = "in-transit"
	TrackingStepDelivered       TrackingStep = "delivered"
	TrackingStepInvoiced        TrackingStep = "invoiced"
	TrackingStepPaymentReceived TrackingStep = "payment-received"
)

// TrackingStepTerminal is the last stage; its first arrival triggers the
// attachment retention policy.
const TrackingStepTerminal = TrackingStepPaymentReceived

// trackingStepOrder is the catalog's total order. Ranks are contiguous
// integers starting at 1 and are never reordered at runtime.
var trackingStepOrder = []TrackingStep{
	TrackingStepCreated,
	TrackingStepConfirmed,
	TrackingStepVehicleAssigned,
	TrackingStepPickupScheduled,
	TrackingStepPickedUp,
	TrackingStepInTransit,
	TrackingStepDelivered,
	TrackingStepInvoiced,
	TrackingStepPaymentReceived,
}

var trackingStepRanks = func() map[TrackingStep]int {
	ranks := make(map[TrackingStep]int, len(trackingStepOrder))
	for i, step := range trackingStepOrder {
		ranks[step] = i + 1
	}
	return ranks
}()

// RankedStep pairs a catalog step with its fixed position.
type RankedStep struct {
	Step TrackingStep
	Rank int
}

// String implements fmt.Stringer.
func (t TrackingStep) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrackingStep.
func (t TrackingStep) IsValid() bool {
	_, ok := trackingStepRanks[t]
	return ok
}

// Rank returns the step's fixed position in the catalog, or 0 for an
// unknown step.
func (t TrackingStep) Rank() int {
	return trackingStepRanks[t]
}

// ParseTrackingStep converts raw input into a TrackingStep.
func ParseTrackingStep(value string) (TrackingStep, error) {
	step := TrackingStep(value)
	if !step.IsValid() {
		return "", fmt.Errorf("invalid tracking step %q", value)
	}
	return step, nil
}

// TrackingStepsInOrder returns the full catalog as (step, rank) pairs in
// rank order. The returned slice is a copy.
func TrackingStepsInOrder() []RankedStep {
	steps := make([]RankedStep, 0, len(trackingStepOrder))
	for i, step := range trackingStepOrder {
		steps = append(steps, RankedStep{Step: step, Rank: i + 1})
	}
	return steps
}
