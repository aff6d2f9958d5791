package enums

import "fmt"

// Step identifies one navigable subcategory tracked by the completion map.
type Step string

const (
	StepEngine        Step = "engine"
	StepTransmission  Step = "transmission"
	StepExteriorColor Step = "exterior-color"
	StepRims          Step = "rims"
	StepUpholstery    Step = "upholstery"
	StepAssistance    Step = "assistance"
	StepComfort       Step = "comfort"
	StepPricing       Step = "pricing"
	StepReview        Step = "review"
)

var allSteps = []Step{
	StepEngine,
	StepTransmission,
	StepExteriorColor,
	StepRims,
	StepUpholstery,
	StepAssistance,
	StepComfort,
	StepPricing,
	StepReview,
}

// StepCount is the fixed number of completion steps.
const StepCount = 9

// String implements fmt.Stringer.
func (s Step) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Step.
func (s Step) IsValid() bool {
	for _, candidate := range allSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// CompletesOnVisit reports whether reaching the step counts as deciding it.
// Feature groups and summary steps accept "nothing selected" as a valid answer.
func (s Step) CompletesOnVisit() bool {
	switch s {
	case StepAssistance, StepComfort, StepPricing, StepReview:
		return true
	}
	return false
}

// AllSteps returns every completion step in navigation order.
func AllSteps() []Step {
	out := make([]Step, len(allSteps))
	copy(out, allSteps)
	return out
}

// ParseStep converts raw input into a Step.
func ParseStep(value string) (Step, error) {
	for _, candidate := range allSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid step %q", value)
}
