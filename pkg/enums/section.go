package enums

import "fmt"

// Section groups navigation steps; sections are visited in a fixed order.
type Section string

const (
	SectionMotorization Section = "motorization"
	SectionExterior     Section = "exterior"
	SectionInterior     Section = "interior"
	SectionFeatures     Section = "features"
	SectionSummary      Section = "summary"
)

var orderedSections = []Section{
	SectionMotorization,
	SectionExterior,
	SectionInterior,
	SectionFeatures,
	SectionSummary,
}

var sectionSteps = map[Section][]Step{
	SectionMotorization: {StepEngine, StepTransmission},
	SectionExterior:     {StepExteriorColor, StepRims},
	SectionInterior:     {StepUpholstery},
	SectionFeatures:     {StepAssistance, StepComfort},
	SectionSummary:      {StepPricing, StepReview},
}

// String implements fmt.Stringer.
func (s Section) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Section.
func (s Section) IsValid() bool {
	_, ok := sectionSteps[s]
	return ok
}

// Steps returns the subcategories of the section in order.
func (s Section) Steps() []Step {
	steps := sectionSteps[s]
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Contains reports whether step belongs to the section.
func (s Section) Contains(step Step) bool {
	for _, candidate := range sectionSteps[s] {
		if candidate == step {
			return true
		}
	}
	return false
}

// Sections returns every section in navigation order.
func Sections() []Section {
	out := make([]Section, len(orderedSections))
	copy(out, orderedSections)
	return out
}

// ParseSection converts raw input into a Section.
func ParseSection(value string) (Section, error) {
	for _, candidate := range orderedSections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid section %q", value)
}
