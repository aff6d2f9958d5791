package configurator

import (
	"fmt"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
)

// Position is the active (section, step) pair.
type Position struct {
	Section enums.Section `json:"section"`
	Step    enums.Step    `json:"step"`
}

// Navigator moves through sections in a fixed order. Navigation is never gated.
type Navigator struct {
	pos Position
}

// NewNavigator starts at the first step of the first section.
func NewNavigator() *Navigator {
	n := &Navigator{}
	n.Reset()
	return n
}

func (n *Navigator) Reset() {
	first := enums.Sections()[0]
	n.pos = Position{Section: first, Step: first.Steps()[0]}
}

func (n *Navigator) Current() Position {
	return n.pos
}

// GoToSection jumps to step within section. An empty step selects the section's first step.
func (n *Navigator) GoToSection(section enums.Section, step enums.Step) (Position, error) {
	if !section.IsValid() {
		return n.pos, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown section %q", section))
	}
	if step == "" {
		step = section.Steps()[0]
	}
	if !section.Contains(step) {
		return n.pos, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("step %q is not part of section %q", step, section))
	}
	n.pos = Position{Section: section, Step: step}
	return n.pos, nil
}

// AdvanceToNext moves to the next step of the section, else to the first step of the
// next section. It reports false at the terminal position.
func (n *Navigator) AdvanceToNext() (Position, bool) {
	steps := n.pos.Section.Steps()
	for i, step := range steps {
		if step == n.pos.Step && i+1 < len(steps) {
			n.pos.Step = steps[i+1]
			return n.pos, true
		}
	}

	sections := enums.Sections()
	for i, section := range sections {
		if section == n.pos.Section && i+1 < len(sections) {
			next := sections[i+1]
			n.pos = Position{Section: next, Step: next.Steps()[0]}
			return n.pos, true
		}
	}
	return n.pos, false
}

// IsTerminal reports whether the position is the last step of the last section.
func (n *Navigator) IsTerminal() bool {
	sections := enums.Sections()
	last := sections[len(sections)-1]
	steps := last.Steps()
	return n.pos.Section == last && n.pos.Step == steps[len(steps)-1]
}
