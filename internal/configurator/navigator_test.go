package configurator

import (
	"testing"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatorVisitsEveryStepInOrder(t *testing.T) {
	n := NewNavigator()
	visited := []enums.Step{n.Current().Step}
	for {
		pos, moved := n.AdvanceToNext()
		if !moved {
			break
		}
		visited = append(visited, pos.Step)
	}
	assert.Equal(t, enums.AllSteps(), visited)
	assert.True(t, n.IsTerminal())
	assert.Equal(t, Position{Section: enums.SectionSummary, Step: enums.StepReview}, n.Current())

	pos, moved := n.AdvanceToNext()
	assert.False(t, moved)
	assert.Equal(t, Position{Section: enums.SectionSummary, Step: enums.StepReview}, pos)
}

func TestNavigatorGoToSection(t *testing.T) {
	n := NewNavigator()

	pos, err := n.GoToSection(enums.SectionFeatures, "")
	require.NoError(t, err)
	assert.Equal(t, enums.StepAssistance, pos.Step)

	pos, err = n.GoToSection(enums.SectionExterior, enums.StepRims)
	require.NoError(t, err)
	assert.Equal(t, Position{Section: enums.SectionExterior, Step: enums.StepRims}, pos)

	_, err = n.GoToSection(enums.SectionExterior, enums.StepEngine)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = n.GoToSection("garage", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, enums.StepRims, n.Current().Step, "invalid jumps keep the position")

	n.Reset()
	assert.Equal(t, Position{Section: enums.SectionMotorization, Step: enums.StepEngine}, n.Current())
	assert.False(t, n.IsTerminal())
}
