package wizard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type personal struct {
	Email string `json:"email"`
}

func TestStateRequiresPredecessors(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	s := NewState("w-1", KindStudent, "user-1", now)

	assert.True(t, s.CanEnter(StepOne))
	assert.False(t, s.CanEnter(StepTwo))
	assert.False(t, s.CanEnter(StepThree))
	assert.ErrorIs(t, s.Complete(StepTwo, map[string]string{}, now), ErrOutOfOrder)

	require.NoError(t, s.Complete(StepOne, personal{Email: "a@agu.edu"}, now))
	assert.True(t, s.CanEnter(StepTwo))
	assert.False(t, s.CanEnter(StepThree))

	require.NoError(t, s.Complete(StepTwo, map[string]string{"program_id": "p"}, now))
	assert.True(t, s.CanEnter(StepThree))
}

func TestStateResubmittingEarlierStepTruncates(t *testing.T) {
	now := time.Now()
	s := NewState("w-1", KindTutor, "", now)
	require.NoError(t, s.Complete(StepOne, personal{Email: "a@agu.edu"}, now))
	require.NoError(t, s.Complete(StepTwo, map[string]string{"program_id": "p"}, now))

	require.NoError(t, s.Complete(StepOne, personal{Email: "b@agu.edu"}, now))

	assert.Equal(t, StepOne, s.Completed)
	assert.False(t, s.CanEnter(StepThree))
	var dest map[string]string
	assert.ErrorIs(t, s.Load(StepTwo, &dest), ErrOutOfOrder)

	var p personal
	require.NoError(t, s.Load(StepOne, &p))
	assert.Equal(t, "b@agu.edu", p.Email)
}

func TestStateFinalStepIsNeverStaged(t *testing.T) {
	s := NewState("w-1", KindTutor, "", time.Now())
	assert.ErrorIs(t, s.Complete(FinalStep, nil, time.Now()), ErrInvalidStep)
	assert.ErrorIs(t, s.Load(Step(0), nil), ErrInvalidStep)
}

func TestStateRoundTripsThroughJSON(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	s := NewState("w-1", KindStudent, "user-1", now)
	require.NoError(t, s.Complete(StepOne, personal{Email: "a@agu.edu"}, now))

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.True(t, decoded.CanEnter(StepTwo))
	var p personal
	require.NoError(t, decoded.Load(StepOne, &p))
	assert.Equal(t, "a@agu.edu", p.Email)
}

func TestOwnedBy(t *testing.T) {
	assert.True(t, NewState("a", KindTutor, "", time.Now()).OwnedBy("anyone"))
	assert.True(t, NewState("a", KindStudent, "u1", time.Now()).OwnedBy("u1"))
	assert.False(t, NewState("a", KindStudent, "u1", time.Now()).OwnedBy("u2"))
}
