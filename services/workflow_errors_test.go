package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(Errf(KindNotFound, "submission 9 not found")))
	assert.Equal(t, KindConflict, KindOf(Errf(KindConflict, "already assigned")))

	// Wrapped workflow errors still classify correctly.
	wrapped := fmt.Errorf("saving: %w", Errf(KindValidation, "comments are required"))
	assert.Equal(t, KindValidation, KindOf(wrapped))

	// Anything else is internal.
	assert.Equal(t, KindInternal, KindOf(errors.New("driver: bad connection")))
}

func TestInternalfCarriesCorrelationID(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Internalf(cause, "failed to load submission")

	require.NotEmpty(t, err.CorrelationID)
	assert.Equal(t, KindInternal, err.Kind)
	assert.ErrorIs(t, err, cause)

	other := Internalf(cause, "failed to load submission")
	assert.NotEqual(t, err.CorrelationID, other.CorrelationID)
}

func TestAsWorkflowError(t *testing.T) {
	wfErr := Errf(KindForbidden, "only the submitting author may resubmit")
	assert.Same(t, wfErr, AsWorkflowError(wfErr))

	converted := AsWorkflowError(errors.New("boom"))
	require.NotNil(t, converted)
	assert.Equal(t, KindInternal, converted.Kind)
	assert.NotEmpty(t, converted.CorrelationID)
}

func TestErrfMessageFormatting(t *testing.T) {
	err := Errf(KindInvalidState, "submission %s is in terminal state %s", "SUB-2026-1a2b3c4d", "declined")
	assert.Contains(t, err.Error(), "SUB-2026-1a2b3c4d")
	assert.Contains(t, err.Error(), "invalid_state")
}
