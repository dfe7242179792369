package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	require.True(t, IsValidation(validation("x")))
	require.True(t, IsNotFound(notFound("x")))
	require.True(t, IsAuthorization(authorization("x")))
	require.True(t, IsConflict(conflict("x")))

	require.False(t, IsValidation(conflict("x")))
	require.False(t, IsConflict(nil))
	require.False(t, IsNotFound(errors.New("plain")))
}

func TestErrorKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("vote: %w", conflict("you have already voted in this poll"))
	require.True(t, IsConflict(err))
	require.False(t, IsValidation(err))
}
