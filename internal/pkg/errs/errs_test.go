package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewError(t *testing.T) {
	err := NewError(ErrPhotoInvalid, 512)
	assert.Equal(t, ErrPhotoInvalid, err.Code)
	assert.Contains(t, err.Message, "512 KB")
	assert.Equal(t, http.StatusOK, err.Status)

	assert.Equal(t, http.StatusUnauthorized, NewError(ErrUnauthorized).Status)

	unknown := NewError(-1)
	assert.Equal(t, ErrUnknown, unknown.Code)
	assert.Equal(t, http.StatusInternalServerError, unknown.Status)
}

func Test_NewError_Does_Not_Mutate_Template(t *testing.T) {
	first := NewError(ErrPhotoInvalid, 1)
	second := NewError(ErrPhotoInvalid, 2)

	assert.Contains(t, first.Message, "1 KB")
	assert.Contains(t, second.Message, "2 KB")
}

func Test_Wrap_And_Inspect(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("saving directory: %w", Wrap(ErrStorageWriteFailure, cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrStorageWriteFailure, CodeOf(err))
	assert.True(t, HasCode(err, ErrStorageWriteFailure))
	assert.False(t, HasCode(err, ErrUnknown))
	assert.Contains(t, err.Error(), "disk full")

	custom := From(err)
	require.NotNil(t, custom)
	assert.Equal(t, ErrStorageWriteFailure, custom.Code)
}

func Test_Foreign_Errors(t *testing.T) {
	assert.Equal(t, 0, CodeOf(nil))
	assert.False(t, HasCode(nil, ErrUnknown))
	assert.Nil(t, From(nil))

	foreign := errors.New("boom")
	assert.Equal(t, ErrUnknown, CodeOf(foreign))

	custom := From(foreign)
	assert.Equal(t, ErrUnknown, custom.Code)
	assert.ErrorIs(t, custom, foreign)
}
