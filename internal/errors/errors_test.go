package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr_KnownSentinels(t *testing.T) {
	cases := []struct {
		sentinel error
		status   int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrHTTPClient, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := NewError("boom").Mark(tc.sentinel)
		assert.Equal(t, tc.status, HTTPStatusFromErr(err))
	}
}

func TestHTTPStatusFromErr_UnknownDefaultsTo500(t *testing.T) {
	err := NewError("unmapped failure").Error()
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(err))
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewError("missing").Mark(ErrNotFound)))
	assert.True(t, IsAlreadyExists(NewError("dup").Mark(ErrAlreadyExists)))
	assert.True(t, IsValidation(NewError("bad").Mark(ErrValidation)))
	assert.True(t, IsInvalidOperation(NewError("nope").Mark(ErrInvalidOperation)))
	assert.True(t, IsHTTPClient(NewError("upstream").Mark(ErrHTTPClient)))

	assert.False(t, IsNotFound(NewError("bad").Mark(ErrValidation)))
}

func TestBuilder_HintSurvivesWrapping(t *testing.T) {
	err := WithError(NewError("inner").Mark(ErrNotFound)).
		WithMessage("loading catalog").
		WithHint("Check the catalog path").
		Mark(ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "loading catalog")
}
