package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
		{KindDependency, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(New(tc.kind, "msg")))
	}
}

func TestUnclassifiedErrors(t *testing.T) {
	err := errors.New("pq: connection refused")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, Status(err))
	assert.Equal(t, "something went wrong", MessageOf(err))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindDependency, "login unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindDependency, KindOf(err))
	assert.Equal(t, "login unavailable", MessageOf(err))
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindNotFound, "no such tour")
	outer := fmt.Errorf("loading tour: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(outer))
	assert.Equal(t, "no such tour", MessageOf(outer))
}
