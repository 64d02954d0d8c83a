package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		MissingToken:          http.StatusUnauthorized,
		InvalidOrExpiredToken: http.StatusUnauthorized,
		InvalidCredentials:    http.StatusUnauthorized,
		InsufficientRole:      http.StatusForbidden,
		DuplicateIdentity:     http.StatusConflict,
		MalformedRequest:      http.StatusBadRequest,
		NotFound:              http.StatusNotFound,
		Internal:              http.StatusInternalServerError,
		Kind("whatever"):      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), "kind %s", kind)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(DuplicateIdentity, "user already exists"))
	assert.Equal(t, DuplicateIdentity, KindOf(err))
	assert.Equal(t, Internal, KindOf(fmt.Errorf("boom")))
}
