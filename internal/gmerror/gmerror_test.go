package gmerror_test

import (
	"net/http"
	"testing"

	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := gmerror.New("some message")

	assert.Equal(t, "some message", err.Error())
	assert.Equal(t, http.StatusBadRequest, gmerror.StatusCode(err))
}

func TestStatusCode(t *testing.T) {
	err := gmerror.NotFound("item not found")
	assert.Equal(t, gmerror.TagNotFound, err.Tag())
	assert.Equal(t, http.StatusNotFound, gmerror.StatusCode(errors.Wrap(err, "delete")))

	assert.Equal(t, http.StatusInternalServerError, gmerror.StatusCode(errors.New("boom")))
}
