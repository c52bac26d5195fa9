package prism

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnreachable(t *testing.T) {
	assert.True(t, IsUnreachable(&UnreachableError{Err: errors.New("refused")}))
	assert.True(t, IsUnreachable(fmt.Errorf("connect: %w", &UnreachableError{Err: errors.New("refused")})))
	assert.True(t, IsUnreachable(ErrInvalidCredentials))
	assert.False(t, IsUnreachable(errors.New("other")))
	assert.False(t, IsUnreachable(nil))
}

func TestIsNotFound(t *testing.T) {
	notFound := &StatusError{Method: "GET", Path: "vms/x", StatusCode: http.StatusNotFound}
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", notFound)))
	assert.False(t, IsNotFound(&StatusError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{Method: "POST", Path: "vms", StatusCode: 500, Body: "boom"}
	assert.Contains(t, err.Error(), "POST vms returned 500")
	assert.Contains(t, err.Error(), "boom")
}
