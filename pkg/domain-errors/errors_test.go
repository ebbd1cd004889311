package domainerrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesCode(t *testing.T) {
	err := New(CodeConflict, "name already assigned")

	assert.True(t, Is(err, CodeConflict))
	assert.False(t, Is(err, CodeNotFound))
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("claim name: %w", New(CodeBadRequest, "invalid name size"))

	assert.True(t, Is(err, CodeBadRequest))
	assert.Equal(t, CodeBadRequest, CodeOf(err))
}

func TestCodeOfUncodedError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain failure")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeInvalidState))
	assert.Equal(t, http.StatusPaymentRequired, HTTPStatus(CodeInsufficientFunds))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Code("unknown")))
}
