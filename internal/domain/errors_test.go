package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Run("NotFoundSurvivesWrapping", func(t *testing.T) {
		err := fmt.Errorf("loading invoice: %w", &NotFoundError{Resource: "invoice", ID: "42"})
		assert.True(t, IsNotFound(err))
		assert.False(t, IsValidation(err))
	})

	t.Run("ValidationSurvivesWrapping", func(t *testing.T) {
		err := fmt.Errorf("checking input: %w", &ValidationError{Field: "receiptNumber", Message: "required"})
		assert.True(t, IsValidation(err))
		assert.False(t, IsNotFound(err))
	})

	t.Run("ConversionErrorUnwraps", func(t *testing.T) {
		cause := &NotFoundError{Resource: "blob", ID: "1-a.heic"}
		err := &ConversionError{Ref: "1-a.heic", Err: cause}
		assert.True(t, IsNotFound(err))
		var nf *NotFoundError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("OtherErrorsAreNeither", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, IsNotFound(err))
		assert.False(t, IsValidation(err))
	})
}
