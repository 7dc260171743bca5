package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Concurrency", 0, "must be at least 1")
		assert.Equal(t, `fmgen: config error for "Concurrency" (value: 0): must be at least 1`, err.Error())
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Package", nil, "package cannot be empty")
		assert.Equal(t, `fmgen: config error for "Package": package cannot be empty`, err.Error())
	})

	t.Run("Missing environment", func(t *testing.T) {
		err := NewMissingEnvError("FM_SERVER", "FM_DATABASE", "OTTO_API_KEY (or FM_USERNAME and FM_PASSWORD)")
		assert.Equal(t, "fmgen: missing required environment variables: FM_SERVER, FM_DATABASE, OTTO_API_KEY (or FM_USERNAME and FM_PASSWORD)", err.Error())
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		assert.True(t, IsConfigError(fmt.Errorf("wrap: %w", NewConfigError("x", nil, "y"))))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewGenerationError("write", "customers.go", "cannot write", cause)

		assert.Equal(t, "fmgen: generation error in phase write (file: customers.go): cannot write: disk full", err.Error())
		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrGenerationFailed))
	})

	t.Run("IsGenerationError helper", func(t *testing.T) {
		require.True(t, IsGenerationError(NewGenerationError("plan", "", "", nil)))
		assert.False(t, IsGenerationError(errors.New("other")))
	})
}

func TestEmissionError(t *testing.T) {
	err := &EmissionError{Schema: "Customers", Field: "region", Message: "value list has no values, typed as text"}
	assert.Equal(t, "fmgen: emission warning on schema Customers field region: value list has no values, typed as text", err.Error())
	assert.True(t, errors.Is(err, ErrEmission))
	assert.True(t, IsEmissionError(err))
	assert.False(t, IsEmissionError(NewConfigError("x", nil, "y")))
}
