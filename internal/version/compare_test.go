package version

import (
	"testing"

	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCheckCompatibility(t *testing.T) {
	tests := []struct {
		name     string
		running  string
		required string
		code     errors.ErrorCode
	}{
		{name: "exact match", running: "0.4.0", required: "0.4.0"},
		{name: "v prefix on both", running: "v0.4.2", required: "v0.4.0"},
		{name: "patch differs", running: "0.4.5", required: "0.4.1"},
		{name: "empty requirement", running: "0.4.0", required: ""},
		{name: "running main", running: "main", required: "9.9.9"},
		{name: "required main", running: "0.4.0", required: "main"},
		{name: "minor differs", running: "0.5.0", required: "0.4.0", code: errors.ErrCodeVersionMismatch},
		{name: "major differs", running: "1.4.0", required: "0.4.0", code: errors.ErrCodeVersionMismatch},
		{name: "caret constraint", running: "0.4.3", required: "^0.4"},
		{name: "range constraint", running: "0.4.0", required: ">= 0.3, < 0.5"},
		{name: "unsatisfied constraint", running: "0.6.0", required: ">= 0.3, < 0.5", code: errors.ErrCodeVersionMismatch},
		{name: "invalid running version", running: "latest", required: "0.4.0", code: errors.ErrCodeInvalidVersion},
		{name: "invalid requirement", running: "0.4.0", required: "not-a-version", code: errors.ErrCodeInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompatibility(tt.running, tt.required)
			if tt.code == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "unexpected error: %v", err)
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", GetVersion())
}
