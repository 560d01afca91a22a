package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvVariable(t *testing.T) {
	defer os.Unsetenv(EnvironmentVariable)

	for _, e := range []Environment{EnvironmentProd, EnvironmentDev, EnvironmentTest} {
		os.Setenv(EnvironmentVariable, string(e))
		actual, err := FromEnvVariable()
		require.NoError(t, err)
		assert.Equal(t, e, actual)
	}

	for _, bad := range []string{"", "production", "PROD"} {
		os.Setenv(EnvironmentVariable, bad)
		_, err := FromEnvVariable()
		assert.Equal(t, ErrBadEnvironmentVariableSet, err)
	}
}
