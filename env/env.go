package env

import (
	"errors"
	"os"
)

// EnvironmentVariable selects the environment the activator runs in.
const EnvironmentVariable = "ACTIVATOR_ENVIRONMENT"

// Environment is the deployment environment of the running process.
type Environment string

const (
	// EnvironmentProd is the production environment, backed by mainnet.
	EnvironmentProd Environment = "prod"

	// EnvironmentDev is the development environment, backed by testnet.
	EnvironmentDev Environment = "dev"

	// EnvironmentTest is used by go tests.
	EnvironmentTest Environment = "test"
)

// ErrBadEnvironmentVariableSet is returned when ACTIVATOR_ENVIRONMENT holds an
// unknown value.
var ErrBadEnvironmentVariableSet = errors.New("environment variable " + EnvironmentVariable + " was not 'prod', 'dev', or 'test'")

// FromEnvVariable reads the environment from ACTIVATOR_ENVIRONMENT.
func FromEnvVariable() (Environment, error) {
	env := Environment(os.Getenv(EnvironmentVariable))
	if !env.IsValid() {
		return "", ErrBadEnvironmentVariableSet
	}
	return env, nil
}

// IsValid returns true if env is a known environment.
func (env Environment) IsValid() bool {
	switch env {
	case EnvironmentProd, EnvironmentDev, EnvironmentTest:
		return true
	default:
		return false
	}
}
