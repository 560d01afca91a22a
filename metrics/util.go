package metrics

import (
	"unicode"

	"github.com/pkg/errors"
)

// validateMetricName checks that name starts with a letter and only contains
// letters, digits, underscores and dots.
func validateMetricName(name string) error {
	if name == "" {
		return errors.New("metric name cannot be empty")
	}

	for i, r := range name {
		if i == 0 && !unicode.IsLetter(r) {
			return errors.Errorf("metric name %q must start with a letter", name)
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return errors.Errorf("metric name %q contains invalid character %q", name, r)
		}
	}

	return nil
}
