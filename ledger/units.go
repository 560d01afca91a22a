package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// PlanckPerCoin is the number of Planck in one coin.
	PlanckPerCoin = 100000000

	planckDecimals = 8

	// maxCoinDigits bounds the integer part so the result always fits in a uint64.
	maxCoinDigits = 11
)

// ToPlanck converts a string representation of a coin value to Planck.
//
// An error is returned if the value is malformed, negative, or has more
// precision than a Planck.
func ToPlanck(val string) (uint64, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, errors.New("empty value")
	}

	parts := strings.Split(val, ".")
	if len(parts) > 2 {
		return 0, errors.New("invalid coin value")
	}

	if len(parts[0]) > maxCoinDigits {
		return 0, errors.New("value cannot be represented")
	}

	var coins uint64
	if parts[0] != "" {
		var err error
		coins, err = strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "invalid integer component")
		}
	}

	var planck uint64
	if len(parts) == 2 {
		if len(parts[1]) == 0 || len(parts[1]) > planckDecimals {
			return 0, errors.New("value cannot be represented")
		}

		padded := parts[1] + strings.Repeat("0", planckDecimals-len(parts[1]))
		var err error
		planck, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "invalid decimal component")
		}
	}

	return coins*PlanckPerCoin + planck, nil
}

// FromPlanck converts an amount of Planck to its coin string representation.
func FromPlanck(amount uint64) string {
	return fmt.Sprintf("%d.%08d", amount/PlanckPerCoin, amount%PlanckPerCoin)
}
