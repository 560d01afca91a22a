package activation

import "github.com/pkg/errors"

var (
	// ErrPairingMismatch is returned when the public key does not derive the
	// requested account id.
	ErrPairingMismatch = errors.New("public key does not match account")

	// ErrAlreadyActive is returned when the account already has a public key on
	// the ledger.
	ErrAlreadyActive = errors.New("account is already active")

	// ErrActivationPending is returned when an activation of the account is
	// already in flight.
	ErrActivationPending = errors.New("activation already pending")

	// ErrInvalidAmount is returned when the configured activation amount is
	// not a valid coin value.
	ErrInvalidAmount = errors.New("invalid activation amount")
)
