package activation

import (
	"crypto/ed25519"

	"github.com/kinecosystem/agora-activator/address"
	"github.com/kinecosystem/agora-activator/keys"
)

// Normalize returns the numeric account id form of account. Addresses are
// decoded; anything else is returned unchanged.
func Normalize(account string) (string, error) {
	if !address.IsAddress(account) {
		return account, nil
	}

	id, err := address.Decode(account)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ValidatePairing returns ErrPairingMismatch unless pub derives the numeric
// account id.
func ValidatePairing(id string, pub ed25519.PublicKey) error {
	if keys.AccountIDFromPublicKey(pub).String() != id {
		return ErrPairingMismatch
	}
	return nil
}
