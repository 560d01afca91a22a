package activation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-activator/address"
	"github.com/kinecosystem/agora-activator/keys"
	"github.com/kinecosystem/agora-activator/ledger"
)

func TestNormalize_Address(t *testing.T) {
	for _, id := range []uint64{0, 1, 1739068987193023818, 18446744073709551615} {
		for _, prefix := range []string{"S", "TS", ""} {
			addr := address.Encode(ledger.AccountID(id), prefix)

			decoded, err := address.Decode(addr)
			require.NoError(t, err)

			normalized, err := Normalize(addr)
			require.NoError(t, err)
			assert.Equal(t, decoded.String(), normalized)
		}
	}
}

func TestNormalize_Numeric(t *testing.T) {
	for _, id := range []string{"0", "42", "1739068987193023818", "18446744073709551615"} {
		normalized, err := Normalize(id)
		require.NoError(t, err)
		assert.Equal(t, id, normalized)
	}

	// Anything that is not an address passes through untouched.
	for _, raw := range []string{"not-an-id", " 42", "42\n"} {
		normalized, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, normalized)
	}
}

func TestNormalize_BadChecksum(t *testing.T) {
	_, err := Normalize("S-MRCC-2YLS-8M54-3CMAK")
	assert.True(t, errors.Is(err, address.ErrInvalidAddress))
	assert.Equal(t, outcomeInvalid, Outcome(err))
}

func TestValidatePairing(t *testing.T) {
	for _, secret := range []string{"a", "b", "c", "recipient"} {
		creds, err := keys.Derive(secret)
		require.NoError(t, err)

		assert.NoError(t, ValidatePairing(keys.AccountIDFromPublicKey(creds.PublicKey).String(), creds.PublicKey))
		assert.Equal(t, ErrPairingMismatch, ValidatePairing((creds.AccountID + 1).String(), creds.PublicKey))
		assert.Equal(t, ErrPairingMismatch, ValidatePairing("", creds.PublicKey))
		assert.Equal(t, ErrPairingMismatch, ValidatePairing("0"+creds.AccountID.String(), creds.PublicKey))
	}
}
