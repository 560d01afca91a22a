// Package keys derives the service's signing credentials and relates public
// keys to ledger account ids.
package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-activator/ledger"
)

var (
	// ErrEmptySecret is returned when deriving credentials from an empty secret.
	ErrEmptySecret = errors.New("secret cannot be empty")

	// ErrInvalidPublicKey is returned when a public key cannot be parsed.
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// Credentials are a signing keypair and the account id it controls.
type Credentials struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	AccountID  ledger.AccountID
}

// Derive deterministically derives credentials from secret. The keypair is
// generated from the SHA-256 digest of the secret.
func Derive(secret string) (Credentials, error) {
	if secret == "" {
		return Credentials{}, ErrEmptySecret
	}

	seed := sha256.Sum256([]byte(secret))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)

	return Credentials{
		PrivateKey: priv,
		PublicKey:  pub,
		AccountID:  AccountIDFromPublicKey(pub),
	}, nil
}

// AccountIDFromPublicKey returns the account id controlled by pub: the first
// eight bytes of SHA-256(pub), read little-endian.
func AccountIDFromPublicKey(pub []byte) ledger.AccountID {
	h := sha256.Sum256(pub)
	return ledger.AccountID(binary.LittleEndian.Uint64(h[:8]))
}

// ParsePublicKey parses a hex (64 characters) or base58 encoded public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrInvalidPublicKey, "empty")
	}

	var raw []byte
	if len(s) == hex.EncodedLen(ed25519.PublicKeySize) {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidPublicKey, "malformed hex")
		}
		raw = b
	} else {
		b, err := base58.Decode(s)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidPublicKey, "neither hex nor base58")
		}
		raw = b
	}

	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "expected %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}

	return ed25519.PublicKey(raw), nil
}

// String returns the hex form of the public key, used in logs and responses.
func (c Credentials) String() string {
	return hex.EncodeToString(c.PublicKey)
}
