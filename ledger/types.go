package ledger

import (
	"crypto/ed25519"
	"strconv"

	"github.com/pkg/errors"
)

// AccountID is the ledger's canonical numeric account identifier.
type AccountID uint64

// ParseAccountID parses the unsigned decimal form of an account id.
func ParseAccountID(s string) (AccountID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid account id %q", s)
	}

	return AccountID(id), nil
}

// String returns the unsigned decimal form used by the node API.
func (id AccountID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Account is the on-ledger view of an account.
type Account struct {
	ID      AccountID
	Address string

	// PublicKey is empty if the account has never announced a public key,
	// i.e. it has not been activated yet.
	PublicKey []byte

	Balance uint64
}

// IsActive returns whether the account has a public key on file.
func (a *Account) IsActive() bool {
	return len(a.PublicKey) > 0
}

// Transaction is a (possibly unconfirmed) transaction as reported by the node.
type Transaction struct {
	ID        string
	Sender    AccountID
	Recipient AccountID
	Amount    uint64
	Fee       uint64
	Type      int
	Subtype   int
}

// SuggestedFees contains the node's current fee suggestions, in Planck.
type SuggestedFees struct {
	Cheap    uint64
	Standard uint64
	Priority uint64
}

// SendMessageArgs are the arguments for a plain message transaction.
type SendMessageArgs struct {
	Message            string
	RecipientID        AccountID
	RecipientPublicKey ed25519.PublicKey
	Fee                uint64

	SenderPrivateKey ed25519.PrivateKey
	SenderPublicKey  ed25519.PublicKey
}

// SendAmountArgs are the arguments for a value transaction carrying a
// message attachment.
type SendAmountArgs struct {
	Amount             uint64
	Attachment         string
	RecipientID        AccountID
	RecipientPublicKey ed25519.PublicKey
	Fee                uint64

	SenderPrivateKey ed25519.PrivateKey
	SenderPublicKey  ed25519.PublicKey
}

// BroadcastResult identifies a transaction accepted by the node.
type BroadcastResult struct {
	TransactionID string
	FullHash      string
}
