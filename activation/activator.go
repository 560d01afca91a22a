// Package activation activates ledger accounts by sending them a welcome
// transaction from the service's own account.
package activation

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kinecosystem/agora-activator/config"
	"github.com/kinecosystem/agora-activator/guard"
	"github.com/kinecosystem/agora-activator/keys"
	"github.com/kinecosystem/agora-activator/ledger"
)

const instrumentationName = "github.com/kinecosystem/agora-activator/activation"

// DefaultWelcomeMessage is the text sent when no message is configured.
const DefaultWelcomeMessage = "Welcome! Your account is now active."

// Request is a single activation request.
type Request struct {
	// Account is either an address (S-XXXX-XXXX-XXXX-XXXXX) or a numeric id.
	Account string

	// PublicKey is the key the account claims to be derived from.
	PublicKey ed25519.PublicKey
}

// Result describes the welcome transaction of a successful activation.
type Result struct {
	TransactionID string
	FullHash      string
	Recipient     ledger.AccountID

	// Amount is the value sent, in Planck. Zero for a plain message.
	Amount uint64
}

// Sender identifies the account activations are sent from.
type Sender struct {
	AccountID ledger.AccountID
	PublicKey ed25519.PublicKey
}

// Activator sends welcome transactions to unactivated accounts.
type Activator struct {
	log    *logrus.Entry
	client ledger.Client
	creds  keys.Credentials

	guard   guard.Guard
	amount  *config.String
	message *config.String
	timeout *config.Duration
	tracer  trace.Tracer
}

// New returns an Activator sending from the account derived from secret.
func New(secret string, client ledger.Client, opts ...Option) (*Activator, error) {
	creds, err := keys.Derive(secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive sender credentials")
	}

	a := &Activator{
		log:     logrus.StandardLogger().WithField("type", "activation/activator"),
		client:  client,
		creds:   creds,
		guard:   guard.None{},
		amount:  config.NewString(nil, "0"),
		message: config.NewString(nil, DefaultWelcomeMessage),
		timeout: config.NewDuration(nil, 0),
		tracer:  otel.GetTracerProvider().Tracer(instrumentationName),
	}
	for _, o := range opts {
		o(a)
	}

	a.log.WithFields(logrus.Fields{
		"sender_id":         creds.AccountID.String(),
		"sender_public_key": creds.String(),
	}).Info("activator created")

	return a, nil
}

// Sender returns the account activations are sent from.
func (a *Activator) Sender() Sender {
	return Sender{
		AccountID: a.creds.AccountID,
		PublicKey: a.creds.PublicKey,
	}
}

// Amount returns the currently configured activation amount in Planck.
func (a *Activator) Amount(ctx context.Context) (uint64, error) {
	raw := a.amount.Get(ctx)
	amount, err := ledger.ToPlanck(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q: %v", raw, err)
	}
	return amount, nil
}

// Activate verifies that req.PublicKey belongs to req.Account, that the account
// is neither active nor already being activated, and sends it a welcome
// transaction. Exactly one transaction is sent on success; none otherwise.
func (a *Activator) Activate(ctx context.Context, req Request) (*Result, error) {
	if d := a.timeout.Get(ctx); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	ctx, span := a.tracer.Start(ctx, "activation.Activate")
	defer span.End()

	start := time.Now()
	result, err := a.activate(ctx, req)

	activationDuration.Observe(time.Since(start).Seconds())
	activationCounter.WithLabelValues(Outcome(err)).Inc()

	if err != nil {
		span.RecordError(err)
	}
	return result, err
}

func (a *Activator) activate(ctx context.Context, req Request) (*Result, error) {
	log := a.log.WithFields(logrus.Fields{
		"account":    req.Account,
		"public_key": hex.EncodeToString(req.PublicKey),
	})

	var id string
	err := a.step(ctx, log, stepNormalize, logrus.Fields{"input": req.Account}, func(_ context.Context, out logrus.Fields) (err error) {
		id, err = Normalize(req.Account)
		out["account_id"] = id
		return err
	})
	if err != nil {
		return nil, err
	}

	err = a.step(ctx, log, stepValidatePairing, logrus.Fields{"account_id": id}, func(_ context.Context, _ logrus.Fields) error {
		return ValidatePairing(id, req.PublicKey)
	})
	if err != nil {
		return nil, err
	}

	// A successful pairing guarantees id is the decimal form of a derived id.
	recipient := keys.AccountIDFromPublicKey(req.PublicKey)
	log = log.WithField("recipient", recipient.String())

	var release guard.ReleaseFunc
	err = a.step(ctx, log, stepGuard, nil, func(ctx context.Context, _ logrus.Fields) (err error) {
		release, err = a.guard.Acquire(ctx, recipient.String())
		if errors.Is(err, guard.ErrHeld) {
			return ErrActivationPending
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	defer release()

	if err := a.step(ctx, log, stepCheckNotActive, nil, func(ctx context.Context, out logrus.Fields) error {
		return a.checkNotActive(ctx, recipient, out)
	}); err != nil {
		return nil, err
	}

	if err := a.step(ctx, log, stepCheckNotPending, logrus.Fields{"sender": a.creds.AccountID.String()}, func(ctx context.Context, out logrus.Fields) error {
		return a.checkNotPending(ctx, recipient, out)
	}); err != nil {
		return nil, err
	}

	var result *Result
	err = a.step(ctx, log, stepDispatch, nil, func(ctx context.Context, out logrus.Fields) (err error) {
		result, err = a.dispatch(ctx, recipient, req.PublicKey, out)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"transaction": result.TransactionID,
		"amount":      result.Amount,
	}).Info("account activated")

	return result, nil
}

func (a *Activator) checkNotActive(ctx context.Context, recipient ledger.AccountID, out logrus.Fields) error {
	account, err := a.client.GetAccount(ctx, recipient)
	if ledger.IsUnknownAccount(err) {
		out["known"] = false
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to get recipient account")
	}

	out["known"] = true
	out["active"] = account.IsActive()
	if account.IsActive() {
		return ErrAlreadyActive
	}
	return nil
}

func (a *Activator) checkNotPending(ctx context.Context, recipient ledger.AccountID, out logrus.Fields) error {
	txns, err := a.client.GetUnconfirmedTransactions(ctx, a.creds.AccountID)
	if err != nil {
		return errors.Wrap(err, "failed to get unconfirmed transactions")
	}

	out["unconfirmed"] = len(txns)
	for _, txn := range txns {
		if txn.Recipient == recipient {
			out["pending_transaction"] = txn.ID
			return ErrActivationPending
		}
	}
	return nil
}

func (a *Activator) dispatch(ctx context.Context, recipient ledger.AccountID, recipientKey ed25519.PublicKey, out logrus.Fields) (*Result, error) {
	fees, err := a.client.GetSuggestedFees(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get suggested fees")
	}

	amount, err := a.Amount(ctx)
	if err != nil {
		return nil, err
	}
	message := a.message.Get(ctx)

	out["fee"] = fees.Standard
	out["amount"] = amount

	var broadcast *ledger.BroadcastResult
	if amount == 0 {
		broadcast, err = a.client.SendMessage(ctx, ledger.SendMessageArgs{
			Message:            message,
			RecipientID:        recipient,
			RecipientPublicKey: recipientKey,
			Fee:                fees.Standard,
			SenderPrivateKey:   a.creds.PrivateKey,
			SenderPublicKey:    a.creds.PublicKey,
		})
	} else {
		broadcast, err = a.client.SendAmount(ctx, ledger.SendAmountArgs{
			Amount:             amount,
			Attachment:         message,
			RecipientID:        recipient,
			RecipientPublicKey: recipientKey,
			Fee:                fees.Standard,
			SenderPrivateKey:   a.creds.PrivateKey,
			SenderPublicKey:    a.creds.PublicKey,
		})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit welcome transaction")
	}

	out["transaction"] = broadcast.TransactionID

	return &Result{
		TransactionID: broadcast.TransactionID,
		FullHash:      broadcast.FullHash,
		Recipient:     recipient,
		Amount:        amount,
	}, nil
}
