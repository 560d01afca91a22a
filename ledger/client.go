package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-activator/metrics"
)

const (
	// DefaultTimeout is the HTTP timeout used by New.
	DefaultTimeout = 30 * time.Second

	// DefaultDeadline is the transaction deadline, in minutes, used for all
	// transactions built by the client.
	DefaultDeadline = 1440

	// signatureOffset is the position of the 64 byte signature within the
	// serialized transaction. Unsigned transactions carry zeros there.
	signatureOffset = 96

	maxResponseSize = 4 << 20
	maxErrorBody    = 512
)

var (
	rpcCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activator",
		Name:      "node_rpc",
		Help:      "Number of ledger node API requests made",
	}, []string{"request_type"})

	rpcErrorCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activator",
		Name:      "node_rpc_error",
		Help:      "Number of ledger node API errors",
	}, []string{"request_type", "error_code"})
)

// Client provides an interaction with a ledger node's HTTP API.
//
// Reference: /api?requestType=<method>, form encoded parameters, JSON responses.
type Client interface {
	// GetAccount returns the account with the provided id. If the node does not
	// know the account, an *Error with ErrorCodeUnknownAccount is returned.
	GetAccount(ctx context.Context, id AccountID) (*Account, error)

	// GetUnconfirmedTransactions returns the unconfirmed transactions involving
	// the provided account.
	GetUnconfirmedTransactions(ctx context.Context, id AccountID) ([]Transaction, error)

	// GetSuggestedFees returns the node's current fee suggestions.
	GetSuggestedFees(ctx context.Context) (SuggestedFees, error)

	// SendMessage builds, signs and broadcasts a plain message transaction.
	SendMessage(ctx context.Context, args SendMessageArgs) (*BroadcastResult, error)

	// SendAmount builds, signs and broadcasts a value transaction with a
	// message attachment.
	SendAmount(ctx context.Context, args SendAmountArgs) (*BroadcastResult, error)
}

type client struct {
	log      *logrus.Entry
	endpoint string
	http     *http.Client
}

func init() {
	rpcCounterVec = metrics.Register(rpcCounterVec).(*prometheus.CounterVec)
	rpcErrorCounterVec = metrics.Register(rpcErrorCounterVec).(*prometheus.CounterVec)
}

// New returns a client for the node at endpoint (e.g. https://node.example:8125).
func New(endpoint string) Client {
	return NewWithHTTPClient(endpoint, &http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient returns a client that issues requests with the provided
// http.Client.
func NewWithHTTPClient(endpoint string, httpClient *http.Client) Client {
	return &client{
		log:      logrus.StandardLogger().WithField("type", "ledger/client"),
		endpoint: strings.TrimRight(endpoint, "/") + "/api",
		http:     httpClient,
	}
}

func (c *client) GetAccount(ctx context.Context, id AccountID) (*Account, error) {
	type response struct {
		Account    string `json:"account"`
		AccountRS  string `json:"accountRS"`
		PublicKey  string `json:"publicKey"`
		BalanceNQT string `json:"balanceNQT"`
	}

	var resp response
	if err := c.call(ctx, &resp, "getAccount", url.Values{"account": {id.String()}}); err != nil {
		return nil, err
	}

	account := &Account{
		ID:      id,
		Address: resp.AccountRS,
	}

	if resp.PublicKey != "" {
		pub, err := hex.DecodeString(resp.PublicKey)
		if err != nil {
			return nil, errors.Wrap(err, "invalid hex encoded public key in response")
		}
		account.PublicKey = pub
	}

	if resp.BalanceNQT != "" {
		balance, err := strconv.ParseUint(resp.BalanceNQT, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid balance in response")
		}
		account.Balance = balance
	}

	return account, nil
}

func (c *client) GetUnconfirmedTransactions(ctx context.Context, id AccountID) ([]Transaction, error) {
	type rawTransaction struct {
		Transaction string `json:"transaction"`
		Sender      string `json:"sender"`
		Recipient   string `json:"recipient"`
		AmountNQT   string `json:"amountNQT"`
		FeeNQT      string `json:"feeNQT"`
		Type        int    `json:"type"`
		Subtype     int    `json:"subtype"`
	}

	var resp struct {
		UnconfirmedTransactions []rawTransaction `json:"unconfirmedTransactions"`
	}
	if err := c.call(ctx, &resp, "getUnconfirmedTransactions", url.Values{"account": {id.String()}}); err != nil {
		return nil, err
	}

	txns := make([]Transaction, len(resp.UnconfirmedTransactions))
	for i, raw := range resp.UnconfirmedTransactions {
		txns[i] = Transaction{
			ID:      raw.Transaction,
			Type:    raw.Type,
			Subtype: raw.Subtype,
		}

		var err error
		if txns[i].Sender, err = parseOptionalID(raw.Sender); err != nil {
			return nil, errors.Wrapf(err, "invalid sender for transaction %d", i)
		}
		// Not every transaction type has a recipient.
		if txns[i].Recipient, err = parseOptionalID(raw.Recipient); err != nil {
			return nil, errors.Wrapf(err, "invalid recipient for transaction %d", i)
		}
		if txns[i].Amount, err = parseOptionalUint(raw.AmountNQT); err != nil {
			return nil, errors.Wrapf(err, "invalid amount for transaction %d", i)
		}
		if txns[i].Fee, err = parseOptionalUint(raw.FeeNQT); err != nil {
			return nil, errors.Wrapf(err, "invalid fee for transaction %d", i)
		}
	}

	return txns, nil
}

func (c *client) GetSuggestedFees(ctx context.Context) (fees SuggestedFees, err error) {
	var resp struct {
		Cheap    uint64 `json:"cheap"`
		Standard uint64 `json:"standard"`
		Priority uint64 `json:"priority"`
	}
	if err := c.call(ctx, &resp, "suggestFee", url.Values{}); err != nil {
		return fees, err
	}

	return SuggestedFees{
		Cheap:    resp.Cheap,
		Standard: resp.Standard,
		Priority: resp.Priority,
	}, nil
}

func (c *client) SendMessage(ctx context.Context, args SendMessageArgs) (*BroadcastResult, error) {
	params := url.Values{
		"recipient":     {args.RecipientID.String()},
		"message":       {args.Message},
		"messageIsText": {"true"},
		"feeNQT":        {strconv.FormatUint(args.Fee, 10)},
		"deadline":      {strconv.Itoa(DefaultDeadline)},
		"publicKey":     {hex.EncodeToString(args.SenderPublicKey)},
	}
	if len(args.RecipientPublicKey) > 0 {
		params.Set("recipientPublicKey", hex.EncodeToString(args.RecipientPublicKey))
	}

	return c.signAndBroadcast(ctx, "sendMessage", params, args.SenderPrivateKey)
}

func (c *client) SendAmount(ctx context.Context, args SendAmountArgs) (*BroadcastResult, error) {
	params := url.Values{
		"recipient": {args.RecipientID.String()},
		"amountNQT": {strconv.FormatUint(args.Amount, 10)},
		"feeNQT":    {strconv.FormatUint(args.Fee, 10)},
		"deadline":  {strconv.Itoa(DefaultDeadline)},
		"publicKey": {hex.EncodeToString(args.SenderPublicKey)},
	}
	if args.Attachment != "" {
		params.Set("message", args.Attachment)
		params.Set("messageIsText", "true")
	}
	if len(args.RecipientPublicKey) > 0 {
		params.Set("recipientPublicKey", hex.EncodeToString(args.RecipientPublicKey))
	}

	return c.signAndBroadcast(ctx, "sendMoney", params, args.SenderPrivateKey)
}

// signAndBroadcast asks the node to build the unsigned transaction, signs it
// locally and submits the signed bytes. The private key never leaves the process.
func (c *client) signAndBroadcast(ctx context.Context, requestType string, params url.Values, key ed25519.PrivateKey) (*BroadcastResult, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid sender private key")
	}

	var unsigned struct {
		UnsignedTransactionBytes string `json:"unsignedTransactionBytes"`
	}
	if err := c.call(ctx, &unsigned, requestType, params); err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(unsigned.UnsignedTransactionBytes)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex encoded unsigned transaction in response")
	}

	signed, err := SignTransaction(raw, key)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Transaction string `json:"transaction"`
		FullHash    string `json:"fullHash"`
	}
	if err := c.call(ctx, &resp, "broadcastTransaction", url.Values{"transactionBytes": {hex.EncodeToString(signed)}}); err != nil {
		return nil, err
	}

	if resp.Transaction == "" {
		return nil, errors.New("empty transaction id returned")
	}

	return &BroadcastResult{
		TransactionID: resp.Transaction,
		FullHash:      resp.FullHash,
	}, nil
}

// SignTransaction returns a copy of the unsigned transaction bytes with the
// signature over them placed in the signature field.
func SignTransaction(unsigned []byte, key ed25519.PrivateKey) ([]byte, error) {
	if len(unsigned) < signatureOffset+ed25519.SignatureSize {
		return nil, errors.Errorf("unsigned transaction too short: %d bytes", len(unsigned))
	}

	for _, b := range unsigned[signatureOffset : signatureOffset+ed25519.SignatureSize] {
		if b != 0 {
			return nil, errors.New("transaction is already signed")
		}
	}

	sig := ed25519.Sign(key, unsigned)

	signed := make([]byte, len(unsigned))
	copy(signed, unsigned)
	copy(signed[signatureOffset:], sig)
	return signed, nil
}

func (c *client) call(ctx context.Context, out interface{}, requestType string, params url.Values) error {
	rpcCounterVec.WithLabelValues(requestType).Inc()

	log := c.log.WithField("request_type", requestType)
	start := time.Now()

	err := c.do(ctx, out, requestType, params)
	if err == nil {
		log.WithField("elapsed", time.Since(start)).Trace("request completed")
		return nil
	}

	var code string
	switch e := errors.Cause(err).(type) {
	case *Error:
		code = strconv.Itoa(int(e.Code))
	case *HTTPError:
		code = "http_" + strconv.Itoa(e.StatusCode)
	}
	rpcErrorCounterVec.WithLabelValues(requestType, code).Inc()

	log.WithError(err).WithField("elapsed", time.Since(start)).Debug("request failed")
	return err
}

func (c *client) do(ctx context.Context, out interface{}, requestType string, params url.Values) error {
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("requestType", requestType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}

	return decodeResponse(resp, out)
}

// decodeResponse decodes a node API response into out. Error payloads are
// returned as *Error, non-2xx responses as *HTTPError.
func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if !(resp.StatusCode >= 200 && resp.StatusCode < 300) {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var apiErr struct {
		ErrorCode        *int   `json:"errorCode"`
		ErrorDescription string `json:"errorDescription"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return errors.Wrap(err, "invalid json in response")
	}
	if apiErr.ErrorCode != nil {
		return &Error{
			Code:        ErrorCode(*apiErr.ErrorCode),
			Description: apiErr.ErrorDescription,
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

func parseOptionalID(s string) (AccountID, error) {
	if s == "" {
		return 0, nil
	}

	return ParseAccountID(s)
}

func parseOptionalUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.ParseUint(s, 10, 64)
}
