package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/kinecosystem/agora-activator/testutil"
)

type testNode struct {
	t *testing.T

	mu       sync.Mutex
	requests []url.Values
	handlers map[string]func(w http.ResponseWriter, form url.Values)
}

func newTestNode(t *testing.T) (*testNode, Client, func()) {
	n := &testNode{
		t:        t,
		handlers: make(map[string]func(w http.ResponseWriter, form url.Values)),
	}

	serv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		n.mu.Lock()
		n.requests = append(n.requests, r.PostForm)
		h, ok := n.handlers[r.PostForm.Get("requestType")]
		n.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		h(w, r.PostForm)
	}))

	return n, NewWithHTTPClient(serv.URL+"/", serv.Client()), serv.Close
}

func (n *testNode) handle(requestType string, h func(w http.ResponseWriter, form url.Values)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[requestType] = h
}

func (n *testNode) respond(requestType, body string) {
	n.handle(requestType, func(w http.ResponseWriter, _ url.Values) {
		_, _ = w.Write([]byte(body))
	})
}

func (n *testNode) getRequests() []url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()

	reqs := make([]url.Values, len(n.requests))
	copy(reqs, n.requests)
	return reqs
}

func TestClient_GetAccount(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	pub := make([]byte, 32)
	pub[0] = 7
	node.respond("getAccount", `{"account":"1739068987193023818","accountRS":"S-MRCC-2YLS-8M54-3CMAJ","publicKey":"`+hex.EncodeToString(pub)+`","balanceNQT":"150000000"}`)

	account, err := client.GetAccount(context.Background(), 1739068987193023818)
	require.NoError(t, err)
	assert.Equal(t, AccountID(1739068987193023818), account.ID)
	assert.Equal(t, "S-MRCC-2YLS-8M54-3CMAJ", account.Address)
	assert.Equal(t, pub, account.PublicKey)
	assert.EqualValues(t, 150000000, account.Balance)
	assert.True(t, account.IsActive())

	reqs := node.getRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1739068987193023818", reqs[0].Get("account"))
}

func TestClient_GetAccount_NoPublicKey(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	node.respond("getAccount", `{"account":"42","accountRS":"S-2222-2222-2222-22222","balanceNQT":"0"}`)

	account, err := client.GetAccount(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, account.IsActive())
}

func TestClient_GetAccount_Unknown(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	node.respond("getAccount", `{"errorCode":5,"errorDescription":"Unknown account"}`)

	_, err := client.GetAccount(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsUnknownAccount(err))

	nodeErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeUnknownAccount, nodeErr.Code)
	assert.Equal(t, "Unknown account", nodeErr.Description)
}

func TestClient_GetAccount_OtherNodeError(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	// Same description, different code: only the code is significant.
	node.respond("getAccount", `{"errorCode":4,"errorDescription":"Unknown account"}`)

	_, err := client.GetAccount(context.Background(), 42)
	require.Error(t, err)
	assert.False(t, IsUnknownAccount(err))
	assert.True(t, HasErrorCode(err, ErrorCodeIncorrectParam))
}

func TestClient_HTTPError(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	node.handle("getAccount", func(w http.ResponseWriter, _ url.Values) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	})

	_, err := client.GetAccount(context.Background(), 42)
	require.Error(t, err)

	httpErr, ok := err.(*HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, "maintenance", httpErr.Body)
	assert.False(t, IsUnknownAccount(err))
}

func TestClient_GetUnconfirmedTransactions(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	node.respond("getUnconfirmedTransactions", `{"unconfirmedTransactions":[
		{"transaction":"111","sender":"10","recipient":"20","amountNQT":"0","feeNQT":"735000","type":1,"subtype":0},
		{"transaction":"222","sender":"10","amountNQT":"0","feeNQT":"735000","type":1,"subtype":5}
	]}`)

	txns, err := client.GetUnconfirmedTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, Transaction{ID: "111", Sender: 10, Recipient: 20, Fee: 735000, Type: 1}, txns[0])
	assert.Equal(t, AccountID(0), txns[1].Recipient)
	assert.Equal(t, 5, txns[1].Subtype)

	assert.Equal(t, "10", node.getRequests()[0].Get("account"))
}

func TestClient_GetSuggestedFees(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	node.respond("suggestFee", `{"cheap":735000,"standard":1470000,"priority":2205000,"requestProcessingTime":0}`)

	fees, err := client.GetSuggestedFees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SuggestedFees{Cheap: 735000, Standard: 1470000, Priority: 2205000}, fees)
}

func TestClient_SendMessage(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	seed := sha256.Sum256([]byte("sender"))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)

	recipientKey := make([]byte, 32)
	recipientKey[31] = 1

	unsigned := make([]byte, 176)
	for i := range unsigned {
		if i < signatureOffset || i >= signatureOffset+ed25519.SignatureSize {
			unsigned[i] = byte(i)
		}
	}

	node.handle("sendMessage", func(w http.ResponseWriter, form url.Values) {
		assert.Equal(t, "20", form.Get("recipient"))
		assert.Equal(t, "welcome", form.Get("message"))
		assert.Equal(t, "true", form.Get("messageIsText"))
		assert.Equal(t, "1470000", form.Get("feeNQT"))
		assert.Equal(t, "1440", form.Get("deadline"))
		assert.Equal(t, hex.EncodeToString(pub), form.Get("publicKey"))
		assert.Equal(t, hex.EncodeToString(recipientKey), form.Get("recipientPublicKey"))
		assert.Empty(t, form.Get("secretPhrase"))

		_, _ = w.Write([]byte(`{"unsignedTransactionBytes":"` + hex.EncodeToString(unsigned) + `","broadcasted":false}`))
	})
	node.handle("broadcastTransaction", func(w http.ResponseWriter, form url.Values) {
		signed, err := hex.DecodeString(form.Get("transactionBytes"))
		require.NoError(t, err)
		require.Len(t, signed, len(unsigned))

		sig := signed[signatureOffset : signatureOffset+ed25519.SignatureSize]
		assert.True(t, ed25519.Verify(pub, unsigned, sig))
		assert.Equal(t, unsigned[:signatureOffset], signed[:signatureOffset])
		assert.Equal(t, unsigned[signatureOffset+ed25519.SignatureSize:], signed[signatureOffset+ed25519.SignatureSize:])

		_, _ = w.Write([]byte(`{"transaction":"987","fullHash":"abcd"}`))
	})

	result, err := client.SendMessage(context.Background(), SendMessageArgs{
		Message:            "welcome",
		RecipientID:        20,
		RecipientPublicKey: recipientKey,
		Fee:                1470000,
		SenderPrivateKey:   priv,
		SenderPublicKey:    pub,
	})
	require.NoError(t, err)
	assert.Equal(t, &BroadcastResult{TransactionID: "987", FullHash: "abcd"}, result)
	assert.Len(t, node.getRequests(), 2)
}

func TestClient_SendAmount(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	seed := sha256.Sum256([]byte("sender"))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)

	node.handle("sendMoney", func(w http.ResponseWriter, form url.Values) {
		assert.Equal(t, "20", form.Get("recipient"))
		assert.Equal(t, "50000000", form.Get("amountNQT"))
		assert.Equal(t, "welcome", form.Get("message"))
		assert.Equal(t, "true", form.Get("messageIsText"))

		_, _ = w.Write([]byte(`{"unsignedTransactionBytes":"` + hex.EncodeToString(make([]byte, 176)) + `"}`))
	})
	node.respond("broadcastTransaction", `{"transaction":"988","fullHash":"beef"}`)

	result, err := client.SendAmount(context.Background(), SendAmountArgs{
		Amount:           50000000,
		Attachment:       "welcome",
		RecipientID:      20,
		Fee:              1470000,
		SenderPrivateKey: priv,
		SenderPublicKey:  pub,
	})
	require.NoError(t, err)
	assert.Equal(t, "988", result.TransactionID)
}

func TestClient_SendMessage_BuildFailure(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	seed := sha256.Sum256([]byte("sender"))
	priv := ed25519.NewKeyFromSeed(seed[:])

	node.respond("sendMessage", `{"errorCode":6,"errorDescription":"Not enough funds"}`)

	_, err := client.SendMessage(context.Background(), SendMessageArgs{
		Message:          "welcome",
		RecipientID:      20,
		SenderPrivateKey: priv,
		SenderPublicKey:  priv.Public().(ed25519.PublicKey),
	})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrorCodeNotEnoughFunds))

	// Nothing is broadcast if the node refused to build the transaction.
	for _, req := range node.getRequests() {
		assert.NotEqual(t, "broadcastTransaction", req.Get("requestType"))
	}
}

func TestClient_SendMessage_InvalidKey(t *testing.T) {
	node, client, cleanup := newTestNode(t)
	defer cleanup()

	_, err := client.SendMessage(context.Background(), SendMessageArgs{Message: "welcome"})
	assert.Error(t, err)
	assert.Empty(t, node.getRequests())
}

func TestSignTransaction(t *testing.T) {
	seed := sha256.Sum256([]byte("sender"))
	priv := ed25519.NewKeyFromSeed(seed[:])

	_, err := SignTransaction(make([]byte, signatureOffset), priv)
	assert.Error(t, err)

	unsigned := make([]byte, 200)
	signed, err := SignTransaction(unsigned, priv)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 200), unsigned, "input must not be modified")

	_, err = SignTransaction(signed, priv)
	assert.Error(t, err, "signing twice should fail")
}
