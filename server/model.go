package server

// ActivateRequest contains the body of an activation request.
type ActivateRequest struct {
	// Account is the recipient, as an address (S-XXXX-XXXX-XXXX-XXXXX) or a
	// numeric account id.
	Account string `json:"account"`

	// PublicKey is the recipient's public key, hex (preferred) or base58
	// encoded.
	PublicKey string `json:"public_key"`
}

// ActivateResponse represents a 200 OK response to an activation request.
type ActivateResponse struct {
	Transaction string `json:"transaction"`
	FullHash    string `json:"full_hash"`
	Recipient   string `json:"recipient"`

	// Amount is the value sent in coins, "0.00000000" for a plain message.
	Amount string `json:"amount"`
}

// StatusResponse describes the account activations are sent from.
type StatusResponse struct {
	Network   string `json:"network"`
	Sender    string `json:"sender"`
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
	Amount    string `json:"amount"`
}

// ErrorResponse is returned with every non 200 status.
type ErrorResponse struct {
	Error string `json:"error"`

	// Outcome is set for activation failures, e.g. "already_active".
	Outcome string `json:"outcome,omitempty"`
}
