// Package server exposes account activation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kinecosystem/agora-activator/activation"
	"github.com/kinecosystem/agora-activator/address"
	"github.com/kinecosystem/agora-activator/keys"
	"github.com/kinecosystem/agora-activator/ledger"
	"github.com/kinecosystem/agora-activator/metrics"
	"github.com/kinecosystem/agora-activator/network"
)

const (
	// RequestIDHeader carries the id logged with every line of a request.
	RequestIDHeader = "X-Request-Id"

	maxBodySize = 16 << 10

	outcomeInvalid = "invalid"
)

// Activator activates accounts. It is implemented by *activation.Activator.
type Activator interface {
	Activate(ctx context.Context, req activation.Request) (*activation.Result, error)
	Sender() activation.Sender
	Amount(ctx context.Context) (uint64, error)
}

type requestIDKey struct{}

// Server serves the activation API.
type Server struct {
	log       *logrus.Entry
	activator Activator
	network   network.Network

	inFlight      int64
	requestTimer  *metrics.Timer
	outcomeMeter  *metrics.Meter
	inFlightGauge *metrics.Gauge

	accessLog *io.PipeWriter
	handler   http.Handler
}

// New returns a Server activating accounts on n. Request metrics are
// submitted to metricsClient.
func New(activator Activator, n network.Network, metricsClient metrics.Client) (*Server, error) {
	s := &Server{
		log:       logrus.StandardLogger().WithField("type", "server"),
		activator: activator,
		network:   n,
	}

	var err error
	if s.requestTimer, err = metrics.NewTimer(metricsClient, "activation_request"); err != nil {
		return nil, errors.Wrap(err, "failed to create request timer")
	}
	if s.outcomeMeter, err = metrics.NewMeter(metricsClient, "activation_outcome"); err != nil {
		return nil, errors.Wrap(err, "failed to create outcome meter")
	}
	s.inFlightGauge, err = metrics.NewGauge(metricsClient, "activation_in_flight", func() float64 {
		return float64(atomic.LoadInt64(&s.inFlight))
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create in flight gauge")
	}

	r := mux.NewRouter()
	r.Use(withRequestID)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/activate", s.activateJSON).Methods(http.MethodPost)
	api.HandleFunc("/activate/{account}/{publicKey}", s.activatePath).Methods(http.MethodPut)
	api.HandleFunc("/status", s.status).Methods(http.MethodGet)

	s.accessLog = logrus.StandardLogger().WithField("type", "server/access").WriterLevel(logrus.InfoLevel)

	var h http.Handler = r
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(s.log), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(s.accessLog, h)
	s.handler = otelhttp.NewHandler(h, "activator")

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops metric polling and the access log writer.
func (s *Server) Close() {
	s.inFlightGauge.Stop()
	s.accessLog.Close()
}

func (s *Server) activateJSON(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		s.logger(r).WithError(err).Debug("malformed request body")
		s.writeJSON(w, s.logger(r), http.StatusBadRequest, ErrorResponse{Error: "malformed request body", Outcome: outcomeInvalid})
		s.outcomeMeter.Incr(metrics.WithOutcomeTag(outcomeInvalid))
		return
	}

	s.activate(w, r, req)
}

func (s *Server) activatePath(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.activate(w, r, ActivateRequest{
		Account:   vars["account"],
		PublicKey: vars["publicKey"],
	})
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request, req ActivateRequest) {
	start := time.Now()
	atomic.AddInt64(&s.inFlight, 1)
	defer atomic.AddInt64(&s.inFlight, -1)

	log := s.logger(r).WithFields(logrus.Fields{
		"account":    req.Account,
		"public_key": req.PublicKey,
	})

	status, body, outcome := s.doActivate(r.Context(), log, req)

	s.requestTimer.Since(start, metrics.WithStatusTag(status))
	s.outcomeMeter.Incr(metrics.WithOutcomeTag(outcome))
	s.writeJSON(w, log, status, body)
}

func (s *Server) doActivate(ctx context.Context, log *logrus.Entry, req ActivateRequest) (int, interface{}, string) {
	req.Account = strings.TrimSpace(req.Account)
	if req.Account == "" {
		return http.StatusBadRequest, ErrorResponse{Error: "missing account", Outcome: outcomeInvalid}, outcomeInvalid
	}

	pub, err := keys.ParsePublicKey(req.PublicKey)
	if err != nil {
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Outcome: outcomeInvalid}, outcomeInvalid
	}

	result, err := s.activator.Activate(ctx, activation.Request{
		Account:   req.Account,
		PublicKey: pub,
	})
	if err != nil {
		status := statusForError(err)
		outcome := activation.Outcome(err)

		entry := log.WithError(err).WithFields(logrus.Fields{"status": status, "outcome": outcome})
		if status >= http.StatusInternalServerError {
			entry.Warn("activation failed")
		} else {
			entry.Info("activation rejected")
		}

		return status, ErrorResponse{Error: errorMessage(err, status), Outcome: outcome}, outcome
	}

	return http.StatusOK, ActivateResponse{
		Transaction: result.TransactionID,
		FullHash:    result.FullHash,
		Recipient:   address.Encode(result.Recipient, s.network.AddressPrefix()),
		Amount:      ledger.FromPlanck(result.Amount),
	}, activation.Outcome(nil)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r)

	amount, err := s.activator.Amount(r.Context())
	if err != nil {
		log.WithError(err).Warn("failed to load activation amount")
		s.writeJSON(w, log, http.StatusInternalServerError, ErrorResponse{Error: "invalid activation amount"})
		return
	}

	sender := s.activator.Sender()
	s.writeJSON(w, log, http.StatusOK, StatusResponse{
		Network:   string(s.network),
		Sender:    address.Encode(sender.AccountID, s.network.AddressPrefix()),
		AccountID: sender.AccountID.String(),
		PublicKey: keys.Credentials{PublicKey: sender.PublicKey}.String(),
		Amount:    ledger.FromPlanck(amount),
	})
}

func (s *Server) logger(r *http.Request) *logrus.Entry {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return s.log.WithField("request_id", id)
}

func (s *Server) writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, activation.ErrPairingMismatch),
		errors.Is(err, address.ErrInvalidAddress),
		errors.Is(err, keys.ErrInvalidPublicKey):
		return http.StatusBadRequest
	case errors.Is(err, activation.ErrAlreadyActive),
		errors.Is(err, activation.ErrActivationPending):
		return http.StatusConflict
	case errors.Is(err, activation.ErrInvalidAmount):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// isTimeout reports whether err is a transport timeout, such as the node
// client's http.Client.Timeout expiring.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// errorMessage hides node and transport details from callers.
func errorMessage(err error, status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusConflict:
		return errors.Cause(err).Error()
	case http.StatusGatewayTimeout:
		return "ledger node timed out"
	case http.StatusInternalServerError:
		return "activator misconfigured"
	default:
		return "ledger node request failed"
	}
}
