// Package httpapi is the node role's HTTP transport (C9 in SPEC_FULL.md
// §4), wiring spec.md §6's five-route wire contract onto internal/dkg and
// internal/signing over a go-chi/chi/v5 router, grounded on
// drand-drand/http/server.go's chi-mux-plus-handler-methods shape.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/dkg"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/frostlog"
	"github.com/threshold-frost/frostd/internal/signing"
)

// SignRoute is the node-side path the coordinator's caller-supplied route
// points at by default (spec.md §9 Open Question (b); SPEC_FULL.md §3).
const SignRoute = "/sign"

// Server holds a node process's shared state: its identity, the party
// book used to resolve partner records during DKG, and the three stores
// spec.md §3 names (DKG sessions, key packages, nonces).
type Server struct {
	Settings  *config.NodeSettings
	Party     *config.PartyBook
	DKGRepo   dkg.Repository
	KeyRepo   dkg.KeyRepository
	NonceRepo signing.NonceRepository
	Log       frostlog.Logger
}

// NewServer constructs a Server with fresh in-memory stores.
func NewServer(settings *config.NodeSettings, party *config.PartyBook, log frostlog.Logger) *Server {
	return &Server{
		Settings:  settings,
		Party:     party,
		DKGRepo:   dkg.NewRepository(),
		KeyRepo:   dkg.NewKeyRepository(),
		NonceRepo: signing.NewNonceRepository(),
		Log:       log,
	}
}

// Router builds the five-route HTTP surface spec.md §6 names.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/dkg/round1", s.handleDKGRound1)
	r.Post("/dkg/round2", s.handleDKGRound2)
	r.Post("/dkg/round3", s.handleDKGRound3)
	r.Post("/sign/commitment", s.handleCommitment)
	r.Post(SignRoute, s.handleSign)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log frostlog.Logger, err error) {
	status := statusFor(err)
	log.Warnw("request failed", "err", err.Error(), "status", status)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the node-side error taxonomy of spec.md §7 onto HTTP
// status codes the coordinator's transport adapter (internal/transport)
// classifies back into its EMA weight-update rules (spec.md §4.8).
func statusFor(err error) int {
	switch err.(type) {
	case *frosterr.NotFoundError:
		return http.StatusNotFound
	case *frosterr.PhaseOrderError:
		return http.StatusConflict
	case *frosterr.SignatureValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
