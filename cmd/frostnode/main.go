// Command frostnode runs one party member's HTTP surface (spec.md §6),
// loading its identity from NODE__-prefixed environment variables and a
// shared party-book file, grounded on zexfrost/node's FastAPI app
// (original_source) translated into a go-chi/chi/v5 server.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/frostlog"
	"github.com/threshold-frost/frostd/internal/node/httpapi"
)

func main() {
	settings, err := config.LoadNodeSettings()
	if err != nil {
		log.Fatalf("frostnode: %v", err)
	}

	// Nodes load the same party-book file as the coordinator so DKG
	// handlers can resolve a partner's host/port/public_key/curve_name
	// from the bare party_ids a DKGRound1Request carries (spec.md §9:
	// no hidden singletons — the party book is loaded once at startup
	// and threaded through the server, never read from a global).
	partyFile := os.Getenv("NODE__PARTY_FILE")
	if partyFile == "" {
		log.Fatal("frostnode: NODE__PARTY_FILE is required")
	}
	party, err := config.LoadPartyBook(partyFile)
	if err != nil {
		log.Fatalf("frostnode: %v", err)
	}

	logger := frostlog.New()
	if os.Getenv("FROSTD_DEV") != "" {
		logger = frostlog.NewDevelopment()
	}

	server := httpapi.NewServer(settings, party, logger)

	addr := os.Getenv("NODE__LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Infow("frostnode listening", "addr", addr, "id", settings.ID, "curve", settings.CurveName)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("frostnode: %v", err)
	}
}
