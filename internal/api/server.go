package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/cardvault/ledger/internal/currency"
	"github.com/cardvault/ledger/internal/ledger"
	"github.com/cardvault/ledger/internal/snapshot"
	"github.com/cardvault/ledger/internal/valuation"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, calculator *valuation.Calculator, rates *currency.Service, entries *ledger.Service, snapshots *snapshot.Service, adminAPIKey string) *http.Server {
	handler := NewHandler(calculator, rates)
	ledgerHandler := NewLedgerHandler(entries)
	snapshotHandler := NewSnapshotHandler(snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/owners/{owner}/valuations", handler.ValueBasket)

	mux.HandleFunc("POST /api/v1/owners/{owner}/ledger", ledgerHandler.RecordEntry)
	mux.HandleFunc("GET /api/v1/owners/{owner}/ledger", ledgerHandler.ListEntries)
	mux.HandleFunc("GET /api/v1/owners/{owner}/ledger/{id}", ledgerHandler.GetEntry)
	mux.HandleFunc("DELETE /api/v1/owners/{owner}/ledger/{id}", ledgerHandler.DeleteEntry)
	mux.HandleFunc("PATCH /api/v1/owners/{owner}/ledger/{id}/prices", ledgerHandler.EditItemPrices)
	mux.HandleFunc("GET /api/v1/owners/{owner}/stats", ledgerHandler.GetStats)

	mux.HandleFunc("GET /api/v1/owners/{owner}/snapshots/latest", snapshotHandler.GetLatestSnapshot)
	mux.HandleFunc("GET /api/v1/owners/{owner}/snapshots/{date}", snapshotHandler.GetSnapshotByDate)
	mux.HandleFunc("GET /api/v1/owners/{owner}/snapshots", snapshotHandler.ListSnapshots)

	generateHandler := http.HandlerFunc(snapshotHandler.GenerateSnapshot)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/owners/{owner}/snapshots/generate", requireAuth(adminAPIKey, generateHandler))
	} else {
		mux.Handle("POST /api/v1/owners/{owner}/snapshots/generate", generateHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
