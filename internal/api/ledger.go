package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
	"github.com/cardvault/ledger/internal/ledger"
)

// LedgerHandler provides the transaction ledger endpoints.
type LedgerHandler struct {
	entries *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(entries *ledger.Service) *LedgerHandler {
	return &LedgerHandler{entries: entries}
}

type lineItemRequest struct {
	Name           string  `json:"name"`
	Set            string  `json:"set"`
	Number         string  `json:"number"`
	Condition      string  `json:"condition"`
	IsGraded       bool    `json:"isGraded"`
	GradingCompany string  `json:"gradingCompany"`
	Grade          string  `json:"grade"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	MarketValue    float64 `json:"marketValue"`
}

type recordEntryRequest struct {
	Type          string            `json:"type"`
	ItemsIn       []lineItemRequest `json:"itemsIn"`
	ItemsOut      []lineItemRequest `json:"itemsOut"`
	CashAmount    *float64          `json:"cashAmount"`
	CashDirection string            `json:"cashDirection"`
	Currency      string            `json:"currency"`
	InputCurrency string            `json:"inputCurrency"`
}

// RecordEntry handles POST /api/v1/owners/{owner}/ledger.
func (h *LedgerHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("owner")

	var req recordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := req.toEntry(ownerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.entries.Record(r.Context(), ownerID, entry)
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		slog.Error("failed to record ledger entry", "owner", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListEntries handles GET /api/v1/owners/{owner}/ledger.
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("owner")

	entries, err := h.entries.List(r.Context(), ownerID)
	if err != nil {
		slog.Error("failed to list ledger entries", "owner", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetEntry handles GET /api/v1/owners/{owner}/ledger/{id}.
func (h *LedgerHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("owner")
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.Get(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ledger entry not found")
			return
		}
		slog.Error("failed to get ledger entry", "owner", ownerID, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/v1/owners/{owner}/ledger/{id}. Deletion is
// permanent; the entry's contribution to the stats disappears with it.
func (h *LedgerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("owner")
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ledger entry not found")
			return
		}
		slog.Error("failed to delete ledger entry", "owner", ownerID, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type editPricesRequest struct {
	UnitPrices map[int]float64 `json:"unitPrices"`
}

// EditItemPrices handles PATCH /api/v1/owners/{owner}/ledger/{id}/prices.
func (h *LedgerHandler) EditItemPrices(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("owner")
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req editPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.UnitPrices) == 0 {
		writeError(w, http.StatusBadRequest, "unitPrices must not be empty")
		return
	}

	prices := make(map[int]decimal.Decimal, len(req.UnitPrices))
	for idx, f := range req.UnitPrices {
		price, err := domain.MoneyFromFloat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		prices[idx] = price
	}

	if err := h.entries.EditItemPrices(r.Context(), ownerID, id, prices); err != nil {
		var verr *ledger.ValidationError
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			writeError(w, http.StatusNotFound, "ledger entry not found")
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Reason)
		default:
			slog.Error("failed to edit item prices", "owner", ownerID, "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /api/v1/owners/{owner}/stats — the aggregated view
// over the owner's full ledger.
func (h *LedgerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("owner")

	entries, err := h.entries.List(r.Context(), ownerID)
	if err != nil {
		slog.Error("failed to list ledger entries", "owner", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ledger.Stats(entries))
}

func (req recordEntryRequest) toEntry(ownerID string) (domain.LedgerEntry, error) {
	itemsIn, err := toLineItems(req.ItemsIn)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	itemsOut, err := toLineItems(req.ItemsOut)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	entryCurrency := req.Currency
	if entryCurrency == "" {
		entryCurrency = "USD"
	}

	switch domain.TransactionType(req.Type) {
	case domain.TransactionBuy:
		return ledger.NewBuy(ownerID, itemsIn, entryCurrency, req.InputCurrency), nil
	case domain.TransactionTrade:
		var cash *decimal.Decimal
		if req.CashAmount != nil {
			amount, err := domain.MoneyFromFloat(*req.CashAmount)
			if err != nil {
				return domain.LedgerEntry{}, err
			}
			cash = &amount
		}
		direction := domain.CashDirection(req.CashDirection)
		return ledger.NewTrade(ownerID, itemsIn, itemsOut, cash, direction, entryCurrency, req.InputCurrency), nil
	case domain.TransactionSale:
		return ledger.NewSale(ownerID, itemsOut, entryCurrency, req.InputCurrency), nil
	default:
		return domain.LedgerEntry{}, &badValueError{field: "transaction type", value: req.Type}
	}
}

func toLineItems(items []lineItemRequest) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		condition := domain.Condition(it.Condition)
		if it.Condition != "" && !condition.Valid() {
			return nil, &badValueError{field: "condition", value: it.Condition}
		}
		unitPrice, err := domain.MoneyFromFloat(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		marketValue, err := domain.MoneyFromFloat(it.MarketValue)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.LineItem{
			Name:           it.Name,
			Set:            it.Set,
			Number:         it.Number,
			Condition:      condition,
			IsGraded:       it.IsGraded,
			GradingCompany: it.GradingCompany,
			Grade:          it.Grade,
			Quantity:       it.Quantity,
			UnitPrice:      unitPrice,
			MarketValue:    marketValue,
		})
	}
	return out, nil
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return 0, false
	}
	return id, true
}
