package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/currency"
	"github.com/cardvault/ledger/internal/domain"
	"github.com/cardvault/ledger/internal/valuation"
)

// Handler provides the valuation endpoints.
type Handler struct {
	calculator *valuation.Calculator
	rates      *currency.Service
}

// NewHandler creates a new valuation handler.
func NewHandler(calculator *valuation.Calculator, rates *currency.Service) *Handler {
	return &Handler{calculator: calculator, rates: rates}
}

type gradingRequest struct {
	Company     string  `json:"company"`
	Grade       string  `json:"grade"`
	GradedPrice float64 `json:"gradedPrice"`
}

type tcgQuoteRequest struct {
	Market float64 `json:"market"`
	Mid    float64 `json:"mid"`
}

type cmQuoteRequest struct {
	Lowest   float64 `json:"lowest"`
	Avg7     float64 `json:"avg7"`
	Avg30    float64 `json:"avg30"`
	LowestNM float64 `json:"lowestNm"`
}

type quotesRequest struct {
	Tcg      *tcgQuoteRequest `json:"tcg"`
	Cm       *cmQuoteRequest  `json:"cm"`
	Fallback *float64         `json:"fallback"`
}

type valuationItemRequest struct {
	CardID    string          `json:"cardId"`
	Name      string          `json:"name"`
	Set       string          `json:"set"`
	Number    string          `json:"number"`
	Condition string          `json:"condition"`
	Quantity  int             `json:"quantity"`
	IsGraded  bool            `json:"isGraded"`
	Grading   *gradingRequest `json:"grading"`
	Prices    *quotesRequest  `json:"prices"`
	Override  *float64        `json:"override"`

	// Percent overrides the request-level default for this item only.
	Percent  *int  `json:"percent"`
	Selected *bool `json:"selected"`
}

type valuationRequest struct {
	Percent  int                    `json:"percent"`
	Currency string                 `json:"currency"`
	Source   string                 `json:"source"`
	Items    []valuationItemRequest `json:"items"`
}

type valuationResponse struct {
	Items          []domain.ItemValuation `json:"items"`
	Totals         domain.BasketTotals    `json:"totals"`
	SelectedTotals domain.BasketTotals    `json:"selectedTotals"`
}

// ValueBasket handles POST /api/v1/owners/{owner}/valuations.
func (h *Handler) ValueBasket(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}

	source := domain.MarketSource(req.Source)
	switch source {
	case domain.SourceAny, domain.SourceTcg, domain.SourceCm:
	default:
		writeError(w, http.StatusBadRequest, "unknown price source "+req.Source)
		return
	}

	targetCurrency := req.Currency
	if targetCurrency == "" {
		targetCurrency = currency.Ref
	}

	percent := valuation.DefaultPercent
	if req.Percent != 0 {
		percent = req.Percent
	}

	basket := valuation.NewBasket(percent)
	for i, item := range req.Items {
		instance, err := item.toInstance()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		basket.Add(instance)
		if item.Percent != nil {
			_ = basket.SetItemPercent(i, *item.Percent)
		}
		if item.Selected != nil {
			_ = basket.SetSelected(i, *item.Selected)
		}
	}

	table, err := h.rates.CurrentTable(r.Context())
	if err != nil {
		slog.Error("failed to load rate table", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pctx := domain.PricingContext{
		Percent:  percent,
		Currency: targetCurrency,
		Source:   source,
	}

	items, totals, selectedTotals, err := h.calculator.Value(r.Context(), table, pctx, basket)
	if err != nil {
		slog.Error("failed to value basket", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, valuationResponse{
		Items:          items,
		Totals:         totals,
		SelectedTotals: selectedTotals,
	})
}

func (item valuationItemRequest) toInstance() (domain.CardInstance, error) {
	condition := domain.Condition(item.Condition)
	if item.Condition != "" && !condition.Valid() {
		return domain.CardInstance{}, &badValueError{field: "condition", value: item.Condition}
	}

	instance := domain.CardInstance{
		CardID:    item.CardID,
		Name:      item.Name,
		Set:       item.Set,
		Number:    item.Number,
		Condition: condition,
		Quantity:  item.Quantity,
		IsGraded:  item.IsGraded,
	}

	if item.Grading != nil {
		price, err := domain.MoneyFromFloat(item.Grading.GradedPrice)
		if err != nil {
			return domain.CardInstance{}, err
		}
		instance.Grading = &domain.Grading{
			Company:     item.Grading.Company,
			Grade:       item.Grading.Grade,
			GradedPrice: price,
		}
	}

	if item.Override != nil {
		override, err := domain.MoneyFromFloat(*item.Override)
		if err != nil {
			return domain.CardInstance{}, err
		}
		instance.Override = &override
	}

	if item.Prices != nil {
		quotes, err := item.Prices.toQuotes()
		if err != nil {
			return domain.CardInstance{}, err
		}
		instance.Prices = quotes
	}

	return instance, nil
}

func (q quotesRequest) toQuotes() (domain.SourceQuotes, error) {
	var quotes domain.SourceQuotes

	if q.Tcg != nil {
		market, err := domain.MoneyFromFloat(q.Tcg.Market)
		if err != nil {
			return domain.SourceQuotes{}, err
		}
		mid, err := domain.MoneyFromFloat(q.Tcg.Mid)
		if err != nil {
			return domain.SourceQuotes{}, err
		}
		quotes.Tcg = &domain.TcgQuote{Market: market, Mid: mid}
	}

	if q.Cm != nil {
		fields := [4]float64{q.Cm.Lowest, q.Cm.Avg7, q.Cm.Avg30, q.Cm.LowestNM}
		var parsed [4]decimal.Decimal
		for i, f := range fields {
			d, err := domain.MoneyFromFloat(f)
			if err != nil {
				return domain.SourceQuotes{}, err
			}
			parsed[i] = d
		}
		quotes.Cm = &domain.CmQuote{Lowest: parsed[0], Avg7: parsed[1], Avg30: parsed[2], LowestNM: parsed[3]}
	}

	if q.Fallback != nil {
		price, err := domain.MoneyFromFloat(*q.Fallback)
		if err != nil {
			return domain.SourceQuotes{}, err
		}
		quotes.Fallback = &domain.FallbackQuote{Price: price}
	}

	return quotes, nil
}

type badValueError struct {
	field string
	value string
}

func (e *badValueError) Error() string {
	return "invalid " + e.field + " " + e.value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
