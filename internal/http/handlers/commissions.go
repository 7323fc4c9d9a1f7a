package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
)

type commissionRequest struct {
	OrderID     string           `json:"orderId"`
	Amount      *decimal.Decimal `json:"amount"`
	ProductASIN string           `json:"productASIN"`
	Date        string           `json:"date"`
}

func (a *App) CommissionsTrack(w http.ResponseWriter, r *http.Request) {
	var req commissionRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.OrderID == "" || req.Amount == nil || req.Amount.IsZero() {
		a.error(w, http.StatusBadRequest, "bad_request", "Order ID and amount are required")
		return
	}
	c, err := a.Ledger.TrackCommission(r.Context(), impact.CommissionInput{
		OrderID:     req.OrderID,
		Amount:      *req.Amount,
		ProductASIN: req.ProductASIN,
		Date:        req.Date,
	})
	if err != nil {
		a.fail(w, r, err, "failed to track commission")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Commission tracked successfully",
		"commission": c,
		"nextAction": "Will be used for next pet food purchase",
	})
}

func (a *App) CommissionsList(w http.ResponseWriter, r *http.Request) {
	filter := domain.CommissionFilter{Status: domain.CommissionStatus(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	list, pending, err := a.Ledger.Commissions(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err, "failed to load commissions")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":        list,
		"count":        len(list),
		"pendingTotal": pending,
	})
}
