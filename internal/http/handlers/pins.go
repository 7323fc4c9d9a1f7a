package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pawshearts/internal/domain"
	"pawshearts/internal/pins"
)

type pinData struct {
	Status        string           `json:"status"`
	PinID         string           `json:"pinId"`
	QueueStatus   domain.PinStatus `json:"queueStatus"`
	BoardName     string           `json:"boardName"`
	PinURL        string           `json:"pinUrl"`
	Caption       string           `json:"caption"`
	Image         string           `json:"image"`
	Link          string           `json:"link"`
	CreatedAt     time.Time        `json:"createdAt"`
	ScheduledFor  time.Time        `json:"scheduledFor"`
	ExpectedReach int              `json:"expectedReach"`
	Category      string           `json:"category"`
	Meals         int64            `json:"meals"`
}

type pinAnalytics struct {
	EstimatedImpressions int `json:"estimatedImpressions"`
	EstimatedClicks      int `json:"estimatedClicks"`
	EstimatedSaves       int `json:"estimatedSaves"`
}

func (a *App) PinsCreate(w http.ResponseWriter, r *http.Request) {
	var in pins.CreateInput
	if !a.decode(w, r, &in) {
		return
	}
	created, err := a.Pins.Create(r.Context(), in)
	if err != nil {
		a.fail(w, r, err, "Failed to create Pinterest pin")
		return
	}
	p := created.Pin
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Pin scheduled successfully",
		"data": pinData{
			Status:        "success",
			PinID:         p.ID,
			QueueStatus:   p.Status,
			BoardName:     p.BoardName,
			PinURL:        p.PinURL,
			Caption:       p.Caption,
			Image:         p.Image,
			Link:          p.Link,
			CreatedAt:     p.CreatedAt,
			ScheduledFor:  p.ScheduledFor,
			ExpectedReach: created.Estimates.ExpectedReach,
			Category:      p.Category,
			Meals:         created.Meals,
		},
		"analytics": pinAnalytics{
			EstimatedImpressions: created.Estimates.Impressions,
			EstimatedClicks:      created.Estimates.Clicks,
			EstimatedSaves:       created.Estimates.Saves,
		},
	})
}

type bulkRequest struct {
	Products json.RawMessage `json:"products"`
}

type bulkPin struct {
	ProductID    string    `json:"productId"`
	PinID        string    `json:"pinId"`
	PinURL       string    `json:"pinUrl"`
	ScheduledFor time.Time `json:"scheduledFor"`
	Caption      string    `json:"caption"`
}

func (a *App) PinsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !a.decode(w, r, &req) {
		return
	}
	var products []pins.BulkProduct
	if len(req.Products) == 0 || string(req.Products) == "null" || json.Unmarshal(req.Products, &products) != nil || products == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Products array is required")
		return
	}
	scheduled, err := a.Pins.BulkSchedule(r.Context(), products)
	if err != nil {
		a.fail(w, r, err, "Failed to schedule pins")
		return
	}
	out := make([]bulkPin, 0, len(scheduled))
	for _, p := range scheduled {
		out = append(out, bulkPin{
			ProductID:    p.ProductID,
			PinID:        p.ID,
			PinURL:       p.PinURL,
			ScheduledFor: p.ScheduledFor,
			Caption:      p.Caption,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%d pins scheduled", len(out)),
		"pins":    out,
	})
}

func (a *App) PinsList(w http.ResponseWriter, r *http.Request) {
	filter := domain.PinFilter{Status: domain.PinStatus(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	list, err := a.Pins.List(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err, "failed to load pins")
		return
	}
	if list == nil {
		list = []domain.ScheduledPin{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func (a *App) PinsGet(w http.ResponseWriter, r *http.Request) {
	pin, err := a.Pins.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, "failed to load pin")
		return
	}
	a.json(w, http.StatusOK, pin)
}
