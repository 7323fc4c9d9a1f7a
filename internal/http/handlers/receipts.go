package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
	"pawshearts/pkg/zip"
)

type receiptRequest struct {
	Amount       *decimal.Decimal `json:"amount"`
	Items        string           `json:"items"`
	Supplier     string           `json:"supplier"`
	Meals        *int64           `json:"meals"`
	ReceiptImage string           `json:"receiptImage"`
}

type receiptResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Receipt domain.Receipt `json:"receipt"`
}

func (a *App) ReceiptsGet(w http.ResponseWriter, r *http.Request) {
	l, err := a.Ledger.Ledger(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load impact data")
		return
	}
	a.json(w, http.StatusOK, l)
}

func (a *App) ReceiptsAdd(w http.ResponseWriter, r *http.Request) {
	a.addReceipt(w, r, http.StatusCreated)
}

func (a *App) addReceipt(w http.ResponseWriter, r *http.Request, status int) {
	var req receiptRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Amount == nil || req.Amount.IsZero() || req.Items == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Amount and items are required")
		return
	}
	receipt, _, err := a.Ledger.AddReceipt(r.Context(), impact.ReceiptInput{
		Amount:       *req.Amount,
		Items:        req.Items,
		Supplier:     req.Supplier,
		Meals:        req.Meals,
		ReceiptImage: req.ReceiptImage,
	})
	if err != nil {
		a.fail(w, r, err, "failed to add receipt")
		return
	}
	a.json(w, status, receiptResponse{Success: true, Message: "Receipt added successfully", Receipt: receipt})
}

func (a *App) ReceiptsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Ledger.Stats(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to compute statistics")
		return
	}
	a.json(w, http.StatusOK, stats)
}

type goalRequest struct {
	Goal *decimal.Decimal `json:"goal"`
}

func (a *App) ReceiptsSetGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Goal == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "goal is required")
		return
	}
	l, err := a.Ledger.SetGoal(r.Context(), *req.Goal)
	if err != nil {
		a.fail(w, r, err, "failed to update goal")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "monthlyGoal": l.MonthlyGoal})
}

// ReceiptsExport streams every receipt as JSON and CSV inside a zip archive.
func (a *App) ReceiptsExport(w http.ResponseWriter, r *http.Request) {
	l, err := a.Ledger.Ledger(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load impact data")
		return
	}
	now := a.now().UTC()
	jsonData, err := json.MarshalIndent(l.Receipts, "", "  ")
	if err != nil {
		a.fail(w, r, err, "failed to export receipts")
		return
	}
	csvData, err := receiptsCSV(l.Receipts)
	if err != nil {
		a.fail(w, r, err, "failed to export receipts")
		return
	}
	archive, err := zip.Archive([]zip.File{
		{Name: "receipts.json", Data: jsonData, Modified: now},
		{Name: "receipts.csv", Data: csvData, Modified: now},
	})
	if err != nil {
		a.fail(w, r, err, "failed to export receipts")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipts-%s.zip", now.Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func receiptsCSV(receipts []domain.Receipt) ([]byte, error) {
	buf := &bytes.Buffer{}
	cw := csv.NewWriter(buf)
	_ = cw.Write([]string{"id", "date", "amount", "items", "supplier", "meals", "receipt_image", "verified"})
	for _, rc := range receipts {
		image := ""
		if rc.ReceiptImage != nil {
			image = *rc.ReceiptImage
		}
		_ = cw.Write([]string{
			rc.ID,
			rc.Date.UTC().Format(time.RFC3339),
			rc.Amount.StringFixed(2),
			rc.Items,
			rc.Supplier,
			strconv.FormatInt(rc.Meals, 10),
			image,
			strconv.FormatBool(rc.Verified),
		})
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

// ReceiptTracker serves the action-dispatched legacy endpoint.
func (a *App) ReceiptTracker(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		action = "get"
	}
	switch {
	case action == "get":
		a.ReceiptsGet(w, r)
	case action == "add" && r.Method == http.MethodPost:
		a.admin(func(w http.ResponseWriter, r *http.Request) {
			a.addReceipt(w, r, http.StatusOK)
		}).ServeHTTP(w, r)
	case action == "stats":
		a.ReceiptsStats(w, r)
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid action")
	}
}
