package pins

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
)

const (
	// DefaultBoardName is used when no board name is configured.
	DefaultBoardName = "Pet Products That Help Animals"
	// DefaultCategory labels pins created without a category.
	DefaultCategory = "pets"
	// BulkWindow bounds how far ahead bulk pins are scheduled.
	BulkWindow = 7 * 24 * time.Hour
)

// DefaultCommission is assumed when a request carries no commission.
var DefaultCommission = decimal.RequireFromString("2.00")

// RequiredFields lists the fields a single pin request must carry. Error
// responses always report the full list.
var RequiredFields = []string{"productTitle", "productImage", "productUrl"}

// MissingFieldsError reports required request fields that were empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return domain.ErrInvalidInput }

// ProductID accepts a JSON string or number.
type ProductID string

func (p *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*p = ProductID(n.String())
	return nil
}

// CreateInput is a single pin request.
type CreateInput struct {
	ProductID    ProductID        `json:"productId"`
	ProductTitle string           `json:"productTitle"`
	ProductImage string           `json:"productImage"`
	ProductURL   string           `json:"productUrl"`
	Commission   *decimal.Decimal `json:"commission"`
	Category     string           `json:"category"`
}

// Estimates are the illustrative reach figures returned with a new pin.
type Estimates struct {
	ExpectedReach int `json:"expectedReach"`
	Impressions   int `json:"estimatedImpressions"`
	Clicks        int `json:"estimatedClicks"`
	Saves         int `json:"estimatedSaves"`
}

// Created is a queued pin plus its estimates.
type Created struct {
	Pin       domain.ScheduledPin
	Meals     int64
	Estimates Estimates
}

// BulkProduct is one entry of a bulk scheduling request.
type BulkProduct struct {
	ID         ProductID        `json:"id"`
	Title      string           `json:"title"`
	Image      string           `json:"image"`
	URL        string           `json:"url"`
	Commission *decimal.Decimal `json:"commission"`
	Category   string           `json:"category"`
}

// Service composes captions and queues pins for the publishing worker.
type Service struct {
	queue     domain.PinQueue
	captions  *Captioner
	boardName string
	logger    zerolog.Logger
	now       func() time.Time
}

// Options configures a Service.
type Options struct {
	BoardName string
	Captioner *Captioner
	Logger    zerolog.Logger
	Now       func() time.Time
}

// NewService returns a pin service writing to queue.
func NewService(queue domain.PinQueue, opts Options) *Service {
	if opts.Captioner == nil {
		opts.Captioner = NewCaptioner(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	board := strings.TrimSpace(opts.BoardName)
	if board == "" {
		board = DefaultBoardName
	}
	return &Service{
		queue:     queue,
		captions:  opts.Captioner,
		boardName: board,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// MealsFor converts a commission into meals, applying the default commission
// when none (or zero) is given.
func MealsFor(commission *decimal.Decimal) (int64, error) {
	amount := DefaultCommission
	if commission != nil && !commission.IsZero() {
		if commission.IsNegative() {
			return 0, fmt.Errorf("%w: commission cannot be negative", domain.ErrInvalidInput)
		}
		amount = *commission
	}
	return impact.Meals(amount), nil
}

// Create validates in, builds the full caption and queues the pin for
// immediate publishing.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Created, error) {
	var missing []string
	if strings.TrimSpace(in.ProductTitle) == "" {
		missing = append(missing, "productTitle")
	}
	if strings.TrimSpace(in.ProductImage) == "" {
		missing = append(missing, "productImage")
	}
	if strings.TrimSpace(in.ProductURL) == "" {
		missing = append(missing, "productUrl")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	meals, err := MealsFor(in.Commission)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.ProductTitle)
	caption := FullCaption(s.captions.Caption(title, meals), s.captions.Hashtags())
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	now := s.now().UTC()
	pin := domain.ScheduledPin{
		ID:           uuid.NewString(),
		ProductID:    string(in.ProductID),
		ProductTitle: title,
		Caption:      caption,
		Image:        strings.TrimSpace(in.ProductImage),
		Link:         strings.TrimSpace(in.ProductURL),
		Category:     category,
		BoardName:    s.boardName,
		ScheduledFor: now,
		Status:       domain.PinQueued,
		CreatedAt:    now,
	}
	if err := s.queue.EnqueuePins(ctx, []domain.ScheduledPin{pin}); err != nil {
		return nil, fmt.Errorf("queue pin: %w", err)
	}

	s.logger.Info().
		Str("pin_id", pin.ID).
		Str("product", title).
		Int64("meals", meals).
		Msg("pin queued")

	return &Created{
		Pin:   pin,
		Meals: meals,
		Estimates: Estimates{
			ExpectedReach: s.captions.Between(1000, 6000),
			Impressions:   s.captions.Between(2000, 12000),
			Clicks:        s.captions.Between(50, 550),
			Saves:         s.captions.Between(20, 220),
		},
	}, nil
}

// BulkSchedule queues one pin per product at a random time within the next
// seven days. Bulk captions carry no hashtags.
func (s *Service) BulkSchedule(ctx context.Context, products []BulkProduct) ([]domain.ScheduledPin, error) {
	if products == nil {
		return nil, fmt.Errorf("%w: products array is required", domain.ErrInvalidInput)
	}
	now := s.now().UTC()
	pins := make([]domain.ScheduledPin, 0, len(products))
	for i, p := range products {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: products[%d].title is required", domain.ErrInvalidInput, i)
		}
		meals, err := MealsFor(p.Commission)
		if err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}
		category := strings.TrimSpace(p.Category)
		if category == "" {
			category = DefaultCategory
		}
		offset := time.Duration(s.captions.Int64N(int64(BulkWindow)))
		pins = append(pins, domain.ScheduledPin{
			ID:           uuid.NewString(),
			ProductID:    string(p.ID),
			ProductTitle: title,
			Caption:      s.captions.Caption(title, meals),
			Image:        strings.TrimSpace(p.Image),
			Link:         strings.TrimSpace(p.URL),
			Category:     category,
			BoardName:    s.boardName,
			ScheduledFor: now.Add(offset).Truncate(time.Millisecond),
			Status:       domain.PinQueued,
			CreatedAt:    now,
		})
	}
	if err := s.queue.EnqueuePins(ctx, pins); err != nil {
		return nil, fmt.Errorf("queue pins: %w", err)
	}
	s.logger.Info().Int("count", len(pins)).Msg("bulk pins scheduled")
	return pins, nil
}

// Get returns a pin by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.ScheduledPin, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: pin id is required", domain.ErrInvalidInput)
	}
	return s.queue.GetPin(ctx, id)
}

// List returns pins matching filter.
func (s *Service) List(ctx context.Context, filter domain.PinFilter) ([]domain.ScheduledPin, error) {
	switch filter.Status {
	case "", domain.PinQueued, domain.PinPublishing, domain.PinPublished, domain.PinFailed:
	default:
		return nil, fmt.Errorf("%w: unknown pin status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.queue.ListPins(ctx, filter)
}

// IsMissingFields extracts the missing field list from err.
func IsMissingFields(err error) ([]string, bool) {
	var mf *MissingFieldsError
	if errors.As(err, &mf) {
		return mf.Fields, true
	}
	return nil, false
}
