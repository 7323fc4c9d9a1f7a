package impact

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
)

// Store is the persistence the ledger service needs.
type Store interface {
	domain.LedgerStore
	domain.CommissionStore
}

// Service records receipts and commissions against a store. Every time it
// reads is taken in the configured location so month boundaries follow the
// charity's calendar.
type Service struct {
	store  Store
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Location *time.Location
	Now      func() time.Time
	Logger   zerolog.Logger
}

// NewService returns a ledger service backed by store.
func NewService(store Store, opts ServiceOptions) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, loc: opts.Location, now: opts.Now, logger: opts.Logger}
}

// Now returns the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Ledger returns the ledger as of now.
func (s *Service) Ledger(ctx context.Context) (domain.ImpactLedger, error) {
	l, err := s.store.Ledger(ctx)
	if err != nil {
		return domain.ImpactLedger{}, fmt.Errorf("load ledger: %w", err)
	}
	return Current(*l, s.Now()), nil
}

// Stats returns the detailed statistics report.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	l, err := s.store.Ledger(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load ledger: %w", err)
	}
	return ComputeStats(*l, s.Now()), nil
}

// AddReceipt validates in and records it in the ledger.
func (s *Service) AddReceipt(ctx context.Context, in ReceiptInput) (domain.Receipt, domain.ImpactLedger, error) {
	now := s.Now()
	receipt, err := NewReceipt(in, now)
	if err != nil {
		return domain.Receipt{}, domain.ImpactLedger{}, err
	}
	l, err := s.store.UpdateLedger(ctx, func(l *domain.ImpactLedger) error {
		Apply(l, receipt, now)
		return nil
	})
	if err != nil {
		return domain.Receipt{}, domain.ImpactLedger{}, fmt.Errorf("add receipt: %w", err)
	}
	s.logger.Info().
		Str("receipt_id", receipt.ID).
		Str("amount", receipt.Amount.String()).
		Int64("meals", receipt.Meals).
		Msg("receipt recorded")
	return receipt, Current(*l, now), nil
}

// SetGoal replaces the monthly fundraising goal.
func (s *Service) SetGoal(ctx context.Context, goal decimal.Decimal) (domain.ImpactLedger, error) {
	if goal.IsNegative() {
		return domain.ImpactLedger{}, fmt.Errorf("%w: goal cannot be negative", domain.ErrInvalidInput)
	}
	now := s.Now()
	l, err := s.store.UpdateLedger(ctx, func(l *domain.ImpactLedger) error {
		l.MonthlyGoal = goal
		return nil
	})
	if err != nil {
		return domain.ImpactLedger{}, fmt.Errorf("set goal: %w", err)
	}
	return Current(*l, now), nil
}

// TrackCommission validates in and persists a pending commission.
func (s *Service) TrackCommission(ctx context.Context, in CommissionInput) (domain.Commission, error) {
	c, err := NewCommission(in, s.Now())
	if err != nil {
		return domain.Commission{}, err
	}
	if err := s.store.CreateCommission(ctx, &c); err != nil {
		return domain.Commission{}, fmt.Errorf("track commission: %w", err)
	}
	s.logger.Info().
		Str("commission_id", c.ID).
		Str("order_id", c.OrderID).
		Str("amount", c.Amount.String()).
		Msg("commission tracked")
	return c, nil
}

// Commissions lists commissions and the pending total of the listed ones.
func (s *Service) Commissions(ctx context.Context, filter domain.CommissionFilter) ([]domain.Commission, decimal.Decimal, error) {
	switch filter.Status {
	case "", domain.CommissionPending, domain.CommissionWithdrawn:
	default:
		return nil, decimal.Zero, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	list, err := s.store.ListCommissions(ctx, filter)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list commissions: %w", err)
	}
	if list == nil {
		list = []domain.Commission{}
	}
	return list, PendingTotal(list), nil
}
