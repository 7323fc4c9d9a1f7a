package repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"pawshearts/internal/domain"
	"pawshearts/internal/infra"
	"pawshearts/internal/sqlinline"
)

// PinRepositoryPG implements domain.PinQueue. Claims use FOR UPDATE SKIP
// LOCKED so several workers can drain the queue without double publishing.
type PinRepositoryPG struct {
	db infra.Transactor
}

// NewPinRepository creates a new pin queue backed by PostgreSQL.
func NewPinRepository(db infra.Transactor) *PinRepositoryPG {
	return &PinRepositoryPG{db: db}
}

// EnqueuePins inserts pins in one transaction.
func (r *PinRepositoryPG) EnqueuePins(ctx context.Context, pins []domain.ScheduledPin) error {
	if len(pins) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx infra.SQLExecutor) error {
		for _, pin := range pins {
			if _, err := tx.Exec(ctx, sqlinline.QInsertPin,
				pin.ID,
				pin.ProductID,
				pin.ProductTitle,
				pin.Caption,
				pin.Image,
				pin.Link,
				pin.Category,
				pin.BoardName,
				pin.ScheduledFor,
				string(pin.Status),
				pin.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert pin %s: %w", pin.ID, err)
			}
		}
		return nil
	})
}

// ClaimDuePins moves due queued pins to publishing and returns them, oldest
// schedule first.
func (r *PinRepositoryPG) ClaimDuePins(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledPin, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := r.db.Query(ctx, sqlinline.QClaimDuePins, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pins: %w", err)
	}
	defer rows.Close()

	items, err := scanPins(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ScheduledFor.Before(items[j].ScheduledFor) })
	return items, nil
}

// MarkPinPublished records a successful publish.
func (r *PinRepositoryPG) MarkPinPublished(ctx context.Context, id, remoteID, url string, at time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	tag, err := r.db.Exec(ctx, sqlinline.QMarkPinPublished, id, remoteID, url, at)
	if err != nil {
		return fmt.Errorf("mark pin published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// MarkPinFailed records a failed publish.
func (r *PinRepositoryPG) MarkPinFailed(ctx context.Context, id, reason string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	tag, err := r.db.Exec(ctx, sqlinline.QMarkPinFailed, id, reason)
	if err != nil {
		return fmt.Errorf("mark pin failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// RequeuePin hands a claimed pin back to the queue.
func (r *PinRepositoryPG) RequeuePin(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	tag, err := r.db.Exec(ctx, sqlinline.QRequeuePin, id)
	if err != nil {
		return fmt.Errorf("requeue pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetPin fetches a pin by its identifier.
func (r *PinRepositoryPG) GetPin(ctx context.Context, id string) (*domain.ScheduledPin, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	}
	var pin domain.ScheduledPin
	if err := scanPin(r.db.QueryRow(ctx, sqlinline.QSelectPin, id), &pin); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("select pin: %w", err)
	}
	return &pin, nil
}

// ListPins returns pins newest first.
func (r *PinRepositoryPG) ListPins(ctx context.Context, filter domain.PinFilter) ([]domain.ScheduledPin, error) {
	limit := filter.Limit
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.Query(ctx, sqlinline.QListPins, string(filter.Status), limit)
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	defer rows.Close()
	return scanPins(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPin(row scanner, pin *domain.ScheduledPin) error {
	var status string
	if err := row.Scan(
		&pin.ID,
		&pin.ProductID,
		&pin.ProductTitle,
		&pin.Caption,
		&pin.Image,
		&pin.Link,
		&pin.Category,
		&pin.BoardName,
		&pin.ScheduledFor,
		&status,
		&pin.RemotePinID,
		&pin.PinURL,
		&pin.Error,
		&pin.CreatedAt,
		&pin.PublishedAt,
	); err != nil {
		return err
	}
	pin.Status = domain.PinStatus(status)
	return nil
}

type pinRows interface {
	scanner
	Next() bool
	Err() error
}

func scanPins(rows pinRows) ([]domain.ScheduledPin, error) {
	items := []domain.ScheduledPin{}
	for rows.Next() {
		var pin domain.ScheduledPin
		if err := scanPin(rows, &pin); err != nil {
			return nil, fmt.Errorf("scan pin: %w", err)
		}
		items = append(items, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pins: %w", err)
	}
	return items, nil
}
