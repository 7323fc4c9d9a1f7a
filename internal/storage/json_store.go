package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"pawshearts/internal/domain"
)

const (
	commissionsKey = "commissions.json"
	pinsKey        = "pins.json"
)

// JSONStore keeps the impact ledger in a single JSON document (the
// impact-log.json layout) next to commissions.json and pins.json. Every
// read-modify-write runs under one mutex, so it is safe for concurrent use
// within a process but must not be shared between processes.
type JSONStore struct {
	mu        sync.Mutex
	files     *FileStore
	ledgerKey string
	seed      domain.ImpactLedger
	closed    bool
}

// OpenJSONStore opens (or lazily creates) the document store whose ledger
// lives at ledgerPath. seed is returned until the first write.
func OpenJSONStore(ledgerPath string, seed domain.ImpactLedger) (*JSONStore, error) {
	ledgerPath = strings.TrimSpace(ledgerPath)
	if ledgerPath == "" {
		return nil, errors.New("storage: ledger path is required")
	}
	abs, err := filepath.Abs(ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve ledger path: %w", err)
	}
	files, err := NewFileStore(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	return &JSONStore{files: files, ledgerKey: filepath.Base(abs), seed: seed.Clone()}, nil
}

// Close marks the store closed. Later calls fail with domain.ErrStoreClosed.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *JSONStore) Ledger(ctx context.Context) (*domain.ImpactLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	l, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *JSONStore) UpdateLedger(ctx context.Context, fn func(*domain.ImpactLedger) error) (*domain.ImpactLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	l, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(&l); err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.ledgerKey, l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *JSONStore) CreateCommission(ctx context.Context, c *domain.Commission) error {
	if c == nil {
		return fmt.Errorf("%w: commission is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	var items []domain.Commission
	if err := s.load(ctx, commissionsKey, &items); err != nil {
		return err
	}
	items = append(items, *c)
	return s.save(ctx, commissionsKey, items)
}

func (s *JSONStore) ListCommissions(ctx context.Context, filter domain.CommissionFilter) ([]domain.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	var items []domain.Commission
	if err := s.load(ctx, commissionsKey, &items); err != nil {
		return nil, err
	}
	out := make([]domain.Commission, 0, len(items))
	for _, c := range items {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *JSONStore) EnqueuePins(ctx context.Context, pins []domain.ScheduledPin) error {
	if len(pins) == 0 {
		return nil
	}
	return s.updatePins(ctx, func(items []domain.ScheduledPin) ([]domain.ScheduledPin, error) {
		return append(items, pins...), nil
	})
}

func (s *JSONStore) ClaimDuePins(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledPin, error) {
	var claimed []domain.ScheduledPin
	err := s.updatePins(ctx, func(items []domain.ScheduledPin) ([]domain.ScheduledPin, error) {
		due := make([]int, 0)
		for i, p := range items {
			if p.Status == domain.PinQueued && !p.ScheduledFor.After(now) {
				due = append(due, i)
			}
		}
		sort.SliceStable(due, func(a, b int) bool {
			return items[due[a]].ScheduledFor.Before(items[due[b]].ScheduledFor)
		})
		if limit > 0 && len(due) > limit {
			due = due[:limit]
		}
		for _, i := range due {
			items[i].Status = domain.PinPublishing
			claimed = append(claimed, items[i])
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *JSONStore) MarkPinPublished(ctx context.Context, id, remoteID, url string, at time.Time) error {
	return s.updatePin(ctx, id, func(p *domain.ScheduledPin) {
		p.Status = domain.PinPublished
		p.RemotePinID = remoteID
		p.PinURL = url
		p.Error = ""
		published := at
		p.PublishedAt = &published
	})
}

func (s *JSONStore) MarkPinFailed(ctx context.Context, id, reason string) error {
	return s.updatePin(ctx, id, func(p *domain.ScheduledPin) {
		p.Status = domain.PinFailed
		p.Error = reason
	})
}

func (s *JSONStore) RequeuePin(ctx context.Context, id string) error {
	return s.updatePin(ctx, id, func(p *domain.ScheduledPin) {
		if p.Status == domain.PinPublishing {
			p.Status = domain.PinQueued
			p.Error = ""
		}
	})
}

func (s *JSONStore) GetPin(ctx context.Context, id string) (*domain.ScheduledPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	var items []domain.ScheduledPin
	if err := s.load(ctx, pinsKey, &items); err != nil {
		return nil, err
	}
	for _, p := range items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
}

func (s *JSONStore) ListPins(ctx context.Context, filter domain.PinFilter) ([]domain.ScheduledPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	var items []domain.ScheduledPin
	if err := s.load(ctx, pinsKey, &items); err != nil {
		return nil, err
	}
	out := make([]domain.ScheduledPin, 0, len(items))
	for _, p := range items {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *JSONStore) updatePin(ctx context.Context, id string, fn func(*domain.ScheduledPin)) error {
	return s.updatePins(ctx, func(items []domain.ScheduledPin) ([]domain.ScheduledPin, error) {
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
				return items, nil
			}
		}
		return nil, fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
	})
}

func (s *JSONStore) updatePins(ctx context.Context, fn func([]domain.ScheduledPin) ([]domain.ScheduledPin, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	var items []domain.ScheduledPin
	if err := s.load(ctx, pinsKey, &items); err != nil {
		return err
	}
	items, err := fn(items)
	if err != nil {
		return err
	}
	return s.save(ctx, pinsKey, items)
}

// loadLedger must be called with s.mu held.
func (s *JSONStore) loadLedger(ctx context.Context) (domain.ImpactLedger, error) {
	data, err := s.files.Read(ctx, s.ledgerKey)
	if errors.Is(err, fs.ErrNotExist) {
		return s.seed.Clone(), nil
	}
	if err != nil {
		return domain.ImpactLedger{}, err
	}
	var l domain.ImpactLedger
	if err := json.Unmarshal(data, &l); err != nil {
		return domain.ImpactLedger{}, fmt.Errorf("storage: decode %s: %w", s.ledgerKey, err)
	}
	if l.Receipts == nil {
		l.Receipts = []domain.Receipt{}
	}
	return l, nil
}

// load must be called with s.mu held. A missing document leaves v untouched.
func (s *JSONStore) load(ctx context.Context, key string, v any) error {
	data, err := s.files.Read(ctx, key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

// save must be called with s.mu held.
func (s *JSONStore) save(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	_, err = s.files.Write(ctx, key, data)
	return err
}

var _ domain.Store = (*JSONStore)(nil)
