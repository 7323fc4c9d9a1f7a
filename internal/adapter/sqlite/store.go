// Package sqlite provides a SQLite-backed implementation of domain.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"pawshearts/internal/adapter/sqlite/migrations"
	"pawshearts/internal/domain"
	"pawshearts/internal/infra/migrate"
)

// Store persists the ledger, commissions and the pin queue in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

// Open opens the database at path, applies embedded migrations and stores
// seed as the initial ledger when none exists yet.
func Open(ctx context.Context, path string, seed domain.ImpactLedger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time keeps read-modify-write transactions serialised.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, sqlDB, migrations.FS, ".", migrate.SQLite); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s := &Store{sqlDB: sqlDB}
	if err := s.seed(ctx, seed); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) seed(ctx context.Context, seed domain.ImpactLedger) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger`).Scan(&count); err != nil {
			return fmt.Errorf("count ledger rows: %w", err)
		}
		if count > 0 {
			return nil
		}
		if seed.LastUpdated.IsZero() {
			seed.LastUpdated = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger (id, total_raised, meals_provided, pets_helped, purchases_made, monthly_raised, monthly_goal, last_updated)
			 VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
			seed.TotalRaised.String(), seed.MealsProvided, seed.PetsHelped, seed.PurchasesMade,
			seed.MonthlyRaised.String(), seed.MonthlyGoal.String(), toMillis(seed.LastUpdated),
		); err != nil {
			return fmt.Errorf("seed ledger: %w", err)
		}
		return insertReceipts(ctx, tx, seed.Receipts)
	})
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return domain.ErrStoreClosed
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		if strings.Contains(err.Error(), "database is closed") {
			return domain.ErrStoreClosed
		}
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ledger returns the totals and every receipt, newest first.
func (s *Store) Ledger(ctx context.Context) (*domain.ImpactLedger, error) {
	var out *domain.ImpactLedger
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		l, err := loadTotals(ctx, tx)
		if err != nil {
			return err
		}
		if l.Receipts, err = loadReceipts(ctx, tx); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

// UpdateLedger hands fn the current totals and stores the totals it leaves
// behind together with any receipts it prepended.
func (s *Store) UpdateLedger(ctx context.Context, fn func(*domain.ImpactLedger) error) (*domain.ImpactLedger, error) {
	var out *domain.ImpactLedger
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		l, err := loadTotals(ctx, tx)
		if err != nil {
			return err
		}
		l.Receipts = []domain.Receipt{}
		if err := fn(l); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE ledger SET total_raised = ?, meals_provided = ?, pets_helped = ?, purchases_made = ?,
			   monthly_raised = ?, monthly_goal = ?, last_updated = ?
			 WHERE id = 1`,
			l.TotalRaised.String(), l.MealsProvided, l.PetsHelped, l.PurchasesMade,
			l.MonthlyRaised.String(), l.MonthlyGoal.String(), toMillis(l.LastUpdated),
		); err != nil {
			return fmt.Errorf("update ledger: %w", err)
		}
		if err := insertReceipts(ctx, tx, l.Receipts); err != nil {
			return err
		}
		if l.Receipts, err = loadReceipts(ctx, tx); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

func loadTotals(ctx context.Context, tx *sql.Tx) (*domain.ImpactLedger, error) {
	var (
		l           domain.ImpactLedger
		totalRaised string
		monthly     string
		goal        string
		lastUpdated int64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT total_raised, meals_provided, pets_helped, purchases_made, monthly_raised, monthly_goal, last_updated
		 FROM ledger WHERE id = 1`,
	).Scan(&totalRaised, &l.MealsProvided, &l.PetsHelped, &l.PurchasesMade, &monthly, &goal, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger row: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if l.TotalRaised, err = decimal.NewFromString(totalRaised); err != nil {
		return nil, fmt.Errorf("parse total_raised: %w", err)
	}
	if l.MonthlyRaised, err = decimal.NewFromString(monthly); err != nil {
		return nil, fmt.Errorf("parse monthly_raised: %w", err)
	}
	if l.MonthlyGoal, err = decimal.NewFromString(goal); err != nil {
		return nil, fmt.Errorf("parse monthly_goal: %w", err)
	}
	l.LastUpdated = fromMillis(lastUpdated)
	return &l, nil
}

func loadReceipts(ctx context.Context, tx *sql.Tx) ([]domain.Receipt, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, purchased_at, amount, items, supplier, meals, receipt_image, verified
		 FROM receipts ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	out := []domain.Receipt{}
	for rows.Next() {
		var (
			r        domain.Receipt
			at       int64
			amount   string
			image    sql.NullString
			verified int
		)
		if err := rows.Scan(&r.ID, &at, &amount, &r.Items, &r.Supplier, &r.Meals, &image, &verified); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse receipt amount: %w", err)
		}
		r.Date = fromMillis(at)
		if image.Valid {
			v := image.String
			r.ReceiptImage = &v
		}
		r.Verified = verified != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return out, nil
}

// insertReceipts stores receipts given newest first, so the oldest is
// inserted first and receives the lowest sequence number.
func insertReceipts(ctx context.Context, tx *sql.Tx, receipts []domain.Receipt) error {
	for i := len(receipts) - 1; i >= 0; i-- {
		r := receipts[i]
		verified := 0
		if r.Verified {
			verified = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO receipts (id, purchased_at, amount, items, supplier, meals, receipt_image, verified)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, toMillis(r.Date), r.Amount.String(), r.Items, r.Supplier, r.Meals, nullString(r.ReceiptImage), verified,
		); err != nil {
			return fmt.Errorf("insert receipt %s: %w", r.ID, err)
		}
	}
	return nil
}

// CreateCommission inserts one commission record.
func (s *Store) CreateCommission(ctx context.Context, c *domain.Commission) error {
	if c == nil {
		return fmt.Errorf("%w: commission is required", domain.ErrInvalidInput)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO commissions (id, order_id, amount, product_asin, earned_at, status, withdrawn_at, meals, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.OrderID, c.Amount.String(), nullString(c.ProductASIN), toMillis(c.Date),
			string(c.Status), nullMillis(c.WithdrawnAt), c.Meals, toMillis(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("create commission: %w", err)
		}
		return nil
	})
}

// ListCommissions returns commissions newest first.
func (s *Store) ListCommissions(ctx context.Context, filter domain.CommissionFilter) ([]domain.Commission, error) {
	query := `SELECT id, order_id, amount, product_asin, earned_at, status, withdrawn_at, meals, created_at FROM commissions`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	out := []domain.Commission{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list commissions: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				c         domain.Commission
				amount    string
				asin      sql.NullString
				earnedAt  int64
				status    string
				withdrawn sql.NullInt64
				createdAt int64
			)
			if err := rows.Scan(&c.ID, &c.OrderID, &amount, &asin, &earnedAt, &status, &withdrawn, &c.Meals, &createdAt); err != nil {
				return fmt.Errorf("scan commission: %w", err)
			}
			if c.Amount, err = decimal.NewFromString(amount); err != nil {
				return fmt.Errorf("parse commission amount: %w", err)
			}
			if asin.Valid {
				v := asin.String
				c.ProductASIN = &v
			}
			if withdrawn.Valid {
				v := fromMillis(withdrawn.Int64)
				c.WithdrawnAt = &v
			}
			c.Date = fromMillis(earnedAt)
			c.Status = domain.CommissionStatus(status)
			c.CreatedAt = fromMillis(createdAt)
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

const pinColumns = `id, product_id, product_title, caption, image, link, category, board_name,
  scheduled_for, status, remote_pin_id, pin_url, error, created_at, published_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPin(row rowScanner) (domain.ScheduledPin, error) {
	var (
		p            domain.ScheduledPin
		scheduledFor int64
		createdAt    int64
		status       string
		publishedAt  sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.ProductID, &p.ProductTitle, &p.Caption, &p.Image, &p.Link, &p.Category,
		&p.BoardName, &scheduledFor, &status, &p.RemotePinID, &p.PinURL, &p.Error, &createdAt, &publishedAt); err != nil {
		return domain.ScheduledPin{}, err
	}
	p.ScheduledFor = fromMillis(scheduledFor)
	p.Status = domain.PinStatus(status)
	p.CreatedAt = fromMillis(createdAt)
	if publishedAt.Valid {
		v := fromMillis(publishedAt.Int64)
		p.PublishedAt = &v
	}
	return p, nil
}

// EnqueuePins inserts pins in one transaction.
func (s *Store) EnqueuePins(ctx context.Context, pins []domain.ScheduledPin) error {
	if len(pins) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range pins {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pins (`+pinColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.ProductID, p.ProductTitle, p.Caption, p.Image, p.Link, p.Category, p.BoardName,
				toMillis(p.ScheduledFor), string(p.Status), p.RemotePinID, p.PinURL, p.Error,
				toMillis(p.CreatedAt), nullMillis(p.PublishedAt),
			); err != nil {
				return fmt.Errorf("enqueue pin %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// ClaimDuePins moves due queued pins to publishing and returns them.
func (s *Store) ClaimDuePins(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledPin, error) {
	if limit <= 0 {
		limit = 1
	}
	var claimed []domain.ScheduledPin
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+pinColumns+` FROM pins
			 WHERE status = ? AND scheduled_for <= ?
			 ORDER BY scheduled_for, created_at LIMIT ?`,
			string(domain.PinQueued), toMillis(now), limit)
		if err != nil {
			return fmt.Errorf("select due pins: %w", err)
		}
		for rows.Next() {
			p, err := scanPin(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("scan pin: %w", err)
			}
			claimed = append(claimed, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate due pins: %w", err)
		}
		rows.Close()

		for i := range claimed {
			if _, err := tx.ExecContext(ctx,
				`UPDATE pins SET status = ? WHERE id = ? AND status = ?`,
				string(domain.PinPublishing), claimed[i].ID, string(domain.PinQueued),
			); err != nil {
				return fmt.Errorf("claim pin %s: %w", claimed[i].ID, err)
			}
			claimed[i].Status = domain.PinPublishing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// MarkPinPublished records a successful publish.
func (s *Store) MarkPinPublished(ctx context.Context, id, remoteID, url string, at time.Time) error {
	return s.updatePin(ctx, id,
		`UPDATE pins SET status = ?, remote_pin_id = ?, pin_url = ?, error = '', published_at = ? WHERE id = ?`,
		string(domain.PinPublished), remoteID, url, toMillis(at), id)
}

// MarkPinFailed records a failed publish.
func (s *Store) MarkPinFailed(ctx context.Context, id, reason string) error {
	return s.updatePin(ctx, id,
		`UPDATE pins SET status = ?, error = ? WHERE id = ?`,
		string(domain.PinFailed), reason, id)
}

// RequeuePin hands a claimed pin back to the queue.
func (s *Store) RequeuePin(ctx context.Context, id string) error {
	return s.updatePin(ctx, id,
		`UPDATE pins SET status = ?, error = '' WHERE id = ? AND status = ?`,
		string(domain.PinQueued), id, string(domain.PinPublishing))
}

func (s *Store) updatePin(ctx context.Context, id, query string, args ...any) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update pin %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update pin %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

// GetPin returns one pin by id.
func (s *Store) GetPin(ctx context.Context, id string) (*domain.ScheduledPin, error) {
	var out *domain.ScheduledPin
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := scanPin(tx.QueryRowContext(ctx, `SELECT `+pinColumns+` FROM pins WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("pin %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get pin: %w", err)
		}
		out = &p
		return nil
	})
	return out, err
}

// ListPins returns pins newest first.
func (s *Store) ListPins(ctx context.Context, filter domain.PinFilter) ([]domain.ScheduledPin, error) {
	query := `SELECT ` + pinColumns + ` FROM pins`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	out := []domain.ScheduledPin{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list pins: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanPin(rows)
			if err != nil {
				return fmt.Errorf("scan pin: %w", err)
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ domain.Store = (*Store)(nil)
