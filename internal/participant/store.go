package participant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/regbot/core/logger"
)

const component = "service.participants"

// Store is the durable keyed storage of participant records.
type Store interface {
	// Upsert creates the record or, if it exists, refreshes handle (when non-empty) and updated_at.
	Upsert(ctx context.Context, id int64, handle string) error
	// SetFields applies all fields atomically. A missing record is left absent
	// and reported as ErrNotFound.
	SetFields(ctx context.Context, id int64, fields ...Field) error
	Get(ctx context.Context, id int64) (Record, bool, error)
	// ListOrdered returns every record, most recently updated first.
	ListOrdered(ctx context.Context) ([]Record, error)
	// Delete removes the record; deleting a missing record is not an error.
	Delete(ctx context.Context, id int64) error
}

const selectColumns = `user_id, username, first_name_input, last_name_input, phone,
	status, receipt_ref, receipt_kind, created_at, updated_at`

type row struct {
	ID          int64          `db:"user_id"`
	Username    sql.NullString `db:"username"`
	FirstName   sql.NullString `db:"first_name_input"`
	LastName    sql.NullString `db:"last_name_input"`
	Phone       sql.NullString `db:"phone"`
	Status      string         `db:"status"`
	ReceiptRef  sql.NullString `db:"receipt_ref"`
	ReceiptKind sql.NullString `db:"receipt_kind"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

func (r row) record() Record {
	rec := Record{
		ID:        r.ID,
		Handle:    r.Username.String,
		FirstName: r.FirstName.String,
		LastName:  r.LastName.String,
		Phone:     r.Phone.String,
		Status:    Status(r.Status),
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
	if r.ReceiptRef.Valid && r.ReceiptKind.Valid {
		rec.Receipt = &Receipt{Ref: r.ReceiptRef.String, Kind: AttachmentKind(r.ReceiptKind.String)}
	}
	return rec
}

// SQLStore implements Store on top of sqlx. It works with both the sqlite and
// postgres schemas shipped in migrations/.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time

	// writeMu serializes writers and guards last.
	writeMu sync.Mutex
	last    int64
}

// NewSQLStore wraps db and seeds the update clock from the stored records.
func NewSQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("participant: nil db")
	}
	s := &SQLStore{db: db, now: time.Now}
	var last int64
	if err := db.GetContext(ctx, &last, `SELECT COALESCE(MAX(updated_at), 0) FROM participants`); err != nil {
		return nil, fmt.Errorf("participant: read clock: %w", err)
	}
	s.last = last
	return s, nil
}

// tick returns a strictly increasing unix-nano timestamp. Callers hold writeMu.
func (s *SQLStore) tick() int64 {
	n := s.now().UnixNano()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return n
}

// Upsert implements Store.
func (s *SQLStore) Upsert(ctx context.Context, id int64, handle string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ts := s.tick()
	q := s.db.Rebind(`INSERT INTO participants (user_id, username, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = COALESCE(excluded.username, participants.username),
			updated_at = excluded.updated_at`)
	username := sql.NullString{String: handle, Valid: handle != ""}
	if _, err := s.db.ExecContext(ctx, q, id, username, string(StatusNew), ts, ts); err != nil {
		logger.Error(ctx, component, "participant.upsert",
			slog.String("status", "fail"),
			slog.Int64("participant_id", id),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("participant: upsert %d: %w", id, err)
	}
	logger.Debug(ctx, component, "participant.upsert",
		slog.String("status", "ok"),
		slog.Int64("participant_id", id),
	)
	return nil
}

// advances reports whether a record at cur may move to next. Status only moves
// forward, except that an unfinished cycle may restart at AWAITING_NAME.
// REGISTERED is never left.
func advances(cur, next Status) bool {
	if cur.Before(next) {
		return true
	}
	return next == StatusAwaitingName && cur != StatusRegistered && cur != next
}

type assignment struct {
	column string
	value  any
}

// SetFields implements Store.
func (s *SQLStore) SetFields(ctx context.Context, id int64, fields ...Field) error {
	for _, f := range fields {
		if err := f.validate(); err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("participant: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.GetContext(ctx, &current, tx.Rebind(`SELECT status FROM participants WHERE user_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Debug(ctx, component, "participant.set_fields",
			slog.String("status", "skip"),
			slog.Int64("participant_id", id),
			slog.String("reason", "not_found"),
		)
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("participant: load %d: %w", id, err)
	}

	var sets []assignment
	set := func(column string, value any) {
		for i := range sets {
			if sets[i].column == column {
				sets[i].value = value
				return
			}
		}
		sets = append(sets, assignment{column: column, value: value})
	}

	status := Status(current)
	for _, f := range fields {
		switch f.Kind {
		case FieldName:
			set("first_name_input", f.First)
			set("last_name_input", f.Last)
		case FieldPhone:
			set("phone", f.Phone)
		case FieldReceipt:
			set("receipt_ref", f.Receipt.Ref)
			set("receipt_kind", string(f.Receipt.Kind))
		case FieldStatus:
			if advances(status, f.Status) {
				status = f.Status
				set("status", string(status))
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f.Kind)
		}
	}
	set("updated_at", s.tick())

	cols := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+1)
	for _, a := range sets {
		cols = append(cols, a.column+" = ?")
		args = append(args, a.value)
	}
	args = append(args, id)
	q := tx.Rebind("UPDATE participants SET " + strings.Join(cols, ", ") + " WHERE user_id = ?")
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("participant: update %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("participant: commit %d: %w", id, err)
	}

	logger.Debug(ctx, component, "participant.set_fields",
		slog.String("status", "ok"),
		slog.Int64("participant_id", id),
		slog.Int("count", len(fields)),
		slog.String("state", string(status)),
	)
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (Record, bool, error) {
	var r row
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`SELECT `+selectColumns+` FROM participants WHERE user_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("participant: get %d: %w", id, err)
	}
	return r.record(), true, nil
}

// ListOrdered implements Store.
func (s *SQLStore) ListOrdered(ctx context.Context) ([]Record, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+selectColumns+` FROM participants ORDER BY updated_at DESC, user_id DESC`); err != nil {
		return nil, fmt.Errorf("participant: list: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM participants WHERE user_id = ?`), id)
	if err != nil {
		return fmt.Errorf("participant: delete %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	logger.Info(ctx, component, "participant.delete",
		slog.String("status", "ok"),
		slog.Int64("participant_id", id),
		slog.Int64("count", n),
	)
	return nil
}
