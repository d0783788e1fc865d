// Package journal records every tool call in an SQLite operation log.
// Entries are buffered and flushed in batches by a background goroutine;
// Close drains the buffer.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/slidekit/dbopen"
	"github.com/hazyhaar/slidekit/idgen"
)

// Entry is one tool call.
type Entry struct {
	EntryID        string    `json:"entry_id"`
	Timestamp      time.Time `json:"timestamp"`
	Tool           string    `json:"tool"`
	PresentationID string    `json:"presentation_id,omitempty"`
	Transport      string    `json:"transport,omitempty"`
	SessionID      string    `json:"session_id,omitempty"`
	Parameters     string    `json:"parameters,omitempty"` // JSON
	Result         string    `json:"result,omitempty"`     // JSON, truncated
	ErrorMessage   string    `json:"error,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	Status         string    `json:"status"` // "success" or "error"
}

// Filter selects entries for Query. Zero fields match everything.
type Filter struct {
	Tool           string
	PresentationID string
	Status         string
	Since          time.Time
	Limit          int // default 100
}

// maxPayload caps stored parameters and results.
const maxPayload = 16 << 10

// Journal persists entries asynchronously.
type Journal struct {
	db        *sql.DB
	newID     idgen.Generator
	logger    *slog.Logger
	interval  time.Duration
	ch        chan *Entry
	stop      chan struct{}
	done      chan struct{}
	ownsDB    bool
	closeOnce sync.Once
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator sets the entry id generator. Default: "op_" + UUIDv7.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(j *Journal) { j.newID = gen }
}

// WithLogger sets the logger used for flush failures.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// WithFlushInterval sets how often buffered entries are written. Default: 2s.
func WithFlushInterval(d time.Duration) Option {
	return func(j *Journal) { j.interval = d }
}

// Open opens (creating if needed) a journal database at path.
func Open(path string, bufferSize int, opts ...Option) (*Journal, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, err
	}
	j := New(db, bufferSize, opts...)
	j.ownsDB = true
	return j, nil
}

// New starts a journal on an open database whose schema is initialised.
func New(db *sql.DB, bufferSize int, opts ...Option) *Journal {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	j := &Journal{
		db:       db,
		newID:    idgen.Prefixed("op_", idgen.Default),
		logger:   slog.Default(),
		interval: 2 * time.Second,
		ch:       make(chan *Entry, bufferSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(j)
	}
	go j.flushLoop()
	return j
}

// NewEntry builds an entry from a call's request, response and error.
func (j *Journal) NewEntry(tool string, params, result any, err error, d time.Duration) *Entry {
	e := &Entry{
		EntryID:    j.newID(),
		Timestamp:  time.Now(),
		Tool:       tool,
		DurationMs: d.Milliseconds(),
		Parameters: marshalCapped(params),
	}
	if err != nil {
		e.Status = "error"
		e.ErrorMessage = err.Error()
	} else {
		e.Status = "success"
		e.Result = marshalCapped(result)
	}
	return e
}

func marshalCapped(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	if len(b) > maxPayload {
		b = b[:maxPayload]
	}
	return string(b)
}

// Record inserts an entry synchronously.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	j.fillDefaults(e)
	return dbopen.RunTx(ctx, j.db, func(tx *sql.Tx) error {
		return insert(ctx, tx, e)
	})
}

// RecordAsync queues an entry; a full buffer falls back to a synchronous
// insert.
func (j *Journal) RecordAsync(e *Entry) {
	j.fillDefaults(e)
	select {
	case j.ch <- e:
	default:
		j.logger.Warn("journal buffer full, sync fallback", "tool", e.Tool)
		if err := j.Record(context.Background(), e); err != nil {
			j.logger.Error("journal: sync fallback failed", "error", err)
		}
	}
}

// Query returns matching entries, newest first.
func (j *Journal) Query(ctx context.Context, f Filter) ([]*Entry, error) {
	q := `SELECT entry_id, timestamp, tool, presentation_id, transport, session_id,
		parameters, result, error_message, duration_ms, status
		FROM operation_log WHERE 1=1`
	var args []any
	if f.Tool != "" {
		q += " AND tool = ?"
		args = append(args, f.Tool)
	}
	if f.PresentationID != "" {
		q += " AND presentation_id = ?"
		args = append(args, f.PresentationID)
	}
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status)
	}
	if !f.Since.IsZero() {
		q += " AND timestamp >= ?"
		args = append(args, f.Since.UnixMilli())
	}
	limit := 100
	if f.Limit > 0 {
		limit = f.Limit
	}
	q += " ORDER BY timestamp DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.EntryID, &ts, &e.Tool, &e.PresentationID, &e.Transport, &e.SessionID,
			&e.Parameters, &e.Result, &e.ErrorMessage, &e.DurationMs, &e.Status); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Cleanup deletes entries older than retention.
func (j *Journal) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	threshold := time.Now().Add(-retention).UnixMilli()
	res, err := j.db.ExecContext(ctx, "DELETE FROM operation_log WHERE timestamp < ?", threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup journal: %w", err)
	}
	return res.RowsAffected()
}

// Close drains the buffer and stops the flush goroutine. A database opened
// by Open is closed too.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		close(j.stop)
		<-j.done
		if j.ownsDB {
			err = j.db.Close()
		}
	})
	return err
}

func (j *Journal) fillDefaults(e *Entry) {
	if e.EntryID == "" {
		e.EntryID = j.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Status == "" {
		if e.ErrorMessage != "" {
			e.Status = "error"
		} else {
			e.Status = "success"
		}
	}
}

func insert(ctx context.Context, tx *sql.Tx, e *Entry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO operation_log
		(entry_id, timestamp, tool, presentation_id, transport, session_id,
		 parameters, result, error_message, duration_ms, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		e.EntryID, e.Timestamp.UnixMilli(), e.Tool, e.PresentationID, e.Transport, e.SessionID,
		e.Parameters, e.Result, e.ErrorMessage, e.DurationMs, e.Status)
	return err
}

func (j *Journal) flushLoop() {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	batch := make([]*Entry, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := dbopen.RunTx(ctx, j.db, func(tx *sql.Tx) error {
			for _, e := range batch {
				if err := insert(ctx, tx, e); err != nil {
					return fmt.Errorf("entry %s: %w", e.EntryID, err)
				}
			}
			return nil
		})
		if err != nil {
			j.logger.Error("journal: flush", "error", err, "entries", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-j.stop:
			for {
				select {
				case e := <-j.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		case e := <-j.ch:
			batch = append(batch, e)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
