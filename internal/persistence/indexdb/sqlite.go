package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"retailtwin.io/internal/sim/world"
)

// SQLiteIndex is a queryable read-model of every broadcast event. It never
// feeds state back into the simulation; dropping the database file loses
// nothing but history.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan world.SinkEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	ts       INTEGER NOT NULL,
	envelope TEXT NOT NULL,
	event    TEXT NOT NULL DEFAULT '',
	data     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(envelope, event);
`

func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &SQLiteIndex{
		db: db,
		ch: make(chan world.SinkEntry, 256),
	}
	idx.wg.Add(1)
	go idx.writer()
	return idx, nil
}

// WriteEvent enqueues one entry for asynchronous insertion. A full queue
// drops the entry rather than stalling the world goroutine.
func (idx *SQLiteIndex) WriteEvent(e world.SinkEntry) error {
	if idx.closed.Load() {
		return nil
	}
	select {
	case idx.ch <- e:
		return nil
	default:
		return fmt.Errorf("index queue full")
	}
}

func (idx *SQLiteIndex) writer() {
	defer idx.wg.Done()
	for e := range idx.ch {
		data, err := json.Marshal(e.Data)
		if err != nil {
			continue
		}
		_, _ = idx.db.Exec(
			`INSERT INTO events (ts, envelope, event, data) VALUES (?, ?, ?, ?)`,
			e.Timestamp, e.Envelope, e.Event, string(data),
		)
	}
}

func (idx *SQLiteIndex) Close() error {
	idx.once.Do(func() {
		idx.closed.Store(true)
		close(idx.ch)
	})
	idx.wg.Wait()
	return idx.db.Close()
}

// CountEvents returns how many rows match envelope (and event when non-empty).
func (idx *SQLiteIndex) CountEvents(envelope, event string) (int, error) {
	var n int
	var err error
	if event == "" {
		err = idx.db.QueryRow(`SELECT COUNT(*) FROM events WHERE envelope = ?`, envelope).Scan(&n)
	} else {
		err = idx.db.QueryRow(`SELECT COUNT(*) FROM events WHERE envelope = ? AND event = ?`, envelope, event).Scan(&n)
	}
	return n, err
}

type EventRow struct {
	Seq       int64
	Timestamp int64
	Envelope  string
	Event     string
	Data      string
}

// RecentEvents returns the newest rows, newest first.
func (idx *SQLiteIndex) RecentEvents(limit int) ([]EventRow, error) {
	rows, err := idx.db.Query(
		`SELECT seq, ts, envelope, event, data FROM events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var r EventRow
		if err := rows.Scan(&r.Seq, &r.Timestamp, &r.Envelope, &r.Event, &r.Data); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
