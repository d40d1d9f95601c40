// Package trace records communication and tensor lifecycle events into a
// SQLite database for offline inspection.
package trace

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A CommEvent is one message crossing the messaging layer.
type CommEvent struct {
	Node      int32
	Direction string // "send" or "recv"
	Channel   string // "dispatch", "forward", "notify", or "free"
	Peer      int32
	Bytes     int64
	CommandID int64
	UnixNano  int64
}

// A TensorEvent is one tensor becoming available on a node.
type TensorEvent struct {
	Node     int32
	TID      int32
	Origin   int32
	UnixNano int64
}

// A Recorder batches events and writes them to a SQLite database. It is
// safe for concurrent use.
type Recorder struct {
	mu sync.Mutex
	db *sql.DB

	commRows   []CommEvent
	tensorRows []TensorEvent
	batchSize  int
}

// New creates a recorder writing to path. An empty path selects
// $TENSORBED_TRACE_DB, falling back to a fresh file in the working
// directory. Environment values are also read from a .env file when one is
// present. The recorder flushes at process exit.
func New(path string) (*Recorder, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("TENSORBED_TRACE_DB")
	}
	if path == "" {
		path = "tensorbed_trace_" + xid.New().String() + ".sqlite3"
	}

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("trace database %s already exists", path)
	}

	fmt.Fprintf(os.Stderr, "Database created for tracing: %s\n", path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		db:        db,
		batchSize: 100000,
	}

	r.mustExecute(`CREATE TABLE comm_events (
	node INTEGER,
	direction TEXT,
	channel TEXT,
	peer INTEGER,
	bytes INTEGER,
	command_id INTEGER,
	unix_nano INTEGER
);`)
	r.mustExecute(`CREATE TABLE tensor_events (
	node INTEGER,
	tid INTEGER,
	origin INTEGER,
	unix_nano INTEGER
);`)

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

// RecordComm buffers one communication event.
func (r *Recorder) RecordComm(e CommEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commRows = append(r.commRows, e)
	r.flushIfFullLocked()
}

// RecordTensor buffers one tensor event.
func (r *Recorder) RecordTensor(e TensorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tensorRows = append(r.tensorRows, e)
	r.flushIfFullLocked()
}

func (r *Recorder) flushIfFullLocked() {
	if len(r.commRows)+len(r.tensorRows) >= r.batchSize {
		if err := r.flushLocked(); err != nil {
			fmt.Fprintf(os.Stderr, "trace flush failed: %s\n", err)
		}
	}
}

// Flush writes all buffered events to the database.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.commRows) == 0 && len(r.tensorRows) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	for _, e := range r.commRows {
		_, err = tx.Exec(
			`INSERT INTO comm_events VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Node, e.Direction, e.Channel, e.Peer,
			e.Bytes, e.CommandID, e.UnixNano)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	for _, e := range r.tensorRows {
		_, err = tx.Exec(
			`INSERT INTO tensor_events VALUES (?, ?, ?, ?)`,
			e.Node, e.TID, e.Origin, e.UnixNano)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.commRows = nil
	r.tensorRows = nil

	return nil
}

// Close flushes and releases the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	return r.db.Close()
}

func (r *Recorder) mustExecute(query string) {
	if _, err := r.db.Exec(query); err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}
}
