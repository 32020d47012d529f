package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeDB is a database/sql driver that records statements and serves canned rows.
type fakeDB struct {
	mu      sync.Mutex
	execs   []fakeCall
	queries []fakeCall
	columns []string
	rows    [][]driver.Value
	execErr error
}

type fakeCall struct {
	query string
	args  []driver.Value
}

var (
	fakeSeq  atomic.Int64
	fakeDBs  sync.Map
	fakeOnce sync.Once
)

func newFakeDB(t *testing.T) (*fakeDB, *sql.DB) {
	t.Helper()
	fakeOnce.Do(func() { sql.Register("fakedb", fakeDriver{}) })

	name := fmt.Sprintf("db-%d", fakeSeq.Add(1))
	f := &fakeDB{}
	fakeDBs.Store(name, f)

	db, err := sql.Open("fakedb", name)
	if err != nil {
		t.Fatalf("open fake db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		fakeDBs.Delete(name)
	})
	return f, db
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	v, ok := fakeDBs.Load(name)
	if !ok {
		return nil, fmt.Errorf("unknown fake db %q", name)
	}
	return &fakeConn{db: v.(*fakeDB)}, nil
}

type fakeConn struct {
	db *fakeDB
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *fakeConn) Ping(context.Context) error { return nil }

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.execs = append(c.db.execs, fakeCall{query: query, args: values(args)})
	if c.db.execErr != nil {
		return nil, c.db.execErr
	}
	return driver.RowsAffected(1), nil
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.queries = append(c.db.queries, fakeCall{query: query, args: values(args)})
	return &fakeRows{columns: c.db.columns, rows: c.db.rows}, nil
}

func values(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}

type fakeRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *fakeRows) Columns() []string { return r.columns }

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}
