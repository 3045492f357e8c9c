package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"math/rand"
	"strings"
	"time"
)

const (
	retryBaseDelay = 50 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// busyMarkers are substrings of the lock errors reported by modernc.org/sqlite
// and mattn/go-sqlite3. 5 and 6 are SQLITE_BUSY and SQLITE_LOCKED.
var busyMarkers = []string{
	"database is locked",
	"database table is locked",
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"(5)",
	"(6)",
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range busyMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// backoff is the wait before retry n (0-based): retryBaseDelay doubled n
// times plus up to a quarter of jitter, never more than retryMaxDelay.
func backoff(n int) time.Duration {
	if n >= 16 {
		return retryMaxDelay
	}
	d := retryBaseDelay << n
	if d >= retryMaxDelay {
		return retryMaxDelay
	}
	return min(d+time.Duration(rand.Int63n(int64(d/4)+1)), retryMaxDelay)
}

// busyPolicy is the number of extra attempts made when SQLite reports the
// database as locked.
type busyPolicy int

func onBusy[T any](ctx context.Context, p busyPolicy, fn func() (T, error)) (T, error) {
	v, err := fn()
	for n := 0; isBusyError(err) && n < int(p); n++ {
		t := time.NewTimer(backoff(n))
		select {
		case <-ctx.Done():
			t.Stop()
			return v, ctx.Err()
		case <-t.C:
		}
		v, err = fn()
	}
	return v, err
}

func retryBusy(ctx context.Context, p busyPolicy, fn func() error) error {
	_, err := onBusy(ctx, p, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// dsnConnector turns a driver that lacks OpenConnector into a
// driver.Connector.
type dsnConnector struct {
	drv driver.Driver
	dsn string
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) { return c.drv.Open(c.dsn) }
func (c dsnConnector) Driver() driver.Driver                        { return c.drv }

// sqliteConnector applies pragmas to each new connection and wraps it so
// statements are retried while the database is locked.
type sqliteConnector struct {
	base    driver.Connector
	policy  busyPolicy
	pragmas []string
}

func (c *sqliteConnector) Driver() driver.Driver { return c.base.Driver() }

func (c *sqliteConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := applyPragmas(ctx, conn, c.pragmas); err != nil {
		conn.Close()
		return nil, err
	}
	return &busyConn{Conn: conn, policy: c.policy}, nil
}

func applyPragmas(ctx context.Context, conn driver.Conn, pragmas []string) error {
	if len(pragmas) == 0 {
		return nil
	}
	execer, ok := conn.(driver.ExecerContext)
	if !ok {
		return errors.New("sqlite connection does not support ExecContext")
	}
	for _, p := range pragmas {
		if _, err := execer.ExecContext(ctx, p, nil); err != nil {
			return err
		}
	}
	return nil
}

type busyConn struct {
	driver.Conn
	policy busyPolicy
}

func (c *busyConn) wrap(stmt driver.Stmt, err error) (driver.Stmt, error) {
	if err != nil {
		return nil, err
	}
	return &busyStmt{Stmt: stmt, policy: c.policy}, nil
}

func (c *busyConn) Prepare(query string) (driver.Stmt, error) {
	return c.wrap(c.Conn.Prepare(query))
}

func (c *busyConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return c.wrap(p.PrepareContext(ctx, query))
	}
	return c.Prepare(query)
}

func (c *busyConn) Begin() (driver.Tx, error) {
	return onBusy(context.Background(), c.policy, c.Conn.Begin) //nolint:staticcheck
}

func (c *busyConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	b, ok := c.Conn.(driver.ConnBeginTx)
	if !ok {
		return c.Begin()
	}
	return onBusy(ctx, c.policy, func() (driver.Tx, error) { return b.BeginTx(ctx, opts) })
}

func (c *busyConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	e, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return onBusy(ctx, c.policy, func() (driver.Result, error) { return e.ExecContext(ctx, query, args) })
}

func (c *busyConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return onBusy(ctx, c.policy, func() (driver.Rows, error) { return q.QueryContext(ctx, query, args) })
}

func (c *busyConn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *busyConn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *busyConn) IsValid() bool {
	if v, ok := c.Conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

type busyStmt struct {
	driver.Stmt
	policy busyPolicy
}

func (s *busyStmt) Exec(args []driver.Value) (driver.Result, error) {
	return onBusy(context.Background(), s.policy, func() (driver.Result, error) {
		return s.Stmt.Exec(args) //nolint:staticcheck
	})
}

func (s *busyStmt) Query(args []driver.Value) (driver.Rows, error) {
	return onBusy(context.Background(), s.policy, func() (driver.Rows, error) {
		return s.Stmt.Query(args) //nolint:staticcheck
	})
}

func (s *busyStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	e, ok := s.Stmt.(driver.StmtExecContext)
	if !ok {
		return s.Exec(plainValues(args))
	}
	return onBusy(ctx, s.policy, func() (driver.Result, error) { return e.ExecContext(ctx, args) })
}

func (s *busyStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := s.Stmt.(driver.StmtQueryContext)
	if !ok {
		return s.Query(plainValues(args))
	}
	return onBusy(ctx, s.policy, func() (driver.Rows, error) { return q.QueryContext(ctx, args) })
}

func plainValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, 0, len(args))
	for _, a := range args {
		out = append(out, a.Value)
	}
	return out
}
