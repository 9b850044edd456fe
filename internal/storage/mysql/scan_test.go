package mysql_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mysqlrepo "github.com/JCCTorres/toplist-backend-sub001/internal/storage/mysql"
)

// A minimal driver serving one canned properties row, so single-row scan
// paths can be checked without a database. Row.Scan rejects sql.RawBytes
// destinations outright, which a live-server test can mask.

type propRowDriver struct{}

func (propRowDriver) Open(string) (driver.Conn, error) { return propRowConn{}, nil }

type propRowConn struct{}

func (propRowConn) Prepare(string) (driver.Stmt, error) { return propRowStmt{}, nil }
func (propRowConn) Close() error                        { return nil }
func (propRowConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

type propRowStmt struct{}

func (propRowStmt) Close() error  { return nil }
func (propRowStmt) NumInput() int { return -1 }

func (propRowStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("not supported")
}

func (propRowStmt) Query([]driver.Value) (driver.Rows, error) {
	return &propRowRows{}, nil
}

type propRowRows struct{ done bool }

func (r *propRowRows) Columns() []string {
	return []string{"property_id", "title", "summary", "details", "category", "is_active", "last_sync", "raw_upstream"}
}

func (r *propRowRows) Close() error { return nil }

func (r *propRowRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = "BKV100"
	dest[1] = "Lighthouse Cottage"
	dest[2] = []byte(`{"price":250}`)
	dest[3] = []byte(`{"address":"101 Lighthouse Rd"}`)
	dest[4] = "beachfront"
	dest[5] = true
	dest[6] = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	dest[7] = []byte(`{"name":"Lighthouse Cottage"}`)
	return nil
}

func init() { sql.Register("proprow", propRowDriver{}) }

func TestGetProperty_ScansSingleRow(t *testing.T) {
	db, err := sql.Open("proprow", "")
	require.NoError(t, err)
	defer db.Close()

	repo := mysqlrepo.New(db)
	p, err := repo.GetProperty(context.Background(), "BKV100")
	require.NoError(t, err)

	assert.Equal(t, "BKV100", p.PropertyID)
	assert.Equal(t, "Lighthouse Cottage", p.Title)
	assert.Equal(t, "beachfront", p.Category)
	assert.True(t, p.IsActive)
	assert.JSONEq(t, `{"price":250}`, string(p.Summary))
	assert.JSONEq(t, `{"name":"Lighthouse Cottage"}`, string(p.RawUpstream))
	require.NotNil(t, p.LastSync)
	assert.Equal(t, 2025, p.LastSync.Year())
}
