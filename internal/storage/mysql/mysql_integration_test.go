//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
	mysqlrepo "github.com/JCCTorres/toplist-backend-sub001/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }
func pint(i int) *int       { return &i }

func migrationsDir(t *testing.T) string {
	t.Helper()
	if d := os.Getenv("MIGRATIONS_DIR"); d != "" {
		return d
	}
	// default to the in-repo directory
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=toplist",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "toplist")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// Arrange — seed a property with valid JSON blobs
	p := domain.Property{
		PropertyID:  "BKV1",
		Title:       "Sea Breeze",
		Summary:     []byte(`{"price":250,"beds":3}`),
		Details:     []byte(`{"address":"101 Lighthouse Rd, Corolla, NC"}`),
		Category:    "house",
		IsActive:    true,
		LastSync:    &now,
		RawUpstream: []byte(`{"bkvPropertyId":"BKV1","category":"house"}`),
	}
	if err := repo.UpsertProperty(ctx, p); err != nil {
		t.Fatalf("UpsertProperty: %v", err)
	}

	// Upsert again with a new title; the row must update, not duplicate
	p.Title = "Sea Breeze Cottage"
	if err := repo.UpsertProperty(ctx, p); err != nil {
		t.Fatalf("UpsertProperty (update): %v", err)
	}

	got, err := repo.GetProperty(ctx, "BKV1")
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if got.Title != "Sea Breeze Cottage" || got.Category != "house" || !got.IsActive {
		t.Fatalf("unexpected property: %+v", got)
	}
	if got.LastSync == nil || !got.LastSync.Equal(now) {
		t.Fatalf("last_sync mismatch: %v vs %v", got.LastSync, now)
	}

	if _, err := repo.GetProperty(ctx, "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Mirror row
	b := domain.BookervilleProperty{
		BkvID:           "BKV1",
		Name:            pstr("Sea Breeze"),
		City:            pstr("Corolla"),
		State:           pstr("NC"),
		Bedrooms:        pint(3),
		RawXML:          []byte("<property><bkvPropertyId>BKV1</bkvPropertyId></property>"),
		DetailsSyncedAt: &now,
	}
	if err := repo.UpsertBookerville(ctx, b); err != nil {
		t.Fatalf("UpsertBookerville: %v", err)
	}

	// Soft delete: BKV1 present, BKV2 absent
	p2 := p
	p2.PropertyID = "BKV2"
	if err := repo.UpsertProperty(ctx, p2); err != nil {
		t.Fatalf("UpsertProperty BKV2: %v", err)
	}
	n, err := repo.DeactivateMissing(ctx, []string{"BKV1"}, now)
	if err != nil {
		t.Fatalf("DeactivateMissing: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deactivated, got %d", n)
	}
	gone, err := repo.GetProperty(ctx, "BKV2")
	if err != nil {
		t.Fatalf("GetProperty BKV2 after soft delete: %v", err)
	}
	if gone.IsActive {
		t.Fatalf("BKV2 should be inactive")
	}

	// Cards only list active rows
	cards, err := repo.ListCards(ctx, domain.CardsQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) != 1 || cards[0].PropertyID != "BKV1" {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	// Curated category update + miss log
	if err := repo.SetCategory(ctx, "BKV1", "beachfront"); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if err := repo.SetCategory(ctx, "missing", "x"); err != domain.ErrNotFound {
		t.Fatalf("SetCategory missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.LogMiss(ctx, "BKV9", 404, "details fetch"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}

	// Client properties
	if _, err := db.ExecContext(ctx,
		`INSERT INTO client_properties (airbnb_id, url, owner) VALUES (?, ?, ?)`,
		"999", "https://www.airbnb.com/rooms/999", "Pat"); err != nil {
		t.Fatalf("seed client property: %v", err)
	}
	stale, err := repo.ListStaleClientProperties(ctx, now)
	if err != nil {
		t.Fatalf("ListStaleClientProperties: %v", err)
	}
	if len(stale) != 1 || stale[0].AirbnbID != "999" {
		t.Fatalf("unexpected stale rows: %+v", stale)
	}
	if err := repo.TouchClientProperty(ctx, "999", now); err != nil {
		t.Fatalf("TouchClientProperty: %v", err)
	}
	stale, err = repo.ListStaleClientProperties(ctx, now)
	if err != nil {
		t.Fatalf("ListStaleClientProperties (after touch): %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("expected no stale rows, got %+v", stale)
	}

	// Users + contact messages
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, is_admin) VALUES (?, ?, ?, 1)`,
		"admin@toplist.test", "Admin", "$2a$04$notarealhash"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	u, err := repo.GetUserByEmail(ctx, "admin@toplist.test")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !u.IsAdmin || u.Name != "Admin" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := repo.InsertContactMessage(ctx, domain.ContactMessage{
		ID: "3b7e7a52-0000-4000-8000-000000000001", Name: "Jordan",
		Email: "jordan@example.com", Body: "hi",
	}); err != nil {
		t.Fatalf("InsertContactMessage: %v", err)
	}
}
