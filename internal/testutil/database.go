// Package testutil provides test fixtures for the catalog-imager project.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// CatalogSchema creates the coffee shop products table.
const CatalogSchema = `CREATE TABLE products (
	product_id INTEGER PRIMARY KEY,
	product_name TEXT NOT NULL,
	category TEXT,
	image_url TEXT
)`

// CatalogDB is a sqlite catalog on disk that tests can seed and inspect.
type CatalogDB struct {
	t    *testing.T
	db   *sqlx.DB
	Path string
}

// NewCatalogDB creates a products table in a temporary sqlite file and
// inserts the given items.
//
// Example:
//
//	catalog := testutil.NewCatalogDB(t,
//		model.Item{ID: 1, Name: "Latte", Category: "Coffee"},
//	)
//	opts := storage.ConnectionOptions{Kind: storage.KindSQLite, Path: catalog.Path}
//	store, err := storage.Open(ctx, opts, storage.DefaultSchema())
func NewCatalogDB(t *testing.T, items ...model.Item) *CatalogDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open test catalog: %v", err)
	}
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	if _, err := db.Exec(CatalogSchema); err != nil {
		t.Fatalf("failed to create products table: %v", err)
	}

	c := &CatalogDB{t: t, db: db, Path: path}
	c.Insert(items...)
	return c
}

// Insert adds items to the products table.
func (c *CatalogDB) Insert(items ...model.Item) {
	c.t.Helper()
	for _, item := range items {
		var category any = item.Category
		if item.Category == "" {
			category = nil
		}
		if _, err := c.db.Exec(
			`INSERT INTO products (product_id, product_name, category, image_url) VALUES (?, ?, ?, ?)`,
			item.ID, item.Name, category, item.ImageURL,
		); err != nil {
			c.t.Fatalf("failed to insert item %d: %v", item.ID, err)
		}
	}
}

// Exec runs a statement against the catalog.
func (c *CatalogDB) Exec(query string, args ...any) {
	c.t.Helper()
	if _, err := c.db.Exec(query, args...); err != nil {
		c.t.Fatalf("exec %q: %v", query, err)
	}
}

// FailWritesFor installs a trigger that aborts any update of the given item.
func (c *CatalogDB) FailWritesFor(id int64) {
	c.t.Helper()
	c.Exec(fmt.Sprintf(`CREATE TRIGGER fail_item_%d BEFORE UPDATE ON products
		WHEN NEW.product_id = %d
		BEGIN SELECT RAISE(ABORT, 'write rejected for item %d'); END`, id, id, id))
}

// Images returns every item's current image reference keyed by ID.
func (c *CatalogDB) Images() map[int64]string {
	c.t.Helper()

	rows := []struct {
		Image *string `db:"image_url"`
		ID    int64   `db:"product_id"`
	}{}
	if err := c.db.Select(&rows, `SELECT product_id, image_url FROM products`); err != nil {
		c.t.Fatalf("failed to read images: %v", err)
	}

	images := make(map[int64]string, len(rows))
	for _, r := range rows {
		if r.Image != nil {
			images[r.ID] = *r.Image
		} else {
			images[r.ID] = ""
		}
	}
	return images
}
