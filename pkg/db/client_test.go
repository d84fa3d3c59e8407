package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Test clients run with SkipDefaultTransaction like production, so WithTx is
// the only thing standing between a multi-statement write and a partial one.
func setupTestClient(t *testing.T) *Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.Exec(`CREATE TABLE entries (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return &Client{conn: conn}
}

func countEntries(t *testing.T, c *Client) int64 {
	t.Helper()
	var count int64
	if err := c.conn.Table("entries").Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return count
}

func TestWithTxCommits(t *testing.T) {
	client := setupTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO entries (name) VALUES ('a')`).Error; err != nil {
			return err
		}
		return tx.Exec(`INSERT INTO entries (name) VALUES ('b')`).Error
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if got := countEntries(t, client); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := setupTestClient(t)

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO entries (name) VALUES ('a')`).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := countEntries(t, client); got != 0 {
		t.Fatalf("entries = %d, want 0 after rollback", got)
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	client := setupTestClient(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Exec(`INSERT INTO entries (name) VALUES ('a')`).Error; err != nil {
				return err
			}
			panic("mid-transaction failure")
		})
	}()

	if got := countEntries(t, client); got != 0 {
		t.Fatalf("entries = %d, want 0 after rollback", got)
	}
}
