package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE VIRTUAL TABLE books_fts USING fts5(
				book_id UNINDEXED,
				title,
				author,
				tokenize = 'unicode61 remove_diacritics 2'
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		// Books are written by catalog ingestion outside this service, so the
		// index follows the table through triggers.
		_, err = db.Exec(`
			CREATE TRIGGER books_fts_insert AFTER INSERT ON books BEGIN
				INSERT INTO books_fts (book_id, title, author) VALUES (new.id, new.title, new.author);
			END
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TRIGGER books_fts_update AFTER UPDATE OF title, author ON books BEGIN
				DELETE FROM books_fts WHERE book_id = old.id;
				INSERT INTO books_fts (book_id, title, author) VALUES (new.id, new.title, new.author);
			END
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TRIGGER books_fts_delete AFTER DELETE ON books BEGIN
				DELETE FROM books_fts WHERE book_id = old.id;
			END
		`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, stmt := range []string{
			`DROP TRIGGER IF EXISTS books_fts_delete`,
			`DROP TRIGGER IF EXISTS books_fts_update`,
			`DROP TRIGGER IF EXISTS books_fts_insert`,
			`DROP TABLE IF EXISTS books_fts`,
		} {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
