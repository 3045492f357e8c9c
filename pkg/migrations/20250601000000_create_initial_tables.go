package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		statements := []string{
			`
			CREATE TABLE users (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				external_id TEXT NOT NULL,
				email TEXT NOT NULL,
				name TEXT,
				avatar_url TEXT,
				location TEXT
			)
			`,
			`CREATE UNIQUE INDEX ux_users_external_id ON users (external_id)`,
			`CREATE UNIQUE INDEX ux_users_email ON users (email)`,
			`
			CREATE TABLE books (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				isbn10 TEXT,
				isbn13 TEXT,
				description TEXT,
				cover_image_url TEXT,
				publication_date TIMESTAMPTZ,
				publisher TEXT,
				page_count INTEGER,
				genres TEXT NOT NULL DEFAULT '[]',
				average_rating REAL
			)
			`,
			`CREATE UNIQUE INDEX ux_books_isbn10 ON books (isbn10) WHERE isbn10 IS NOT NULL`,
			`CREATE UNIQUE INDEX ux_books_isbn13 ON books (isbn13) WHERE isbn13 IS NOT NULL`,
			`CREATE INDEX ix_books_average_rating ON books (average_rating DESC, id)`,
			`
			CREATE TABLE shelves (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id TEXT REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				name TEXT NOT NULL
			)
			`,
			`CREATE UNIQUE INDEX ux_shelves_user_name ON shelves (user_id, name)`,
			`
			CREATE TABLE book_entries (
				id TEXT PRIMARY KEY,
				added_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id TEXT REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				book_id TEXT REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				shelf_id TEXT REFERENCES shelves (id) ON DELETE CASCADE NOT NULL
			)
			`,
			`CREATE UNIQUE INDEX ux_book_entries ON book_entries (user_id, book_id, shelf_id)`,
			`CREATE INDEX ix_book_entries_book_id ON book_entries (book_id)`,
			`CREATE INDEX ix_book_entries_shelf_id ON book_entries (shelf_id)`,
			`
			CREATE TABLE reviews (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id TEXT REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				book_id TEXT REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
				title TEXT,
				content TEXT NOT NULL
			)
			`,
			`CREATE UNIQUE INDEX ux_reviews_user_book ON reviews (user_id, book_id)`,
			`CREATE INDEX ix_reviews_book_id ON reviews (book_id)`,
			`
			CREATE TABLE sellers (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('Library', 'Seller')),
				location TEXT NOT NULL DEFAULT '',
				location_link TEXT NOT NULL DEFAULT '',
				website_url TEXT,
				phone_number TEXT,
				instagram TEXT,
				telegram TEXT,
				facebook TEXT,
				image_url TEXT
			)
			`,
			`
			CREATE TABLE seller_listings (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id TEXT REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				seller_id TEXT REFERENCES sellers (id) ON DELETE CASCADE NOT NULL,
				price REAL NOT NULL DEFAULT 0,
				currency TEXT NOT NULL DEFAULT 'UZS',
				available BOOLEAN NOT NULL DEFAULT TRUE,
				transaction_type TEXT NOT NULL DEFAULT 'Buy' CHECK (transaction_type IN ('Buy', 'Borrow', 'Free')),
				product_link TEXT NOT NULL DEFAULT ''
			)
			`,
			`CREATE INDEX ix_seller_listings_book_id ON seller_listings (book_id)`,
			`CREATE INDEX ix_seller_listings_seller_id ON seller_listings (seller_id)`,
		}

		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"seller_listings", "sellers", "reviews", "book_entries", "shelves", "books", "users"} {
			if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
