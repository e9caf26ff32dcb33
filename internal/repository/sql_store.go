package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type Config struct {
	Driver     string
	SQLitePath string
	Postgres   Credentials
	// MigrationsPath holds one sub-directory per driver.
	MigrationsPath string
	Currency       string
}

// SQLStore implements Store on sqlite or postgres through database/sql.
// Both drivers accept $n placeholders, so the queries are shared.
type SQLStore struct {
	db       *sql.DB
	driver   string
	currency string
}

func NewSQLStore(cfg Config) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// a :memory: database exists per connection
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		psqlconn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Postgres.Host,
			cfg.Postgres.Port,
			cfg.Postgres.User,
			cfg.Postgres.Password,
			cfg.Postgres.DBName)

		db, err = sql.Open("postgres", psqlconn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(10)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLStore{db: db, driver: cfg.Driver, currency: cfg.Currency}, nil
}

func (s *SQLStore) RunMigrations(migrationsPath string) error {
	var (
		driver database.Driver
		err    error
	)
	switch s.driver {
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	default:
		driver, err = postgres.WithInstance(s.db, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", filepath.Join(migrationsPath, s.driver)),
		s.driver,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, quantity, image
		FROM products
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Quantity, &p.Image); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid price for product %s: %w", p.ID, err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (s *SQLStore) SaveProducts(ctx context.Context, products ...domain.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if err := upsertProduct(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}
	return nil
}

func upsertProduct(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	query := `INSERT INTO products (id, name, price, quantity, image)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE SET
	              name = excluded.name,
	              price = excluded.price,
	              quantity = excluded.quantity,
	              image = excluded.image`

	if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.Price.String(), p.Quantity, p.Image); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *SQLStore) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT id, created_at, items, total_amount, customer_name, customer_phone, customer_email
		FROM transactions
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var (
			t                     domain.Transaction
			createdAt, items, sum string
		)
		err := rows.Scan(&t.ID, &createdAt, &items, &sum,
			&t.Customer.Name, &t.Customer.Phone, &t.Customer.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Date, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid date for transaction %s: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(items), &t.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items for transaction %s: %w", t.ID, err)
		}
		if t.TotalAmount, err = decimal.NewFromString(sum); err != nil {
			return nil, fmt.Errorf("invalid total for transaction %s: %w", t.ID, err)
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return txs, nil
}

func (s *SQLStore) RecordCheckout(ctx context.Context, t domain.Transaction, stock []domain.Product) error {
	itemsJSON, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction items: %w", err)
	}
	payload, err := newTransactionCompleted(t, s.currency)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range stock {
		if _, err := tx.ExecContext(ctx, `UPDATE products SET quantity = $1 WHERE id = $2`, p.Quantity, p.ID); err != nil {
			return fmt.Errorf("update stock for %s: %w", p.ID, err)
		}
	}

	query := `INSERT INTO transactions (id, created_at, items, total_amount, customer_name, customer_phone, customer_email)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, query,
		t.ID,
		t.Date.UTC().Format(time.RFC3339Nano),
		string(itemsJSON),
		t.TotalAmount.String(),
		t.Customer.Name,
		t.Customer.Phone,
		t.Customer.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	outbox := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	           VALUES ($1, $2, $3, $4)`
	_, err = tx.ExecContext(ctx, outbox,
		t.ID,
		EventTransactionCompleted,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout: %w", err)
	}
	return nil
}

func (s *SQLStore) LoadTemplates(ctx context.Context) ([]domain.ReceiptTemplate, error) {
	query := `
		SELECT id, name, brand_color, logo, header_text, footer_text, twitter, instagram, facebook
		FROM receipt_templates
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.ReceiptTemplate
	for rows.Next() {
		var (
			t    domain.ReceiptTemplate
			logo sql.NullString
		)
		err := rows.Scan(&t.ID, &t.Name, &t.BrandColor, &logo, &t.HeaderText, &t.FooterText,
			&t.SocialLinks.Twitter, &t.SocialLinks.Instagram, &t.SocialLinks.Facebook)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt template: %w", err)
		}
		if logo.Valid {
			t.Logo = &logo.String
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return templates, nil
}

func (s *SQLStore) SaveTemplates(ctx context.Context, templates ...domain.ReceiptTemplate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO receipt_templates (id, name, brand_color, logo, header_text, footer_text, twitter, instagram, facebook)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (id) DO UPDATE SET
	              name = excluded.name,
	              brand_color = excluded.brand_color,
	              logo = excluded.logo,
	              header_text = excluded.header_text,
	              footer_text = excluded.footer_text,
	              twitter = excluded.twitter,
	              instagram = excluded.instagram,
	              facebook = excluded.facebook`

	for _, t := range templates {
		var logo sql.NullString
		if t.Logo != nil {
			logo = sql.NullString{String: *t.Logo, Valid: true}
		}
		_, err := tx.ExecContext(ctx, query, t.ID, t.Name, t.BrandColor, logo, t.HeaderText, t.FooterText,
			t.SocialLinks.Twitter, t.SocialLinks.Instagram, t.SocialLinks.Facebook)
		if err != nil {
			return fmt.Errorf("upsert receipt template %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit receipt templates: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM receipt_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete receipt template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete receipt template: %w", err)
	}
	if n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *SQLStore) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var (
			e                  OutboxEvent
			payload, createdAt string
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at for outbox event %d: %w", e.ID, err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (s *SQLStore) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed_at = $1 WHERE id = $2`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d processed: %w", id, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
