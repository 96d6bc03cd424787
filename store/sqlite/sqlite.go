/*
Package sqlite provides the SQLite-backed implementation of the storage
interface.

PURPOSE:
  Implements collections.Store using an embedded SQLite database. The
  engine targets a single-user, single-device deployment: one active
  writer at a time, every call a short-lived implicit transaction.

KEY TABLES:
  admin_accounts: Administrator credentials (seeded once)
  consultant:     Consultant credentials/info
  period:         Collection periods with the one-way export flag
  collectibles:   Loan account records, keyed by account_number
  import_runs:    Audit trail of batch imports

BOOTSTRAP:
  Schema creation is idempotent (CREATE TABLE IF NOT EXISTS throughout)
  and the default admin credential is seeded only when absent. Opening
  the same database twice never raises and never duplicates the seed.

UNIQUENESS:
  collectibles.account_number is the primary key; inserts use
  INSERT OR IGNORE so a duplicate account is silently skipped, never
  overwritten.

WAL MODE:
  SQLite is opened with WAL for durability and crash recovery, and with
  foreign keys on so collectibles.period_id must reference a real period.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety within the process; the embedded
  engine provides the rest.

USAGE:
  store, err := sqlite.New("./data/collections.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - collections/store.go: Interface definition
  - collections/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/eclc/collection-engine/collections"
)

// Default admin credential seeded on first bootstrap.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// Store implements collections.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedAdmin(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema. Safe to run repeatedly.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS admin_accounts (
		username TEXT NOT NULL,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS consultant (
		consultant_id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		name TEXT NOT NULL,
		admin_passcode TEXT NOT NULL,
		password TEXT NOT NULL,
		area TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS period (
		period_id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		date TEXT NOT NULL,
		is_exported INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS collectibles (
		account_number INTEGER PRIMARY KEY NOT NULL,
		name TEXT NOT NULL,
		remaining_balance TEXT NOT NULL,
		due_date TEXT NOT NULL,
		amount_paid TEXT NOT NULL DEFAULT '0',
		daily_due TEXT NOT NULL,
		is_printed INTEGER NOT NULL DEFAULT 0,
		period_id INTEGER NOT NULL REFERENCES period(period_id)
	);

	CREATE INDEX IF NOT EXISTS idx_collectibles_period
		ON collectibles(period_id);

	-- Export precondition check (hot path): unprinted rows per period
	CREATE INDEX IF NOT EXISTS idx_collectibles_period_printed
		ON collectibles(period_id, is_printed);

	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		period_id INTEGER NOT NULL REFERENCES period(period_id),
		inserted INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// seedAdmin inserts the default admin credential if it is absent.
func (s *Store) seedAdmin() error {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM admin_accounts WHERE username = ?",
		DefaultAdminUsername,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		"INSERT INTO admin_accounts (username, password) VALUES (?, ?)",
		DefaultAdminUsername, string(hash),
	)
	return err
}

// =============================================================================
// PERIODS
// =============================================================================

// CreatePeriod inserts a new open period and returns its generated ID.
func (s *Store) CreatePeriod(ctx context.Context, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO period (date, is_exported) VALUES (?, 0)",
		date.Format(collections.DateFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert period: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve inserted period id: %w", err)
	}
	return id, nil
}

// PeriodByID returns the period with the given ID, or nil.
func (s *Store) PeriodByID(ctx context.Context, id int64) (*collections.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPeriod(ctx,
		"SELECT period_id, date, is_exported FROM period WHERE period_id = ?", id)
}

// LatestPeriod returns the period with the highest ID, or nil.
func (s *Store) LatestPeriod(ctx context.Context) (*collections.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPeriod(ctx,
		"SELECT period_id, date, is_exported FROM period ORDER BY period_id DESC LIMIT 1")
}

func (s *Store) queryPeriod(ctx context.Context, query string, args ...any) (*collections.Period, error) {
	var p collections.Period
	var date string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &date, &p.Exported)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query period: %w", err)
	}

	p.Date, _ = time.Parse(collections.DateFormat, date)
	return &p, nil
}

// ListPeriods returns all periods.
func (s *Store) ListPeriods(ctx context.Context) ([]collections.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT period_id, date, is_exported FROM period")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []collections.Period
	for rows.Next() {
		var p collections.Period
		var date string
		if err := rows.Scan(&p.ID, &date, &p.Exported); err != nil {
			return nil, err
		}
		p.Date, _ = time.Parse(collections.DateFormat, date)
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// MarkPeriodExported sets the period's export flag.
func (s *Store) MarkPeriodExported(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE period SET is_exported = 1 WHERE period_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark period exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return collections.ErrPeriodNotFound
	}
	return nil
}

// =============================================================================
// COLLECTIBLES
// =============================================================================

// InsertCollectible writes a collectible unless the account number already
// exists. Returns true if a row was inserted.
func (s *Store) InsertCollectible(ctx context.Context, c collections.Collectible) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO collectibles
		(account_number, name, remaining_balance, due_date, amount_paid, daily_due, is_printed, period_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.AccountNumber,
		c.Name,
		c.RemainingBalance.String(),
		c.DueDate,
		c.AmountPaid.String(),
		c.DailyDue.String(),
		c.Printed,
		c.PeriodID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert collectible: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CollectibleByAccount returns the row for an account, or nil.
func (s *Store) CollectibleByAccount(ctx context.Context, accountNumber int64) (*collections.Collectible, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, err := s.queryCollectibles(ctx, `
		SELECT account_number, name, remaining_balance, due_date, amount_paid, daily_due, is_printed, period_id
		FROM collectibles
		WHERE account_number = ?`, accountNumber)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, nil
	}
	return &cs[0], nil
}

// ListOutstanding returns unprinted collectibles whose period has not been
// exported.
func (s *Store) ListOutstanding(ctx context.Context) ([]collections.Collectible, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCollectibles(ctx, `
		SELECT c.account_number, c.name, c.remaining_balance, c.due_date,
		       c.amount_paid, c.daily_due, c.is_printed, c.period_id
		FROM collectibles c
		JOIN period p ON c.period_id = p.period_id
		WHERE c.is_printed = 0 AND p.is_exported = 0`)
}

// ListCollectiblesByPeriod returns all collectibles for a period.
func (s *Store) ListCollectiblesByPeriod(ctx context.Context, periodID int64) ([]collections.Collectible, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCollectibles(ctx, `
		SELECT account_number, name, remaining_balance, due_date, amount_paid, daily_due, is_printed, period_id
		FROM collectibles
		WHERE period_id = ?`, periodID)
}

// ListCollectibles returns every collectible row.
func (s *Store) ListCollectibles(ctx context.Context) ([]collections.Collectible, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCollectibles(ctx, `
		SELECT account_number, name, remaining_balance, due_date, amount_paid, daily_due, is_printed, period_id
		FROM collectibles`)
}

func (s *Store) queryCollectibles(ctx context.Context, query string, args ...any) ([]collections.Collectible, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collectibles: %w", err)
	}
	defer rows.Close()

	var collectibles []collections.Collectible
	for rows.Next() {
		var c collections.Collectible
		var balance, paid, daily string
		if err := rows.Scan(
			&c.AccountNumber, &c.Name, &balance, &c.DueDate,
			&paid, &daily, &c.Printed, &c.PeriodID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collectible: %w", err)
		}
		c.RemainingBalance = parseDecimal(balance)
		c.AmountPaid = parseDecimal(paid)
		c.DailyDue = parseDecimal(daily)
		collectibles = append(collectibles, c)
	}
	return collectibles, rows.Err()
}

// UnprintedAccounts returns account numbers of a period's unprinted rows.
func (s *Store) UnprintedAccounts(ctx context.Context, periodID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT account_number FROM collectibles WHERE period_id = ? AND is_printed = 0",
		periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []int64
	for rows.Next() {
		var a int64
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// MarkPrinted flags a collectible as printed.
func (s *Store) MarkPrinted(ctx context.Context, accountNumber int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE collectibles SET is_printed = 1 WHERE account_number = ?",
		accountNumber)
	if err != nil {
		return fmt.Errorf("failed to mark collectible printed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return collections.ErrCollectibleNotFound
	}
	return nil
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// AdminByUsername returns the admin credential record, or nil.
func (s *Store) AdminByUsername(ctx context.Context, username string) (*collections.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a collections.Admin
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password FROM admin_accounts WHERE username = ?",
		username,
	).Scan(&a.Username, &a.PasswordHash)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AddConsultant inserts a consultant record and returns its generated ID.
func (s *Store) AddConsultant(ctx context.Context, c collections.Consultant) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO consultant (name, admin_passcode, password, area)
		VALUES (?, ?, ?, ?)`,
		c.Name, c.AdminPasscode, c.PasswordHash, c.Area,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert consultant: %w", err)
	}
	return res.LastInsertId()
}

// ConsultantByName returns the consultant record, or nil.
func (s *Store) ConsultantByName(ctx context.Context, name string) (*collections.Consultant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c collections.Consultant
	err := s.db.QueryRowContext(ctx, `
		SELECT consultant_id, name, admin_passcode, password, area
		FROM consultant WHERE name = ?`,
		name,
	).Scan(&c.ID, &c.Name, &c.AdminPasscode, &c.PasswordHash, &c.Area)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConsultants returns all consultant records.
func (s *Store) ListConsultants(ctx context.Context) ([]collections.Consultant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT consultant_id, name, admin_passcode, password, area FROM consultant ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consultants []collections.Consultant
	for rows.Next() {
		var c collections.Consultant
		if err := rows.Scan(&c.ID, &c.Name, &c.AdminPasscode, &c.PasswordHash, &c.Area); err != nil {
			return nil, err
		}
		consultants = append(consultants, c)
	}
	return consultants, rows.Err()
}

// =============================================================================
// IMPORT RUNS
// =============================================================================

// SaveImportRun records the outcome of a batch import.
func (s *Store) SaveImportRun(ctx context.Context, run collections.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, period_id, inserted, skipped, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.PeriodID, run.Inserted, run.Skipped, run.Failed,
		run.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// ListImportRuns returns import runs, most recent first.
func (s *Store) ListImportRuns(ctx context.Context) ([]collections.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, period_id, inserted, skipped, failed, created_at
		FROM import_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []collections.ImportRun
	for rows.Next() {
		var r collections.ImportRun
		var createdAt string
		if err := rows.Scan(&r.ID, &r.PeriodID, &r.Inserted, &r.Skipped, &r.Failed, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Helper functions

func parseDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
