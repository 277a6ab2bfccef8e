/*
Package sqlite provides the SQLite-backed record store for students, tuition
ledger entries, fee-rate history, loans and lending ledger entries.

PURPOSE:
  Persistence for everything the engines compute over. The engines themselves
  never touch this package: handlers fetch a snapshot here, call the engine,
  and write back whatever rows the engine returned.

APPEND-ONLY POSTURE:
  Ledger tables have no update path. The only mutations beyond INSERT are the
  ones the domain explicitly allows:
  - tuition: deleting a PAYMENT row, removing a PAUSE marker (unpause)
  - fee rates: upserting the record for a month (same-month re-change)
  - loans: the single active -> settled transition

KEY TABLES:
  students:         Registry anchoring tuition snapshots
  tuition_entries:  Append-only fee ledger (FEE_DUE, PAYMENT, PAUSE, ...)
  fee_rates:        Rate-change history, unique per (student, month)
  loans:            Loan terms and settlement state
  lending_entries:  Append-only lending ledger (PAYMENT stored negative)

INDEXES:
  idx_unique_fee_due backs the documented pre-insert existence check: at most
  one FEE_DUE row per (student, month). The check runs first and gives the
  domain error; the index catches racing writers.

CONCURRENCY:
  sync.RWMutex around the handle, same as the engine has always done with
  SQLite. WAL mode for concurrent readers.

USAGE:
  store, err := sqlite.New("./data/teachease.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - tuition/types.go: Snapshot assembled from these tables
  - api/handlers.go: The only caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/lending"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// Store implements persistence on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Student is a registry row anchoring a tuition ledger.
type Student struct {
	ID          string
	Name        string
	Phone       string
	JoiningDate time.Time
	CreatedAt   time.Time
}

// New creates a store backed by the given database path.
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

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset clears all data. Demo scenario loading only; there is no production
// path to this.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{
		"lending_entries", "loans", "tuition_entries", "fee_rates", "students",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Students (tuition subjects)
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		joining_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Tuition ledger (append-only)
	CREATE TABLE IF NOT EXISTS tuition_entries (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		month_key TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tuition_entries_student
		ON tuition_entries(student_id, month_key);
	CREATE INDEX IF NOT EXISTS idx_tuition_entries_type
		ON tuition_entries(entry_type);

	-- CRITICAL: at most one FEE_DUE per (student, month). The engine filters
	-- already-charged months before insert; this index catches racing writers.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_fee_due
		ON tuition_entries(student_id, month_key)
		WHERE entry_type = 'FEE_DUE';

	-- Fee-rate history, one record per (student, effective month).
	-- Re-changing the rate within the same month upserts the record.
	CREATE TABLE IF NOT EXISTS fee_rates (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		rate TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(student_id, effective_from)
	);

	CREATE INDEX IF NOT EXISTS idx_fee_rates_student
		ON fee_rates(student_id, effective_from);

	-- Loans
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		borrower_id TEXT NOT NULL,
		principal TEXT NOT NULL,
		interest_type TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		settled_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_borrower
		ON loans(borrower_id);
	CREATE INDEX IF NOT EXISTS idx_loans_status
		ON loans(status);

	-- Lending ledger (append-only; PAYMENT rows stored negative)
	CREATE TABLE IF NOT EXISTS lending_entries (
		id TEXT PRIMARY KEY,
		borrower_id TEXT NOT NULL,
		loan_id TEXT,
		entry_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lending_entries_borrower
		ON lending_entries(borrower_id, entry_date);
	CREATE INDEX IF NOT EXISTS idx_lending_entries_loan
		ON lending_entries(loan_id) WHERE loan_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STUDENTS
// =============================================================================

// SaveStudent inserts a student. IDs are minted here when absent.
func (s *Store) SaveStudent(ctx context.Context, student Student) (Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (id, name, phone, joining_date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		student.ID,
		student.Name,
		student.Phone,
		student.JoiningDate.Format(time.RFC3339),
		student.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Student{}, fmt.Errorf("failed to save student: %w", err)
	}
	return student, nil
}

// GetStudent returns a student by ID, or ledger.ErrStudentNotFound.
func (s *Store) GetStudent(ctx context.Context, id string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, joining_date, created_at
		FROM students WHERE id = ?`, id)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ledger.ErrStudentNotFound
	}
	return student, err
}

// ListStudents returns all students, newest first.
func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, joining_date, created_at
		FROM students ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// =============================================================================
// FEE RATES
// =============================================================================

// UpsertFeeRate records a rate change. A second change for the same effective
// month supersedes the first (the same-month upsert rule).
func (s *Store) UpsertFeeRate(ctx context.Context, record tuition.FeeRateRecord) (tuition.FeeRateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fee_rates (id, student_id, effective_from, rate, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(student_id, effective_from)
		DO UPDATE SET rate = excluded.rate, created_at = excluded.created_at`,
		record.ID,
		record.StudentID,
		string(record.EffectiveFrom),
		record.Rate.String(),
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return tuition.FeeRateRecord{}, fmt.Errorf("failed to upsert fee rate: %w", err)
	}
	return record, nil
}

// ListFeeRates returns a student's rate history, earliest first.
func (s *Store) ListFeeRates(ctx context.Context, studentID string) ([]tuition.FeeRateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, effective_from, rate, created_at
		FROM fee_rates WHERE student_id = ?
		ORDER BY effective_from ASC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee rates: %w", err)
	}
	defer rows.Close()

	var records []tuition.FeeRateRecord
	for rows.Next() {
		var r tuition.FeeRateRecord
		var effectiveFrom, rate, createdAt string
		if err := rows.Scan(&r.ID, &r.StudentID, &effectiveFrom, &rate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan fee rate: %w", err)
		}
		r.EffectiveFrom = ledger.MonthKey(effectiveFrom)
		if r.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("failed to parse rate: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// TUITION LEDGER
// =============================================================================

// AppendEntries persists tuition ledger rows atomically. FEE_DUE rows are
// checked against existing months first so the caller gets the domain error;
// the unique index backstops concurrent generation.
func (s *Store) AppendEntries(ctx context.Context, entries []tuition.Entry) ([]tuition.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}

		if e.Type == tuition.EntryFeeDue {
			var count int
			err := tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM tuition_entries
				WHERE student_id = ? AND month_key = ? AND entry_type = 'FEE_DUE'`,
				e.StudentID, string(e.Month),
			).Scan(&count)
			if err != nil {
				return nil, fmt.Errorf("failed to check fee due existence: %w", err)
			}
			if count > 0 {
				return nil, ledger.ErrDuplicateFeeDue
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO tuition_entries
			(id, student_id, entry_type, month_key, amount, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID,
			e.StudentID,
			string(e.Type),
			string(e.Month),
			e.Amount.String(),
			e.Description,
			e.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return nil, ledger.ErrDuplicateFeeDue
			}
			return nil, fmt.Errorf("failed to append tuition entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entries: %w", err)
	}
	return entries, nil
}

// ListEntries returns a student's full tuition ledger, earliest month first.
func (s *Store) ListEntries(ctx context.Context, studentID string) ([]tuition.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, entry_type, month_key, amount, description, created_at
		FROM tuition_entries WHERE student_id = ?
		ORDER BY month_key ASC, created_at ASC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tuition entries: %w", err)
	}
	defer rows.Close()

	var entries []tuition.Entry
	for rows.Next() {
		var e tuition.Entry
		var entryType, monthKey, amount, createdAt string
		var description sql.NullString
		if err := rows.Scan(&e.ID, &e.StudentID, &entryType, &monthKey, &amount, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tuition entry: %w", err)
		}
		e.Type = tuition.EntryType(entryType)
		e.Month = ledger.MonthKey(monthKey)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		e.Description = description.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeletePayment removes a PAYMENT row. This is the only deletion the tuition
// ledger allows; other entry types stay put.
func (s *Store) DeletePayment(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tuition_entries WHERE id = ? AND entry_type = 'PAYMENT'`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

// SetMonthPaused toggles the PAUSE marker for a month. Pausing inserts the
// marker (idempotently); unpausing removes it. Payments already recorded
// against the month are untouched.
func (s *Store) SetMonthPaused(ctx context.Context, studentID string, month ledger.MonthKey, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !paused {
		_, err := s.db.ExecContext(ctx, `
			DELETE FROM tuition_entries
			WHERE student_id = ? AND month_key = ? AND entry_type = 'PAUSE'`,
			studentID, string(month))
		if err != nil {
			return fmt.Errorf("failed to unpause month: %w", err)
		}
		return nil
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tuition_entries
		WHERE student_id = ? AND month_key = ? AND entry_type = 'PAUSE'`,
		studentID, string(month),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check pause marker: %w", err)
	}
	if count > 0 {
		return nil // already paused
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tuition_entries
		(id, student_id, entry_type, month_key, amount, description, created_at)
		VALUES (?, ?, 'PAUSE', ?, '0', ?, ?)`,
		uuid.NewString(),
		studentID,
		string(month),
		"Paused "+month.Label(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to pause month: %w", err)
	}
	return nil
}

// TuitionSnapshot assembles the engine's full view of one student.
func (s *Store) TuitionSnapshot(ctx context.Context, studentID string) (tuition.Snapshot, error) {
	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return tuition.Snapshot{}, err
	}
	entries, err := s.ListEntries(ctx, studentID)
	if err != nil {
		return tuition.Snapshot{}, err
	}
	rates, err := s.ListFeeRates(ctx, studentID)
	if err != nil {
		return tuition.Snapshot{}, err
	}
	return tuition.Snapshot{
		StudentID:   studentID,
		JoiningDate: student.JoiningDate,
		Entries:     entries,
		Rates:       rates,
	}, nil
}

// =============================================================================
// LOANS
// =============================================================================

// CreateLoan persists a loan together with its single PRINCIPAL entry,
// atomically. The entry's amount must equal the principal; the caller builds
// both.
func (s *Store) CreateLoan(ctx context.Context, loan lending.Loan, principal lending.Entry) (lending.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = time.Now().UTC()
	}
	principal.LoanID = loan.ID
	if principal.ID == "" {
		principal.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lending.Loan{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans
		(id, borrower_id, principal, interest_type, interest_rate, start_date, status, settled_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		loan.ID,
		loan.BorrowerID,
		loan.Principal.String(),
		string(loan.InterestType),
		loan.InterestRate.String(),
		loan.StartDate.Format(time.RFC3339),
		string(lending.LoanActive),
		loan.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return lending.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}

	if err := insertLendingEntry(ctx, tx, principal); err != nil {
		return lending.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return lending.Loan{}, fmt.Errorf("failed to commit loan: %w", err)
	}
	loan.Status = lending.LoanActive
	return loan, nil
}

// GetLoan returns a loan by ID, or ledger.ErrLoanNotFound.
func (s *Store) GetLoan(ctx context.Context, id string) (lending.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, borrower_id, principal, interest_type, interest_rate,
		       start_date, status, settled_at, created_at
		FROM loans WHERE id = ?`, id)

	loan, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return lending.Loan{}, ledger.ErrLoanNotFound
	}
	return loan, err
}

// ListLoansByBorrower returns a borrower's loans, oldest first.
func (s *Store) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]lending.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrower_id, principal, interest_type, interest_rate,
		       start_date, status, settled_at, created_at
		FROM loans WHERE borrower_id = ?
		ORDER BY created_at ASC`, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []lending.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// SettleLoan applies a computed settlement: flips the loan to settled and
// writes the write-off entry, if any, atomically. The UPDATE is guarded on
// status so a second settlement loses the race and gets ErrLoanSettled.
func (s *Store) SettleLoan(ctx context.Context, settled lending.Loan, writeOff *lending.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settled.SettledAt == nil {
		return fmt.Errorf("settled loan missing settled_at")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE loans SET status = ?, settled_at = ?
		WHERE id = ? AND status = ?`,
		string(lending.LoanSettled),
		settled.SettledAt.Format(time.RFC3339),
		settled.ID,
		string(lending.LoanActive),
	)
	if err != nil {
		return fmt.Errorf("failed to settle loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrLoanSettled
	}

	if writeOff != nil {
		entry := *writeOff
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if err := insertLendingEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// LENDING LEDGER
// =============================================================================

// AppendLendingEntry persists one lending ledger row.
func (s *Store) AppendLendingEntry(ctx context.Context, entry lending.Entry) (lending.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := insertLendingEntry(ctx, s.db, entry); err != nil {
		return lending.Entry{}, err
	}
	return entry, nil
}

// ListLendingEntries returns a borrower's lending ledger, earliest first.
func (s *Store) ListLendingEntries(ctx context.Context, borrowerID string) ([]lending.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrower_id, loan_id, entry_type, amount, entry_date, description
		FROM lending_entries WHERE borrower_id = ?
		ORDER BY entry_date ASC, created_at ASC`, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lending entries: %w", err)
	}
	defer rows.Close()

	var entries []lending.Entry
	for rows.Next() {
		var e lending.Entry
		var loanID, description sql.NullString
		var amount, entryDate string
		if err := rows.Scan(&e.ID, &e.BorrowerID, &loanID, &e.Type, &amount, &entryDate, &description); err != nil {
			return nil, fmt.Errorf("failed to scan lending entry: %w", err)
		}
		e.LoanID = loanID.String
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		e.EntryDate, _ = time.Parse(time.RFC3339, entryDate)
		e.Description = description.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SCAN / EXEC HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertLendingEntry(ctx context.Context, db execer, e lending.Entry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO lending_entries
		(id, borrower_id, loan_id, entry_type, amount, entry_date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.BorrowerID,
		nullString(e.LoanID),
		string(e.Type),
		e.Amount.String(),
		e.EntryDate.Format(time.RFC3339),
		e.Description,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append lending entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (Student, error) {
	var s Student
	var phone sql.NullString
	var joiningDate, createdAt string
	if err := row.Scan(&s.ID, &s.Name, &phone, &joiningDate, &createdAt); err != nil {
		return Student{}, err
	}
	s.Phone = phone.String
	var err error
	if s.JoiningDate, err = time.Parse(time.RFC3339, joiningDate); err != nil {
		return Student{}, fmt.Errorf("failed to parse joining date: %w", err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return s, nil
}

func scanLoan(row rowScanner) (lending.Loan, error) {
	var l lending.Loan
	var principal, rate, startDate, status, createdAt string
	var settledAt sql.NullString
	if err := row.Scan(&l.ID, &l.BorrowerID, &principal, &l.InterestType, &rate,
		&startDate, &status, &settledAt, &createdAt); err != nil {
		return lending.Loan{}, err
	}
	var err error
	if l.Principal, err = decimal.NewFromString(principal); err != nil {
		return lending.Loan{}, fmt.Errorf("failed to parse principal: %w", err)
	}
	if l.InterestRate, err = decimal.NewFromString(rate); err != nil {
		return lending.Loan{}, fmt.Errorf("failed to parse interest rate: %w", err)
	}
	if l.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return lending.Loan{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	l.Status = lending.LoanStatus(status)
	if settledAt.Valid {
		t, err := time.Parse(time.RFC3339, settledAt.String)
		if err == nil {
			l.SettledAt = &t
		}
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return l, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
