package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the current version of the mock database layout.
const SchemaVersion = 1

var (
	ErrNotFound      = errors.New("mockapi: not found")
	ErrNotPublished  = errors.New("mockapi: form is not published")
	ErrEmailTaken    = errors.New("mockapi: email already registered")
	ErrBadCredential = errors.New("mockapi: invalid email or password")
)

// User is an account row.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

// Form is a draft or published form row. FinalJSON is empty until publish.
type Form struct {
	ID        int64
	PublicID  string
	OwnerID   int64
	Title     string
	DraftJSON string
	FinalJSON string
	CreatedAt time.Time
}

// SubmissionRow is one stored submission.
type SubmissionRow struct {
	ID            int64
	FormID        int64
	Email         string
	SubmittedData string
	SubmittedAt   time.Time
}

// Store persists mock collaborator state in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (or creates) the database at path and migrates it. The
// special path ":memory:" keeps everything in process.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("mockapi: open: empty db path")
	}
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mockapi: open: create db dir: %w", err)
		}
		dsn = "file:" + path + "?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("mockapi: open: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" databases are
	// per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mockapi: open: ping: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("mockapi: migrate: create schema_migrations: %w", err)
	}
	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("mockapi: migrate: read version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("mockapi: migrate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tokens (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS forms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT NOT NULL UNIQUE,
			owner_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			draft_json TEXT NOT NULL,
			final_json TEXT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			form_id INTEGER NOT NULL,
			email TEXT NOT NULL,
			submitted_data TEXT NOT NULL,
			submitted_at TEXT NOT NULL,
			FOREIGN KEY(form_id) REFERENCES forms(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_forms_owner ON forms(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id);`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("mockapi: migrate: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("mockapi: migrate: record version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mockapi: migrate: commit: %w", err)
	}
	return nil
}

// CreateUser inserts an account. A duplicate email returns ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	if _, err := s.UserByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(name, email, password_hash, created_at) VALUES (?, ?, ?, ?);`,
		name, email, passwordHash, s.timestamp())
	if err != nil {
		return User{}, fmt.Errorf("mockapi: create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("mockapi: create user: %w", err)
	}
	return User{ID: id, Name: name, Email: email, PasswordHash: passwordHash}, nil
}

// UserByEmail looks an account up by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash FROM users WHERE email = ?;`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("mockapi: user by email: %w", err)
	}
	return u, nil
}

// SaveToken stores a bearer token for userID.
func (s *Store) SaveToken(ctx context.Context, token string, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens(token, user_id, created_at) VALUES (?, ?, ?);`,
		token, userID, s.timestamp()); err != nil {
		return fmt.Errorf("mockapi: save token: %w", err)
	}
	return nil
}

// UserByToken resolves a bearer token.
func (s *Store) UserByToken(ctx context.Context, token string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash
		FROM tokens t JOIN users u ON u.id = t.user_id
		WHERE t.token = ?;`, token).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("mockapi: user by token: %w", err)
	}
	return u, nil
}

// CreateForm stores a new draft.
func (s *Store) CreateForm(ctx context.Context, ownerID int64, publicID, title, draftJSON string) (Form, error) {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO forms(public_id, owner_id, title, draft_json, created_at) VALUES (?, ?, ?, ?, ?);`,
		publicID, ownerID, title, draftJSON, now.Format(time.RFC3339))
	if err != nil {
		return Form{}, fmt.Errorf("mockapi: create form: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Form{}, fmt.Errorf("mockapi: create form: %w", err)
	}
	return Form{ID: id, PublicID: publicID, OwnerID: ownerID, Title: title, DraftJSON: draftJSON, CreatedAt: now}, nil
}

// FormByPublicID looks a form up by its public id.
func (s *Store) FormByPublicID(ctx context.Context, publicID string) (Form, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, public_id, owner_id, title, draft_json, COALESCE(final_json, ''), created_at
		FROM forms WHERE public_id = ?;`, publicID)
	return scanForm(row)
}

// UpdateDraft replaces the draft field list of a form.
func (s *Store) UpdateDraft(ctx context.Context, id int64, draftJSON string) error {
	return s.exec(ctx, "update draft", `UPDATE forms SET draft_json = ? WHERE id = ?;`, draftJSON, id)
}

// Publish stores the final field list of a form.
func (s *Store) Publish(ctx context.Context, id int64, finalJSON string) error {
	return s.exec(ctx, "publish", `UPDATE forms SET final_json = ? WHERE id = ?;`, finalJSON, id)
}

// FormsByOwner lists the forms of ownerID, newest first.
func (s *Store) FormsByOwner(ctx context.Context, ownerID int64) ([]Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, public_id, owner_id, title, draft_json, COALESCE(final_json, ''), created_at
		FROM forms WHERE owner_id = ? ORDER BY id DESC;`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("mockapi: list forms: %w", err)
	}
	defer rows.Close()

	var out []Form
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mockapi: list forms: %w", err)
	}
	return out, nil
}

// AddSubmission stores one submission of formID.
func (s *Store) AddSubmission(ctx context.Context, formID int64, email, data string) error {
	return s.exec(ctx, "add submission",
		`INSERT INTO submissions(form_id, email, submitted_data, submitted_at) VALUES (?, ?, ?, ?);`,
		formID, email, data, s.timestamp())
}

// Submissions lists the submissions of formID in arrival order.
func (s *Store) Submissions(ctx context.Context, formID int64) ([]SubmissionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, email, submitted_data, submitted_at
		FROM submissions WHERE form_id = ? ORDER BY id;`, formID)
	if err != nil {
		return nil, fmt.Errorf("mockapi: list submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRow
	for rows.Next() {
		var (
			row SubmissionRow
			at  string
		)
		if err := rows.Scan(&row.ID, &row.FormID, &row.Email, &row.SubmittedData, &at); err != nil {
			return nil, fmt.Errorf("mockapi: scan submission: %w", err)
		}
		row.SubmittedAt = parseTime(at)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mockapi: list submissions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanForm(row scanner) (Form, error) {
	var (
		f  Form
		at string
	)
	err := row.Scan(&f.ID, &f.PublicID, &f.OwnerID, &f.Title, &f.DraftJSON, &f.FinalJSON, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Form{}, ErrNotFound
	}
	if err != nil {
		return Form{}, fmt.Errorf("mockapi: scan form: %w", err)
	}
	f.CreatedAt = parseTime(at)
	return f, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mockapi: %s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
