package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quirbit/qb/internal/model"
)

const currentSchemaVersion = 1

// Submission rate limit applied to link inserts per owner.
const (
	submissionLimit  = 30
	submissionWindow = time.Minute
)

// SQLite implements Backend using a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite creates a SQLite backend with the given database path.
func NewSQLite(path string) (*SQLite, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys and set pragmas for performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLite{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema and seeds the default categories.
func (s *SQLite) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY NOT NULL,
			email TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS default_categories (
			name TEXT PRIMARY KEY NOT NULL,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY NOT NULL,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (owner_id, name)
		);

		CREATE INDEX IF NOT EXISTS idx_categories_owner_id ON categories(owner_id);

		CREATE TABLE IF NOT EXISTS category_colors (
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (owner_id, name)
		);

		CREATE TABLE IF NOT EXISTS links (
			id TEXT PRIMARY KEY NOT NULL,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			notes TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_links_owner_id ON links(owner_id);
		CREATE INDEX IF NOT EXISTS idx_links_category ON links(owner_id, category);

		CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY NOT NULL,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notes_owner_id ON notes(owner_id);

		CREATE TABLE IF NOT EXISTS submission_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			attempted_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_submission_attempts_owner
			ON submission_attempts(owner_id, attempted_at);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Seed the shared default category list
	stmt, err := s.db.Prepare(`
		INSERT OR IGNORE INTO default_categories (name, position) VALUES (?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, name := range model.DefaultCategories {
		if _, err := stmt.Exec(name, i); err != nil {
			return err
		}
	}

	return nil
}

// SignIn resolves an email to a session, creating the profile on first use.
func (s *SQLite) SignIn(email string) (model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var id string
	err := s.db.QueryRow("SELECT id FROM profiles WHERE email = ?", email).Scan(&id)
	if err == sql.ErrNoRows {
		id = model.GenerateUUID()
		now := time.Now().Format(time.RFC3339)
		_, err = s.db.Exec(`
			INSERT INTO profiles (id, email, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, id, email, now, now)
	}
	if err != nil {
		return model.Session{}, err
	}

	return model.Session{UserID: id, Email: email}, nil
}

// DefaultCategories returns the shared default category list in seed order.
func (s *SQLite) DefaultCategories() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM default_categories ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CategoriesForOwner returns the owner's user-defined categories sorted by name.
func (s *SQLite) CategoriesForOwner(ownerID string) ([]model.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, name, created_at
		FROM categories
		WHERE owner_id = ?
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// InsertCategory persists a new owner-scoped category.
func (s *SQLite) InsertCategory(c model.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, owner_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.OwnerID, c.Name, c.CreatedAt.Format(time.RFC3339))
	return err
}

// UpdateCategoryName renames an owner-scoped category row in place.
func (s *SQLite) UpdateCategoryName(ownerID, oldName, newName string) error {
	res, err := s.db.Exec(`
		UPDATE categories SET name = ? WHERE owner_id = ? AND name = ?
	`, newName, ownerID, oldName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes an owner-scoped category row.
func (s *SQLite) DeleteCategory(ownerID, name string) error {
	res, err := s.db.Exec(`
		DELETE FROM categories WHERE owner_id = ? AND name = ?
	`, ownerID, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ColorsForOwner returns the owner's category color assignments.
func (s *SQLite) ColorsForOwner(ownerID string) ([]model.CategoryColor, error) {
	rows, err := s.db.Query(`
		SELECT owner_id, name, color, updated_at
		FROM category_colors
		WHERE owner_id = ?
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colors := []model.CategoryColor{}
	for rows.Next() {
		var c model.CategoryColor
		var updatedAt string
		if err := rows.Scan(&c.OwnerID, &c.Name, &c.Color, &updatedAt); err != nil {
			return nil, err
		}
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// UpsertColor writes a (owner, name) -> color mapping, replacing any
// previous assignment.
func (s *SQLite) UpsertColor(c model.CategoryColor) error {
	_, err := s.db.Exec(`
		INSERT INTO category_colors (owner_id, name, color, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, name) DO UPDATE SET
			color = excluded.color,
			updated_at = excluded.updated_at
	`, c.OwnerID, c.Name, c.Color, c.UpdatedAt.Format(time.RFC3339))
	return err
}

// RenameColor re-keys an owner's color entry to a new category name.
// Missing entries are not an error; not every category has a color.
func (s *SQLite) RenameColor(ownerID, oldName, newName string) error {
	_, err := s.db.Exec(`
		UPDATE category_colors SET name = ? WHERE owner_id = ? AND name = ?
	`, newName, ownerID, oldName)
	return err
}

// DeleteColor removes an owner's color entry, if present.
func (s *SQLite) DeleteColor(ownerID, name string) error {
	_, err := s.db.Exec(`
		DELETE FROM category_colors WHERE owner_id = ? AND name = ?
	`, ownerID, name)
	return err
}

// LinksForOwner returns the owner's links, newest first.
func (s *SQLite) LinksForOwner(ownerID string) ([]model.Link, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, title, url, category, notes, created_at
		FROM links
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []model.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func scanLink(rows *sql.Rows) (model.Link, error) {
	var l model.Link
	var notes sql.NullString
	var createdAt string

	if err := rows.Scan(&l.ID, &l.OwnerID, &l.Title, &l.URL, &l.Category, &notes, &createdAt); err != nil {
		return model.Link{}, err
	}

	if notes.Valid {
		l.Notes = &notes.String
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return l, nil
}

// InsertLink persists a new link after checking the owner's submission rate.
func (s *SQLite) InsertLink(l model.Link) error {
	if err := s.checkSubmissionRate(l.OwnerID); err != nil {
		return err
	}

	var notes interface{}
	if l.Notes != nil {
		notes = *l.Notes
	}

	_, err := s.db.Exec(`
		INSERT INTO links (id, owner_id, title, url, category, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.OwnerID, l.Title, l.URL, l.Category, notes, l.CreatedAt.Format(time.RFC3339))
	return err
}

// checkSubmissionRate records an attempt and refuses the insert when the
// owner has exceeded submissionLimit within submissionWindow.
func (s *SQLite) checkSubmissionRate(ownerID string) error {
	cutoff := time.Now().Add(-submissionWindow).Format(time.RFC3339)

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM submission_attempts
		WHERE owner_id = ? AND attempted_at >= ?
	`, ownerID, cutoff).Scan(&count)
	if err != nil {
		return err
	}
	if count >= submissionLimit {
		return ErrRateLimited
	}

	_, err = s.db.Exec(`
		INSERT INTO submission_attempts (owner_id, attempted_at) VALUES (?, ?)
	`, ownerID, time.Now().Format(time.RFC3339))
	return err
}

// UpdateLink applies a partial update to the owner's matching row.
func (s *SQLite) UpdateLink(ownerID, id string, update model.LinkUpdate) error {
	var l model.Link
	var storedNotes sql.NullString
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, owner_id, title, url, category, notes, created_at
		FROM links
		WHERE owner_id = ? AND id = ?
	`, ownerID, id).Scan(&l.ID, &l.OwnerID, &l.Title, &l.URL, &l.Category, &storedNotes, &createdAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if storedNotes.Valid {
		l.Notes = &storedNotes.String
	}

	update.Apply(&l)

	var notes interface{}
	if l.Notes != nil {
		notes = *l.Notes
	}

	_, err = s.db.Exec(`
		UPDATE links SET title = ?, url = ?, category = ?, notes = ?
		WHERE owner_id = ? AND id = ?
	`, l.Title, l.URL, l.Category, notes, ownerID, id)
	return err
}

// DeleteLink removes the owner's matching row.
func (s *SQLite) DeleteLink(ownerID, id string) error {
	res, err := s.db.Exec(`
		DELETE FROM links WHERE owner_id = ? AND id = ?
	`, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RenameLinkCategory bulk-updates the owner's links carrying oldName.
func (s *SQLite) RenameLinkCategory(ownerID, oldName, newName string) (int, error) {
	res, err := s.db.Exec(`
		UPDATE links SET category = ? WHERE owner_id = ? AND category = ?
	`, newName, ownerID, oldName)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// NotesForOwner returns the owner's notes, newest first.
func (s *SQLite) NotesForOwner(ownerID string) ([]model.Note, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, title, content, created_at
		FROM notes
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// InsertNote persists a new note.
func (s *SQLite) InsertNote(n model.Note) error {
	_, err := s.db.Exec(`
		INSERT INTO notes (id, owner_id, title, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.OwnerID, n.Title, n.Content, n.CreatedAt.Format(time.RFC3339))
	return err
}

// UpdateNote applies a partial update to the owner's matching note.
func (s *SQLite) UpdateNote(ownerID, id string, update model.NoteUpdate) error {
	var n model.Note
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, owner_id, title, content, created_at
		FROM notes
		WHERE owner_id = ? AND id = ?
	`, ownerID, id).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &createdAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	update.Apply(&n)

	_, err = s.db.Exec(`
		UPDATE notes SET title = ?, content = ? WHERE owner_id = ? AND id = ?
	`, n.Title, n.Content, ownerID, id)
	return err
}

// DeleteNote removes the owner's matching note.
func (s *SQLite) DeleteNote(ownerID, id string) error {
	res, err := s.db.Exec(`
		DELETE FROM notes WHERE owner_id = ? AND id = ?
	`, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
