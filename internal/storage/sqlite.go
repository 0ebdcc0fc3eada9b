package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"todo/internal/task"

	_ "modernc.org/sqlite"
)

// SQLite keeps the sequence in a tasks table ordered by position. Save
// rewrites the table inside one transaction.
type SQLite struct {
	path string
	db   *sql.DB
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, &PersistenceError{Op: "create dir for", Path: dbPath, Err: err}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: dbPath, Err: err}
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{path: dbPath, db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "migrate", Path: dbPath, Err: err}
	}
	return s, nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	description TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns upgrades databases written before tasks carried a body.
func (s *SQLite) ensureTaskColumns() error {
	required := map[string]string{
		"body": "ALTER TABLE tasks ADD COLUMN body TEXT NOT NULL DEFAULT '';",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Load() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, description, completed, body FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var completed int
		if err := rows.Scan(&t.ID, &t.Description, &completed, &t.Body); err != nil {
			return nil, &ParseError{Err: err}
		}
		t.Completed = completed == 1
		if err := t.Validate(); err != nil {
			return nil, &ParseError{Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: err}
	}
	return tasks, nil
}

func (s *SQLite) Save(tasks []task.Task) error {
	if err := s.save(tasks); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLite) save(tasks []task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks;`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO tasks (position, id, description, completed, body) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, t := range tasks {
		done := 0
		if t.Completed {
			done = 1
		}
		if _, err := stmt.Exec(i, t.ID, t.Description, done, t.Body); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
