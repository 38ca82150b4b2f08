// Package history stores executed cells in SQLite, one session per shell
// run. Each cell keeps the source the user typed and the source that was
// actually evaluated after rewriting.
package history

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// Memory is the path of a store that lives only as long as the process.
const Memory = ":memory:"

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = stderrors.New("session not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = stderrors.New("history store closed")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id      TEXT PRIMARY KEY,
	started INTEGER NOT NULL,
	ended   INTEGER
);
CREATE TABLE IF NOT EXISTS cells (
	session   TEXT NOT NULL REFERENCES sessions(id),
	line      INTEGER NOT NULL,
	source    TEXT NOT NULL,
	rewritten TEXT NOT NULL,
	created   INTEGER NOT NULL,
	PRIMARY KEY (session, line)
);
`

// Cell is one stored cell.
type Cell struct {
	Session   uuid.UUID
	Line      int
	Source    string
	Rewritten string
	At        time.Time
}

// Store is a cell history backed by a SQLite database.
type Store struct {
	db      *sql.DB
	path    string
	logger  zerolog.Logger
	mu      sync.Mutex
	session uuid.UUID
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// DefaultPath returns ~/.awaitless/history.sqlite.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".awaitless", "history.sqlite"), nil
}

// Open opens or creates the database at path. Use Memory for a store that
// is discarded on Close.
func Open(path string, options ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if path != Memory {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expanding history path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		s.path = expanded
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == Memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	s.db = db
	s.logger.Debug().Str("path", s.path).Msg("history opened")
	return s, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Session returns the id of the current session, or uuid.Nil before
// StartSession.
func (s *Store) Session() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// StartSession begins a new session. Cells stored afterwards belong to it.
func (s *Store) StartSession(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return uuid.Nil, ErrClosed
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating session id: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, started) VALUES (?, ?)",
		id.String(), s.now().UnixNano(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("starting session: %w", err)
	}
	s.session = id
	s.logger.Debug().Str("session", id.String()).Msg("history session started")
	return id, nil
}

// Store records a cell in the current session, starting a session if none
// is active. Storing the same line twice replaces the earlier entry.
func (s *Store) Store(ctx context.Context, line int, source, rewritten string) error {
	if s.Session() == uuid.Nil {
		if _, err := s.StartSession(ctx); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cells (session, line, source, rewritten, created) VALUES (?, ?, ?, ?, ?)",
		s.session.String(), line, source, rewritten, s.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("storing cell %d: %w", line, err)
	}
	return nil
}

// Recent returns up to n cells across all sessions, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session, line, source, rewritten, created FROM (
			SELECT rowid, * FROM cells ORDER BY created DESC, rowid DESC LIMIT ?
		) ORDER BY created ASC, rowid ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return scanCells(rows)
}

// Cells returns every cell of a session in line order.
func (s *Store) Cells(ctx context.Context, session uuid.UUID) ([]Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	var start int64
	err := s.db.QueryRowContext(ctx, "SELECT started FROM sessions WHERE id = ?", session.String()).Scan(&start)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT session, line, source, rewritten, created FROM cells WHERE session = ? ORDER BY line",
		session.String())
	if err != nil {
		return nil, fmt.Errorf("querying cells: %w", err)
	}
	return scanCells(rows)
}

// EndSession marks the current session as finished.
func (s *Store) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	if s.session == uuid.Nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET ended = ? WHERE id = ?",
		s.now().UnixNano(), s.session.String(),
	); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	s.logger.Debug().Str("session", s.session.String()).Msg("history session ended")
	s.session = uuid.Nil
	return nil
}

// Close ends the current session and closes the database.
func (s *Store) Close() error {
	if err := s.EndSession(context.Background()); err != nil && !stderrors.Is(err, ErrClosed) {
		s.logger.Warn().Err(err).Msg("ending history session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func scanCells(rows *sql.Rows) ([]Cell, error) {
	defer rows.Close()
	var cells []Cell
	for rows.Next() {
		var (
			c       Cell
			session string
			at      int64
		)
		if err := rows.Scan(&session, &c.Line, &c.Source, &c.Rewritten, &at); err != nil {
			return nil, fmt.Errorf("reading cell: %w", err)
		}
		id, err := uuid.FromString(session)
		if err != nil {
			return nil, fmt.Errorf("reading session id: %w", err)
		}
		c.Session = id
		c.At = time.Unix(0, at)
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cells: %w", err)
	}
	return cells, nil
}
