// Package proxycache layers caching and persistence over the proxy
// generator: a fingerprint-keyed in-memory cache backed by an optional
// SQLite artifact store, so repeated requests for the same class
// name, flags, and contract set reuse one generated artifact.
package proxycache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	_ "modernc.org/sqlite"
)

// ErrArtifactNotFound indicates the requested artifact is not in the store.
var ErrArtifactNotFound = errors.New("proxycache: artifact not found")

// Canonical mode keeps metadata encoding deterministic.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("proxycache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Metadata describes one stored artifact: what was generated, from
// which contracts, and when.
type Metadata struct {
	ClassName  string    `cbor:"class_name"`
	Flags      uint16    `cbor:"flags"`
	Contracts  []string  `cbor:"contracts"`
	Signatures []string  `cbor:"signatures"`
	CreatedAt  time.Time `cbor:"created_at"`
}

// Store persists generated artifacts in SQLite, keyed by fingerprint,
// with a CBOR metadata record alongside the class-file bytes.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens (creating if needed) the artifact database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
		fingerprint TEXT PRIMARY KEY,
		bytes BLOB NOT NULL,
		metadata BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores an artifact under its fingerprint, replacing any previous
// record.
func (s *Store) Put(fingerprint string, data []byte, md Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := cborEncMode.Marshal(&md)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO artifacts (fingerprint, bytes, metadata) VALUES (?, ?, ?)",
		fingerprint, data, encoded)
	if err != nil {
		return fmt.Errorf("storing artifact %s: %w", fingerprint, err)
	}
	return nil
}

// Get retrieves an artifact and its metadata by fingerprint.
func (s *Store) Get(fingerprint string) ([]byte, Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data, encoded []byte
	err := s.db.QueryRow(
		"SELECT bytes, metadata FROM artifacts WHERE fingerprint = ?", fingerprint).
		Scan(&data, &encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Metadata{}, ErrArtifactNotFound
	}
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("loading artifact %s: %w", fingerprint, err)
	}
	var md Metadata
	if err := cbor.Unmarshal(encoded, &md); err != nil {
		return nil, Metadata{}, fmt.Errorf("decoding metadata for %s: %w", fingerprint, err)
	}
	return data, md, nil
}

// Fingerprints lists every stored fingerprint.
func (s *Store) Fingerprints() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT fingerprint FROM artifacts ORDER BY fingerprint")
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}
