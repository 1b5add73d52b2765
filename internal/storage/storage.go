package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/board"
)

// Storage keys
const (
	keySettings    = "settings"
	baselinePrefix = "perft/"
)

// ErrNoBaseline is returned when no perft baseline is stored for a position.
var ErrNoBaseline = errors.New("no perft baseline")

// Settings are the persisted engine settings.
type Settings struct {
	Depth           int    `json:"depth"`
	QuiescenceDepth int    `json:"quiescence_depth"`
	MobilityWeight  int    `json:"mobility_weight"`
	LogLevel        string `json:"log_level"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() *Settings {
	return &Settings{
		Depth:           5,
		QuiescenceDepth: 5,
		MobilityWeight:  10,
		LogLevel:        "info",
	}
}

// PerftBaseline is a recorded perft result for one position and depth.
type PerftBaseline struct {
	FEN        string           `json:"fen"`
	Depth      int              `json:"depth"`
	Stats      board.PerftStats `json:"stats"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// badgerLogger routes badger's log output through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) msg(e *zerolog.Event, format string, args ...interface{}) {
	e.Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.msg(l.log.Error(), format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.msg(l.log.Warn(), format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.msg(l.log.Debug(), format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.msg(l.log.Trace(), format, args...)
}

// NewStorage opens the database in the platform data directory.
func NewStorage(log zerolog.Logger) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, log)
}

// Open opens or creates the database in dir.
func Open(dir string, log zerolog.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{log: log}
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v and reports whether it was present.
func (s *Storage) get(key string, v interface{}) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SaveSettings saves engine settings
func (s *Storage) SaveSettings(settings *Settings) error {
	return s.put(keySettings, settings)
}

// LoadSettings loads engine settings, returns defaults if not found
func (s *Storage) LoadSettings() (*Settings, error) {
	settings := DefaultSettings()
	_, err := s.get(keySettings, settings)
	return settings, err
}

func baselineKey(fen string, depth int) string {
	return baselinePrefix + strconv.Itoa(depth) + "/" + fen
}

// SaveBaseline records perft statistics for fen at depth, replacing any
// earlier record.
func (s *Storage) SaveBaseline(b PerftBaseline) error {
	if b.RecordedAt.IsZero() {
		b.RecordedAt = time.Now()
	}
	return s.put(baselineKey(b.FEN, b.Depth), b)
}

// LoadBaseline returns the baseline for fen at depth, or ErrNoBaseline.
func (s *Storage) LoadBaseline(fen string, depth int) (*PerftBaseline, error) {
	var b PerftBaseline
	found, err := s.get(baselineKey(fen, depth), &b)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s depth %d: %w", fen, depth, ErrNoBaseline)
	}
	return &b, nil
}

// Baselines returns every stored baseline in key order.
func (s *Storage) Baselines() ([]PerftBaseline, error) {
	var out []PerftBaseline
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(baselinePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var b PerftBaseline
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			}); err != nil {
				return err
			}
			out = append(out, b)
		}
		return nil
	})
	return out, err
}

// Mismatch describes how a fresh perft result differs from a baseline.
func (b *PerftBaseline) Mismatch(got board.PerftStats) string {
	if got == b.Stats {
		return ""
	}
	return fmt.Sprintf("%s depth %d: got %+v, baseline %+v", b.FEN, b.Depth, got, b.Stats)
}
