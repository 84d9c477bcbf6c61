package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces ledger entries within the database.
const keyPrefix = "ingest:"

// Entry records a completed ingestion for one source email.
type Entry struct {
	// DocumentID is the stored document's identifier.
	DocumentID string `json:"document_id"`
	// IngestedAt is when the document was written.
	IngestedAt time.Time `json:"ingested_at"`
}

// Config holds ledger storage settings.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string
	// InMemory keeps the ledger in memory only. Useful for testing.
	InMemory bool
	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// Ledger is a durable record of ingested source emails.
type Ledger struct {
	db *badger.DB
}

// Open creates or opens the ledger database.
func Open(cfg Config) (*Ledger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent ledger")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create ledger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	return &Ledger{db: db}, nil
}

// OpenInMemory opens an in-memory ledger for testing. Data is lost on close.
func OpenInMemory() (*Ledger, error) {
	return Open(Config{InMemory: true})
}

// Seen reports whether the given source message id has been ingested.
func (l *Ledger) Seen(messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}

	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyPrefix + messageID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read ledger entry: %w", err)
	}
	return true, nil
}

// Get returns the ledger entry for a source message id, or nil when absent.
func (l *Ledger) Get(messageID string) (*Entry, error) {
	var entry *Entry
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + messageID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e Entry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			entry = &e
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger entry: %w", err)
	}
	return entry, nil
}

// Mark records a completed ingestion for the given source message id.
func (l *Ledger) Mark(messageID, documentID string) error {
	if messageID == "" {
		return errors.New("message id is required")
	}

	payload, err := json.Marshal(Entry{
		DocumentID: documentID,
		IngestedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+messageID), payload)
	})
	if err != nil {
		return fmt.Errorf("write ledger entry: %w", err)
	}
	return nil
}

// Count returns the number of ledger entries.
func (l *Ledger) Count() (int, error) {
	var n int
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(keyPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan ledger: %w", err)
	}
	return n, nil
}

// Close releases the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Info(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
