package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"lawscraper/pkg/log"
	"lawscraper/pkg/models"
	"lawscraper/pkg/utils"
)

const (
	docKeyPrefix = "doc:"
	docDBDir     = "doc_state"
)

// BadgerStore implements DocumentStore on BadgerDB. One store is shared by
// all workers in a run; Badger handles the concurrent transactions.
type BadgerStore struct {
	db       *badger.DB
	log      *logrus.Entry
	keyCount atomic.Int64
}

// NewBadgerStore opens (or creates) the document state database under
// stateDir. With resume false any existing state is removed first, so every
// document is treated as new.
func NewBadgerStore(stateDir, siteDomain string, resume bool, logger *logrus.Entry) (*BadgerStore, error) {
	store := &BadgerStore{log: logger}

	dbPath := filepath.Join(stateDir, utils.SanitizeFilename(siteDomain)+"_"+docDBDir)

	if !resume {
		logger.Warnf("Resume flag is false. Removing existing state directory: %s", dbPath)
		if err := os.RemoveAll(dbPath); err != nil {
			logger.Errorf("Failed to remove existing state directory %s: %v", dbPath, err)
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %v", utils.ErrFilesystem, dbPath, err)
	}

	opts := badger.DefaultOptions(dbPath).
		WithLogger(log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))).
		WithNumVersionsToKeep(1)

	var err error
	store.db, err = badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger database at %s: %v", utils.ErrDatabase, dbPath, err)
	}

	if resume {
		count, err := store.countKeys()
		if err != nil {
			logger.Warnf("Failed to count existing keys on resume: %v", err)
		} else {
			store.keyCount.Store(int64(count))
			logger.Infof("Loaded existing document count on resume: %d", count)
		}
	}

	logger.Infof("Document state database ready at %s (resume: %v)", dbPath, resume)
	return store, nil
}

func (s *BadgerStore) countKeys() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for transaction conflicts.
// Concurrent MVCC transactions on overlapping keys can return
// badger.ErrConflict; these resolve in microseconds.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// MarkPending implements DocumentStore.
func (s *BadgerStore) MarkPending(normalizedURL string, docType models.DocumentType) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("%w: store not initialized", utils.ErrDatabase)
	}
	key := []byte(docKeyPrefix + normalizedURL)

	entryBytes, err := json.Marshal(&models.DocEntry{
		Status:      models.DocStatusPending,
		Type:        docType,
		LastAttempt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: marshal pending entry: %v", utils.ErrParsing, err)
	}

	claimed := false
	errUpdate := s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			errSet := txn.SetEntry(badger.NewEntry(key, entryBytes))
			if errSet == nil {
				claimed = true
			}
			return errSet
		}
		return errGet
	})
	if errUpdate != nil {
		s.log.WithField("key", string(key)).Errorf("DB update error in MarkPending: %v", errUpdate)
		return false, fmt.Errorf("%w: claiming key '%s': %v", utils.ErrDatabase, string(key), errUpdate)
	}

	if claimed {
		s.keyCount.Add(1)
	}
	return claimed, nil
}

// CheckStatus implements DocumentStore.
func (s *BadgerStore) CheckStatus(normalizedURL string) (models.DocStatus, *models.DocEntry, error) {
	status := models.DocStatusNotFound
	var entry *models.DocEntry
	key := []byte(docKeyPrefix + normalizedURL)

	errView := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			status = models.DocStatusNotFound
			return nil
		}
		if errGet != nil {
			return fmt.Errorf("%w: getting key '%s': %v", utils.ErrDatabase, string(key), errGet)
		}

		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				status = models.DocStatusPending
				return nil
			}
			var decoded models.DocEntry
			if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
				s.log.Warnf("Failed to unmarshal DocEntry for key '%s': %v. Treating as pending.", string(key), errJSON)
				status = models.DocStatusPending
				return nil
			}
			entry = &decoded
			status = decoded.Status
			return nil
		})
	})
	if errView != nil {
		s.log.Errorf("DB view error in CheckStatus for key '%s': %v", string(key), errView)
		return models.DocStatusDBError, nil, errView
	}

	return status, entry, nil
}

// UpdateStatus implements DocumentStore.
func (s *BadgerStore) UpdateStatus(normalizedURL string, entry *models.DocEntry) error {
	if s.db == nil {
		return fmt.Errorf("%w: store not initialized", utils.ErrDatabase)
	}
	key := []byte(docKeyPrefix + normalizedURL)

	entryBytes, errJSON := json.Marshal(entry)
	if errJSON != nil {
		return fmt.Errorf("%w: marshal DocEntry for key '%s': %v", utils.ErrParsing, string(key), errJSON)
	}

	isNew := false
	err := s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			isNew = true
		}
		return txn.SetEntry(badger.NewEntry(key, entryBytes))
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB update error in UpdateStatus: %v", err)
		return fmt.Errorf("%w: setting status for key '%s': %v", utils.ErrDatabase, string(key), err)
	}

	if isNew {
		s.keyCount.Add(1)
	}
	s.log.Debugf("Updated status for key '%s' to '%s'", string(key), entry.Status)
	return nil
}

// Count implements DocumentStore. Returns the cached key count maintained by
// atomic increments on writes.
func (s *BadgerStore) Count() int {
	return int(s.keyCount.Load())
}

// RunGC runs BadgerDB value log garbage collection on a ticker until the
// context is cancelled.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.db == nil || s.db.IsClosed() {
				continue
			}
			var err error
			for {
				err = s.db.RunValueLogGC(0.5)
				if err != nil {
					break
				}
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Errorf("BadgerDB GC error: %v", err)
			}
		case <-ctx.Done():
			s.log.Debugf("Stopping BadgerDB GC: %v", ctx.Err())
			return
		}
	}
}

// Close implements DocumentStore.
func (s *BadgerStore) Close() error {
	if s.db != nil && !s.db.IsClosed() {
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Error closing document state DB: %v", err)
			return err
		}
		s.log.Info("Document state DB closed.")
	}
	return nil
}
