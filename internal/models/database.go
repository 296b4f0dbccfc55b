package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// skipConfigKey is the single per-installation skip config record
const skipConfigKey = "skip-config"

// Database wraps the bolthold store holding play records, the skip
// config and favorites
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Play record operations

// SavePlayRecord writes a checkpoint, overwriting any existing record for
// the same (source, id) pair
func (db *Database) SavePlayRecord(record *PlayRecord) error {
	if record.Source == "" || record.ID == "" {
		return fmt.Errorf("play record requires source and id")
	}
	record.Key = RecordKey(record.Source, record.ID)
	record.SavedAt = time.Now()
	return db.store.Upsert(record.Key, record)
}

// GetPlayRecord retrieves the checkpoint for a (source, id) pair.
// Returns (nil, nil) when no record exists.
func (db *Database) GetPlayRecord(source, id string) (*PlayRecord, error) {
	var record PlayRecord
	err := db.store.Get(RecordKey(source, id), &record)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAllPlayRecords retrieves every checkpoint, most recent first
func (db *Database) GetAllPlayRecords() ([]*PlayRecord, error) {
	var records []*PlayRecord
	err := db.store.Find(&records, (&bolthold.Query{}).SortBy("SavedAt").Reverse())
	return records, err
}

// DeletePlayRecord removes the checkpoint for a (source, id) pair
func (db *Database) DeletePlayRecord(source, id string) error {
	err := db.store.Delete(RecordKey(source, id), &PlayRecord{})
	if err == bolthold.ErrNotFound {
		return nil
	}
	return err
}

// DeletePlayRecordsBefore removes checkpoints last written before the cutoff.
// Returns the number of deleted records.
func (db *Database) DeletePlayRecordsBefore(cutoff time.Time) (int, error) {
	var records []*PlayRecord
	err := db.store.Find(&records, bolthold.Where("SavedAt").Lt(cutoff))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, record := range records {
		if err := db.store.Delete(record.Key, &PlayRecord{}); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

// Skip config operations

// GetSkipConfig retrieves the per-installation skip config. Returns the
// zero config when none has been saved yet.
func (db *Database) GetSkipConfig() (SkipConfig, error) {
	var config SkipConfig
	err := db.store.Get(skipConfigKey, &config)
	if err == bolthold.ErrNotFound {
		return SkipConfig{}, nil
	}
	if err != nil {
		return SkipConfig{}, err
	}
	return config, nil
}

// SaveSkipConfig overwrites the per-installation skip config
func (db *Database) SaveSkipConfig(config SkipConfig) error {
	if !config.Valid() {
		return fmt.Errorf("skip config offsets out of range: intro=%v outro=%v", config.IntroTime, config.OutroTime)
	}
	return db.store.Upsert(skipConfigKey, &config)
}

// Favorite operations

// AddFavorite bookmarks a title. Adding an existing favorite is a no-op.
func (db *Database) AddFavorite(favorite *Favorite) error {
	if favorite.Source == "" || favorite.ID == "" {
		return fmt.Errorf("favorite requires source and id")
	}
	favorite.Key = RecordKey(favorite.Source, favorite.ID)

	var existing Favorite
	if err := db.store.Get(favorite.Key, &existing); err == nil {
		return nil
	}

	favorite.AddedAt = time.Now()
	return db.store.Insert(favorite.Key, favorite)
}

// RemoveFavorite removes a bookmark
func (db *Database) RemoveFavorite(source, id string) error {
	err := db.store.Delete(RecordKey(source, id), &Favorite{})
	if err == bolthold.ErrNotFound {
		return nil
	}
	return err
}

// GetFavorite retrieves a bookmark, (nil, nil) when absent
func (db *Database) GetFavorite(source, id string) (*Favorite, error) {
	var favorite Favorite
	err := db.store.Get(RecordKey(source, id), &favorite)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

// GetAllFavorites retrieves every bookmark, newest first
func (db *Database) GetAllFavorites() ([]*Favorite, error) {
	var favorites []*Favorite
	err := db.store.Find(&favorites, (&bolthold.Query{}).SortBy("AddedAt").Reverse())
	return favorites, err
}
