// Package idempotency keeps responses of keyed POST requests in a bolt file so
// that retries replay the first outcome instead of running twice.
package idempotency

import (
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "responses"

// DefaultLease is how long an unfinished reservation blocks other requests
// with the same key. After that the key can be reserved again.
const DefaultLease = time.Minute

var ErrNotReserved = errors.New("idempotency key not reserved")

type Record struct {
	Status    int             `json:"status"`
	Body      json.RawMessage `json:"body,omitempty"`
	Completed bool            `json:"completed"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Store struct {
	db    *bolt.DB
	lease time.Duration
	now   func() time.Time
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, lease: DefaultLease, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Reserve claims key for the caller. When the key is already held, the stored
// record is returned with reserved=false: Completed tells a finished response
// apart from one still in flight.
func (s *Store) Reserve(key string) (Record, bool, error) {
	var (
		result   Record
		reserved bool
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if existing := b.Get([]byte(key)); existing != nil {
			if err := json.Unmarshal(existing, &result); err != nil {
				return err
			}
			if result.Completed || s.now().Sub(result.CreatedAt) < s.lease {
				return nil
			}
		}
		result = Record{CreatedAt: s.now().UTC()}
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		reserved = true
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return Record{}, false, err
	}
	return result, reserved, nil
}

func (s *Store) Complete(key string, status int, body []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		existing := b.Get([]byte(key))
		if existing == nil {
			return ErrNotReserved
		}
		var record Record
		if err := json.Unmarshal(existing, &record); err != nil {
			return err
		}
		record.Status = status
		record.Completed = true
		if json.Valid(body) {
			record.Body = append(json.RawMessage(nil), body...)
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// Release drops a reservation so the request can be retried. Releasing an
// unknown key is not an error.
func (s *Store) Release(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}
