// Package recovery implements the recovery protocol of spec.md §4.9:
// a bounded, at-most-once per-source replay buffer and the
// RecoveryRequest/RecoveryResponse/SequenceSync orchestration around it.
package recovery

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Buffer persists recently published messages per source so a consumer's
// gap can be replayed bit-exact (spec.md §4.9). Storage is bbolt, the
// teacher's own embedded-KV choice, keyed by big-endian sequence so a
// bucket's natural iteration order is sequence order.
type Buffer struct {
	db       *bolt.DB
	capacity int // max entries retained per source
}

const bucketPrefix = "source_"

// OpenBuffer opens (creating if absent) a bbolt-backed replay buffer at
// path, retaining up to capacity messages per source.
func OpenBuffer(path string, capacity int) (*Buffer, error) {
	if capacity <= 0 {
		capacity = 10000
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("recovery: open bbolt: %w", err)
	}
	return &Buffer{db: db, capacity: capacity}, nil
}

// Close releases the underlying database file.
func (b *Buffer) Close() error { return b.db.Close() }

func sourceBucket(sourceID uint32) []byte {
	return []byte(fmt.Sprintf("%s%d", bucketPrefix, sourceID))
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

// Record stores originalBytes under (sourceID, seq), pruning the oldest
// entry once the source's bucket exceeds capacity (spec.md §4.9: "the
// replayer keeps a bounded buffer per source").
func (b *Buffer) Record(sourceID uint32, seq uint64, originalBytes []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(sourceBucket(sourceID))
		if err != nil {
			return err
		}
		if err := bucket.Put(seqKey(seq), originalBytes); err != nil {
			return err
		}
		return pruneOldest(bucket, b.capacity)
	})
}

// pruneOldest deletes entries from the front of bucket's key order until
// its count is at most capacity.
func pruneOldest(bucket *bolt.Bucket, capacity int) error {
	n := bucket.Stats().KeyN
	if n <= capacity {
		return nil
	}
	c := bucket.Cursor()
	k, _ := c.First()
	for i := 0; i < n-capacity && k != nil; i++ {
		if err := bucket.Delete(k); err != nil {
			return err
		}
		k, _ = c.Next()
	}
	return nil
}

// Range returns every (seq, bytes) pair for sourceID in [from, to],
// inclusive, in sequence order. ok is false if any sequence in the range
// is missing from the buffer (spec.md §7, Recovery.OutOfRange).
func (b *Buffer) Range(sourceID uint32, from, to uint64) (entries []Entry, ok bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sourceBucket(sourceID))
		if bucket == nil {
			ok = false
			return nil
		}
		ok = true
		c := bucket.Cursor()
		lo := seqKey(from)
		for k, v := c.Seek(lo); k != nil; k, v = c.Next() {
			seq := binary.BigEndian.Uint64(k)
			if seq > to {
				break
			}
			if seq < from {
				continue
			}
			if seq != from+uint64(len(entries)) {
				ok = false
				return nil
			}
			cp := append([]byte(nil), v...)
			entries = append(entries, Entry{Sequence: seq, OriginalBytes: cp})
		}
		if uint64(len(entries)) != to-from+1 {
			ok = false
		}
		return nil
	})
	return entries, ok, err
}

// Entry is one buffered message.
type Entry struct {
	Sequence      uint64
	OriginalBytes []byte
}
