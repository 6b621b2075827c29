package ttlcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// SnapshotEntry is the serialized form of one cache entry. Ages are stored as
// elapsed seconds rather than wall-clock timestamps, so restored entries
// resume aging from where they left off regardless of clock changes.
type SnapshotEntry[V any] struct {
	Key        string `json:"key"`
	Value      V      `json:"value"`
	AgeSeconds int64  `json:"age_seconds"`
}

// Snapshot enumerates all currently non-expired entries. TTL is re-checked at
// serialization time so stale entries are never persisted. The result is a
// best-effort point-in-time view; it may miss writes that race the scan.
func (c *Cache[V]) Snapshot() []SnapshotEntry[V] {
	now := c.now()
	var out []SnapshotEntry[V]
	for _, s := range c.shards {
		s.mu.RLock()
		for k, e := range s.entries {
			if c.expired(e, now) {
				continue
			}
			out = append(out, SnapshotEntry[V]{
				Key:        k,
				Value:      e.value,
				AgeSeconds: int64(now.Sub(e.createdAt).Seconds()),
			})
		}
		s.mu.RUnlock()
	}
	return out
}

// Restore inserts snapshot entries whose reconstructed age is still under the
// TTL; anything older is silently dropped. A restore is a warm start aid, not
// a correctness requirement.
func (c *Cache[V]) Restore(entries []SnapshotEntry[V]) {
	now := c.now()
	kept := 0
	for _, se := range entries {
		age := time.Duration(se.AgeSeconds) * time.Second
		if age >= c.ttl {
			continue
		}
		s := c.shardFor(se.Key)
		s.mu.Lock()
		s.entries[se.Key] = entry[V]{value: se.Value, createdAt: now.Add(-age)}
		s.mu.Unlock()
		kept++
	}
	if kept > 0 {
		logrus.Debugf("[CACHE] %s: restored %d entries from snapshot", c.name, kept)
	}
}

// SaveToFile writes a snapshot to path via a temporary file and an atomic
// rename, so a reader never observes a torn file and a crash mid-write leaves
// the previous snapshot intact. The write is skipped when nothing changed
// since the last save, or when another save is already in flight.
func (c *Cache[V]) SaveToFile(path string) error {
	if !c.dirty.Load() {
		return nil
	}
	if !c.saving.CompareAndSwap(false, true) {
		return nil
	}
	defer c.saving.Store(false)

	// Clear the dirty flag before the scan: writes racing the snapshot will
	// set it again and be picked up by the next save.
	c.dirty.Store(false)

	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		c.dirty.Store(true)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		c.dirty.Store(true)
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		c.dirty.Store(true)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		c.dirty.Store(true)
		return err
	}

	logrus.Debugf("[CACHE] %s: snapshot saved to %s", c.name, path)
	return nil
}

// LoadFromFile restores a snapshot written by SaveToFile. A missing or
// corrupt file is not an error: the cache simply starts empty.
func (c *Cache[V]) LoadFromFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Warnf("[CACHE] %s: failed to read snapshot %s: %v", c.name, path, err)
		}
		return
	}

	var entries []SnapshotEntry[V]
	if err := json.Unmarshal(data, &entries); err != nil {
		logrus.Errorf("[CACHE] %s: discarding corrupt snapshot %s: %v", c.name, path, err)
		return
	}
	c.Restore(entries)
}
