package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	domainCache "github.com/releaserr/releaserr/domains/cache"
	"github.com/releaserr/releaserr/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Dataset is one named snapshot-able cache. ttlcache.Cache satisfies it for
// any value type.
type Dataset interface {
	Name() string
	Len() int
	Flush()
	SaveToFile(path string) error
	LoadFromFile(path string)
}

type cacheService struct {
	datasets     []Dataset
	dir          string
	saveInterval time.Duration

	mu        sync.Mutex
	lastSaved time.Time
}

func NewCacheService(dir string, saveInterval time.Duration, datasets ...Dataset) domainCache.ICacheUsecase {
	return &cacheService{
		datasets:     datasets,
		dir:          dir,
		saveInterval: saveInterval,
	}
}

func (s *cacheService) path(d Dataset) string {
	return filepath.Join(s.dir, d.Name()+".json")
}

func (s *cacheService) Stats(ctx context.Context) domainCache.CacheStats {
	stats := domainCache.CacheStats{}
	for _, d := range s.datasets {
		n := d.Len()
		stats.Datasets = append(stats.Datasets, domainCache.DatasetStats{Name: d.Name(), Entries: n})
		stats.TotalEntries += n
	}

	s.mu.Lock()
	lastSaved := s.lastSaved
	s.mu.Unlock()
	if !lastSaved.IsZero() {
		stats.LastSaved = lastSaved.UTC().Format(time.RFC3339)
		stats.LastSavedAgo = humanize.Time(lastSaved)
	}
	return stats
}

// Load restores every dataset from disk. Missing or corrupt snapshots leave
// that dataset empty, so a cold start never fails here.
func (s *cacheService) Load(ctx context.Context) error {
	if err := utils.CreateFolder(s.dir); err != nil {
		return err
	}
	for _, d := range s.datasets {
		d.LoadFromFile(s.path(d))
		logrus.Infof("[CACHE] %s: loaded %d entries from disk", d.Name(), d.Len())
	}
	return nil
}

// SaveNow snapshots every dirty dataset to disk.
func (s *cacheService) SaveNow(ctx context.Context) error {
	var errs []error
	for _, d := range s.datasets {
		if err := d.SaveToFile(s.path(d)); err != nil {
			logrus.Errorf("[CACHE] %s: save failed: %v", d.Name(), err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.mu.Lock()
	s.lastSaved = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *cacheService) Clear(ctx context.Context) {
	for _, d := range s.datasets {
		d.Flush()
		logrus.Infof("[CACHE] %s: cleared", d.Name())
	}
}

func (s *cacheService) StartAutosave(ctx context.Context) {
	logrus.Infof("[CACHE] starting autosave loop (interval: %s)", s.saveInterval)
	ticker := time.NewTicker(s.saveInterval)

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				if err := s.SaveNow(context.Background()); err != nil {
					logrus.Errorf("[CACHE] autosave failed: %v", err)
				}
			}
		}
	}()
}
