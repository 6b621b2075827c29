package cache

import "context"

// DatasetStats describes one named cache (tv_details, omdb_ratings).
type DatasetStats struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

type CacheStats struct {
	Datasets     []DatasetStats `json:"datasets"`
	TotalEntries int            `json:"total_entries"`
	LastSaved    string         `json:"last_saved,omitempty"`
	LastSavedAgo string         `json:"last_saved_ago,omitempty"`
}

type ICacheUsecase interface {
	Stats(ctx context.Context) CacheStats
	Load(ctx context.Context) error
	SaveNow(ctx context.Context) error
	Clear(ctx context.Context)
	StartAutosave(ctx context.Context)
}
