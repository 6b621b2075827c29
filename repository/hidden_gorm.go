// Package repository holds the GORM-backed persistence for the dashboard.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/releaserr/releaserr/domains/release"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Persistence Models ---

type hiddenMediaModel struct {
	ID        uint      `gorm:"primaryKey"`
	MediaType string    `gorm:"column:media_type;size:16;not null;uniqueIndex:idx_hidden_media"`
	TMDBID    int       `gorm:"column:tmdb_id;not null;uniqueIndex:idx_hidden_media"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (hiddenMediaModel) TableName() string { return "hidden_media" }

// --- Repository ---

type HiddenGormRepository struct {
	db *gorm.DB
}

func NewHiddenGormRepository(db *gorm.DB) (*HiddenGormRepository, error) {
	if err := db.AutoMigrate(&hiddenMediaModel{}); err != nil {
		return nil, fmt.Errorf("migrate hidden_media: %w", err)
	}
	return &HiddenGormRepository{db: db}, nil
}

// Add records a hide. Hiding the same media twice is not an error.
func (r *HiddenGormRepository) Add(ctx context.Context, mediaType string, tmdbID int) error {
	model := hiddenMediaModel{
		MediaType: mediaType,
		TMDBID:    tmdbID,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("persist hidden media %s/%d: %w", mediaType, tmdbID, err)
	}
	return nil
}

func (r *HiddenGormRepository) All(ctx context.Context) ([]release.HiddenMedia, error) {
	var models []hiddenMediaModel
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("load hidden media: %w", err)
	}

	hidden := make([]release.HiddenMedia, 0, len(models))
	for _, m := range models {
		hidden = append(hidden, release.HiddenMedia{
			MediaType: m.MediaType,
			TMDBID:    m.TMDBID,
			HiddenAt:  m.CreatedAt,
		})
	}
	return hidden, nil
}
