package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"xiview-api/database"
	"xiview-api/models"
)

// UploadRef is the part of an upload row needed for version resolution.
type UploadRef struct {
	ID                     int64  `gorm:"column:id"`
	IdentificationFileName string `gorm:"column:identification_file_name"`
}

// UploadResolver maps a project (and optionally a file) to the uploads that
// currently represent it.
type UploadResolver struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewUploadResolver erstellt einen neuen UploadResolver.
func NewUploadResolver(db *gorm.DB, logger *zap.Logger) *UploadResolver {
	return &UploadResolver{DB: db, Logger: logger}
}

// MostRecentUploadIDs returns the highest upload id per identification file
// of the project. An empty fileName means all files of the project.
func (r *UploadResolver) MostRecentUploadIDs(ctx context.Context, projectID, fileName string) (database.UploadIDs, error) {
	query := r.DB.WithContext(ctx).
		Model(&models.Upload{}).
		Select("id", "identification_file_name").
		Where("project_id = ?", projectID)
	if fileName != "" {
		query = query.Where("identification_file_name = ?", fileName)
	}

	var refs []UploadRef
	if err := query.Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("resolve uploads for project %s: %w", projectID, err)
	}

	ids := LatestPerFile(refs)
	r.Logger.Debug("Resolved most recent uploads",
		zap.String("project", projectID),
		zap.String("file", fileName),
		zap.Int("candidates", len(refs)),
		zap.Int64s("upload_ids", []int64(ids)))
	return ids, nil
}

// LatestPerFile keeps the maximum id for each file name. A later ingestion
// always supersedes earlier ones. The result is sorted ascending.
func LatestPerFile(refs []UploadRef) database.UploadIDs {
	latest := make(map[string]int64, len(refs))
	for _, ref := range refs {
		if cur, ok := latest[ref.IdentificationFileName]; !ok || ref.ID > cur {
			latest[ref.IdentificationFileName] = ref.ID
		}
	}
	ids := make(database.UploadIDs, 0, len(latest))
	for _, id := range latest {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
