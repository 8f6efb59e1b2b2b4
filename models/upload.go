package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Upload is one ingested identification file. The same file name may be
// ingested again for a project; the row with the highest id is current.
type Upload struct {
	ID                       int64          `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID                   *uuid.UUID     `json:"user_id,omitempty" gorm:"column:user_id;type:uuid"`
	ProjectID                string         `json:"project_id" gorm:"column:project_id;index;not null"`
	IdentificationFileName   string         `json:"identification_file_name" gorm:"column:identification_file_name;not null"`
	Provider                 datatypes.JSON `json:"provider" gorm:"column:provider;type:jsonb"`
	AuditCollection          datatypes.JSON `json:"audit_collection" gorm:"column:audit_collection;type:jsonb"`
	AnalysisSampleCollection datatypes.JSON `json:"analysis_sample_collection" gorm:"column:analysis_sample_collection;type:jsonb"`
	Bib                      datatypes.JSON `json:"bib" gorm:"column:bib;type:jsonb"`
	SpectraFormats           datatypes.JSON `json:"spectra_formats" gorm:"column:spectra_formats;type:jsonb"`
	ContainsCrosslinks       *bool          `json:"contains_crosslinks" gorm:"column:contains_crosslinks"`
	UploadWarnings           datatypes.JSON `json:"upload_warnings" gorm:"column:upload_warnings;type:jsonb"`
	UploadTime               time.Time      `json:"upload_time" gorm:"column:upload_time;autoCreateTime"`
}

// TableName gibt explizit den Tabellennamen an.
func (Upload) TableName() string { return "upload" }
