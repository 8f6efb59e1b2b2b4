package services

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"xiview-api/models"
)

const writeBatchSize = 1000

// WriterOptions selects the upload a Writer writes into. A zero UploadID
// makes NewWriter create the upload row first.
type WriterOptions struct {
	UploadID               int64
	UserID                 *uuid.UUID
	ProjectID              string
	IdentificationFileName string
}

// Writer persists parsed identification results of one upload.
type Writer struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	UploadID int64
	UserID   *uuid.UUID
}

// MzidInfo is the file level information written after parsing the header
// of an identification file. Values are stored as JSON.
type MzidInfo struct {
	SpectraFormats           any
	Provider                 any
	AuditCollection          any
	AnalysisSampleCollection any
	Bib                      any
}

// NewWriter erstellt einen neuen Writer und legt bei Bedarf den Upload an.
func NewWriter(ctx context.Context, db *gorm.DB, logger *zap.Logger, opts WriterOptions) (*Writer, error) {
	w := &Writer{DB: db, Logger: logger, UploadID: opts.UploadID, UserID: opts.UserID}
	if w.UploadID != 0 {
		w.Logger = logger.With(zap.Int64("upload_id", w.UploadID))
		return w, nil
	}

	upload := models.Upload{
		UserID:                 opts.UserID,
		ProjectID:              opts.ProjectID,
		IdentificationFileName: opts.IdentificationFileName,
	}
	if err := db.WithContext(ctx).Create(&upload).Error; err != nil {
		return nil, fmt.Errorf("create upload for %s/%s: %w", opts.ProjectID, opts.IdentificationFileName, err)
	}
	w.UploadID = upload.ID
	w.Logger = logger.With(zap.Int64("upload_id", w.UploadID))
	w.Logger.Info("Upload created",
		zap.String("project", opts.ProjectID),
		zap.String("file", opts.IdentificationFileName))
	return w, nil
}

// WriteData inserts rows into table in a single transaction. Nested maps
// and slices are stored as JSON.
func (w *Writer) WriteData(ctx context.Context, table string, rows []map[string]any) error {
	name, err := NormalizeTableName(table)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	db := w.DB.WithContext(ctx)
	if !db.Migrator().HasTable(name) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}

	values := make([]map[string]any, len(rows))
	for i, row := range rows {
		v, err := normalizeRow(row)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", name, i, err)
		}
		values[i] = v
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Table(name).CreateInBatches(values, writeBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("insert into %s: %w", name, err)
	}
	w.Logger.Debug("Rows written", zap.String("table", name), zap.Int("rows", len(values)))
	return nil
}

// WriteMzidInfo updates the upload row with the file level information.
func (w *Writer) WriteMzidInfo(ctx context.Context, info MzidInfo) error {
	fields := map[string]any{}
	for col, v := range map[string]any{
		"spectra_formats":            info.SpectraFormats,
		"provider":                   info.Provider,
		"audit_collection":           info.AuditCollection,
		"analysis_sample_collection": info.AnalysisSampleCollection,
		"bib":                        info.Bib,
	} {
		j, err := toJSON(v)
		if err != nil {
			return fmt.Errorf("mzid info %s: %w", col, err)
		}
		fields[col] = j
	}
	return w.updateUpload(ctx, "mzid info", fields)
}

// WriteOtherInfo records whether the upload contains crosslinks and the
// warnings collected while parsing.
func (w *Writer) WriteOtherInfo(ctx context.Context, containsCrosslinks bool, warnings any) error {
	j, err := toJSON(warnings)
	if err != nil {
		return fmt.Errorf("upload warnings: %w", err)
	}
	return w.updateUpload(ctx, "other info", map[string]any{
		"contains_crosslinks": containsCrosslinks,
		"upload_warnings":     j,
	})
}

func (w *Writer) updateUpload(ctx context.Context, what string, fields map[string]any) error {
	var affected int64
	err := w.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Upload{}).Where("id = ?", w.UploadID).Updates(fields)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("write %s for upload %d: %w", what, w.UploadID, err)
	}
	if affected == 0 {
		return fmt.Errorf("write %s: %w: %d", what, ErrUploadNotFound, w.UploadID)
	}
	w.Logger.Info("Upload updated", zap.String("update", what))
	return nil
}

func normalizeRow(row map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(row))
	for k, v := range row {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return f, nil
	case map[string]any, []any, []string, []int, []int64, []float64:
		return toJSON(t)
	default:
		return v, nil
	}
}

// toJSON leaves nil as SQL NULL.
func toJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if j, ok := v.(datatypes.JSON); ok {
		return j, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
