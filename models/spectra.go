package models

// SpectraData describes one peak list file referenced by an upload.
type SpectraData struct {
	ID                          int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	UploadID                    int64   `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	Location                    string  `gorm:"column:location;not null"`
	Name                        *string `gorm:"column:name"`
	ExternalFormatDocumentation *string `gorm:"column:external_format_documentation"`
	FileFormat                  string  `gorm:"column:file_format;not null"`
	SpectrumIDFormat            string  `gorm:"column:spectrum_id_format;not null"`
}

func (SpectraData) TableName() string { return "spectradata" }

// Spectrum stores its peaks as packed float64 arrays (see services.DecodePeaks).
type Spectrum struct {
	ID               string   `gorm:"column:id;primaryKey"`
	SpectraDataID    int64    `gorm:"column:spectra_data_id;primaryKey;autoIncrement:false"`
	UploadID         int64    `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	PeakListFileName string   `gorm:"column:peak_list_file_name"`
	PrecursorMZ      *float64 `gorm:"column:precursor_mz"`
	PrecursorCharge  *int     `gorm:"column:precursor_charge"`
	RetentionTime    *float64 `gorm:"column:retention_time"`
	MZ               []byte   `gorm:"column:mz;type:bytea"`
	Intensity        []byte   `gorm:"column:intensity;type:bytea"`
}

func (Spectrum) TableName() string { return "spectrum" }
