package models

import "gorm.io/datatypes"

// Match is a spectrum identification item. Pep2ID is empty for linear peptides.
type Match struct {
	ID            string         `gorm:"column:id;primaryKey"`
	UploadID      int64          `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	SpectrumID    *string        `gorm:"column:spectrum_id"`
	SpectraDataID *int64         `gorm:"column:spectra_data_id"`
	Pep1ID        int64          `gorm:"column:pep1_id;not null"`
	Pep2ID        *int64         `gorm:"column:pep2_id"`
	ChargeState   *int           `gorm:"column:charge_state"`
	PassThreshold bool           `gorm:"column:pass_threshold;not null"`
	Rank          int            `gorm:"column:rank;not null"`
	Scores        datatypes.JSON `gorm:"column:scores;type:jsonb"`
	ExpMZ         *float64       `gorm:"column:exp_mz"`
	CalcMZ        *float64       `gorm:"column:calc_mz"`
	SipID         *int64         `gorm:"column:sip_id"`
}

func (Match) TableName() string { return "match" }

// All lists every table model in dependency order.
func All() []any {
	return []any{
		&Upload{},
		&AnalysisCollectionSpectrumIdentification{},
		&SpectrumIdentificationProtocol{},
		&Enzyme{},
		&SearchModification{},
		&SpectraData{},
		&Spectrum{},
		&DBSequence{},
		&ModifiedPeptide{},
		&PeptideEvidence{},
		&Match{},
	}
}
