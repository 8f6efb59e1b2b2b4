package models

import "gorm.io/datatypes"

// DBSequence is a protein from the search database.
type DBSequence struct {
	ID          string  `gorm:"column:id;primaryKey"`
	UploadID    int64   `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	Accession   string  `gorm:"column:accession;not null"`
	Name        *string `gorm:"column:name"`
	Description *string `gorm:"column:description"`
	Sequence    *string `gorm:"column:sequence"`
}

func (DBSequence) TableName() string { return "dbsequence" }

// ModifiedPeptide takes part in a crosslink when LinkSite1 > -1.
type ModifiedPeptide struct {
	ID                   int64          `gorm:"column:id;primaryKey;autoIncrement:false"`
	UploadID             int64          `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	BaseSequence         string         `gorm:"column:base_sequence;not null"`
	ModAccessions        datatypes.JSON `gorm:"column:mod_accessions;type:jsonb"`
	ModAvgMassDeltas     datatypes.JSON `gorm:"column:mod_avg_mass_deltas;type:jsonb"`
	ModMonoisoMassDeltas datatypes.JSON `gorm:"column:mod_monoiso_mass_deltas;type:jsonb"`
	ModPositions         datatypes.JSON `gorm:"column:mod_positions;type:jsonb"`
	LinkSite1            *int           `gorm:"column:link_site1"`
	LinkSite2            *int           `gorm:"column:link_site2"`
	CrosslinkerModMass   *float64       `gorm:"column:crosslinker_modmass"`
	CrosslinkerPairID    *string        `gorm:"column:crosslinker_pair_id"`
	CrosslinkerAccession *string        `gorm:"column:crosslinker_accession"`
}

func (ModifiedPeptide) TableName() string { return "modifiedpeptide" }

// PeptideEvidence places a peptide at a position in a protein.
type PeptideEvidence struct {
	UploadID     int64  `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	PeptideID    int64  `gorm:"column:peptide_id;primaryKey;autoIncrement:false"`
	DBSequenceID string `gorm:"column:dbsequence_id;primaryKey"`
	PepStart     int    `gorm:"column:pep_start;primaryKey;autoIncrement:false"`
	// nil when the mzIdentML omits isDecoy
	IsDecoy *bool `gorm:"column:is_decoy"`
}

func (PeptideEvidence) TableName() string { return "peptideevidence" }
