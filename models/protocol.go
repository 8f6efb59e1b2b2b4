package models

import "gorm.io/datatypes"

// AnalysisCollectionSpectrumIdentification links an identification list to
// its protocol and input files.
type AnalysisCollectionSpectrumIdentification struct {
	ID                                int64          `gorm:"column:id;primaryKey;autoIncrement"`
	UploadID                          int64          `gorm:"column:upload_id;index;not null"`
	SpectrumIdentificationListRef     string         `gorm:"column:spectrum_identification_list_ref;not null"`
	SpectrumIdentificationProtocolRef string         `gorm:"column:spectrum_identification_protocol_ref;not null"`
	SpectraDataRefs                   datatypes.JSON `gorm:"column:spectra_data_refs;type:jsonb"`
	SearchDatabaseRefs                datatypes.JSON `gorm:"column:search_database_refs;type:jsonb"`
}

func (AnalysisCollectionSpectrumIdentification) TableName() string {
	return "analysiscollectionspectrumidentification"
}

// SpectrumIdentificationProtocol ids are only unique within an upload.
type SpectrumIdentificationProtocol struct {
	ID                     int64          `gorm:"column:id;primaryKey;autoIncrement:false"`
	UploadID               int64          `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	SipRef                 string         `gorm:"column:sip_ref;not null"`
	FragTol                *float64       `gorm:"column:frag_tol"`
	FragTolUnit            string         `gorm:"column:frag_tol_unit"`
	AdditionalSearchParams datatypes.JSON `gorm:"column:additional_search_params;type:jsonb"`
	AnalysisSoftware       datatypes.JSON `gorm:"column:analysis_software;type:jsonb"`
	Threshold              datatypes.JSON `gorm:"column:threshold;type:jsonb"`
}

func (SpectrumIdentificationProtocol) TableName() string { return "spectrumidentificationprotocol" }

// Enzyme belongs to a protocol through (protocol_id, upload_id).
type Enzyme struct {
	ID              string  `gorm:"column:id;primaryKey"`
	UploadID        int64   `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	ProtocolID      int64   `gorm:"column:protocol_id;not null"`
	CTermGain       *string `gorm:"column:c_term_gain"`
	MinDistance     *int    `gorm:"column:min_distance"`
	MissedCleavages *int    `gorm:"column:missed_cleavages"`
	NTermGain       *string `gorm:"column:n_term_gain"`
	Name            *string `gorm:"column:name"`
	SemiSpecific    *bool   `gorm:"column:semi_specific"`
	SiteRegexp      *string `gorm:"column:site_regexp"`
	Accession       *string `gorm:"column:accession"`
}

func (Enzyme) TableName() string { return "enzyme" }

type SearchModification struct {
	ID               int64          `gorm:"column:id;primaryKey;autoIncrement:false"`
	UploadID         int64          `gorm:"column:upload_id;primaryKey;autoIncrement:false"`
	ProtocolID       int64          `gorm:"column:protocol_id;not null"`
	ModName          string         `gorm:"column:mod_name;not null"`
	Mass             float64        `gorm:"column:mass;not null"`
	Residues         string         `gorm:"column:residues;not null"`
	SpecificityRules datatypes.JSON `gorm:"column:specificity_rules;type:jsonb"`
	FixedMod         bool           `gorm:"column:fixed_mod;not null"`
	Accessions       datatypes.JSON `gorm:"column:accessions;type:jsonb"`
	CrosslinkerID    *string        `gorm:"column:crosslinker_id"`
}

func (SearchModification) TableName() string { return "searchmodification" }
