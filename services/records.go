package services

import (
	"gorm.io/datatypes"

	"xiview-api/database"
)

// Metadata is the /get_xiview_metadata payload, keyed by category.
type Metadata struct {
	MzIdentMLFiles                  []UploadRecord             `json:"mzidentml_files"`
	AnalysisCollections             []AnalysisCollectionRecord `json:"analysis_collections"`
	SpectrumIdentificationProtocols []ProtocolRecord           `json:"spectrum_identification_protocols"`
	SpectraData                     []SpectraDataRecord        `json:"spectra_data"`
	Enzymes                         []EnzymeRecord             `json:"enzymes"`
	SearchModifications             []SearchModificationRecord `json:"search_modifications"`
}

func emptyMetadata() *Metadata {
	return &Metadata{
		MzIdentMLFiles:                  []UploadRecord{},
		AnalysisCollections:             []AnalysisCollectionRecord{},
		SpectrumIdentificationProtocols: []ProtocolRecord{},
		SpectraData:                     []SpectraDataRecord{},
		Enzymes:                         []EnzymeRecord{},
		SearchModifications:             []SearchModificationRecord{},
	}
}

type UploadRecord struct {
	ID                       int64          `json:"id" gorm:"column:id"`
	ProjectID                string         `json:"project_id" gorm:"column:project_id"`
	IdentificationFileName   string         `json:"identification_file_name" gorm:"column:identification_file_name"`
	Provider                 datatypes.JSON `json:"provider" gorm:"column:provider"`
	AuditCollection          datatypes.JSON `json:"audit_collection" gorm:"column:audit_collection"`
	AnalysisSampleCollection datatypes.JSON `json:"analysis_sample_collection" gorm:"column:analysis_sample_collection"`
	Bib                      datatypes.JSON `json:"bib" gorm:"column:bib"`
	SpectraFormats           datatypes.JSON `json:"spectra_formats" gorm:"column:spectra_formats"`
	ContainsCrosslinks       *bool          `json:"contains_crosslinks" gorm:"column:contains_crosslinks"`
	Warnings                 datatypes.JSON `json:"warnings" gorm:"column:warnings"`
}

type AnalysisCollectionRecord struct {
	UploadID                          int64          `json:"upload_id" gorm:"column:upload_id"`
	SpectrumIdentificationListRef     string         `json:"spectrum_identification_list_ref" gorm:"column:spectrum_identification_list_ref"`
	SpectrumIdentificationProtocolRef string         `json:"spectrum_identification_protocol_ref" gorm:"column:spectrum_identification_protocol_ref"`
	SpectraDataRefs                   datatypes.JSON `json:"spectra_data_refs" gorm:"column:spectra_data_refs"`
	SearchDatabaseRefs                datatypes.JSON `json:"search_database_refs" gorm:"column:search_database_refs"`
}

type ProtocolRecord struct {
	ID                     int64          `json:"id" gorm:"column:id"`
	SipRef                 string         `json:"sip_ref" gorm:"column:sip_ref"`
	UploadID               int64          `json:"upload_id" gorm:"column:upload_id"`
	FragTol                *float64       `json:"frag_tol" gorm:"column:frag_tol"`
	FragTolUnit            *string        `json:"frag_tol_unit" gorm:"column:frag_tol_unit"`
	AdditionalSearchParams datatypes.JSON `json:"additional_search_params" gorm:"column:additional_search_params"`
	AnalysisSoftware       datatypes.JSON `json:"analysis_software" gorm:"column:analysis_software"`
	Threshold              datatypes.JSON `json:"threshold" gorm:"column:threshold"`
}

type SpectraDataRecord struct {
	ID                          int64   `json:"id" gorm:"column:id"`
	UploadID                    int64   `json:"upload_id" gorm:"column:upload_id"`
	Location                    string  `json:"location" gorm:"column:location"`
	Name                        *string `json:"name" gorm:"column:name"`
	ExternalFormatDocumentation *string `json:"external_format_documentation" gorm:"column:external_format_documentation"`
	FileFormat                  string  `json:"file_format" gorm:"column:file_format"`
	SpectrumIDFormat            string  `json:"spectrum_id_format" gorm:"column:spectrum_id_format"`
}

type EnzymeRecord struct {
	ID              string  `json:"id" gorm:"column:id"`
	UploadID        int64   `json:"upload_id" gorm:"column:upload_id"`
	ProtocolID      int64   `json:"protocol_id" gorm:"column:protocol_id"`
	CTermGain       *string `json:"c_term_gain" gorm:"column:c_term_gain"`
	MinDistance     *int    `json:"min_distance" gorm:"column:min_distance"`
	MissedCleavages *int    `json:"missed_cleavages" gorm:"column:missed_cleavages"`
	NTermGain       *string `json:"n_term_gain" gorm:"column:n_term_gain"`
	Name            *string `json:"name" gorm:"column:name"`
	SemiSpecific    *bool   `json:"semi_specific" gorm:"column:semi_specific"`
	SiteRegexp      *string `json:"site_regexp" gorm:"column:site_regexp"`
	Accession       *string `json:"accession" gorm:"column:accession"`
}

type SearchModificationRecord struct {
	ID               int64          `json:"id" gorm:"column:id"`
	UploadID         int64          `json:"upload_id" gorm:"column:upload_id"`
	ProtocolID       int64          `json:"protocol_id" gorm:"column:protocol_id"`
	ModName          string         `json:"mod_name" gorm:"column:mod_name"`
	Mass             float64        `json:"mass" gorm:"column:mass"`
	Residues         string         `json:"residues" gorm:"column:residues"`
	SpecificityRules datatypes.JSON `json:"specificity_rules" gorm:"column:specificity_rules"`
	FixedMod         bool           `json:"fixed_mod" gorm:"column:fixed_mod"`
	Accessions       datatypes.JSON `json:"accessions" gorm:"column:accessions"`
	CrosslinkerID    *string        `json:"crosslinker_id" gorm:"column:crosslinker_id"`
}

// MatchRecord uses short field codes to keep large payloads small; the
// front end depends on these exact names.
type MatchRecord struct {
	ID            string         `json:"id" gorm:"column:id"`
	Pep1ID        int64          `json:"pi1" gorm:"column:pi1"`
	Pep2ID        *int64         `json:"pi2" gorm:"column:pi2"`
	Scores        datatypes.JSON `json:"sc" gorm:"column:sc"`
	SearchID      string         `json:"si" gorm:"column:si"`
	CalcMZ        *float64       `json:"c_mz" gorm:"column:c_mz"`
	ChargeState   *int           `json:"pc_c" gorm:"column:pc_c"`
	ExpMZ         *float64       `json:"pc_mz" gorm:"column:pc_mz"`
	SpectrumID    *string        `json:"sp" gorm:"column:sp"`
	SpectraDataID *int64         `json:"sd" gorm:"column:sd"`
	PassThreshold bool           `json:"p" gorm:"column:p"`
	Rank          int            `json:"r" gorm:"column:r"`
	SipID         *int64         `json:"sip" gorm:"column:sip"`
}

// PeptideRecord aggregates the evidence of one peptide. ProteinIDs,
// Positions and Decoys are parallel: index i is the same evidence row.
type PeptideRecord struct {
	ID                   int64                `json:"id" gorm:"column:id"`
	UploadID             string               `json:"u_id" gorm:"column:u_id"`
	BaseSequence         string               `json:"seq" gorm:"column:seq"`
	ProteinIDs           database.StringArray `json:"prt" gorm:"column:prt"`
	Positions            database.Int64Array  `json:"pos" gorm:"column:pos"`
	Decoys               database.BoolArray   `json:"dec" gorm:"column:dec"`
	LinkSite1            *int                 `json:"ls1" gorm:"column:ls1"`
	LinkSite2            *int                 `json:"ls2" gorm:"column:ls2"`
	ModAccessions        datatypes.JSON       `json:"m_as" gorm:"column:m_as"`
	ModPositions         datatypes.JSON       `json:"m_ps" gorm:"column:m_ps"`
	ModMonoisoMassDeltas datatypes.JSON       `json:"m_ms" gorm:"column:m_ms"`
	CrosslinkerModMass   *float64             `json:"cl_m" gorm:"column:cl_m"`
}

type ProteinRecord struct {
	ID          string  `json:"id" gorm:"column:id"`
	Name        *string `json:"name" gorm:"column:name"`
	Accession   string  `json:"accession" gorm:"column:accession"`
	Sequence    *string `json:"sequence" gorm:"column:sequence"`
	SearchID    string  `json:"search_id" gorm:"column:search_id"`
	Description *string `json:"description" gorm:"column:description"`
}

type Dataset struct {
	ProjectID              string `json:"project_id" gorm:"column:project_id"`
	IdentificationFileName string `json:"identification_file_name" gorm:"column:identification_file_name"`
}

type Visualisation struct {
	Filename      string `json:"filename"`
	Visualisation string `json:"visualisation"`
	Link          string `json:"link"`
}

// SequenceRecord is a non-decoy protein sequence of a project (PDB-Dev).
type SequenceRecord struct {
	ID       string  `json:"id" gorm:"column:id"`
	File     string  `json:"identification_file_name" gorm:"column:identification_file_name"`
	Sequence *string `json:"sequence" gorm:"column:sequence"`
}

// ResiduePair is one crosslinked residue pair at PSM level (PDB-Dev).
type ResiduePair struct {
	ID    string `json:"id" gorm:"column:id"`
	File  string `json:"file" gorm:"column:file"`
	Pass  bool   `json:"pass" gorm:"column:pass"`
	Prot1 string `json:"prot1" gorm:"column:prot1"`
	Pos1  int64  `json:"pos1" gorm:"column:pos1"`
	Prot2 string `json:"prot2" gorm:"column:prot2"`
	Pos2  int64  `json:"pos2" gorm:"column:pos2"`
}
