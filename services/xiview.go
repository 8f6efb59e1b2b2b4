package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"xiview-api/database"
	"xiview-api/metrics"
	"xiview-api/models"
)

// CrosslinkingVisualisation is the only visualisation type offered.
const CrosslinkingVisualisation = "cross-linking"

// XiviewService answers the read queries of the xiVIEW front end. All
// project scoped queries run against the most recent upload per file.
type XiviewService struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Resolver *UploadResolver
	BaseURL  string
}

// NewXiviewService erstellt einen neuen XiviewService.
func NewXiviewService(db *gorm.DB, logger *zap.Logger, m *metrics.Metrics, baseURL string) *XiviewService {
	return &XiviewService{
		DB:       db,
		Logger:   logger,
		Metrics:  m,
		Resolver: NewUploadResolver(db, logger),
		BaseURL:  baseURL,
	}
}

func (s *XiviewService) observe(query string, start time.Time) {
	took := time.Since(start)
	s.Metrics.ObserveQuery(query, took)
	s.Logger.Debug("Query executed", zap.String("query", query), zap.Duration("took", took))
}

func (s *XiviewService) raw(ctx context.Context, dest any, sql string, args ...any) error {
	return s.DB.WithContext(ctx).Raw(sql, args...).Scan(dest).Error
}

// PeakList loads and decodes the peaks of one spectrum.
func (s *XiviewService) PeakList(ctx context.Context, spectrumID string, spectraDataID, uploadID int64) (*PeakList, error) {
	defer s.observe("peaklist", time.Now())

	var row models.Spectrum
	err := s.DB.WithContext(ctx).
		Select("intensity", "mz").
		Where("id = ? AND spectra_data_id = ? AND upload_id = ?", spectrumID, spectraDataID, uploadID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s (spectra data %d, upload %d)", ErrSpectrumNotFound, spectrumID, spectraDataID, uploadID)
	}
	if err != nil {
		return nil, fmt.Errorf("load spectrum %s: %w", spectrumID, err)
	}
	return DecodePeakList(row.Intensity, row.MZ)
}

const (
	uploadMetadataSQL = `SELECT u.id, u.project_id, u.identification_file_name, u.provider,
		u.audit_collection, u.analysis_sample_collection, u.bib, u.spectra_formats,
		u.contains_crosslinks, u.upload_warnings AS warnings
	FROM upload u
	WHERE u.id = ANY(?)`

	analysisCollectionSQL = `SELECT ac.upload_id, ac.spectrum_identification_list_ref,
		ac.spectrum_identification_protocol_ref, ac.spectra_data_refs, ac.search_database_refs
	FROM analysiscollectionspectrumidentification ac
	WHERE ac.upload_id = ANY(?)`

	protocolSQL = `SELECT sip.id, sip.sip_ref, sip.upload_id, sip.frag_tol, sip.frag_tol_unit,
		sip.additional_search_params, sip.analysis_software, sip.threshold
	FROM spectrumidentificationprotocol sip
	WHERE sip.upload_id = ANY(?)`

	spectraDataSQL = `SELECT sd.id, sd.upload_id, sd.location, sd.name, sd.external_format_documentation,
		sd.file_format, sd.spectrum_id_format
	FROM spectradata sd
	WHERE sd.upload_id = ANY(?)`

	enzymeSQL = `SELECT e.id, e.upload_id, e.protocol_id, e.c_term_gain, e.min_distance, e.missed_cleavages,
		e.n_term_gain, e.name, e.semi_specific, e.site_regexp, e.accession
	FROM enzyme e
	WHERE e.upload_id = ANY(?)`

	searchModificationSQL = `SELECT sm.id, sm.upload_id, sm.protocol_id, sm.mod_name, sm.mass, sm.residues,
		sm.specificity_rules, sm.fixed_mod, sm.accessions, sm.crosslinker_id
	FROM searchmodification sm
	WHERE sm.upload_id = ANY(?)`
)

// Metadata collects the upload level metadata. The six queries are
// independent and not run in a shared snapshot.
func (s *XiviewService) Metadata(ctx context.Context, ids database.UploadIDs) (*Metadata, error) {
	defer s.observe("metadata", time.Now())

	md := emptyMetadata()
	if len(ids) == 0 {
		return md, nil
	}

	steps := []struct {
		name string
		sql  string
		dest any
	}{
		{"mzidentml_files", uploadMetadataSQL, &md.MzIdentMLFiles},
		{"analysis_collections", analysisCollectionSQL, &md.AnalysisCollections},
		{"spectrum_identification_protocols", protocolSQL, &md.SpectrumIdentificationProtocols},
		{"spectra_data", spectraDataSQL, &md.SpectraData},
		{"enzymes", enzymeSQL, &md.Enzymes},
		{"search_modifications", searchModificationSQL, &md.SearchModifications},
	}
	for _, step := range steps {
		if err := s.raw(ctx, step.dest, step.sql, ids); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", step.name, err)
		}
	}
	return md, nil
}

const matchesSQL = `WITH submodpep AS (
		SELECT id, upload_id FROM modifiedpeptide
		WHERE upload_id = ANY(?) AND link_site1 > -1
	)
	SELECT si.id AS id, si.pep1_id AS pi1, si.pep2_id AS pi2, si.scores AS sc,
		CAST(si.upload_id AS text) AS si, si.calc_mz AS c_mz, si.charge_state AS pc_c,
		si.exp_mz AS pc_mz, si.spectrum_id AS sp, si.spectra_data_id AS sd,
		si.pass_threshold AS p, si.rank AS r, si.sip_id AS sip
	FROM match si
	INNER JOIN submodpep mp1 ON si.upload_id = mp1.upload_id AND si.pep1_id = mp1.id
	INNER JOIN submodpep mp2 ON si.upload_id = mp2.upload_id AND si.pep2_id = mp2.id
	WHERE si.upload_id = ANY(?)
		AND si.pass_threshold = TRUE`

// Matches returns the passing crosslinked matches. Both peptides must be
// crosslinked, so linear matches (no pep2) drop out of the inner join.
func (s *XiviewService) Matches(ctx context.Context, ids database.UploadIDs) ([]MatchRecord, error) {
	defer s.observe("matches", time.Now())

	out := []MatchRecord{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.raw(ctx, &out, matchesSQL, ids, ids); err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}
	return out, nil
}

// The three array_aggs share one ORDER BY so their elements stay aligned.
const peptidesSQL = `WITH submatch AS (
		SELECT pep1_id, pep2_id, upload_id FROM match
		WHERE upload_id = ANY(?) AND pass_threshold = TRUE
	),
	pep_ids AS (
		SELECT upload_id, pep1_id AS pep_id FROM submatch
		UNION
		SELECT upload_id, pep2_id FROM submatch WHERE pep2_id IS NOT NULL
	),
	subpp AS (
		SELECT * FROM peptideevidence WHERE upload_id = ANY(?)
	)
	SELECT mp.id,
		CAST(mp.upload_id AS text) AS u_id,
		mp.base_sequence AS seq,
		array_agg(pp.dbsequence_id ORDER BY pp.dbsequence_id, pp.pep_start) AS prt,
		array_agg(pp.pep_start ORDER BY pp.dbsequence_id, pp.pep_start) AS pos,
		array_agg(pp.is_decoy ORDER BY pp.dbsequence_id, pp.pep_start) AS dec,
		mp.link_site1 AS ls1,
		mp.link_site2 AS ls2,
		mp.mod_accessions AS m_as,
		mp.mod_positions AS m_ps,
		mp.mod_monoiso_mass_deltas AS m_ms,
		mp.crosslinker_modmass AS cl_m
	FROM pep_ids pi
	INNER JOIN modifiedpeptide mp ON mp.upload_id = pi.upload_id AND mp.id = pi.pep_id
	JOIN subpp pp ON mp.upload_id = pp.upload_id AND mp.id = pp.peptide_id
	GROUP BY mp.id, mp.upload_id, mp.base_sequence`

// Peptides returns every peptide referenced by a passing match together
// with its protein evidence.
func (s *XiviewService) Peptides(ctx context.Context, ids database.UploadIDs) ([]PeptideRecord, error) {
	defer s.observe("peptides", time.Now())

	out := []PeptideRecord{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.raw(ctx, &out, peptidesSQL, ids, ids); err != nil {
		return nil, fmt.Errorf("peptides: %w", err)
	}
	return out, nil
}

const proteinsSQL = `SELECT id, name, accession, sequence, CAST(upload_id AS text) AS search_id, description
	FROM dbsequence
	WHERE upload_id = ANY(?)`

func (s *XiviewService) Proteins(ctx context.Context, ids database.UploadIDs) ([]ProteinRecord, error) {
	defer s.observe("proteins", time.Now())

	out := []ProteinRecord{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.raw(ctx, &out, proteinsSQL, ids); err != nil {
		return nil, fmt.Errorf("proteins: %w", err)
	}
	return out, nil
}

// Datasets lists every distinct (project, file) pair, including files
// that have been superseded by a newer upload of the same name.
func (s *XiviewService) Datasets(ctx context.Context) ([]Dataset, error) {
	defer s.observe("datasets", time.Now())

	out := []Dataset{}
	err := s.DB.WithContext(ctx).
		Model(&models.Upload{}).
		Distinct("project_id", "identification_file_name").
		Order("project_id").Order("identification_file_name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("datasets: %w", err)
	}
	return out, nil
}

// Visualisations builds one viewer link per distinct file of the project,
// in upload order.
func (s *XiviewService) Visualisations(ctx context.Context, projectID string) ([]Visualisation, error) {
	defer s.observe("visualisations", time.Now())

	var files []string
	err := s.DB.WithContext(ctx).
		Model(&models.Upload{}).
		Where("project_id = ?", projectID).
		Order("id").
		Pluck("identification_file_name", &files).Error
	if err != nil {
		return nil, fmt.Errorf("visualisations for %s: %w", projectID, err)
	}

	out := make([]Visualisation, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, Visualisation{
			Filename:      f,
			Visualisation: CrosslinkingVisualisation,
			Link:          VisualisationLink(s.BaseURL, projectID, f),
		})
	}
	return out, nil
}

// VisualisationLink points the viewer at one file of a project.
func VisualisationLink(base, projectID, file string) string {
	return base + "?project=" + url.QueryEscape(projectID) + "&file=" + url.QueryEscape(file)
}

// MostRecentUploadIDs delegates to the resolver.
func (s *XiviewService) MostRecentUploadIDs(ctx context.Context, projectID, fileName string) (database.UploadIDs, error) {
	return s.Resolver.MostRecentUploadIDs(ctx, projectID, fileName)
}
