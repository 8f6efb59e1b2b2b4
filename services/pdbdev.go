package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"xiview-api/database"
)

const sequencesSQL = `SELECT dbseq.id, u.identification_file_name, dbseq.sequence
	FROM upload AS u
	JOIN dbsequence AS dbseq ON u.id = dbseq.upload_id
	INNER JOIN peptideevidence pe ON dbseq.id = pe.dbsequence_id AND dbseq.upload_id = pe.upload_id
	WHERE u.id = ANY(?)
		AND pe.is_decoy = FALSE
	GROUP BY dbseq.id, dbseq.sequence, u.identification_file_name`

// Positions are 1-based residue positions in the protein.
const residuePairsSQL = `SELECT si.id, u.identification_file_name AS file, si.pass_threshold AS pass,
		pe1.dbsequence_id AS prot1, (pe1.pep_start + mp1.link_site1 - 1) AS pos1,
		pe2.dbsequence_id AS prot2, (pe2.pep_start + mp2.link_site1 - 1) AS pos2
	FROM match si
	INNER JOIN modifiedpeptide mp1 ON si.pep1_id = mp1.id AND si.upload_id = mp1.upload_id
	INNER JOIN peptideevidence pe1 ON mp1.id = pe1.peptide_id AND mp1.upload_id = pe1.upload_id
	INNER JOIN modifiedpeptide mp2 ON si.pep2_id = mp2.id AND si.upload_id = mp2.upload_id
	INNER JOIN peptideevidence pe2 ON mp2.id = pe2.peptide_id AND mp2.upload_id = pe2.upload_id
	INNER JOIN upload u ON u.id = si.upload_id
	WHERE u.id = ANY(?)
		AND mp1.link_site1 > 0 AND mp2.link_site1 > 0
		AND pe1.is_decoy = FALSE AND pe2.is_decoy = FALSE`

// ParseThresholdFilter reads the passing_threshold path segment.
func ParseThresholdFilter(s string) (passingOnly bool, err error) {
	switch strings.ToLower(s) {
	case "passing":
		return true, nil
	case "all":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidThreshold, s)
	}
}

// Sequences returns the target protein sequences used by a project.
func (s *XiviewService) Sequences(ctx context.Context, ids database.UploadIDs) ([]SequenceRecord, error) {
	defer s.observe("pdbdev_sequences", time.Now())

	out := []SequenceRecord{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.raw(ctx, &out, sequencesSQL, ids); err != nil {
		return nil, fmt.Errorf("sequences: %w", err)
	}
	return out, nil
}

// ResiduePairs returns crosslinked residue pairs at PSM level.
func (s *XiviewService) ResiduePairs(ctx context.Context, ids database.UploadIDs, passingOnly bool) ([]ResiduePair, error) {
	defer s.observe("pdbdev_residue_pairs", time.Now())

	out := []ResiduePair{}
	if len(ids) == 0 {
		return out, nil
	}
	query := residuePairsSQL
	if passingOnly {
		query += " AND si.pass_threshold = TRUE"
	}
	if err := s.raw(ctx, &out, query, ids); err != nil {
		return nil, fmt.Errorf("residue pairs: %w", err)
	}
	return out, nil
}
