package services

import (
	"context"
	"reflect"
	"sort"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"xiview-api/database"
	"xiview-api/internal/testutil"
	"xiview-api/models"
)

func intPtr(v int) *int { return &v }
func int64Ptr(v int64) *int64 { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }

// seedProject writes a project with one superseded and one current upload
// of file A, and an unrelated file B.
//
//	upload 101: A (superseded), crosslinked passing match "m1"
//	upload 102: A (current), peptides 1+2 crosslinked, 3 linear;
//	            m1 passing 1x2, m2 failing 1x2, m3 passing linear 3,
//	            m4 passing 2x3 (3 is not crosslinked),
//	            peptide 3 has one evidence without is_decoy
//	upload 103: B, no identifications
func seedProject(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []any{
		&[]models.Upload{
			{ID: 101, ProjectID: "PXDTEST", IdentificationFileName: "A.mzid"},
			{ID: 102, ProjectID: "PXDTEST", IdentificationFileName: "A.mzid",
				Provider: datatypes.JSON(`{"id":"prov"}`), ContainsCrosslinks: boolPtr(true),
				UploadWarnings: datatypes.JSON(`["w1"]`)},
			{ID: 103, ProjectID: "PXDTEST", IdentificationFileName: "B.mzid"},
		},
		&[]models.SpectrumIdentificationProtocol{
			{ID: 1, UploadID: 102, SipRef: "SearchProtocol_1", FragTol: float64Ptr(20), FragTolUnit: "ppm",
				Threshold: datatypes.JSON(`{"name":"FDR"}`)},
		},
		&[]models.Enzyme{
			{ID: "Trypsin_0", UploadID: 102, ProtocolID: 1, Name: strPtr("Trypsin"), MissedCleavages: intPtr(2)},
		},
		&[]models.DBSequence{
			{ID: "dbseq_P1", UploadID: 102, Accession: "P1", Sequence: strPtr("MKPEPKTIDE")},
			{ID: "dbseq_P2", UploadID: 102, Accession: "P2", Sequence: strPtr("AAKPEPKTIDE")},
			{ID: "dbseq_P3", UploadID: 102, Accession: "DECOY_P3", Sequence: strPtr("EDITPEPK")},
			{ID: "dbseq_P1", UploadID: 101, Accession: "P1"},
		},
		&[]models.ModifiedPeptide{
			{ID: 1, UploadID: 101, BaseSequence: "PEPKTIDE", LinkSite1: intPtr(4)},
			{ID: 2, UploadID: 101, BaseSequence: "KPEPTIDE", LinkSite1: intPtr(1)},
			{ID: 1, UploadID: 102, BaseSequence: "PEPKTIDE", LinkSite1: intPtr(4), LinkSite2: intPtr(-1),
				ModAccessions: datatypes.JSON(`[]`), CrosslinkerModMass: float64Ptr(138.068)},
			{ID: 2, UploadID: 102, BaseSequence: "KPEPTIDE", LinkSite1: intPtr(1), LinkSite2: intPtr(-1)},
			{ID: 3, UploadID: 102, BaseSequence: "LINEAR", LinkSite1: intPtr(-1)},
		},
		&[]models.PeptideEvidence{
			{UploadID: 101, PeptideID: 1, DBSequenceID: "dbseq_P1", PepStart: 3, IsDecoy: boolPtr(false)},
			{UploadID: 101, PeptideID: 2, DBSequenceID: "dbseq_P1", PepStart: 1, IsDecoy: boolPtr(false)},
			{UploadID: 102, PeptideID: 1, DBSequenceID: "dbseq_P2", PepStart: 5, IsDecoy: boolPtr(false)},
			{UploadID: 102, PeptideID: 1, DBSequenceID: "dbseq_P1", PepStart: 3, IsDecoy: boolPtr(false)},
			{UploadID: 102, PeptideID: 2, DBSequenceID: "dbseq_P2", PepStart: 3, IsDecoy: boolPtr(false)},
			{UploadID: 102, PeptideID: 3, DBSequenceID: "dbseq_P3", PepStart: 1, IsDecoy: boolPtr(true)},
			{UploadID: 102, PeptideID: 3, DBSequenceID: "dbseq_P1", PepStart: 9},
		},
		&[]models.Match{
			{ID: "m1", UploadID: 101, Pep1ID: 1, Pep2ID: int64Ptr(2), PassThreshold: true, Rank: 1},
			{ID: "m1", UploadID: 102, Pep1ID: 1, Pep2ID: int64Ptr(2), PassThreshold: true, Rank: 1,
				ChargeState: intPtr(4), Scores: datatypes.JSON(`{"score":12.5}`), SpectrumID: strPtr("index=7"),
				SpectraDataID: int64Ptr(0), SipID: int64Ptr(1)},
			{ID: "m2", UploadID: 102, Pep1ID: 1, Pep2ID: int64Ptr(2), PassThreshold: false, Rank: 1},
			{ID: "m3", UploadID: 102, Pep1ID: 3, PassThreshold: true, Rank: 1},
			{ID: "m4", UploadID: 102, Pep1ID: 2, Pep2ID: int64Ptr(3), PassThreshold: true, Rank: 1},
		},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

func boolPtr(v bool) *bool { return &v }

func newPostgresService(t *testing.T) *XiviewService {
	t.Helper()
	tx := testutil.Tx(t, testutil.Postgres(t))
	seedProject(t, tx)
	return NewXiviewService(tx, testutil.Logger(t), nil, testBaseURL)
}

func TestPostgresResolverIgnoresSupersededUploads(t *testing.T) {
	s := newPostgresService(t)
	ids, err := s.Resolver.MostRecentUploadIDs(context.Background(), "PXDTEST", "")
	if err != nil {
		t.Fatalf("MostRecentUploadIDs: %v", err)
	}
	if !reflect.DeepEqual([]int64(ids), []int64{102, 103}) {
		t.Fatalf("ids: want=[102 103] got=%v", ids)
	}
}

func TestPostgresMetadata(t *testing.T) {
	s := newPostgresService(t)
	ctx := context.Background()
	ids, err := s.Resolver.MostRecentUploadIDs(ctx, "PXDTEST", "A.mzid")
	if err != nil {
		t.Fatalf("MostRecentUploadIDs: %v", err)
	}

	md, err := s.Metadata(ctx, ids)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(md.MzIdentMLFiles) != 1 || md.MzIdentMLFiles[0].ID != 102 {
		t.Fatalf("mzidentml_files: got=%+v", md.MzIdentMLFiles)
	}
	if string(md.MzIdentMLFiles[0].Warnings) != `["w1"]` {
		t.Fatalf("warnings: got=%s", md.MzIdentMLFiles[0].Warnings)
	}
	if len(md.SpectrumIdentificationProtocols) != 1 || md.SpectrumIdentificationProtocols[0].SipRef != "SearchProtocol_1" {
		t.Fatalf("protocols: got=%+v", md.SpectrumIdentificationProtocols)
	}
	if len(md.Enzymes) != 1 || md.Enzymes[0].ProtocolID != 1 {
		t.Fatalf("enzymes: got=%+v", md.Enzymes)
	}
	if md.AnalysisCollections == nil || len(md.AnalysisCollections) != 0 {
		t.Fatalf("analysis_collections: want empty non-nil, got=%#v", md.AnalysisCollections)
	}
}

func TestPostgresMatches(t *testing.T) {
	s := newPostgresService(t)
	ctx := context.Background()
	ids, _ := s.Resolver.MostRecentUploadIDs(ctx, "PXDTEST", "")

	got, err := s.Matches(ctx, ids)
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	// m2 fails the threshold, m3 is linear, m4 has a non-crosslinked peptide
	if len(got) != 1 {
		t.Fatalf("matches: want only passing crosslinked m1 of upload 102, got=%+v", got)
	}
	m := got[0]
	if m.ID != "m1" || m.SearchID != "102" || !m.PassThreshold || m.Pep2ID == nil || *m.Pep2ID != 2 {
		t.Fatalf("match: got=%+v", m)
	}
	if m.ChargeState == nil || *m.ChargeState != 4 || string(m.Scores) != `{"score": 12.5}` {
		t.Fatalf("match details: got=%+v scores=%s", m, m.Scores)
	}
}

func TestPostgresPeptides(t *testing.T) {
	s := newPostgresService(t)
	ctx := context.Background()
	ids, _ := s.Resolver.MostRecentUploadIDs(ctx, "PXDTEST", "A.mzid")

	got, err := s.Peptides(ctx, ids)
	if err != nil {
		t.Fatalf("Peptides: %v", err)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })
	// peptide 2 is pep2 of m1 and pep1 of m4 but must appear once
	if len(got) != 3 || got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Fatalf("peptides: want 1, 2 and 3 once each, got=%+v", got)
	}
	for _, p := range got {
		if len(p.ProteinIDs) != len(p.Positions) || len(p.Positions) != len(p.Decoys) {
			t.Fatalf("peptide %d: evidence arrays differ in length", p.ID)
		}
	}

	p := got[0]
	if p.UploadID != "102" || p.BaseSequence != "PEPKTIDE" {
		t.Fatalf("peptide 1: got=%+v", p)
	}
	// evidence arrays are aligned and ordered by (protein, start)
	if !reflect.DeepEqual([]string(p.ProteinIDs), []string{"dbseq_P1", "dbseq_P2"}) ||
		!reflect.DeepEqual([]int64(p.Positions), []int64{3, 5}) ||
		!reflect.DeepEqual(p.Decoys, database.BoolArray{boolPtr(false), boolPtr(false)}) {
		t.Fatalf("peptide 1 evidence: prt=%v pos=%v dec=%v", p.ProteinIDs, p.Positions, p.Decoys)
	}
	if p.CrosslinkerModMass == nil || *p.CrosslinkerModMass != 138.068 {
		t.Fatalf("cl_m: got=%v", p.CrosslinkerModMass)
	}
	linear := got[2]
	if linear.LinkSite1 == nil || *linear.LinkSite1 != -1 {
		t.Fatalf("peptide 3: got=%+v", linear)
	}
	// a missing is_decoy stays null instead of failing the whole response
	if !reflect.DeepEqual(linear.Decoys, database.BoolArray{nil, boolPtr(true)}) ||
		!reflect.DeepEqual([]string(linear.ProteinIDs), []string{"dbseq_P1", "dbseq_P3"}) {
		t.Fatalf("peptide 3 evidence: prt=%v dec=%v", linear.ProteinIDs, linear.Decoys)
	}
	out, err := json.Marshal(linear.Decoys)
	if err != nil || string(out) != "[null,true]" {
		t.Fatalf("peptide 3 dec json: got=%s err=%v", out, err)
	}
}

func TestPostgresProteins(t *testing.T) {
	s := newPostgresService(t)
	ctx := context.Background()
	ids, _ := s.Resolver.MostRecentUploadIDs(ctx, "PXDTEST", "A.mzid")

	got, err := s.Proteins(ctx, ids)
	if err != nil {
		t.Fatalf("Proteins: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("proteins: want 3 of upload 102, got=%+v", got)
	}
	for _, p := range got {
		if p.SearchID != "102" {
			t.Fatalf("search_id: got=%q", p.SearchID)
		}
	}
}

func TestPostgresSequences(t *testing.T) {
	s := newPostgresService(t)
	ctx := context.Background()
	ids, _ := s.Resolver.MostRecentUploadIDs(ctx, "PXDTEST", "")

	got, err := s.Sequences(ctx, ids)
	if err != nil {
		t.Fatalf("Sequences: %v", err)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })
	if len(got) != 2 || got[0].ID != "dbseq_P1" || got[1].ID != "dbseq_P2" {
		t.Fatalf("sequences: want target P1 and P2, got=%+v", got)
	}
}

func TestPostgresResiduePairs(t *testing.T) {
	s := newPostgresService(t)
	ctx := context.Background()
	ids, _ := s.Resolver.MostRecentUploadIDs(ctx, "PXDTEST", "")

	all, err := s.ResiduePairs(ctx, ids, false)
	if err != nil {
		t.Fatalf("ResiduePairs(all): %v", err)
	}
	// pep1 has two evidences, pep2 one; m1 and m2 cross both
	if len(all) != 4 {
		t.Fatalf("all: want 4, got=%+v", all)
	}

	passing, err := s.ResiduePairs(ctx, ids, true)
	if err != nil {
		t.Fatalf("ResiduePairs(passing): %v", err)
	}
	if len(passing) != 2 {
		t.Fatalf("passing: want 2, got=%+v", passing)
	}
	for _, rp := range passing {
		if rp.ID != "m1" || rp.File != "A.mzid" || rp.Prot2 != "dbseq_P2" || rp.Pos2 != 3 {
			t.Fatalf("pair: got=%+v", rp)
		}
		if rp.Prot1 == "dbseq_P1" && rp.Pos1 != 6 {
			t.Fatalf("pos1 on P1: want=6 got=%d", rp.Pos1)
		}
	}
}

func TestPostgresWriterRoundTrip(t *testing.T) {
	tx := testutil.Tx(t, testutil.Postgres(t))
	ctx := context.Background()

	w, err := NewWriter(ctx, tx, testutil.Logger(t), WriterOptions{ProjectID: "PXDROUND", IdentificationFileName: "r.mzid"})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	// values as the xiwriter CLI decodes them from JSON
	tables := []struct {
		name string
		rows []map[string]any
	}{
		{"DBSequence", []map[string]any{
			{"id": "dbseq_Q1", "upload_id": w.UploadID, "accession": "Q1", "name": "Protein Q1", "sequence": "MKQ", "description": "test protein"},
		}},
		{"ModifiedPeptide", []map[string]any{
			{"id": json.Number("1"), "upload_id": w.UploadID, "base_sequence": "MKQ", "link_site1": json.Number("2"),
				"mod_accessions": []any{}, "crosslinker_modmass": json.Number("138.068")},
			{"id": json.Number("2"), "upload_id": w.UploadID, "base_sequence": "KQ", "link_site1": json.Number("1")},
		}},
		{"PeptideEvidence", []map[string]any{
			{"upload_id": w.UploadID, "peptide_id": json.Number("1"), "dbsequence_id": "dbseq_Q1", "pep_start": json.Number("1"), "is_decoy": false},
			{"upload_id": w.UploadID, "peptide_id": json.Number("2"), "dbsequence_id": "dbseq_Q1", "pep_start": json.Number("2")},
		}},
		{"Match", []map[string]any{
			{"id": "SII_1", "upload_id": w.UploadID, "pep1_id": json.Number("1"), "pep2_id": json.Number("2"),
				"pass_threshold": true, "rank": json.Number("1"), "charge_state": json.Number("3"),
				"scores": map[string]any{"score": json.Number("7.5")}},
		}},
	}
	for _, tbl := range tables {
		if err := w.WriteData(ctx, tbl.name, tbl.rows); err != nil {
			t.Fatalf("WriteData(%s): %v", tbl.name, err)
		}
	}
	if err := w.WriteOtherInfo(ctx, true, []string{}); err != nil {
		t.Fatalf("WriteOtherInfo: %v", err)
	}

	s := NewXiviewService(tx, testutil.Logger(t), nil, testBaseURL)
	ids, err := s.MostRecentUploadIDs(ctx, "PXDROUND", "")
	if err != nil {
		t.Fatalf("MostRecentUploadIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != w.UploadID {
		t.Fatalf("ids: want=[%d] got=%v", w.UploadID, ids)
	}

	got, err := s.Proteins(ctx, ids)
	if err != nil {
		t.Fatalf("Proteins: %v", err)
	}
	want := ProteinRecord{
		ID:          "dbseq_Q1",
		Name:        strPtr("Protein Q1"),
		Accession:   "Q1",
		Sequence:    strPtr("MKQ"),
		SearchID:    strconv.FormatInt(w.UploadID, 10),
		Description: strPtr("test protein"),
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Fatalf("round trip: want=%+v got=%+v", want, got)
	}

	md, err := s.Metadata(ctx, ids)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if f := md.MzIdentMLFiles[0]; f.ContainsCrosslinks == nil || !*f.ContainsCrosslinks || string(f.Warnings) != "[]" {
		t.Fatalf("upload row: got=%+v", f)
	}
	matches, err := s.Matches(ctx, ids)
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches: want=1 got=%+v", matches)
	}
	m := matches[0]
	if m.ID != "SII_1" || m.Pep1ID != 1 || m.Pep2ID == nil || *m.Pep2ID != 2 || !m.PassThreshold || m.Rank != 1 {
		t.Fatalf("match: got=%+v", m)
	}
	if m.ChargeState == nil || *m.ChargeState != 3 || string(m.Scores) != `{"score": 7.5}` {
		t.Fatalf("match details: got=%+v sc=%s", m, m.Scores)
	}
	// short codes on the wire
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(out, &wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"pi1", "pi2", "sc", "si", "pc_c", "p", "r"} {
		if _, ok := wire[key]; !ok {
			t.Fatalf("match json: missing %q in %s", key, out)
		}
	}

	peptides, err := s.Peptides(ctx, ids)
	if err != nil {
		t.Fatalf("Peptides: %v", err)
	}
	sort.Slice(peptides, func(i, j int) bool { return peptides[i].ID < peptides[j].ID })
	if len(peptides) != 2 {
		t.Fatalf("peptides: want=2 got=%+v", peptides)
	}
	p1, p2 := peptides[0], peptides[1]
	if p1.BaseSequence != "MKQ" || p1.LinkSite1 == nil || *p1.LinkSite1 != 2 ||
		p1.CrosslinkerModMass == nil || *p1.CrosslinkerModMass != 138.068 ||
		!reflect.DeepEqual(p1.Decoys, database.BoolArray{boolPtr(false)}) {
		t.Fatalf("peptide 1: got=%+v", p1)
	}
	if p2.BaseSequence != "KQ" || p2.LinkSite1 == nil || *p2.LinkSite1 != 1 ||
		!reflect.DeepEqual([]int64(p2.Positions), []int64{2}) ||
		!reflect.DeepEqual(p2.Decoys, database.BoolArray{nil}) {
		t.Fatalf("peptide 2: got=%+v", p2)
	}
}
