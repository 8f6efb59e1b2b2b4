package services

import (
	"context"
	"testing"

	"xiview-api/internal/testutil"
	"xiview-api/models"
)

func TestLatestPerFile(t *testing.T) {
	refs := []UploadRef{
		{ID: 1, IdentificationFileName: "A"},
		{ID: 5, IdentificationFileName: "A"},
		{ID: 2, IdentificationFileName: "B"},
	}
	got := LatestPerFile(refs)
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Fatalf("LatestPerFile: want=[2 5] got=%v", got)
	}
}

func TestLatestPerFileEmpty(t *testing.T) {
	got := LatestPerFile(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("LatestPerFile(nil): want empty non-nil, got=%#v", got)
	}
}

func seedUploads(t *testing.T, r *UploadResolver, uploads ...models.Upload) {
	t.Helper()
	for i := range uploads {
		if err := r.DB.Create(&uploads[i]).Error; err != nil {
			t.Fatalf("seed upload: %v", err)
		}
	}
}

func TestMostRecentUploadIDs(t *testing.T) {
	db := testutil.SQLite(t)
	r := NewUploadResolver(db, testutil.Logger(t))
	seedUploads(t, r,
		models.Upload{ID: 1, ProjectID: "PXD1", IdentificationFileName: "A"},
		models.Upload{ID: 2, ProjectID: "PXD1", IdentificationFileName: "B"},
		models.Upload{ID: 5, ProjectID: "PXD1", IdentificationFileName: "A"},
		models.Upload{ID: 7, ProjectID: "PXD2", IdentificationFileName: "A"},
	)
	ctx := context.Background()

	ids, err := r.MostRecentUploadIDs(ctx, "PXD1", "")
	if err != nil {
		t.Fatalf("MostRecentUploadIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 5 {
		t.Fatalf("project ids: want=[2 5] got=%v", ids)
	}

	ids, err = r.MostRecentUploadIDs(ctx, "PXD1", "A")
	if err != nil {
		t.Fatalf("MostRecentUploadIDs(file): %v", err)
	}
	if len(ids) != 1 || ids[0] != 5 {
		t.Fatalf("file ids: want=[5] got=%v", ids)
	}

	ids, err = r.MostRecentUploadIDs(ctx, "PXD404", "")
	if err != nil {
		t.Fatalf("MostRecentUploadIDs(unknown): %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("unknown project: want empty, got=%v", ids)
	}
}
