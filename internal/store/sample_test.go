package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestSampleRepository_CreateAndGet(t *testing.T) {
	repo := newTestStore(t).Samples()

	s := &Sample{Label: "Paper", Source: "dataset/Paper/1.png", Features: []float64{0.1, 0.2, 0.3}}
	if err := repo.Create(s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", s.ID, err)
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.GetByID(s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Label != "Paper" || got.Source != s.Source {
		t.Errorf("got %+v", got)
	}
	if len(got.Features) != 3 || got.Features[2] != 0.3 {
		t.Errorf("Features = %v", got.Features)
	}
}

func TestSampleRepository_Validation(t *testing.T) {
	repo := newTestStore(t).Samples()

	if err := repo.Create(&Sample{Features: []float64{1}}); err == nil {
		t.Error("expected error for empty label")
	}
	if err := repo.Create(&Sample{Label: "Rock"}); err == nil {
		t.Error("expected error for empty features")
	}

	err := repo.CreateBatch([]*Sample{
		{Label: "Rock", Features: []float64{1}},
		{Label: "", Features: []float64{1}},
	})
	if err == nil {
		t.Fatal("expected batch error")
	}
	if all, _ := repo.List(""); len(all) != 0 {
		t.Errorf("failed batch should roll back, found %d rows", len(all))
	}
}

func TestSampleRepository_ListAndCount(t *testing.T) {
	repo := newTestStore(t).Samples()

	batch := []*Sample{
		{Label: "Rock", Features: []float64{1}},
		{Label: "Rock", Features: []float64{2}},
		{Label: "Scissors", Features: []float64{3}},
	}
	if err := repo.CreateBatch(batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	all, err := repo.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() = %d, want 3", len(all))
	}
	for i, s := range all {
		if s.Features[0] != float64(i+1) {
			t.Errorf("row %d out of insertion order: %v", i, s.Features)
		}
	}

	rock, err := repo.List("Rock")
	if err != nil || len(rock) != 2 {
		t.Errorf("List(Rock) = %d, %v; want 2", len(rock), err)
	}

	counts, err := repo.CountByLabel()
	if err != nil {
		t.Fatalf("CountByLabel() error = %v", err)
	}
	if counts["Rock"] != 2 || counts["Scissors"] != 1 || len(counts) != 2 {
		t.Errorf("CountByLabel() = %v", counts)
	}
}

func TestSampleRepository_Delete(t *testing.T) {
	repo := newTestStore(t).Samples()

	s := &Sample{Label: "Rock", Features: []float64{1}}
	repo.Create(s)
	repo.Create(&Sample{Label: "Paper", Features: []float64{1}})
	repo.Create(&Sample{Label: "Paper", Features: []float64{2}})

	if err := repo.Delete(s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}

	n, err := repo.DeleteByLabel("Paper")
	if err != nil || n != 2 {
		t.Errorf("DeleteByLabel() = %d, %v; want 2", n, err)
	}
	if counts, _ := repo.CountByLabel(); len(counts) != 0 {
		t.Errorf("expected empty store, got %v", counts)
	}
}
