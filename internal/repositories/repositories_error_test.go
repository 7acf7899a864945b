package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/shared"
)

func TestBandRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			band := models.NewPersistedBand(0, models.Band{Name: "   "})

			if err := repo.Create(band); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
			}
		})

		t.Run("NegativeFollowers", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			band := models.NewPersistedBand(0, models.Band{Name: "Amon", Followers: models.Followers(-1)})

			if err := repo.Create(band); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput for negative followers, got %v", err)
			}
		})

		t.Run("Duplicate", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			seedBands(t, repo, models.Band{Name: "Amon", Country: "Sweden"})

			dup := models.NewPersistedBand(0, models.Band{Name: "AMON", Country: "Sweden"})
			if err := repo.Create(dup); !errors.Is(err, shared.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}

			other := models.NewPersistedBand(0, models.Band{Name: "Amon", Country: "Brazil"})
			if err := repo.Create(other); err != nil {
				t.Fatalf("same name in another country should be allowed: %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)

			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrBandNotFound) {
				t.Fatalf("expected ErrBandNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			band := models.NewPersistedBand(0, models.Band{Name: "Amon"})
			band.SetID("nonexistent-id")

			if err := repo.Update(band); !errors.Is(err, shared.ErrBandNotFound) {
				t.Fatalf("expected ErrBandNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			band := seedBands(t, repo, models.Band{Name: "Amon"})[0]

			if err := repo.Delete(band.ID()); err != nil {
				t.Fatalf("failed to delete band: %v", err)
			}

			band.SetCountry("Sweden")
			if err := repo.Update(band); err == nil {
				t.Fatal("expected error when updating deleted band")
			}
		})

		t.Run("Duplicate", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			bands := seedBands(t, repo, models.Band{Name: "Amon"}, models.Band{Name: "Emperor"})

			bands[1].SetName("amon")
			if err := repo.Update(bands[1]); !errors.Is(err, shared.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)

			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrBandNotFound) {
				t.Fatalf("expected ErrBandNotFound, got %v", err)
			}
		})

		t.Run("AlreadyDeleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewBandRepository(db)
			band := seedBands(t, repo, models.Band{Name: "Amon"})[0]

			if err := repo.Delete(band.ID()); err != nil {
				t.Fatalf("failed to delete band: %v", err)
			}
			if err := repo.Delete(band.ID()); err == nil {
				t.Fatal("expected error when deleting an already deleted band")
			}
		})
	})

	t.Run("Closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewBandRepository(db)
		db.Close()

		ctx := context.Background()
		if _, err := repo.Contains(ctx, "amon", 0); err == nil {
			t.Error("expected Contains to fail on a closed database")
		}
		if _, err := repo.Similar(ctx, "amon", 0); err == nil {
			t.Error("expected Similar to fail on a closed database")
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected List to fail on a closed database")
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewBandRepository(db)
		seedBands(t, repo, models.Band{Name: "Amon"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := repo.Equals(ctx, "amon", 0); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
