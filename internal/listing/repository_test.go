package listing_test

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/localharvest/localharvest/internal/db"
	"github.com/localharvest/localharvest/internal/listing"
)

func testRepo(t *testing.T) *listing.Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	return listing.NewRepository(d)
}

func repoListing(id, name string) *listing.Listing {
	return &listing.Listing{
		ID:            id,
		ItemName:      name,
		OfferType:     listing.OfferSell,
		Description:   "fresh from the garden",
		PostalCode:    "90210",
		ContactMethod: listing.ContactEmail,
		Contact:       "a@example.com",
		Price:         "3.50",
		Owner:         "a@example.com",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestRepositoryAppendAndReadAll(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Append(repoListing("1", "Tomatoes")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(repoListing("2", "Zucchini")); err != nil {
		t.Fatalf("append: %v", err)
	}

	all, err := repo.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d listings, want 2", len(all))
	}
	if all[0].ID != "1" || all[1].ID != "2" {
		t.Error("expected insertion order preserved")
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := testRepo(t)

	want := repoListing("abc", "Honey")
	want.Image = []byte{0x89, 0x50, 0x4e, 0x47}
	if err := repo.Append(want); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.FindByID("abc")
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if got.ItemName != want.ItemName {
		t.Errorf("item_name = %q, want %q", got.ItemName, want.ItemName)
	}
	if got.OfferType != want.OfferType {
		t.Errorf("offer_type = %q, want %q", got.OfferType, want.OfferType)
	}
	if got.Description != want.Description {
		t.Errorf("description = %q, want %q", got.Description, want.Description)
	}
	if got.Owner != want.Owner {
		t.Errorf("owner = %q, want %q", got.Owner, want.Owner)
	}
	if string(got.Image) != string(want.Image) {
		t.Error("image bytes do not round-trip")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestRepositoryFindMissing(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.FindByID("nope")
	if !errors.Is(err, listing.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryReplace(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Append(repoListing("abc", "Tomatoes")); err != nil {
		t.Fatalf("append: %v", err)
	}

	updated := repoListing("abc", "Heirloom Tomatoes")
	updated.Price = "5.00"
	if err := repo.Replace(updated); err != nil {
		t.Fatalf("replace: %v", err)
	}

	all, err := repo.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d listings after replace, want 1", len(all))
	}
	if all[0].ItemName != "Heirloom Tomatoes" || all[0].Price != "5.00" {
		t.Errorf("unexpected listing after replace: %+v", all[0])
	}
}

func TestRepositoryReplaceMissing(t *testing.T) {
	repo := testRepo(t)

	err := repo.Replace(repoListing("missing", "X"))
	if !errors.Is(err, listing.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Append(repoListing("abc", "Tomatoes")); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := repo.DeleteByID("abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.FindByID("abc"); !errors.Is(err, listing.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.DeleteByID("abc"); !errors.Is(err, listing.ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestRepositoryImplementsStore(t *testing.T) {
	var _ listing.Store = listing.NewRepository((*sql.DB)(nil))
}
