package mongostore

// Integration tests against a live server. Set MONGO_URI to run them; each
// test works in its own throwaway database and drops it on cleanup.

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/migration"
	"github.com/apartrent/apartment-service/internal/repository"
	"github.com/apartrent/apartment-service/internal/repository/gormstore"
)

func setupTestStore(t *testing.T) *Store {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping document store integration tests")
	}

	ctx := context.Background()
	store, err := Connect(ctx, uri, fmt.Sprintf("apartments_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, store.EnsureIndexes(ctx))

	t.Cleanup(func() {
		_ = store.db.Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func seedTestUser(t *testing.T, store *Store, email string, admin bool) *domain.User {
	user, err := store.CreateUser(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		FirstName:    "Test",
		LastName:     "User",
		IsAdmin:      admin,
		IsActive:     true,
	})
	require.NoError(t, err)
	return user
}

func seedTestApartment(t *testing.T, store *Store, ownerID, city, title string, price float64) *domain.Apartment {
	ctx := context.Background()
	loc, err := store.FindOrCreateLocation(ctx, domain.Location{
		City: city, Street: "Main St", HouseNumber: "1",
	})
	require.NoError(t, err)

	apt, err := store.CreateApartment(ctx, &domain.Apartment{
		Title:       title,
		Description: "a place to live",
		Price:       price,
		OwnerID:     ownerID,
		Location:    *loc,
	})
	require.NoError(t, err)
	return apt
}

func TestUserEmailUnique(t *testing.T) {
	store := setupTestStore(t)
	seedTestUser(t, store, "taken@example.com", false)

	_, err := store.CreateUser(context.Background(), &domain.User{
		Email: "taken@example.com", PasswordHash: "h", IsActive: true,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestLocationTripleUnique(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	loc := domain.Location{City: "Warsaw", Street: "Main St", HouseNumber: "12"}

	first, err := store.FindOrCreateLocation(ctx, loc)
	require.NoError(t, err)
	second, err := store.FindOrCreateLocation(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// unlike the relational adapter, the document store enforces the triple
	_, err = store.CreateLocation(ctx, loc)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestUpdateLocationRewritesEmbeddedCopies(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedTestUser(t, store, "owner@example.com", false)
	apt := seedTestApartment(t, store, owner.ID, "Warsaw", "Embedded flat", 2000)

	require.NoError(t, store.UpdateLocation(ctx, domain.Location{
		ID: apt.Location.ID, City: "Lodz", Street: "New St", HouseNumber: "9",
	}))
	require.NoError(t, store.SetLocationCoordinates(ctx, apt.Location.ID, 51.77, 19.46))

	got, err := store.FindApartmentByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lodz", got.Location.City)
	require.NotNil(t, got.Location.Coordinates)
	assert.InDelta(t, 51.77, got.Location.Coordinates.Lat, 0.001)

	canonical, err := store.FindLocationByID(ctx, apt.Location.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lodz", canonical.City)
}

func TestModerateApartmentSetsFields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedTestUser(t, store, "owner@example.com", false)
	admin := seedTestUser(t, store, "admin@example.com", true)
	apt := seedTestApartment(t, store, owner.ID, "Warsaw", "Pending flat", 2000)
	require.Equal(t, domain.StatusPending, apt.Status)

	got, err := store.ModerateApartment(ctx, apt.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	require.NotNil(t, got.ModeratedBy)
	assert.Equal(t, admin.ID, *got.ModeratedBy)
	assert.NotNil(t, got.ModeratedAt)
}

func TestVisibilityHidesUnapprovedAndInactiveOwners(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedTestUser(t, store, "owner@example.com", false)
	inactive := seedTestUser(t, store, "inactive@example.com", false)
	admin := seedTestUser(t, store, "admin@example.com", true)

	visible := seedTestApartment(t, store, owner.ID, "Warsaw", "Visible flat", 2000)
	seedTestApartment(t, store, owner.ID, "Warsaw", "Pending flat", 2100)
	hidden := seedTestApartment(t, store, inactive.ID, "Krakow", "Hidden flat", 2200)

	_, err := store.ModerateApartment(ctx, visible.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	_, err = store.ModerateApartment(ctx, hidden.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	require.NoError(t, store.SetUserActive(ctx, inactive.ID, false))

	got, err := store.ListVisible(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, visible.ID, got[0].ID)

	got, err = store.ListVisible(ctx, admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

// TestSystemStatsSemantics pins the numbers to the same seed shape the
// relational adapter is tested with, so both stores compute stats the same
// way.
func TestSystemStatsSemantics(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedTestUser(t, store, "owner@example.com", false)
	other := seedTestUser(t, store, "other@example.com", false)
	admin := seedTestUser(t, store, "admin@example.com", true)
	require.NoError(t, store.SetUserActive(ctx, other.ID, false))

	approved := seedTestApartment(t, store, owner.ID, "Warsaw", "Approved", 2000)
	rejected := seedTestApartment(t, store, owner.ID, "Warsaw", "Rejected", 9000)
	seedTestApartment(t, store, other.ID, "Krakow", "Pending", 1000)

	_, err := store.ModerateApartment(ctx, approved.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	_, err = store.ModerateApartment(ctx, rejected.ID, domain.StatusRejected, admin.ID)
	require.NoError(t, err)

	stats, err := store.SystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(3), stats.TotalApartments)
	assert.Equal(t, int64(1), stats.PendingApartments)
	assert.Equal(t, int64(1), stats.ApprovedApartments)
	assert.Equal(t, int64(1), stats.RejectedApartments)
	assert.InDelta(t, 2000.0, stats.AveragePrice, 0.001)
	assert.Equal(t, int64(2), stats.TotalOwners)
}

func TestSearchFiltersByPriceAndCity(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedTestUser(t, store, "owner@example.com", false)
	admin := seedTestUser(t, store, "admin@example.com", true)

	cheap := seedTestApartment(t, store, owner.ID, "Warsaw", "Sunny studio", 1500)
	costly := seedTestApartment(t, store, owner.ID, "Krakow", "Spacious loft", 4500)
	for _, id := range []string{cheap.ID, costly.ID} {
		_, err := store.ModerateApartment(ctx, id, domain.StatusApproved, admin.ID)
		require.NoError(t, err)
	}

	maxPrice := 2000.0
	got, err := store.SearchApartments(ctx, dto.SearchFilter{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cheap.ID, got[0].ID)

	got, err = store.SearchApartments(ctx, dto.SearchFilter{City: "krakow"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, costly.ID, got[0].ID)
}

func TestObservationPairUnique(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedTestUser(t, store, "owner@example.com", false)
	watcher := seedTestUser(t, store, "watcher@example.com", false)
	apt := seedTestApartment(t, store, owner.ID, "Warsaw", "Watched flat", 2000)

	require.NoError(t, store.AddObservation(ctx, watcher.ID, apt.ID))
	assert.ErrorIs(t, store.AddObservation(ctx, watcher.ID, apt.ID), repository.ErrDuplicateKey)

	list, err := store.ObservedApartments(ctx, watcher.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, apt.ID, list[0].ID)
}

// TestCopyMigrationFromRelational reruns a copy-mode migration out of a
// relational source that holds duplicate location triples. The unique index
// is live before the first insert, so the destination collapses them at
// write time and the run still completes.
func TestCopyMigrationFromRelational(t *testing.T) {
	dst := setupTestStore(t)
	ctx := context.Background()

	src, err := gormstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, src.EnsureSchema(ctx))

	owner, err := src.CreateUser(ctx, &domain.User{
		Email: "owner@example.com", PasswordHash: "h", FirstName: "Own", LastName: "Er", IsActive: true,
	})
	require.NoError(t, err)

	loc := domain.Location{City: "Warsaw", Street: "Main St", HouseNumber: "1"}
	first, err := src.CreateLocation(ctx, loc)
	require.NoError(t, err)
	_, err = src.CreateLocation(ctx, loc)
	require.NoError(t, err)

	_, err = src.CreateApartment(ctx, &domain.Apartment{
		Title: "Copied flat", Price: 2000, OwnerID: owner.ID, Location: *first,
	})
	require.NoError(t, err)

	require.True(t, migration.New(src, dst, migration.ModeCopy).Run(ctx))
	require.True(t, migration.New(src, dst, migration.ModeCopy).Run(ctx))

	locations, err := dst.AllLocations(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 1)

	users, err := dst.AllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
