package gormstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/repository"
	"github.com/apartrent/apartment-service/internal/repository/gormstore"
)

func setupTestStore(t *testing.T) *gormstore.Store {
	store, err := gormstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.EnsureIndexes(context.Background()))
	return store
}

func seedUser(t *testing.T, store *gormstore.Store, email string, admin bool) *domain.User {
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

func seedApartment(t *testing.T, store *gormstore.Store, ownerID, city, title string, price float64) *domain.Apartment {
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

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	seedUser(t, store, "taken@example.com", false)

	_, err := store.CreateUser(context.Background(), &domain.User{
		Email:        "taken@example.com",
		PasswordHash: "h",
		IsActive:     true,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestFindUserMalformedID(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.FindUserByID(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetUserActive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := seedUser(t, store, "flip@example.com", false)

	require.NoError(t, store.SetUserActive(ctx, user.ID, false))
	got, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, store.SetUserActive(ctx, "9999", false), repository.ErrNotFound)
}

func TestTouchLastLogin(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := seedUser(t, store, "login@example.com", false)
	require.Nil(t, user.LastLogin)

	require.NoError(t, store.TouchLastLogin(ctx, user.ID))
	got, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)
}

func TestFindOrCreateLocationDedup(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreateLocation(ctx, domain.Location{
		City: "Warsaw", Street: "Main St", HouseNumber: "12",
	})
	require.NoError(t, err)

	second, err := store.FindOrCreateLocation(ctx, domain.Location{
		City: "Warsaw", Street: "Main St", HouseNumber: "12",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.AllLocations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateLocationAllowsDuplicates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	loc := domain.Location{City: "Krakow", Street: "Long St", HouseNumber: "7"}

	first, err := store.CreateLocation(ctx, loc)
	require.NoError(t, err)
	second, err := store.CreateLocation(ctx, loc)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := store.AllLocations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSetLocationCoordinates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	loc, err := store.CreateLocation(ctx, domain.Location{City: "Gdansk", Street: "Sea St", HouseNumber: "3"})
	require.NoError(t, err)

	require.NoError(t, store.SetLocationCoordinates(ctx, loc.ID, 54.35, 18.65))
	got, err := store.FindLocationByID(ctx, loc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Coordinates)
	assert.InDelta(t, 54.35, got.Coordinates.Lat, 0.001)
	assert.InDelta(t, 18.65, got.Coordinates.Lon, 0.001)
}

func TestCreateApartmentDefaultsToPending(t *testing.T) {
	store := setupTestStore(t)
	owner := seedUser(t, store, "owner@example.com", false)

	apt := seedApartment(t, store, owner.ID, "Warsaw", "Cozy studio", 2500)
	assert.Equal(t, domain.StatusPending, apt.Status)
	assert.Equal(t, owner.ID, apt.OwnerID)
	assert.Equal(t, "Warsaw", apt.Location.City)
	assert.False(t, apt.CreatedAt.IsZero())
}

func TestUpdateApartmentPartialPatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	apt := seedApartment(t, store, owner.ID, "Warsaw", "Old title", 2500)

	newPrice := 3000.0
	got, err := store.UpdateApartment(ctx, apt.ID, dto.ApartmentUpdate{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, got.Price)
	assert.Equal(t, "Old title", got.Title)

	got, err = store.UpdateApartment(ctx, apt.ID, dto.ApartmentUpdate{
		Location: &dto.LocationInput{City: "Lodz", Street: "New St", HouseNumber: "9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lodz", got.Location.City)
	// the location row was updated in place, not replaced
	assert.Equal(t, apt.Location.ID, got.Location.ID)
}

func TestDeleteApartment(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	apt := seedApartment(t, store, owner.ID, "Warsaw", "Doomed", 1000)

	require.NoError(t, store.DeleteApartment(ctx, apt.ID))
	_, err := store.FindApartmentByID(ctx, apt.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, store.DeleteApartment(ctx, apt.ID), repository.ErrNotFound)
}

func TestModerateApartment(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	admin := seedUser(t, store, "admin@example.com", true)
	apt := seedApartment(t, store, owner.ID, "Warsaw", "Pending flat", 2000)

	got, err := store.ModerateApartment(ctx, apt.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	require.NotNil(t, got.ModeratedBy)
	assert.Equal(t, admin.ID, *got.ModeratedBy)
	assert.NotNil(t, got.ModeratedAt)

	_, err = store.ModerateApartment(ctx, "9999", domain.StatusApproved, admin.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListVisibleHidesUnapprovedAndInactiveOwners(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	inactive := seedUser(t, store, "inactive@example.com", false)
	admin := seedUser(t, store, "admin@example.com", true)

	visible := seedApartment(t, store, owner.ID, "Warsaw", "Visible flat", 2000)
	seedApartment(t, store, owner.ID, "Warsaw", "Pending flat", 2100)
	hidden := seedApartment(t, store, inactive.ID, "Krakow", "Hidden flat", 2200)

	_, err := store.ModerateApartment(ctx, visible.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	_, err = store.ModerateApartment(ctx, hidden.ID, domain.StatusApproved, admin.ID)
	require.NoError(t, err)
	require.NoError(t, store.SetUserActive(ctx, inactive.ID, false))

	// anonymous viewers see only approved listings from active owners
	got, err := store.ListVisible(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, visible.ID, got[0].ID)

	// a regular user gets the same view
	got, err = store.ListVisible(ctx, owner, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// admins see everything, pending included
	got, err = store.ListVisible(ctx, admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListPending(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	admin := seedUser(t, store, "admin@example.com", true)

	first := seedApartment(t, store, owner.ID, "Warsaw", "First", 1000)
	second := seedApartment(t, store, owner.ID, "Warsaw", "Second", 1100)
	_, err := store.ModerateApartment(ctx, first.ID, domain.StatusRejected, admin.ID)
	require.NoError(t, err)

	got, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)
}

func TestSearchApartments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	admin := seedUser(t, store, "admin@example.com", true)

	cheap := seedApartment(t, store, owner.ID, "Warsaw", "Sunny studio", 1500)
	costly := seedApartment(t, store, owner.ID, "Krakow", "Spacious loft", 4500)
	seedApartment(t, store, owner.ID, "Warsaw", "Sunny basement", 900)

	for _, id := range []string{cheap.ID, costly.ID} {
		_, err := store.ModerateApartment(ctx, id, domain.StatusApproved, admin.ID)
		require.NoError(t, err)
	}

	got, err := store.SearchApartments(ctx, dto.SearchFilter{Query: "Sunny"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cheap.ID, got[0].ID)

	// unmoderated listings only show up when requested
	got, err = store.SearchApartments(ctx, dto.SearchFilter{Query: "Sunny", IncludeUnmoderated: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	maxPrice := 2000.0
	got, err = store.SearchApartments(ctx, dto.SearchFilter{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cheap.ID, got[0].ID)

	got, err = store.SearchApartments(ctx, dto.SearchFilter{City: "Krakow"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, costly.ID, got[0].ID)

	got, err = store.SearchApartments(ctx, dto.SearchFilter{SortBy: "price_asc"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, cheap.ID, got[0].ID)
}

func TestUpdateApartmentFeaturesMerges(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	apt := seedApartment(t, store, owner.ID, "Warsaw", "Featured flat", 2000)

	require.NoError(t, store.UpdateApartmentFeatures(ctx, apt.ID, map[string]string{"balcony": "yes"}))
	require.NoError(t, store.UpdateApartmentFeatures(ctx, apt.ID, map[string]string{"parking": "garage"}))

	got, err := store.FindApartmentByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "yes", got.Features["balcony"])
	assert.Equal(t, "garage", got.Features["parking"])
}

func TestSystemStats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	other := seedUser(t, store, "other@example.com", false)
	admin := seedUser(t, store, "admin@example.com", true)
	require.NoError(t, store.SetUserActive(ctx, other.ID, false))

	approved := seedApartment(t, store, owner.ID, "Warsaw", "Approved", 2000)
	rejected := seedApartment(t, store, owner.ID, "Warsaw", "Rejected", 9000)
	seedApartment(t, store, other.ID, "Krakow", "Pending", 1000)

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
	// average covers approved listings only
	assert.InDelta(t, 2000.0, stats.AveragePrice, 0.001)
	assert.Equal(t, int64(2), stats.TotalOwners)
}

func TestCityDistribution(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	admin := seedUser(t, store, "admin@example.com", true)

	a := seedApartment(t, store, owner.ID, "Warsaw", "One", 2000)
	b := seedApartment(t, store, owner.ID, "Warsaw", "Two", 3000)
	c := seedApartment(t, store, owner.ID, "Krakow", "Three", 1000)
	for _, id := range []string{a.ID, b.ID, c.ID} {
		_, err := store.ModerateApartment(ctx, id, domain.StatusApproved, admin.ID)
		require.NoError(t, err)
	}

	got, err := store.CityDistribution(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Warsaw", got[0].City)
	assert.Equal(t, int64(2), got[0].Count)
	assert.InDelta(t, 2500.0, got[0].AvgPrice, 0.001)
}

func TestObservations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com", false)
	watcher := seedUser(t, store, "watcher@example.com", false)
	apt := seedApartment(t, store, owner.ID, "Warsaw", "Watched flat", 2000)

	require.NoError(t, store.AddObservation(ctx, watcher.ID, apt.ID))
	assert.ErrorIs(t, store.AddObservation(ctx, watcher.ID, apt.ID), repository.ErrDuplicateKey)

	observed, err := store.IsObserved(ctx, watcher.ID, apt.ID)
	require.NoError(t, err)
	assert.True(t, observed)

	list, err := store.ObservedApartments(ctx, watcher.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, apt.ID, list[0].ID)

	require.NoError(t, store.RemoveObservation(ctx, watcher.ID, apt.ID))
	observed, err = store.IsObserved(ctx, watcher.ID, apt.ID)
	require.NoError(t, err)
	assert.False(t, observed)
}
