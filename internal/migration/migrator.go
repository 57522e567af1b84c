// Package migration copies users, locations and apartments between two
// storage adapters, in that dependency order, rewriting cross-entity
// references through an in-memory ID map. It is a one-shot, single-threaded
// tool: run it to completion before serving traffic against the destination.
package migration

import (
	"context"
	"errors"
	"log"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

type Mode string

const (
	// ModeCopy inserts every source record as-is; duplicate locations in the
	// source stay duplicated in the destination.
	ModeCopy Mode = "copy"
	// ModeDedup resolves users by email, locations by the address triple and
	// apartments by (owner, location, title) before inserting, so re-running
	// the migration adds nothing.
	ModeDedup Mode = "dedup"
)

// IDMap translates source-store identifiers into destination-store
// identifiers. It is built incrementally as each entity lands.
type IDMap struct {
	Users      map[string]string
	Locations  map[string]string
	Apartments map[string]string
}

type Migrator struct {
	src  repository.Store
	dst  repository.Store
	mode Mode
	ids  IDMap
}

func New(src, dst repository.Store, mode Mode) *Migrator {
	return &Migrator{
		src:  src,
		dst:  dst,
		mode: mode,
		ids: IDMap{
			Users:      map[string]string{},
			Locations:  map[string]string{},
			Apartments: map[string]string{},
		},
	}
}

func (m *Migrator) IDs() IDMap { return m.ids }

func (m *Migrator) MigrateUsers(ctx context.Context) (int, error) {
	users, err := m.src.AllUsers(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("found %d users in source store", len(users))

	migrated := 0
	for i := range users {
		u := users[i]

		if m.mode == ModeDedup {
			if existing, err := m.dst.FindUserByEmail(ctx, u.Email); err == nil {
				m.ids.Users[u.ID] = existing.ID
				continue
			}
		}

		created, err := m.dst.CreateUser(ctx, &domain.User{
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Phone:        u.Phone,
			IsAdmin:      u.IsAdmin,
			IsActive:     u.IsActive,
			CreatedAt:    u.CreatedAt,
			LastLogin:    u.LastLogin,
		})
		if err != nil {
			// the email unique constraint holds in every destination, so a
			// plain copy still maps collisions onto the existing record
			if errors.Is(err, repository.ErrDuplicateKey) {
				if existing, findErr := m.dst.FindUserByEmail(ctx, u.Email); findErr == nil {
					m.ids.Users[u.ID] = existing.ID
					continue
				}
			}
			return migrated, err
		}
		m.ids.Users[u.ID] = created.ID
		migrated++
	}
	log.Printf("migrated %d users", migrated)
	return migrated, nil
}

func (m *Migrator) MigrateLocations(ctx context.Context) (int, error) {
	locations, err := m.src.AllLocations(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("found %d locations in source store", len(locations))

	migrated := 0
	for i := range locations {
		l := locations[i]
		dstLoc, err := m.copyLocation(ctx, l)
		if err != nil {
			return migrated, err
		}
		m.ids.Locations[l.ID] = dstLoc.ID
		migrated++
	}
	log.Printf("migrated %d locations", migrated)
	return migrated, nil
}

func (m *Migrator) copyLocation(ctx context.Context, l domain.Location) (*domain.Location, error) {
	loc := domain.Location{
		City:        l.City,
		Street:      l.Street,
		HouseNumber: l.HouseNumber,
		Coordinates: l.Coordinates,
	}
	if m.mode == ModeDedup {
		return m.dst.FindOrCreateLocation(ctx, loc)
	}

	created, err := m.dst.CreateLocation(ctx, loc)
	if errors.Is(err, repository.ErrDuplicateKey) {
		// destination enforces the address triple; resolve instead
		return m.dst.FindOrCreateLocation(ctx, loc)
	}
	return created, err
}

func apartmentKey(ownerID, locationID, title string) string {
	return ownerID + "|" + locationID + "|" + title
}

func (m *Migrator) MigrateApartments(ctx context.Context) (int, error) {
	apartments, err := m.src.AllApartments(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("found %d apartments in source store", len(apartments))

	// dedup mode resolves against listings already in the destination; the
	// index is built once up front, so two identical listings inside one
	// source still copy as two distinct records
	existing := map[string]string{}
	if m.mode == ModeDedup {
		current, err := m.dst.AllApartments(ctx)
		if err != nil {
			return 0, err
		}
		for i := range current {
			a := current[i]
			existing[apartmentKey(a.OwnerID, a.Location.ID, a.Title)] = a.ID
		}
	}

	migrated := 0
	for i := range apartments {
		apt := apartments[i]

		ownerID, ok := m.ids.Users[apt.OwnerID]
		if !ok {
			log.Printf("skipping apartment %s: owner %s not migrated", apt.ID, apt.OwnerID)
			continue
		}

		locationID, ok := m.ids.Locations[apt.Location.ID]
		if !ok {
			// the location was missed earlier; resolve it just in time
			loc, err := m.dst.FindOrCreateLocation(ctx, domain.Location{
				City:        apt.Location.City,
				Street:      apt.Location.Street,
				HouseNumber: apt.Location.HouseNumber,
			})
			if err != nil {
				return migrated, err
			}
			locationID = loc.ID
			m.ids.Locations[apt.Location.ID] = locationID
		}

		if m.mode == ModeDedup {
			if dstID, ok := existing[apartmentKey(ownerID, locationID, apt.Title)]; ok {
				m.ids.Apartments[apt.ID] = dstID
				continue
			}
		}

		var moderatedBy *string
		if apt.ModeratedBy != nil {
			if mapped, ok := m.ids.Users[*apt.ModeratedBy]; ok {
				moderatedBy = &mapped
			}
		}

		created, err := m.dst.CreateApartment(ctx, &domain.Apartment{
			Title:       apt.Title,
			Description: apt.Description,
			Price:       apt.Price,
			OwnerID:     ownerID,
			Location:    domain.Location{ID: locationID},
			Status:      apt.Status,
			Features:    apt.Features,
			CreatedAt:   apt.CreatedAt,
			UpdatedAt:   apt.UpdatedAt,
			ModeratedBy: moderatedBy,
			ModeratedAt: apt.ModeratedAt,
		})
		if err != nil {
			return migrated, err
		}
		m.ids.Apartments[apt.ID] = created.ID
		migrated++
	}
	log.Printf("migrated %d apartments", migrated)
	return migrated, nil
}

// Run executes the three steps in dependency order, with destination indexes
// built before the first insert and refreshed after the last. All failures
// are logged and folded into the boolean result; the copy is not
// transactional, so a late failure leaves earlier entities committed in the
// destination.
func (m *Migrator) Run(ctx context.Context) bool {
	log.Printf("starting migration (%s mode)", m.mode)

	if err := m.dst.EnsureSchema(ctx); err != nil {
		log.Printf("migration failed: destination schema: %v", err)
		return false
	}
	// constraints go live before any insert: an engine that enforces the
	// location triple rejects duplicates at write time, where copyLocation
	// resolves them, instead of failing the index build after the copy
	if err := m.dst.EnsureIndexes(ctx); err != nil {
		log.Printf("migration failed: destination indexes: %v", err)
		return false
	}
	if _, err := m.MigrateUsers(ctx); err != nil {
		log.Printf("migration failed: users: %v", err)
		return false
	}
	if _, err := m.MigrateLocations(ctx); err != nil {
		log.Printf("migration failed: locations: %v", err)
		return false
	}
	if _, err := m.MigrateApartments(ctx); err != nil {
		log.Printf("migration failed: apartments: %v", err)
		return false
	}
	if err := m.dst.EnsureIndexes(ctx); err != nil {
		log.Printf("migration failed: index refresh: %v", err)
		return false
	}

	log.Println("migration completed successfully")
	return true
}
