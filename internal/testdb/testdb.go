// Package testdb opens migrated in-memory SQLite databases and seeds a small
// society for package tests.
package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"societyhub/internal/database"
	"societyhub/internal/domain"
	"societyhub/internal/repository"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.MemoryDSN("society_"+t.Name()), database.Quiet())
	require.NoError(t, err, "open sqlite")
	require.NoError(t, repository.AutoMigrate(db), "migrate")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Society is the seeded fixture: two apartments, one resident in each, a
// guard, an admin and a gym open 06:00-22:00.
type Society struct {
	Admin     domain.Actor
	Guard     domain.Actor
	Resident  domain.Actor
	Neighbour domain.Actor

	ApartmentA int64
	ApartmentB int64
	Gym        *domain.Amenity
	Clubhouse  *domain.Amenity
}

func Seed(t *testing.T, db *gorm.DB) Society {
	t.Helper()
	ctx := context.Background()

	apartments := repository.NewApartmentRepository(db)
	a := &domain.Apartment{Block: "A", Number: "101", Floor: 1}
	b := &domain.Apartment{Block: "B", Number: "204", Floor: 2}
	require.NoError(t, apartments.Create(ctx, a))
	require.NoError(t, apartments.Create(ctx, b))

	users := repository.NewUserRepository(db)
	mk := func(name, email string, role domain.UserRole, apt *int64) domain.Actor {
		u := &domain.User{Name: name, Email: email, Role: role, ApartmentID: apt}
		require.NoError(t, users.Create(ctx, u))
		return domain.Actor{UserID: u.ID, Role: u.Role, ApartmentID: u.ApartmentID}
	}

	s := Society{ApartmentA: a.ID, ApartmentB: b.ID}
	s.Admin = mk("Asha Admin", "admin@society.test", domain.RoleAdmin, nil)
	s.Guard = mk("Gopal Guard", "guard@society.test", domain.RoleGuard, nil)
	s.Resident = mk("Rita Resident", "rita@society.test", domain.RoleResident, &s.ApartmentA)
	s.Neighbour = mk("Nikhil Neighbour", "nikhil@society.test", domain.RoleResident, &s.ApartmentB)

	amenities := repository.NewAmenityRepository(db)
	s.Gym = &domain.Amenity{Name: "Gym", OpenTime: "06:00", CloseTime: "22:00", IsActive: true}
	s.Clubhouse = &domain.Amenity{Name: "Clubhouse", IsActive: true}
	require.NoError(t, amenities.Create(ctx, s.Gym))
	require.NoError(t, amenities.Create(ctx, s.Clubhouse))

	return s
}
