package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"societyhub/internal/domain"
	"societyhub/internal/modules/directory"
	"societyhub/internal/repository"
)

var printTokens bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo society: apartments, amenities and one user per role",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		if err := repository.AutoMigrate(db); err != nil {
			return err
		}

		ctx := cmd.Context()
		users := repository.NewUserRepository(db)
		dir := directory.NewService(users, repository.NewApartmentRepository(db), repository.NewAmenityRepository(db))

		if _, err := users.GetByEmail(ctx, "admin@society.local"); err == nil {
			return fmt.Errorf("database already seeded")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		admin := &domain.User{Name: "Society Admin", Email: "admin@society.local", Role: domain.RoleAdmin}
		if err := users.Create(ctx, admin); err != nil {
			return err
		}
		actor := domain.Actor{UserID: admin.ID, Role: admin.Role}

		seeded, err := seedSociety(ctx, dir, actor)
		if err != nil {
			return err
		}
		seeded = append([]domain.User{*admin}, seeded...)

		out := cmd.OutOrStdout()
		for _, u := range seeded {
			if !printTokens {
				fmt.Fprintf(out, "%-9s %s\n", u.Role, u.Email)
				continue
			}
			tok, err := issueToken(u)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-9s %s\n  %s\n", u.Role, u.Email, tok)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&printTokens, "tokens", true, "print a bearer token for every seeded user")
}

func seedSociety(ctx context.Context, dir *directory.Service, admin domain.Actor) ([]domain.User, error) {
	var apartments []*domain.Apartment
	for _, req := range []directory.CreateApartmentRequest{
		{Block: "A", Number: "101", Floor: 1},
		{Block: "A", Number: "102", Floor: 1},
		{Block: "B", Number: "201", Floor: 2},
	} {
		a, err := dir.CreateApartment(ctx, admin, req)
		if err != nil {
			return nil, err
		}
		apartments = append(apartments, a)
	}

	for _, req := range []directory.CreateAmenityRequest{
		{Name: "Clubhouse", Description: "Party hall with kitchen"},
		{Name: "Gym", OpenTime: "06:00", CloseTime: "22:00"},
		{Name: "Tennis Court", OpenTime: "06:00", CloseTime: "21:00"},
	} {
		if _, err := dir.CreateAmenity(ctx, admin, req); err != nil {
			return nil, err
		}
	}

	var out []domain.User
	for _, req := range []directory.CreateUserRequest{
		{Name: "Gate Guard", Email: "guard@society.local", Role: domain.RoleGuard},
		{Name: "Resident A-101", Email: "a101@society.local", Role: domain.RoleResident, ApartmentID: &apartments[0].ID},
		{Name: "Resident B-201", Email: "b201@society.local", Role: domain.RoleResident, ApartmentID: &apartments[2].ID},
	} {
		u, err := dir.CreateUser(ctx, admin, req)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}
