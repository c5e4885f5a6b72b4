package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"societyhub/internal/domain"
	"societyhub/internal/pkg/jwt"
	"societyhub/internal/repository"
)

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenEmail == "" {
			return fmt.Errorf("--email is required")
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		u, err := repository.NewUserRepository(db).GetByEmail(cmd.Context(), tokenEmail)
		if err != nil {
			return err
		}
		tok, err := issueToken(*u)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the user to issue a token for")
}

func issueToken(u domain.User) (string, error) {
	svc := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	return svc.GenerateToken(domain.Actor{UserID: u.ID, Role: u.Role, ApartmentID: u.ApartmentID})
}
