package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/services/identity"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// openStore migrates on open.
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := store.HealthCheck(ctx); err != nil {
				return fmt.Errorf("database health check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Migrations completed, database connection healthy. Tables:")
			for _, t := range []string{"users", "jwt_token_blacklist", "user_activities", "cron_job_logs"} {
				fmt.Fprintf(out, "  - %s\n", t)
			}
			return nil
		},
	}
}

// seedAccount is one demo account created by `users seed`.
type seedAccount struct {
	Email    string
	Password string
	Name     string
	Role     model.UserRole
}

type seedResult struct {
	seedAccount
	Created bool
}

// AccountCreator is the part of the identity backend seeding needs.
type AccountCreator interface {
	SignUp(ctx context.Context, email, password, fullName string, role model.UserRole) (*authgate.Identity, error)
}

func demoAccounts() []seedAccount {
	studentPassword := os.Getenv("SEED_STUDENT_PASSWORD")
	if studentPassword == "" {
		studentPassword = "student123"
	}
	teacherPassword := os.Getenv("SEED_TEACHER_PASSWORD")
	if teacherPassword == "" {
		teacherPassword = "teacher123"
	}
	return []seedAccount{
		{Email: "student@smartcampus.edu", Password: studentPassword, Name: "Demo Student", Role: model.UserRoleStudent},
		{Email: "teacher@smartcampus.edu", Password: teacherPassword, Name: "Demo Teacher", Role: model.UserRoleTeacher},
	}
}

// seedAccounts signs every account up, skipping ones that already exist.
func seedAccounts(ctx context.Context, creator AccountCreator, accounts []seedAccount) ([]seedResult, error) {
	results := make([]seedResult, 0, len(accounts))
	for _, a := range accounts {
		_, err := creator.SignUp(ctx, a.Email, a.Password, a.Name, a.Role)
		switch {
		case err == nil:
			results = append(results, seedResult{seedAccount: a, Created: true})
		case errors.Is(err, authgate.ErrAlreadyRegistered):
			results = append(results, seedResult{seedAccount: a})
		default:
			return results, fmt.Errorf("create %s: %w", a.Email, err)
		}
	}
	return results, nil
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the demo student and teacher accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, env, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			secret := env.JWT_SECRET
			if secret == "" {
				secret = uuid.NewString()
			}
			// Tokens issued on signup are discarded.
			tokens := auth.NewJWTManager(auth.JWTConfig{
				Secret:        secret,
				Expiry:        env.JWT_EXPIRY,
				RefreshExpiry: env.JWT_REFRESH_EXPIRY,
				Issuer:        env.JWT_ISSUER,
			})

			results, err := seedAccounts(cmd.Context(), identity.NewGORMService(store.GetDB(), tokens), demoAccounts())
			if err != nil {
				return err
			}
			return printSeeded(cmd, results)
		},
	})
	return cmd
}

func printSeeded(cmd *cobra.Command, results []seedResult) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tNAME\tEMAIL\tPASSWORD\tSTATUS")
	for _, r := range results {
		status := "created"
		if !r.Created {
			status = "exists"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Role, r.Name, r.Email, r.Password, status)
	}
	return tw.Flush()
}
