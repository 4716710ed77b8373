package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appAuth "github.com/yigit/volunteerhub/internal/app/auth"
	appMigrations "github.com/yigit/volunteerhub/internal/app/migrations"
	"github.com/yigit/volunteerhub/internal/app/models"
	appRepos "github.com/yigit/volunteerhub/internal/app/repositories"
	appServices "github.com/yigit/volunteerhub/internal/app/services"
	"github.com/yigit/volunteerhub/internal/bootstrap"
	"github.com/yigit/volunteerhub/internal/config"
	"github.com/yigit/volunteerhub/internal/db"
	"github.com/yigit/volunteerhub/internal/seed"
)

const commandTimeout = 2 * time.Minute

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "volunteerhub-admin",
		Short:         "Maintenance tasks for the VolunteerHub API database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to the YAML config file")

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newCloseOpportunityCmd())
	return root
}

// withDatabase loads config, connects and runs fn with a bounded context
func withDatabase(fn func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	database, err := bootstrap.ConnectDatabase(cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return fn(ctx, cfg, database, lgr)
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(ctx context.Context, _ *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
				return bootstrap.RunMigrations(ctx, database, dir, lgr)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", appMigrations.DefaultDirectory, "directory holding the numbered .sql files")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
				created, err := seed.EnsureAdmin(ctx, appRepos.NewUserRepository(database), cfg.Seed, lgr)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", cfg.Seed.AdminEmail)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
				}
				return nil
			})
		},
	}
}

func newCloseOpportunityCmd() *cobra.Command {
	var (
		id      int64
		asEmail string
	)
	cmd := &cobra.Command{
		Use:   "close-opportunity",
		Short: "Close an opportunity on behalf of an administrator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id <= 0 {
				return errors.New("--id must be a positive opportunity id")
			}
			return withDatabase(func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
				if asEmail == "" {
					asEmail = cfg.Seed.AdminEmail
				}
				repos := appRepos.NewRepositories(database)

				admin, err := repos.UserRepository.GetByEmail(ctx, asEmail)
				if err != nil {
					return fmt.Errorf("looking up %q: %w", asEmail, err)
				}
				if admin.RoleType != models.RoleAdmin {
					return fmt.Errorf("%s is not an administrator", asEmail)
				}

				svc := appServices.NewOpportunityService(repos.OpportunityRepository, repos.ApplicationRepository,
					appAuth.NewAuthorizationService(repos.OrganizationRepository), lgr)
				resp, err := svc.CloseOpportunity(ctx, models.Actor{ID: admin.ID, Role: admin.RoleType}, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "opportunity %d is now %s (%s)\n", resp.ID, resp.ManualStatus, resp.Status)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "opportunity id")
	cmd.Flags().StringVar(&asEmail, "as", "", "administrator email (defaults to the seed admin)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
