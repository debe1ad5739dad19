package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
)

func resetService() *services.PasswordResetService {
	return services.NewPasswordResetService(repositories.New(database.DB), nil, config.ResetTokenTTL(), config.FrontendURL())
}

// storefront tokens:prune
var tokensPruneCmd = &cobra.Command{
	Use:   "tokens:prune",
	Short: "Delete expired password-reset tokens now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		n, err := resetService().PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired reset token(s).\n", n)
		return nil
	},
}

// storefront schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the recurring jobs serve runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		if err := jobs.Register(resetService()); err != nil {
			return err
		}

		tasks := schedule.List()
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scheduled tasks registered.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registered scheduled tasks:")
		for _, t := range tasks {
			fmt.Fprintln(cmd.OutOrStdout(), "  •", t)
		}
		return nil
	},
}
