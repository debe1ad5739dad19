// Package jobs registers the storefront's recurring background work with the
// scheduler.
package jobs

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
)

// PurgeResetTokensName identifies the reset-token sweep in logs and
// schedule:list.
const PurgeResetTokensName = "reset-tokens:purge"

// Register schedules every job. Call it once before schedule.Start.
func Register(resets *services.PasswordResetService) error {
	return schedule.Daily().
		Name(PurgeResetTokensName).
		WithoutOverlapping().
		Run(PurgeResetTokens(resets))
}

// PurgeResetTokens deletes expired password-reset tokens.
func PurgeResetTokens(resets *services.PasswordResetService) schedule.Task {
	return func(ctx context.Context) error {
		_, err := resets.PurgeExpired(ctx)
		return err
	}
}
