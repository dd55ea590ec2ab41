package main

import (
	"context"

	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Stats shows the public catalogue statistics.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	stats, err := r.client.AppStats(ctx)
	if err != nil {
		return err
	}
	return r.render(cmd, stats, formatter.AppStatsTable(*stats))
}

// AdminStats shows the dashboard statistics. The server rejects non-admins.
func (r *Runner) AdminStats(ctx context.Context, cmd *cli.Command) error {
	session, err := r.session()
	if err != nil {
		return err
	}
	if !session.User.IsAdmin() {
		r.logger.Warn("account is not an admin, the request will likely be denied", "user", session.User.Username)
	}

	stats, err := r.client.AdminStats(ctx)
	if err != nil {
		return err
	}
	return r.render(cmd, stats, formatter.AdminStatsTable(*stats))
}
