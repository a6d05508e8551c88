package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"leadflow/internal/integration"
)

func integrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Manage provider integrations on the backend",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List provider integrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(ctx context.Context, s *session) error {
					list, err := newIntegrationRepository(s).List(ctx)
					if err != nil {
						return err
					}
					return printJSON(cmd, list)
				})
			},
		},
		integrationActionCmd("connect", "Connect a provider", (*integration.HTTPRepository).Connect),
		integrationActionCmd("disconnect", "Disconnect a provider", (*integration.HTTPRepository).Disconnect),
		integrationActionCmd("sync", "Trigger a provider sync", (*integration.HTTPRepository).Sync),
		&cobra.Command{
			Use:   "status <provider>",
			Short: "Show a provider's connection status",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(ctx context.Context, s *session) error {
					status, err := newIntegrationRepository(s).Status(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd, status)
				})
			},
		},
	)
	return cmd
}

func newIntegrationRepository(s *session) *integration.HTTPRepository {
	return integration.NewRepository(s.base.Resolver, s.logger,
		integration.WithNotifier(s.notifier),
		integration.WithCache(s.base.Cache, s.base.Config.Cache.TTL),
	)
}

type integrationAction func(r *integration.HTTPRepository, ctx context.Context, key string) (json.RawMessage, error)

func integrationActionCmd(name, short string, action integrationAction) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <provider>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				out, err := action(newIntegrationRepository(s), ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
}
