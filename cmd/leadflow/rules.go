package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"leadflow/internal/automation"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Compile and manage automation rules",
	}

	cmd.AddCommand(
		rulesListCmd(),
		rulesCompileCmd(),
		rulesDecompileCmd(),
		rulesSaveCmd(),
		rulesRemoveCmd(),
		rulesExecuteCmd(),
		rulesPreviewCmd(),
		rulesActionTypesCmd(),
	)
	return cmd
}

func newAutomationRepository(s *session) *automation.HTTPRepository {
	return automation.NewRepository(s.base.Resolver, s.logger, automation.WithNotifier(s.notifier))
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				rules, err := newAutomationRepository(s).List(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, rules)
			})
		},
	}
}

// rulesCompileCmd works offline and needs no configuration.
func rulesCompileCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a draft into a canonical rule without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft automation.RuleDraft
			if err := decodeInput(cmd, file, &draft); err != nil {
				return err
			}
			rule, err := automation.Compile(draft)
			if err != nil {
				return err
			}
			return printJSON(cmd, rule)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Draft JSON file, - for stdin")
	return cmd
}

func rulesDecompileCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "decompile",
		Short: "Turn a canonical rule into an editable draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rule automation.AutomationRule
			if err := decodeInput(cmd, file, &rule); err != nil {
				return err
			}
			return printJSON(cmd, automation.Decompile(&rule))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Rule JSON file, - for stdin")
	return cmd
}

func rulesSaveCmd() *cobra.Command {
	var (
		file string
		id   string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Compile a draft and create or update the rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft automation.RuleDraft
			if err := decodeInput(cmd, file, &draft); err != nil {
				return err
			}
			if id != "" {
				draft.ID = automation.ID(id)
			}
			// Validate before any configuration or network work.
			if _, err := automation.Compile(draft); err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				rule, err := newAutomationRepository(s).Save(ctx, draft)
				if err != nil {
					return err
				}
				return printJSON(cmd, rule)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Draft JSON file, - for stdin")
	cmd.Flags().StringVar(&id, "id", "", "Rule id to update (overrides the draft's id)")
	return cmd
}

func rulesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a rule, or deactivate it when the backend cannot delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if err := newAutomationRepository(s).Remove(ctx, automation.ID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}
}

func rulesExecuteCmd() *cobra.Command {
	var (
		triggerType string
		leadID      string
		payload     string
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Manually fire rules for a trigger type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := automation.ExecuteRequest{Type: triggerType, LeadID: leadID}
			if payload != "" {
				var v interface{}
				if err := json.Unmarshal([]byte(payload), &v); err != nil {
					return fmt.Errorf("payload is not valid JSON: %w", err)
				}
				req.Payload = v
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				out, err := newAutomationRepository(s).Execute(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
	cmd.Flags().StringVar(&triggerType, "type", "", "Trigger type to fire")
	cmd.Flags().StringVar(&leadID, "lead-id", "", "Lead to run the rules for")
	cmd.Flags().StringVar(&payload, "payload", "", "Extra JSON payload")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func rulesPreviewCmd() *cobra.Command {
	var (
		file     string
		leadFile string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Evaluate a draft's trigger conditions against a sample lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft automation.RuleDraft
			if err := decodeInput(cmd, file, &draft); err != nil {
				return err
			}
			var lead map[string]interface{}
			if err := decodeInput(cmd, leadFile, &lead); err != nil {
				return err
			}

			previewer, err := automation.NewPreviewer()
			if err != nil {
				return err
			}
			res, err := previewer.PreviewDraft(cmd.Context(), draft.Conditions, lead)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Draft JSON file")
	cmd.Flags().StringVar(&leadFile, "lead", "", "Sample lead JSON file")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("lead")
	return cmd
}

func rulesActionTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action-types",
		Short: "List the known action kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, automation.ActionTypes())
		},
	}
}
