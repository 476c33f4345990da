package cli

import (
	"github.com/7HR4IZ3/acode-cli/internal/activation"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		pluginCommand(activation.ActionUninstall, "Uninstall a plugin by id"),
		pluginCommand(activation.ActionEnable, "Enable a plugin by id"),
		pluginCommand(activation.ActionDisable, "Disable a plugin by id"),
	)
}

// pluginCommand builds a command that sends action for a plugin id.
func pluginCommand(action activation.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <plugin_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := activation.Request{Action: action, Payload: args[0]}
			if _, err := newActivator(settings, logger).Activate(cmd.Context(), req); err != nil {
				return err
			}
			logger.Debug("Request sent", "action", string(action), "id", args[0])
			return nil
		},
	}
}
