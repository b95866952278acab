package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/please/internal/credential"
	"github.com/felixgeelhaar/please/internal/settings"
	"github.com/felixgeelhaar/please/internal/store"
)

var reveal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored configuration and API keys",
	Long: `Stores provider settings in ~/.please/config.db. Keys ending in api_key are
encrypted at rest and masked when displayed.

  please config set openai.api_key sk-...
  please config set openai.base_url http://localhost:8080/v1
  please config set provider.cli.path /usr/local/bin/llm`,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(func(v *credential.Vault, _ store.ConfigStore) error {
			if err := v.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved: %s\n", args[0])
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(func(v *credential.Vault, _ store.ConfigStore) error {
			val, err := v.Display(args[0], reveal)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "(not set)")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		})
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(func(v *credential.Vault, s store.ConfigStore) error {
			entries, err := s.ListConfig()
			if err != nil {
				return err
			}
			for _, e := range entries {
				val, err := v.Display(e.Key, reveal)
				if err != nil {
					val = "(unreadable)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", e.Key, val)
			}
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(func(_ *credential.Vault, s store.ConfigStore) error {
			if err := s.DeleteConfig(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration removed: %s\n", args[0])
			return nil
		})
	},
}

func withVault(fn func(*credential.Vault, store.ConfigStore) error) error {
	home, err := settings.Home()
	if err != nil {
		return err
	}
	s, v, err := openVault(home)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(v, s)
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.PersistentFlags().BoolVar(&reveal, "reveal", false, "Show secret values unmasked")
}
