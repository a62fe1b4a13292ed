package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored import settings",
	Long: `Manage the import settings stored in the okta_settings table.

Examples:
  oktasync config set url https://dev-1234.okta.com
  oktasync config set group Engineering
  oktasync config set use_filter_email 1
  oktasync config set filter_email '@corp\.com$'
  oktasync config set-key`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Store one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the Okta API key, encrypted with the passphrase",
	Long: `Prompt for the Okta API token without echo and store it encrypted.
The token is only ever decrypted in memory at the start of a run.`,
	Args: cobra.NoArgs,
	RunE: runConfigSetKey,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, closeDB, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	return svc.SaveSetting(ctx, args[0], args[1])
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, closeDB, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	fmt.Fprint(os.Stderr, "API token: ")
	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	if len(token) == 0 {
		return fmt.Errorf("empty token")
	}

	if err := svc.SaveSetting(ctx, "key", string(token)); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "API key stored")
	return nil
}
