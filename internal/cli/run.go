package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scheduled import using the stored configuration",
	Long: `Run one import exactly as the scheduler would: the group selection,
full-import mode, and deactivation behavior all come from the stored
configuration. Prints the number of imported users.

Example:
  oktasync run --dsn postgres://... --passphrase secret`,
	Args: cobra.NoArgs,
	RunE: runScheduled,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScheduled(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, closeDB, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	volume, err := svc.RunScheduled(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d users\n", volume)
	return nil
}
