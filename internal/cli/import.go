package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users from selected groups, or a single user",
	Long: `Import the members of the groups selected by --group or --pattern.
With --user, refresh that one remote user instead; the group selection
then only contributes group labels.

Examples:
  oktasync import --group Engineering
  oktasync import --pattern '^Eng-' --full
  oktasync import --user 00u1abcd`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var (
	importGroup   string
	importPattern string
	importFull    bool
	importUser    string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importGroup, "group", "", "exact group name to import")
	importCmd.Flags().StringVar(&importPattern, "pattern", "", "case-insensitive group name pattern")
	importCmd.Flags().BoolVar(&importFull, "full", false, "overwrite profiles of existing accounts")
	importCmd.Flags().StringVar(&importUser, "user", "", "import a single remote user by id")
	importCmd.MarkFlagsMutuallyExclusive("group", "pattern")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, closeDB, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	pattern := importPattern
	if importGroup != "" {
		pattern = "^" + quoteGroupName(importGroup) + "$"
	}

	var authorized map[string]string
	if pattern != "" {
		authorized, err = svc.Groups(ctx, pattern)
		if err != nil {
			return err
		}
		if len(authorized) == 0 && importUser == "" {
			fmt.Println("no groups matched")
			return nil
		}
	}

	if importUser != "" {
		res, err := svc.ImportUser(ctx, importUser, authorized, importFull)
		if err != nil {
			return err
		}
		printResult(res.Imported)
		return nil
	}

	if pattern == "" {
		return fmt.Errorf("one of --group, --pattern or --user is required")
	}

	res, err := svc.ImportGroups(ctx, authorized, importFull)
	if err != nil {
		return err
	}
	printResult(res.Imported)
	return nil
}
