package cli

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/spf13/cobra"

	"github.com/itsmng/oktasync/internal/importer"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List remote groups",
	Long: `List the groups visible to the configured API key, optionally
filtered by a case-insensitive pattern.

Examples:
  oktasync groups
  oktasync groups --pattern '^Eng-'`,
	Args: cobra.NoArgs,
	RunE: runGroups,
}

var groupsPattern string

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.Flags().StringVar(&groupsPattern, "pattern", "", "case-insensitive group name pattern")
}

func runGroups(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, closeDB, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	groups, err := svc.Groups(ctx, groupsPattern)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("no groups found")
		return nil
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return groups[ids[i]] < groups[ids[j]] })

	for _, id := range ids {
		fmt.Printf("%s\t%s\n", id, groups[id])
	}
	return nil
}

func quoteGroupName(name string) string {
	return regexp.QuoteMeta(name)
}

func printResult(imported []importer.ImportedUser) {
	for _, u := range imported {
		fmt.Printf("%d\t%s\t%s\n", u.ID, u.Login, u.Email)
	}
	fmt.Printf("imported %d users\n", len(imported))
}
