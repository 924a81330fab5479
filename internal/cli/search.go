package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/materialvault/materialvault/internal/vault"
)

var searchTag string

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search assets by name or folder",
	Run:   runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTag, "tag", "t", "", "filter by exact tag instead of a term")
}

func runSearch(cmd *cobra.Command, args []string) {
	if len(args) == 0 && searchTag == "" {
		exitError("provide a search term or --tag")
	}

	c := initContext(context.Background())
	defer c.Close()

	var items []*vault.Item
	if searchTag != "" {
		items = c.Manager.FilterByTag(searchTag)
	} else {
		items = c.Manager.Search(args[0])
	}

	if len(items) == 0 {
		fmt.Println("No matches")
		return
	}

	green := color.New(color.FgGreen)
	for _, item := range items {
		green.Printf("%s", item.DisplayName)
		fmt.Printf("  %s  %s\n", item.Type, item.PackagePath)
	}
	fmt.Printf("\n%d matches\n", len(items))
}
