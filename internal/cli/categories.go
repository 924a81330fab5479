package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var categoriesDelete string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List or delete categories",
	Run:   runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&categoriesDelete, "delete", "", "delete the category, moving its assets to Uncategorized")
}

func runCategories(cmd *cobra.Command, args []string) {
	c := initContext(context.Background())
	defer c.Close()

	if categoriesDelete != "" {
		n := c.Manager.DeleteCategory(categoriesDelete)
		fmt.Printf("Moved %d assets to Uncategorized\n", n)
		return
	}

	yellow := color.New(color.FgYellow)
	for _, node := range c.Manager.Categories() {
		yellow.Printf("%-24s", node.Name)
		fmt.Printf(" %d\n", len(node.Items))
	}
}
