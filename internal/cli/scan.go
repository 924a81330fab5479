package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the content directory and list indexed assets",
	Run:   runScan,
}

func runScan(cmd *cobra.Command, args []string) {
	c := initContext(context.Background())
	defer c.Close()

	items := c.Manager.Materials()
	if len(items) == 0 {
		fmt.Println("No assets indexed")
		return
	}

	cyan := color.New(color.FgCyan)
	for _, item := range items {
		cyan.Printf("%-26s", item.Type)
		fmt.Printf(" %s", item.Path)
		if item.Metadata.Category != "" {
			fmt.Printf("  [%s]", item.Metadata.Category)
		}
		if len(item.Metadata.Tags) > 0 {
			fmt.Printf("  (%s)", strings.Join(item.Metadata.Tags, ", "))
		}
		fmt.Println()
	}
	fmt.Printf("\n%d assets\n", len(items))
}
