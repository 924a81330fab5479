package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/materialvault/materialvault/internal/metastore"
)

var (
	metaCategory string
	metaTags     []string
	metaAuthor   string
	metaNotes    string
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Inspect or edit asset metadata",
}

var metaGetCmd = &cobra.Command{
	Use:   "get <asset-path>",
	Short: "Show an asset's metadata",
	Args:  cobra.ExactArgs(1),
	Run:   runMetaGet,
}

var metaSetCmd = &cobra.Command{
	Use:   "set <asset-path>",
	Short: "Update an asset's metadata",
	Args:  cobra.ExactArgs(1),
	Run:   runMetaSet,
}

func init() {
	metaSetCmd.Flags().StringVar(&metaCategory, "category", "", "set the category")
	metaSetCmd.Flags().StringSliceVar(&metaTags, "tag", nil, "add a tag (repeatable)")
	metaSetCmd.Flags().StringVar(&metaAuthor, "author", "", "set the author")
	metaSetCmd.Flags().StringVar(&metaNotes, "notes", "", "set the notes")

	metaCmd.AddCommand(metaGetCmd)
	metaCmd.AddCommand(metaSetCmd)
}

func runMetaGet(cmd *cobra.Command, args []string) {
	c := initContext(context.Background())
	defer c.Close()

	md, ok := c.Manager.LoadMetadata(args[0])
	if !ok {
		exitError("unknown asset %s", args[0])
	}

	bold := color.New(color.Bold)
	bold.Println(md.MaterialName)
	fmt.Printf("Location:  %s\n", md.Location)
	fmt.Printf("Category:  %s\n", md.Category)
	fmt.Printf("Tags:      %s\n", strings.Join(md.Tags, ", "))
	fmt.Printf("Author:    %s\n", md.Author)
	fmt.Printf("Modified:  %s\n", md.LastModified.Format(metastore.TimeFormat))
	if md.Notes != "" {
		fmt.Printf("Notes:     %s\n", md.Notes)
	}
}

func runMetaSet(cmd *cobra.Command, args []string) {
	c := initContext(context.Background())
	defer c.Close()

	md, ok := c.Manager.LoadMetadata(args[0])
	if !ok {
		exitError("unknown asset %s", args[0])
	}

	if cmd.Flags().Changed("category") {
		md.Category = metaCategory
	}
	if cmd.Flags().Changed("author") {
		md.Author = metaAuthor
	}
	if cmd.Flags().Changed("notes") {
		md.Notes = metaNotes
	}
	for _, tag := range metaTags {
		md.AddTag(tag)
	}

	if err := c.Manager.SaveMetadata(args[0], md); err != nil {
		exitError("failed to save metadata: %v", err)
	}
	fmt.Println("Metadata saved")
}
