package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tagsDelete string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List or delete tags",
	Run:   runTags,
}

func init() {
	tagsCmd.Flags().StringVar(&tagsDelete, "delete", "", "remove the tag from every asset")
}

func runTags(cmd *cobra.Command, args []string) {
	c := initContext(context.Background())
	defer c.Close()

	if tagsDelete != "" {
		n := c.Manager.DeleteTag(tagsDelete)
		fmt.Printf("Removed tag %q from %d assets\n", tagsDelete, n)
		return
	}

	tags := c.Manager.Tags()
	if len(tags) == 0 {
		fmt.Println("No tags")
		return
	}
	for _, tag := range tags {
		fmt.Println(tag)
	}
}
