package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/materialvault/materialvault/internal/foldertree"
)

var treeShowAssets bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folder tree",
	Run:   runTree,
}

func init() {
	treeCmd.Flags().BoolVarP(&treeShowAssets, "assets", "a", false, "list assets under each folder")
}

func runTree(cmd *cobra.Command, args []string) {
	c := initContext(context.Background())
	defer c.Close()

	root := c.Manager.RootFolder()
	if root == nil {
		fmt.Println("No folders")
		return
	}

	blue := color.New(color.FgBlue, color.Bold)
	printNode(root, 0, blue)
}

func printNode(n *foldertree.Node, depth int, blue *color.Color) {
	indent := strings.Repeat("  ", depth)
	if len(n.Items) > 0 {
		blue.Printf("%s%s", indent, n.Name)
		fmt.Printf(" (%d)\n", len(n.Items))
	} else {
		blue.Printf("%s%s\n", indent, n.Name)
	}

	if treeShowAssets {
		for _, path := range n.Items {
			fmt.Printf("%s  %s\n", indent, path)
		}
	}
	for _, child := range n.Children {
		printNode(child, depth+1, blue)
	}
}
