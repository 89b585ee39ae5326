package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
)

// booksCmd lists the registered book layouts.
var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List the supported book layouts",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTITLE\tRECORD LENGTH\tSUMMED FIELDS")
		for _, key := range schema.Keys() {
			s := schema.MustLookup(key)
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", s.Key, s.Title, s.RecordLength, s.SummedFields)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)
}
