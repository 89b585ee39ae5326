// =============================================================================
// IVA Book Reconciler - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which decodes a single line of a
// book and prints every field with its position. It is meant for checking a
// line flagged by a report against its layout.
//
// COMMAND USAGE:
//   ivarecon inspect --file FILE --type KEY --line N
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/bookparser"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

var (
	inspectFile string
	inspectType string
	inspectLine int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode one line of a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "Book file")
	inspectCmd.Flags().StringVar(&inspectType, "type", schema.SalesInvoices, "Layout key of the book")
	inspectCmd.Flags().IntVar(&inspectLine, "line", 1, "Line number, starting at 1")

	_ = inspectCmd.MarkFlagRequired("file")
}

func runInspect() error {
	mainConfig, logger, closeLogger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer closeLogger()

	s, err := schema.Lookup(inspectType)
	if err != nil {
		return err
	}
	cs, err := bookparser.CharsetFor(mainConfig.Encoding)
	if err != nil {
		return err
	}

	record, err := bookparser.ReadLine(inspectFile, inspectLine, s, cs, logger)
	if err != nil {
		return err
	}

	printRecord(s, record)
	return nil
}

func printRecord(s *schema.BookSchema, record *types.ParsedRecord) {
	fmt.Printf("%s, line %d\n\n", s.Title, record.LineNumber)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPOSITION\tKIND\tNAME\tVALUE")
	for _, f := range s.Fields {
		value, _ := record.Field(f.Number)
		fmt.Fprintf(w, "%d\t%d-%d\t%s\t%s\t%q\n", f.Number, f.Start+1, f.End+1, f.Kind, f.Name, value)
	}
	_ = w.Flush()

	fmt.Printf("\nSummed fields %v: %s\n", record.Summed.ReferencedFields, record.Summed.Total.StringFixed(2))
}
