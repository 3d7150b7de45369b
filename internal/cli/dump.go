package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"logonlog/internal/record"
	"logonlog/internal/schema"
	"logonlog/internal/sheet"
)

var dumpKind string

// dumpCmd represents the dump command.
var dumpCmd = &cobra.Command{
	Use:   "dump <file.xlsx>",
	Short: "Print the records stored in a log document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpKind, "kind", record.Workstation.Name(), "log kind: workstation or user")
}

func runDump(cmd *cobra.Command, args []string) error {
	s, ok := record.ByName(dumpKind)
	if !ok {
		return fmt.Errorf("invalid --kind %q: must be workstation or user", dumpKind)
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return err
	}

	path := args[0]
	records, dropped, err := sheet.ReadCounted(path, s, loc)
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Warnw("Dropped unparseable rows", "path", path, "dropped", dropped)
	}
	return printJSON(cmd.OutOrStdout(), schema.NewDumpOutput(path, s.Name(), records, dropped))
}
