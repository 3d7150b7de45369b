package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"logonlog/internal/core"
	"logonlog/internal/parse"
	"logonlog/internal/schema"
)

var (
	archiveRoot string
	archiveOut  string
	since       string
	encryptAge  string
)

// archiveCmd represents the archive command.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Bundle log documents into a compressed, optionally encrypted archive",
	Long: `The archive command packs the log documents under a log root into a
tar.gz archive, optionally limited to documents modified since a cutoff and
optionally encrypted to an age public key.`,
	Args: cobra.NoArgs,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringVar(&archiveRoot, "root", "", "log root to archive (default: the workstation root)")
	archiveCmd.Flags().StringVar(&archiveOut, "out", ".", "output directory for the archive")
	archiveCmd.Flags().StringVar(&since, "since", "", "RFC3339 timestamp or duration like 7d, 72h, 15m, 30s, 2w")
	archiveCmd.Flags().StringVar(&encryptAge, "encrypt-age", "", "Age public key for encryption (must start with age1)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()

	root := archiveRoot
	if root == "" {
		root = cfg.WorkstationRoot
	}

	ageRecipientSet, err := parse.ValidateAgeKey(encryptAge)
	if err != nil {
		return err
	}
	if ageRecipientSet {
		if err := core.ValidateAgePublicKey(encryptAge); err != nil {
			return fmt.Errorf("invalid --encrypt-age: %w", err)
		}
	}

	cutoff, sinceWasSet, err := parse.ParseSince(since, now)
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(archiveOut)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Infow("Creating archive", "root", root, "out", outDir, "since", cutoff, "encrypted", ageRecipientSet)
	meta, err := core.BundleLogs(ctx, root, outDir, filepath.Base(root), now, cutoff, encryptAge)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	log.Infow("Archive created", "path", meta.Path, "files", meta.FileCount)

	output := schema.NewArchiveOutput(root, meta, ageRecipientSet, now)
	if sinceWasSet {
		output.SetSince(since, cutoff.Format(time.RFC3339))
	}
	return printJSON(cmd.OutOrStdout(), output)
}
