package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/template"
)

var (
	cleanupDryRun    bool
	cleanupOlderThan time.Duration
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old project workspaces and archives",
	Long: `Remove generated project workspaces and ZIP archives from app.base_dir.

Only entries last modified before --older-than are removed. The audit log
is never touched.

Use --dry-run to preview what would be removed without making changes.

Examples:
  scaffold cleanup --dry-run
  scaffold cleanup --older-than 72h`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Preview changes without removing files")
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 7*24*time.Hour, "Minimum age of removed entries")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	return runCleanupFn(cfg.App.BaseDir, filepath.Base(cfg.LogPath()), time.Now().Add(-cleanupOlderThan), cleanupDryRun, cmd.OutOrStdout())
}

// runCleanupFn removes project directories and archives in baseDir modified
// before cutoff. keep names the audit log file.
func runCleanupFn(baseDir, keep string, cutoff time.Time, dryRun bool, out io.Writer) error {
	entries, err := os.ReadDir(baseDir)
	if os.IsNotExist(err) {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", baseDir, err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if name == keep || strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() && filepath.Ext(name) != template.ArchiveExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", name, err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(baseDir, name)
		if dryRun {
			fmt.Fprintf(out, "Would remove: %s\n", path)
		} else {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", name, err)
			}
			fmt.Fprintf(out, "Removed: %s\n", path)
		}
		removed++
	}

	switch {
	case removed == 0:
		fmt.Fprintln(out, "No projects older than the cutoff.")
	case dryRun:
		fmt.Fprintf(out, "\nWould remove %d entry(s). Run without --dry-run to remove.\n", removed)
	default:
		fmt.Fprintf(out, "\nRemoved %d entry(s).\n", removed)
	}
	return nil
}
