package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coffre/internal/archive"
	"coffre/internal/config"
)

type createFlags struct {
	output         string
	format         string
	level          int
	followSymlinks bool
	includeHidden  bool
	excludes       []string
	stripPrefix    string
}

var crFlags createFlags

var createCmd = &cobra.Command{
	Use:   "create <source>...",
	Short: "Create an archive from files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreate,
}

func init() {
	f := createCmd.Flags()
	f.StringVarP(&crFlags.output, "output", "o", "", "output archive path (format from suffix)")
	f.StringVar(&crFlags.format, "format", "", "explicit format (tar, tar.gz, tar.bz2, tar.xz, tar.zst, zip)")
	f.IntVar(&crFlags.level, "level", 0, "compression level 1-9 (0 = default)")
	f.BoolVar(&crFlags.followSymlinks, "follow-symlinks", false, "store link target content instead of links")
	f.BoolVar(&crFlags.includeHidden, "include-hidden", false, "include dotfiles")
	f.StringSliceVar(&crFlags.excludes, "exclude", nil, "glob patterns to exclude (repeatable)")
	f.StringVar(&crFlags.stripPrefix, "strip-prefix", "", "prefix to remove from entry paths")
	_ = createCmd.MarkFlagRequired("output")
}

func runCreate(cmd *cobra.Command, args []string) error {
	_, ccfg, err := config.Load(config.Options{ProfilePath: globalFlags.ProfilePath})
	if err != nil {
		return err
	}
	if crFlags.format != "" {
		ccfg.Format = crFlags.format
	}
	if crFlags.level > 0 {
		ccfg.CompressionLevel = crFlags.level
	}
	if crFlags.followSymlinks {
		ccfg.FollowSymlinks = true
	}
	if crFlags.includeHidden {
		ccfg.IncludeHidden = true
	}
	if len(crFlags.excludes) > 0 {
		ccfg.ExcludePatterns = append(ccfg.ExcludePatterns, crFlags.excludes...)
	}
	if crFlags.stripPrefix != "" {
		ccfg.StripPrefix = crFlags.stripPrefix
	}

	report, err := archive.Create(cmd.Context(), crFlags.output, args, ccfg)
	if globalFlags.JSON {
		printCreateJSON(report, err)
	} else {
		printCreateHuman(report, err)
	}
	return err
}

func printCreateJSON(report *archive.CreationReport, err error) {
	out := struct {
		*archive.CreationReport
		Error string `json:"error,omitempty"`
	}{CreationReport: report}
	if err != nil {
		out.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func printCreateHuman(report *archive.CreationReport, err error) {
	if globalFlags.Quiet && err == nil {
		return
	}
	st := newStyles(os.Stdout, false)
	if err == nil {
		fmt.Println(st.Success.Render("archive created"))
	}
	fmt.Printf("  %s %d\n", st.Key.Render("files:"), report.FilesAdded)
	fmt.Printf("  %s %d\n", st.Key.Render("directories:"), report.DirectoriesAdded)
	fmt.Printf("  %s %d\n", st.Key.Render("bytes written:"), report.BytesWritten)
	if report.FilesSkipped > 0 {
		fmt.Printf("  %s %d\n", st.Key.Render("skipped:"), report.FilesSkipped)
	}
	for _, w := range report.Warnings {
		fmt.Println(st.Warning.Render("  warning: " + w))
	}
}
