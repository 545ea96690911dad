package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coffre/internal/config"
	"coffre/internal/extract"
	"coffre/internal/security"
)

// extractFlags mirrors the SecurityConfig knobs a caller most often flips
// from the command line. Flags beat profile and environment.
type extractFlags struct {
	output         string
	permissive     bool
	allowSymlinks  bool
	allowHardlinks bool
	allowAbsolute  bool
	preservePerms  bool
	maxFileSize    uint64
	maxTotalSize   uint64
	maxFileCount   int
	maxRatio       float64
}

var extFlags extractFlags

var extractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Short: "Extract an archive with security validation",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extFlags.output, "output", "o", ".", "output directory")
	f.BoolVar(&extFlags.permissive, "permissive", false, "start from the trusted-input preset")
	f.BoolVar(&extFlags.allowSymlinks, "allow-symlinks", false, "allow symlink entries")
	f.BoolVar(&extFlags.allowHardlinks, "allow-hardlinks", false, "allow hardlink entries")
	f.BoolVar(&extFlags.allowAbsolute, "allow-absolute-paths", false, "allow absolute entry paths (re-rooted)")
	f.BoolVar(&extFlags.preservePerms, "preserve-permissions", false, "apply sanitized archive modes")
	f.Uint64Var(&extFlags.maxFileSize, "max-file-size", 0, "per-file size quota in bytes (0 = profile default)")
	f.Uint64Var(&extFlags.maxTotalSize, "max-total-size", 0, "total size quota in bytes (0 = profile default)")
	f.IntVar(&extFlags.maxFileCount, "max-file-count", 0, "file count quota (0 = profile default)")
	f.Float64Var(&extFlags.maxRatio, "max-compression-ratio", 0, "compression ratio limit (0 = profile default)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}

	report, err := extract.New(cfg).Extract(cmd.Context(), args[0], extFlags.output)
	if globalFlags.JSON {
		printExtractJSON(report, err)
	} else {
		printExtractHuman(report, err)
	}
	return err
}

func extractionConfig(cmd *cobra.Command) (*security.Config, error) {
	cfg, _, err := config.Load(config.Options{ProfilePath: globalFlags.ProfilePath})
	if err != nil {
		return nil, err
	}
	if extFlags.permissive {
		cfg = security.Permissive()
	}
	if extFlags.allowSymlinks {
		cfg.AllowSymlinks = true
	}
	if extFlags.allowHardlinks {
		cfg.AllowHardlinks = true
	}
	if extFlags.allowAbsolute {
		cfg.AllowAbsolutePaths = true
	}
	if cmd.Flags().Changed("preserve-permissions") {
		cfg.PreservePermissions = extFlags.preservePerms
	}
	if extFlags.maxFileSize > 0 {
		cfg.MaxFileSize = extFlags.maxFileSize
	}
	if extFlags.maxTotalSize > 0 {
		cfg.MaxTotalSize = extFlags.maxTotalSize
	}
	if extFlags.maxFileCount > 0 {
		cfg.MaxFileCount = extFlags.maxFileCount
	}
	if extFlags.maxRatio > 0 {
		cfg.MaxCompressionRatio = extFlags.maxRatio
	}
	return cfg, nil
}

func printExtractJSON(report *extract.Report, err error) {
	out := struct {
		*extract.Report
		Error string `json:"error,omitempty"`
	}{Report: report}
	if err != nil {
		out.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func printExtractHuman(report *extract.Report, err error) {
	if globalFlags.Quiet && err == nil {
		return
	}
	st := newStyles(os.Stdout, false)
	if err == nil {
		fmt.Println(st.Success.Render("extraction complete"))
	}
	fmt.Printf("  %s %d\n", st.Key.Render("files:"), report.FilesExtracted)
	fmt.Printf("  %s %d\n", st.Key.Render("directories:"), report.DirectoriesCreated)
	if report.SymlinksCreated > 0 {
		fmt.Printf("  %s %d\n", st.Key.Render("symlinks:"), report.SymlinksCreated)
	}
	if report.HardlinksCreated > 0 {
		fmt.Printf("  %s %d\n", st.Key.Render("hardlinks:"), report.HardlinksCreated)
	}
	fmt.Printf("  %s %d\n", st.Key.Render("bytes written:"), report.BytesWritten)
	fmt.Printf("  %s %dms\n", st.Key.Render("duration:"), report.DurationMS)
	for _, w := range report.Warnings {
		fmt.Println(st.Warning.Render("  warning: " + w))
	}
}
