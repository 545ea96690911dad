package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"coffre/internal/security"
)

// Exit codes by failure category.
const (
	ExitSuccess           = 0
	ExitGenericError      = 1
	ExitConfigInvalid     = 2
	ExitUnsupportedFormat = 3
	ExitSecurityViolation = 4
	ExitQuotaExceeded     = 5
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ProfilePath string
	JSON        bool
	Quiet       bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "coffre",
	Short: "Secure archive extraction and creation",
	Long: "coffre extracts TAR-, ZIP- and 7z-family archives and creates TAR-\n" +
		"and ZIP-family ones with\n" +
		"security by construction: path traversal, link escapes, decompression\n" +
		"bombs and quota exhaustion are stopped before bytes reach disk.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ProfilePath, "profile", "", "TOML profile with security/creation settings")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "emit JSON reports for automation")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Quiet, "quiet", false, "reduce output")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command; the process exit code reflects the error
// category.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		st := newStyles(os.Stderr, globalFlags.JSON)
		fmt.Fprintln(os.Stderr, st.Error.Render("error:"), err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// exitCodeFor maps the error taxonomy onto category-specific exit codes.
func exitCodeFor(err error) int {
	var (
		traversal *security.PathTraversalError
		symlink   *security.SymlinkEscapeError
		hardlink  *security.HardlinkEscapeError
		bomb      *security.ZipBombError
		quota     *security.QuotaExceededError
		perms     *security.InvalidPermissionsError
		violation *security.SecurityViolationError
		unsup     *security.UnsupportedFormatError
	)
	switch {
	case errors.As(err, &quota):
		return ExitQuotaExceeded
	case errors.As(err, &traversal),
		errors.As(err, &symlink),
		errors.As(err, &hardlink),
		errors.As(err, &bomb),
		errors.As(err, &perms),
		errors.As(err, &violation):
		return ExitSecurityViolation
	case errors.As(err, &unsup):
		return ExitUnsupportedFormat
	case isConfigError(err):
		return ExitConfigInvalid
	default:
		return ExitGenericError
	}
}

func isConfigError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "CONFIG_INVALID")
}
