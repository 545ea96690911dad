package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coffre/internal/config"
	"coffre/internal/inspect"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <archive>",
	Short: "Check archive integrity and security without extracting",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load(config.Options{ProfilePath: globalFlags.ProfilePath})
	if err != nil {
		return err
	}

	report, err := inspect.Verify(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printVerifyHuman(args[0], report)
	}

	if !report.IsSafe() {
		return fmt.Errorf("archive failed verification with %d issue(s)", len(report.Issues))
	}
	return nil
}

func printVerifyHuman(path string, report *inspect.VerificationReport) {
	st := newStyles(os.Stdout, false)

	verdict := st.Success.Render("SAFE")
	if !report.IsSafe() {
		verdict = st.Error.Render("UNSAFE")
	}
	fmt.Printf("%s: %s (%s, %d entries)\n", st.Bold.Render(path), verdict, report.Format, report.TotalEntries)

	if globalFlags.Quiet {
		return
	}
	for _, issue := range report.Issues {
		line := fmt.Sprintf("  [%s] %s: %s", issue.Severity, issue.Category, issue.Message)
		switch issue.Severity {
		case inspect.SeverityCritical, inspect.SeverityHigh:
			fmt.Println(st.Error.Render(line))
		case inspect.SeverityWarning:
			fmt.Println(st.Warning.Render(line))
		default:
			fmt.Println(st.Dim.Render(line))
		}
	}
}
