package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coffre/internal/config"
	"coffre/internal/inspect"
)

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List archive contents without extracting",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load(config.Options{ProfilePath: globalFlags.ProfilePath})
	if err != nil {
		return err
	}

	manifest, err := inspect.List(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	}

	st := newStyles(os.Stdout, false)
	fmt.Printf("%s (%s, %d entries, %d bytes)\n",
		st.Bold.Render(args[0]), manifest.Format, manifest.TotalEntries, manifest.TotalSize)
	if globalFlags.Quiet {
		return nil
	}
	for _, entry := range manifest.Entries {
		line := fmt.Sprintf("  %-9s %10d  %s", entry.Kind, entry.Size, entry.Path)
		if entry.LinkTarget != "" {
			line += st.Dim.Render(" -> " + entry.LinkTarget)
		}
		fmt.Println(line)
	}
	return nil
}
