package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// print writes v as indented JSON, or calls text for the text format.
func (a *App) print(cmd *cobra.Command, v interface{}, text func()) error {
	if a.Output != "json" {
		text()
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
