package cli

import (
	"github.com/spf13/cobra"

	"github.com/agenthands/parcelgraph/internal/ingest"
)

type inputFlags struct {
	format    string
	separator string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "input format override (csv, shapefile)")
	cmd.Flags().StringVar(&f.separator, "separator", "", "CSV separator override")
}

// load reads the records named by args[0] or input.path.
func (f *inputFlags) load(app *App, args []string) (*ingest.Batch, error) {
	in := app.Config.Input
	if len(args) > 0 {
		in.Path = args[0]
	}
	if f.format != "" {
		in.Format = f.format
	}
	if f.separator != "" {
		in.Separator = f.separator
	}

	return ingest.Load(in, app.Logger)
}
