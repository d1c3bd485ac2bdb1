package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/parcelgraph/internal/core"
	"github.com/agenthands/parcelgraph/internal/core/model"
)

func newSyncCmd(app *App) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "sync [path]",
		Short: "Write novel parcels, adjacency and owner neighbors to the graph store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := in.load(app, args)
			if err != nil {
				return err
			}

			stop := startSpinner(cmd.ErrOrStderr(), app.spinnerEnabled(), "syncing")
			report, err := app.Engine.Sync(cmd.Context(), batch.Parcels)
			stop()

			if report != nil {
				if perr := app.print(cmd, report, func() { printSyncReport(cmd, report) }); perr != nil {
					return perr
				}
			}
			var se *core.SyncError
			if errors.As(err, &se) {
				return fmt.Errorf("%w (confirmed: %d parcels, %d adjacency, %d neighbor relationships)",
					err, report.ParcelsCreated, report.AdjacencyCreated, report.NeighborsCreated)
			}
			return err
		},
	}
	in.register(cmd)
	return cmd
}

func newDetectCmd(app *App) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "detect [path]",
		Short: "Detect adjacency and owner neighbors without touching the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := in.load(app, args)
			if err != nil {
				return err
			}
			report, err := app.Engine.Detect(batch.Parcels)
			if err != nil {
				return err
			}
			return app.print(cmd, report, func() { printDetectReport(cmd, report) })
		},
	}
	in.register(cmd)
	return cmd
}

func newCheckCmd(app *App) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "List records whose geometry cannot be used for adjacency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := in.load(app, args)
			if err != nil {
				return err
			}
			report := app.Engine.Check(batch.Parcels)
			return app.print(cmd, report, func() {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d records, %d valid geometries, %d invalid input rows\n",
					report.Records, report.Valid, len(batch.Invalid))
				printFailures(cmd, report.Failures)
			})
		},
	}
	in.register(cmd)
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count parcels, owners and relationships in the graph store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Engine.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return app.print(cmd, stats, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "parcels: %d\nowners: %d\nadjacency relationships: %d\nneighbor relationships: %d\n",
					stats.Parcels, stats.Owners, stats.Adjacency, stats.Neighbors)
			})
		},
	}
}

func newSchemaCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the parcel and owner id constraints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.BuildSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", app.Config.Graph.Flavor)
			return nil
		},
	}
}

func printSyncReport(cmd *cobra.Command, r *model.SyncReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", r.RunID)
	fmt.Fprintf(out, "records: %d (rejected %d, unique %d)\n", r.Records, r.Rejected, r.Parcels)
	fmt.Fprintf(out, "geometries: %d parsed, %d failed\n", r.Detection.Parsed, len(r.Detection.Failures))
	fmt.Fprintf(out, "candidates: %d edges, %d novel; %d novel parcels, %d novel owners\n",
		r.Detection.Edges, r.NovelEdges, r.NovelParcels, r.NovelOwners)
	fmt.Fprintf(out, "created: %d parcels, %d owners, %d adjacency and %d neighbor relationships in %d writes\n",
		r.ParcelsCreated, r.OwnersCreated, r.AdjacencyCreated, r.NeighborsCreated, r.WriteOperations)
	if r.Analysis != nil {
		fmt.Fprintf(out, "analysis: %d contiguous holdings, %d owner communities\n",
			len(r.Analysis.Holdings), len(r.Analysis.OwnerCommunities))
	}
	fmt.Fprintf(out, "duration: %s\n", r.Duration)
}

func printDetectReport(cmd *cobra.Command, r *core.DetectReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "records: %d (rejected %d, unique %d)\n", r.Records, r.Rejected, r.Parcels)
	for _, e := range r.Edges {
		fmt.Fprintf(out, "adjacent %s\n", e.Key())
	}
	for _, n := range r.Neighbors {
		fmt.Fprintf(out, "neighbors %s\n", n.Key())
	}
	printFailures(cmd, r.Detection.Failures)
}

func printFailures(cmd *cobra.Command, failures []model.GeometryFailure) {
	for _, f := range failures {
		fmt.Fprintf(cmd.OutOrStdout(), "invalid geometry %s: %s\n", f.ParcelID, f.Reason)
	}
}
