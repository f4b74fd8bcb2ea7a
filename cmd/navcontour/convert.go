package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorustyt/navcontour/common/rw"
	"github.com/gorustyt/navcontour/debug_utils"
	"github.com/gorustyt/navcontour/recast"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		opts        recast.RegionMapOptions
		heightsPath string
	)
	cmd := &cobra.Command{
		Use:   "convert <region map> <heightfield>",
		Short: "Turn an ASCII region map into a compact heightfield dump",
		Long: `Each non-empty line of the map is one row of cells. '.' is an empty
cell, '0'-'9' and 'a'-'z' are spans in regions 0 to 35, 0 being the null
region.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if heightsPath != "" {
				heights, err := os.ReadFile(heightsPath)
				if err != nil {
					return err
				}
				opts.Heights = string(heights)
			}
			chf, err := recast.ParseRegionMap(string(text), opts)
			if err != nil {
				return err
			}
			w := rw.NewBinWriter()
			if err := debug_utils.DuDumpCompactHeightfield(chf, w); err != nil {
				return err
			}
			if err := os.WriteFile(args[1], w.GetWriteBytes(), 0644); err != nil {
				return err
			}
			a.log.Info("heightfield written",
				zap.String("output", args[1]),
				zap.Int("width", chf.Width),
				zap.Int("height", chf.Height),
				zap.Int("spans", chf.SpanCount()),
				zap.Int("regions", chf.MaxRegions))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Float32Var(&opts.Cs, "cs", 1, "Cell size on the xz-plane")
	flags.Float32Var(&opts.Ch, "ch", 1, "Cell height")
	flags.IntVar(&opts.WalkableClimb, "climb", 0, "Largest floor step that links two spans, in cells")
	flags.StringVar(&heightsPath, "heights", "", "Optional map of per-cell floor heights")
	return cmd
}
