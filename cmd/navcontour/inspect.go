package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorustyt/navcontour/recast"
)

func newInspectCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "inspect <contour set>",
		Short: "Print a summary of a contour set file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cset, err := recast.UnmarshalContourSet(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "grid %dx%d cs=%g ch=%g\n", cset.Width, cset.Height, cset.Cs, cset.Ch)
			fmt.Fprintf(out, "bounds %v - %v\n", cset.Bmin, cset.Bmax)
			fmt.Fprintf(out, "regions %d contours %d discarded %d\n", cset.RegionCount, len(cset.Conts), cset.DiscardedCount)
			for _, c := range cset.Conts {
				fmt.Fprintf(out, "region %d: %d verts (%d raw)\n", c.RegionID, len(c.Verts), len(c.RawVerts))
				if !verbose {
					continue
				}
				for _, v := range c.Verts {
					fmt.Fprintf(out, "  %v ext=%d raw=%d\n", v.Coordinate, v.ExternalRegionID, v.RawIndex)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List the simplified vertices")
	return cmd
}
