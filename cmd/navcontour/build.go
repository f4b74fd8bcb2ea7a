package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorustyt/navcontour/common/rw"
	"github.com/gorustyt/navcontour/debug_utils"
	"github.com/gorustyt/navcontour/recast"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		workers      int
		maxDeviation float32
		maxEdgeLen   float32
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the contour set of a compact heightfield dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := &a.cfg
			if flags.Changed("input") {
				cfg.Input, _ = flags.GetString("input")
			}
			if flags.Changed("output") {
				cfg.Output, _ = flags.GetString("output")
			}
			if flags.Changed("obj") {
				cfg.ObjOutput, _ = flags.GetString("obj")
			}
			if flags.Changed("metrics") {
				cfg.MetricsOutput, _ = flags.GetString("metrics")
			}
			if flags.Changed("workers") {
				cfg.Contour.Workers = workers
			}
			if flags.Changed("max-deviation") {
				cfg.Contour.EdgeMaxDeviation = maxDeviation
			}
			if flags.Changed("max-edge-len") {
				cfg.Contour.MaxEdgeLen = maxEdgeLen
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Input == "" || cfg.Output == "" {
				return errors.New("build: input and output are required")
			}
			return runBuild(cmd, a)
		},
	}
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Compact heightfield dump to read")
	flags.StringP("output", "o", "", "Contour set file to write")
	flags.String("obj", "", "Also write the simplified contours as OBJ polylines")
	flags.String("metrics", "", "Also write the build metrics in Prometheus text format")
	flags.IntVar(&workers, "workers", 1, "Regions processed concurrently")
	flags.Float32Var(&maxDeviation, "max-deviation", recast.DefaultEdgeMaxDeviation, "Maximum deviation of null region edges")
	flags.Float32Var(&maxEdgeLen, "max-edge-len", recast.DefaultMaxEdgeLen, "Maximum length of null region edges")
	return cmd
}

func runBuild(cmd *cobra.Command, a *app) error {
	cfg := a.cfg
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return err
	}
	chf, err := debug_utils.DuReadCompactHeightfield(rw.NewBinReader(data))
	if err != nil {
		return fmt.Errorf("build: %s: %w", cfg.Input, err)
	}
	a.log.Info("heightfield loaded",
		zap.String("input", cfg.Input),
		zap.Int("width", chf.Width),
		zap.Int("height", chf.Height),
		zap.Int("spans", chf.SpanCount()))

	reg := prometheus.NewRegistry()
	cset, buildErr := recast.BuildContours(cmd.Context(), chf, cfg.Contour,
		recast.WithLogger(a.log), recast.WithMetrics(recast.NewMetrics(reg)))
	if cset == nil {
		return buildErr
	}
	debug_utils.DuLogBuildTimes(a.log, cset.Times)

	if err := os.WriteFile(cfg.Output, recast.MarshalContourSet(cset), 0644); err != nil {
		return err
	}
	if cfg.ObjOutput != "" {
		if err := writeObj(cset, cfg.ObjOutput); err != nil {
			return err
		}
	}
	if cfg.MetricsOutput != "" {
		if err := writeMetrics(reg, cfg.MetricsOutput); err != nil {
			return err
		}
	}
	// Region failures still leave a usable set on disk.
	return buildErr
}

func writeObj(cset *recast.ContourSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := debug_utils.DuDumpContoursToObj(cset, f, false); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMetrics(g prometheus.Gatherer, path string) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
