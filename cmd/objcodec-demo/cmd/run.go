package cmd

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/demo"
	"github.com/oy3o/objcodec/metrics"
)

var runMetrics bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every serialization scenario",
	Long: `Run writes each scenario's objects to files.main, reads them back
and reports whether they match. It finishes by writing one object of every
sample type, tagged, to files.test.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []objcodec.Option
		var preg *prometheus.Registry
		if runMetrics {
			preg = prometheus.NewRegistry()
			opts = append(opts, objcodec.WithObserver(metrics.NewCollector(preg)))
		}
		results, err := demo.NewRunner(cfg.Files, log, opts...).Run()
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			status := "match"
			if !r.Match {
				status = "MISMATCH"
				failed++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", r.Scenario, status)
		}
		if preg != nil {
			if err := printMetrics(cmd.OutOrStdout(), preg); err != nil {
				return err
			}
		}
		if failed > 0 {
			return errors.Newf("%d of %d scenarios did not match", failed, len(results))
		}
		return nil
	},
}

// printMetrics writes one total per metric family: counter sums and
// histogram sample counts.
func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	fmt.Fprintln(out)
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		fmt.Fprintf(out, "%-34s %g\n", mf.GetName(), total)
	}
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "print serializer metrics after the run")
	rootCmd.AddCommand(runCmd)
}
