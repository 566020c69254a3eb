package cmd

import (
	"fmt"
	"io"

	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/go-drift/drift-maps/pkg/metrics"
	"github.com/go-drift/drift-maps/pkg/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Bridge  bool
	Metrics bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay a scenario and print the resulting trace",
		Long: `Replay a scenario file against a fresh marker binding and print one
line per map operation, followed by the number of annotations still live.

By default the binding drives an in-memory map, which also checks that the
binding never misuses it; any violation fails the command. With --bridge the
binding drives the native bridge instead and the trace shows the messages
sent on the drift/maps channel.

Examples:
  markerctl replay testdata/c-move.yaml
  markerctl replay --bridge testdata/d-drag-end.yaml
  markerctl replay --metrics testdata/e-detach.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd.OutOrStdout(), args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Bridge, "bridge", false, "replay through the native bridge protocol")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics after the trace")

	return cmd
}

func runReplay(opts *ReplayOptions, out io.Writer, path string) error {
	log := logging.Component("replay")

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	runOpts := []scenario.Option{
		scenario.WithDefaults(opts.Config.Defaults()),
		scenario.WithObserver(metrics.NewCollector(reg)),
		scenario.WithLogger(logging.Component("marker")),
	}
	if opts.Bridge {
		runOpts = append(runOpts, scenario.WithBridge())
	}

	log.Debug().Str("scenario", s.Name).Bool("bridge", opts.Bridge).Msg("replaying")
	res, err := scenario.Run(s, runOpts...)
	if err != nil {
		return err
	}

	if _, err := out.Write(res.Bytes()); err != nil {
		return err
	}
	if opts.Metrics {
		if err := writeMetrics(out, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if n := len(res.Violations); n > 0 {
		return fmt.Errorf("%s: %d map contract violation(s)", s.Name, n)
	}
	return nil
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return err
	}
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
