package commands

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Andrej220/go-utils/taskfarm"
	promexp "github.com/Andrej220/go-utils/taskfarm/observability/prometheus"
	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type demoTask uint8

const randFloat demoTask = 0

var randomFloatsCmd = &cobra.Command{
	Use:   "random-floats",
	Short: "Generate random doubles on the workers and print them",
	RunE:  runRandomFloats,
}

func init() {
	randomFloatsCmd.Flags().Int("count", 100, "number of tasks")
	_ = viper.BindPFlag("count", randomFloatsCmd.Flags().Lookup("count"))
	rootCmd.AddCommand(randomFloatsCmd)
}

func runRandomFloats(cmd *cobra.Command, _ []string) error {
	count := viper.GetInt("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := taskfarm.Options{
		Workers:      viper.GetInt("workers"),
		PayloadSize:  8,
		TickInterval: viper.GetDuration("tick"),
		PinWorkers:   viper.GetBool("pin"),
		Context:      ctx,
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		exporter, err := promexp.NewMetricsExporter("taskfarm", reg, promexp.ExporterOptions{})
		if err != nil {
			return err
		}
		opts.Metrics = exporter

		srv, err := serveMetrics(ctx, addr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	farm, err := taskfarm.NewFarm[demoTask](opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	done := 0
	err = farm.AddTaskType(randFloat, 1,
		func(buf []byte) {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(rand.Float64()))
		},
		func(buf []byte, _ *taskfarm.Dispatcher[demoTask]) {
			fmt.Fprintln(out, math.Float64frombits(binary.LittleEndian.Uint64(buf)))
			done++
			if done == count {
				fmt.Fprintln(out, "Done!")
				cancel()
			}
		},
	)
	if err != nil {
		return err
	}

	zero := make([]byte, 8)
	for range count {
		if err := farm.Delegate(randFloat, zero); err != nil {
			return err
		}
	}

	if err := farm.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if done < count {
		return fmt.Errorf("interrupted after %d of %d tasks", done, count)
	}
	return nil
}

// serveMetrics binds addr synchronously so a bad address fails the
// command, then serves h in the background.
func serveMetrics(ctx context.Context, addr string, h http.Handler) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.FromContext(ctx).Error("metrics server failed",
				lg.String("addr", addr),
				lg.Any("error", err),
			)
		}
	}()
	return srv, nil
}
