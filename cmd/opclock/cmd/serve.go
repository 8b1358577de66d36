package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opclock/opclock/internal/server"
	"github.com/opclock/opclock/pkg/shutdown"
	"github.com/opclock/opclock/pkg/sysinfo"
	"github.com/opclock/opclock/pkg/timing"
)

var (
	serveListen   string
	serveRPS      float64
	serveBurst    int
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose collected timings over HTTP",
	Long: `Starts the diagnostics server: /metrics in Prometheus text
format, /timings as a JSON report and /healthz. A background loop keeps
timing a host probe so the endpoints always have fresh data.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, fallback :9182)")
	serveCmd.Flags().Float64Var(&serveRPS, "rps", 0, "rate limit in requests per second per client")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 0, "rate limit burst per client")
	serveCmd.Flags().DurationVar(&serveInterval, "sample-interval", 10*time.Second, "interval between host probe samples")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	listen := serveListen
	if listen == "" {
		listen = viper.GetString("listen")
	}
	rps := serveRPS
	if rps <= 0 {
		rps = viper.GetFloat64("rate_limit_rps")
	}
	burst := serveBurst
	if burst <= 0 {
		burst = viper.GetInt("rate_limit_burst")
	}

	reg := timing.New(nil, log)
	srv := server.New(server.Config{
		Listen:         listen,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, reg, log)

	done := make(chan struct{})
	go sampleLoop(srv, serveInterval, done)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	mgr := shutdown.New(15*time.Second, log)
	mgr.Register(func(ctx context.Context) error {
		close(done)
		return nil
	})
	mgr.Register(shutdown.StopHTTPServer(srv, "diagnostics"))

	go func() {
		mgr.Wait()
	}()

	return <-errChan
}

// sampleLoop keeps the registry populated by timing a host probe.
func sampleLoop(srv *server.Server, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		srv.Observe("sysinfo.collect", func() {
			_, _ = sysinfo.Collect()
		})
	}

	probe()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			probe()
		}
	}
}
