package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opclock/opclock/pkg/report"
	"github.com/opclock/opclock/pkg/sysinfo"
	"github.com/opclock/opclock/pkg/timing"
)

var (
	benchIterations int
	benchOutput     string
	benchOutFile    string
	benchHostInfo   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time a set of operations and report the results",
	Long: `Runs each configured operation for the requested number of
iterations, timing every run through one registry, and renders the
recorded durations. Operations come from bench.operations in the config
file (name + shell command); without configuration a set of built-in
filesystem probes is used.`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVarP(&benchIterations, "iterations", "n", 0,
		"runs per operation (default from config, fallback 3)")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "table",
		"output format: table, json, yaml, csv")
	benchCmd.Flags().StringVar(&benchOutFile, "out-file", "",
		"write the report to a file instead of stdout")
	benchCmd.Flags().BoolVar(&benchHostInfo, "host-info", false,
		"attach a host snapshot to the report")
}

// Operation is one named thing to time.
type Operation struct {
	Name string `mapstructure:"name"`
	Cmd  string `mapstructure:"cmd"`

	run func() error
}

func runBench(cmd *cobra.Command, args []string) error {
	log := newLogger()

	iterations := benchIterations
	if iterations <= 0 {
		iterations = viper.GetInt("bench.iterations")
	}
	if iterations <= 0 {
		iterations = 1
	}

	ops, cleanup, err := loadOperations()
	if err != nil {
		return err
	}
	defer cleanup()

	sessionID := uuid.NewString()
	log.Info("starting bench session", map[string]interface{}{
		"session":    sessionID,
		"operations": len(ops),
		"iterations": iterations,
	})

	reg := timing.New(nil, log)

	// bench.total is a last-event-wins timer: every iteration overwrites
	// it with the elapsed time so far, and Finalize freezes the last one.
	reg.Start("bench.total")
	for _, op := range ops {
		for i := 0; i < iterations; i++ {
			reg.Start(op.Name)
			if err := op.run(); err != nil {
				log.Warnf("operation %q failed on run %d: %v", op.Name, i+1, err)
			}
			reg.Stop(op.Name)
			reg.Update("bench.total")
		}
	}
	reg.Finalize("bench.total")

	rep := report.Build(reg.Snapshot())
	rep.SessionID = sessionID

	if benchHostInfo {
		host, err := sysinfo.Collect()
		if err != nil {
			log.Warnf("host snapshot is partial: %v", err)
		}
		rep.Host = host
	}

	var out io.Writer = os.Stdout
	if benchOutFile != "" {
		f, err := os.Create(benchOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if benchOutput == "table" {
		rep.Render(out)
		return nil
	}
	return rep.Export(out, benchOutput)
}

// loadOperations reads bench.operations from config, falling back to the
// built-in filesystem probes. The returned cleanup removes any scratch
// files the probes created.
func loadOperations() ([]Operation, func(), error) {
	var configured []Operation
	if err := viper.UnmarshalKey("bench.operations", &configured); err != nil {
		return nil, nil, fmt.Errorf("invalid bench.operations config: %w", err)
	}

	if len(configured) > 0 {
		for i := range configured {
			op := &configured[i]
			if op.Name == "" || op.Cmd == "" {
				return nil, nil, fmt.Errorf("bench.operations entries need both name and cmd")
			}
			command := op.Cmd
			op.run = func() error {
				return exec.Command("sh", "-c", command).Run()
			}
		}
		return configured, func() {}, nil
	}

	return builtinProbes()
}

// builtinProbes time basic filesystem operations against a scratch file.
func builtinProbes() ([]Operation, func(), error) {
	dir, err := os.MkdirTemp("", "opclock-bench")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	path := filepath.Join(dir, "probe.dat")
	payload := make([]byte, 1<<20)

	ops := []Operation{
		{Name: "file.write", run: func() error {
			return os.WriteFile(path, payload, 0644)
		}},
		{Name: "file.read", run: func() error {
			_, err := os.ReadFile(path)
			return err
		}},
		{Name: "file.stat", run: func() error {
			_, err := os.Stat(path)
			return err
		}},
	}
	cleanup := func() { os.RemoveAll(dir) }
	return ops, cleanup, nil
}
