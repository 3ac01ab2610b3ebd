package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sor-sim/sor/internal/cli/tui"
	"github.com/sor-sim/sor/internal/config"
	"github.com/sor-sim/sor/internal/control"
)

// runOptions holds the run command's flags (spec.md §6 parameters plus the
// expansion's --k-close/--max-concurrent-patients/--log/--config/--no-tui).
type runOptions struct {
	n            int
	k            int
	kClose       int
	durationSecs float64
	speed        float64
	seed         uint64
	intervalSecs float64
	maxConc      int
	logPath      string
	configPath   string
	noTUI        bool
}

func newRunCmd(app *App) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.n, "N", 0, "waiting-room capacity (default 20)")
	f.IntVar(&opts.k, "K", 0, "desk #2 open threshold (default ceil(N/2))")
	f.IntVar(&opts.kClose, "k-close", 0, "desk #2 close threshold (default floor(N/3))")
	f.Float64Var(&opts.durationSecs, "duration", 0, "run duration in seconds (0 = unbounded)")
	f.Float64Var(&opts.speed, "speed", 0, "simulated-time scale factor (default 2.0)")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed")
	f.Float64Var(&opts.intervalSecs, "interval", 0, "mean patient inter-arrival seconds (default 3.0)")
	f.IntVar(&opts.maxConc, "max-concurrent-patients", 0, "cap on in-flight patients (0 = unbounded)")
	f.StringVar(&opts.logPath, "log", "", "log file path (default sor.log)")
	f.StringVar(&opts.configPath, "config", "", "optional YAML config file")
	f.BoolVar(&opts.noTUI, "no-tui", false, "disable the live dashboard even on a terminal")

	return cmd
}

// runSimulation builds a Config from, in increasing priority: an optional
// --config YAML file, then environment overrides (SOR_*), then any flags
// the operator actually passed, before defaulting and validating — so a
// flag the operator typed always wins (spec.md §6 expansion).
func runSimulation(cmd *cobra.Command, opts *runOptions) error {
	cfg := &config.Config{ConfigPath: opts.configPath, NoTUI: opts.noTUI}

	if cfg.ConfigPath != "" {
		if err := config.LoadFile(cfg.ConfigPath, cfg); err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
	}
	config.ApplyEnvOverrides(cfg)

	changed := cmd.Flags().Changed
	if changed("N") {
		cfg.N = opts.n
	}
	if changed("K") {
		cfg.K = opts.k
	}
	if changed("k-close") {
		cfg.KClose = opts.kClose
	}
	if changed("duration") {
		cfg.Duration = time.Duration(opts.durationSecs * float64(time.Second))
	}
	if changed("speed") {
		cfg.Speed = opts.speed
	}
	if changed("seed") {
		cfg.Seed = opts.seed
	}
	if changed("interval") {
		cfg.Interval = time.Duration(opts.intervalSecs * float64(time.Second))
	}
	if changed("max-concurrent-patients") {
		cfg.MaxConcurrentPatients = opts.maxConc
	}
	if changed("log") {
		cfg.LogPath = opts.logPath
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctrl := control.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := NewSignalHandler(cancel)
	sig.Start()
	defer sig.Stop()

	dispatch := func(a tui.Action) {
		switch {
		case a.Quit:
			cancel()
		case a.Evacuate:
			_ = ctrl.Evacuate(context.Background())
			cancel()
		case a.Interrupt:
			_ = ctrl.Interrupt(context.Background(), a.SpecialistIndex)
		}
	}

	useTUI := !cfg.NoTUI && term.IsTerminal(int(os.Stdout.Fd()))

	done := make(chan struct{})
	stopTUI := make(chan struct{})
	if useTUI {
		go func() {
			defer close(done)
			_ = tui.Run(ctrl.Bus(), cfg.N, ctrl.SpecialistNames(), dispatch, stopTUI)
		}()
	} else {
		go func() {
			defer close(done)
			readPlainStdinKeys(ctx, ctrl.SpecialistNames(), dispatch)
		}()
	}

	err := ctrl.Run(ctx)
	cancel()
	close(stopTUI)
	<-done
	return err
}

// readPlainStdinKeys is the non-TTY fallback of spec.md §4.10: it reads
// newline-terminated lines from stdin instead of raw keystrokes, since a
// piped or redirected stdin cannot be put into raw mode. "q"/"Q" is the only
// way to stop an unbounded run (--duration 0) from this path, so it must be
// handled the same as the dashboard's q key (spec.md §6, Testable Property B2).
func readPlainStdinKeys(ctx context.Context, specialistNames []string, dispatch func(tui.Action)) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch line {
			case "1", "2", "3", "4", "5", "6":
				idx := int(line[0] - '1')
				if idx < len(specialistNames) {
					dispatch(tui.Action{Interrupt: true, SpecialistIndex: idx})
				}
			case "7":
				dispatch(tui.Action{Evacuate: true})
			case "q", "Q":
				dispatch(tui.Action{Quit: true})
				return
			}
		}
	}
}
