package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmguard/pmguard/internal/config"
	"github.com/pmguard/pmguard/internal/delegate"
	"github.com/pmguard/pmguard/internal/gate"
	"github.com/pmguard/pmguard/internal/journal"
	"github.com/pmguard/pmguard/internal/lockwatch"
	"github.com/pmguard/pmguard/internal/manager"
	"github.com/pmguard/pmguard/internal/policy"
	"github.com/pmguard/pmguard/internal/purl"
	"github.com/pmguard/pmguard/internal/riskapi"
	"github.com/pmguard/pmguard/internal/scan"
	"github.com/pmguard/pmguard/internal/spinner"
)

func init() {
	for _, name := range manager.Names() {
		name := name
		rootCmd.AddCommand(&cobra.Command{
			Use:   name + " [args...]",
			Short: "Run " + name + " through the risk gate",
			// Manager-native flags must reach the real binary untouched,
			// so cobra never parses past the subcommand name.
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWrap(name, args)
			},
		})
	}
}

// runWrap is the whole pipeline for one wrapped invocation: classify,
// extract, translate, query, decide, delegate. Stages run strictly in
// that order and each earlier stage can short-circuit the rest.
func runWrap(name string, args []string) error {
	m, ok := manager.Lookup(name)
	if !ok {
		return fmt.Errorf("unsupported package manager: %s", name)
	}

	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	req := scan.NewRequest(m, args, cfg.AcceptRisks, cfg.ViewAllRisks)
	pol := policy.FromToggles(req.AcceptRisks, req.ViewAllRisks)
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	ctx := context.Background()

	// History is best-effort: a broken journal must never block an install.
	jnl, jerr := journal.Open(ctx, "")
	if jerr != nil {
		debugf(cfg, "journal unavailable: %v", jerr)
		jnl = nil
	}
	defer func() { _ = jnl.Close() }()

	entry := journal.Entry{Manager: req.ManagerName, Command: req.Command, Reason: journal.ReasonSkipped}

	if scan.NeedsScanning(req) {
		purls := purl.Batch(scan.ExtractPackages(req, cwd))
		entry.Purls = len(purls)

		// An empty PURL set is a valid terminal state distinct from
		// "scanning doesn't apply"; both allow, neither queries.
		if len(purls) > 0 {
			g := &gate.Gate{
				Client:  riskapi.New(cfg.APIURL, cfg.APIToken),
				Policy:  pol,
				Spinner: spinner.New("Checking packages for risks", cfg.Progress),
				Stderr:  os.Stderr,
				Debug:   cfg.Debug,
			}

			alerts, err := g.QueryAndFilter(ctx, purls)
			if err != nil {
				return err
			}
			entry.Alerts = alerts.Len()

			res := g.Decide(req.ManagerName, alerts)
			switch {
			case res.ShouldExit:
				entry.Reason = journal.ReasonBlocked
				recordDecision(ctx, cfg, jnl, entry)
				_ = jnl.Close()
				os.Exit(res.ExitCode)
			case alerts.Len() > 0:
				entry.Reason = journal.ReasonBypassed
			default:
				entry.Reason = journal.ReasonClean
			}
		}
	}
	recordDecision(ctx, cfg, jnl, entry)

	spec, err := delegate.Build(m, args, delegate.Options{
		APIToken:        cfg.APIToken,
		ProgressEnabled: cfg.Progress,
		ProjectDir:      cwd,
	})
	if err != nil {
		// The one error class that must reach the user verbatim:
		// continuing would fake a successful install.
		return err
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	lw := lockwatch.New(cwd)
	go lw.Run(watchCtx)

	status, err := delegate.Run(spec)
	stopWatch()
	if err != nil {
		return err
	}
	if touched := lw.Touched(); len(touched) > 0 {
		debugf(cfg, "lockfiles touched: %v", touched)
	}

	_ = jnl.Close()
	delegate.Forward(status)
	return nil
}

func recordDecision(ctx context.Context, cfg config.Config, jnl *journal.Journal, e journal.Entry) {
	if _, err := jnl.Record(ctx, e); err != nil {
		debugf(cfg, "journal record failed: %v", err)
	}
}

func debugf(cfg config.Config, format string, args ...any) {
	if cfg.Debug {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}
