// holdem-sim plays automated hold'em sessions against the engine and reports
// per-table results, including a chip conservation audit for every table.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/engine"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/simconfig"
)

type CLI struct {
	Config  string `short:"c" type:"path" help:"HCL config file"`
	Hands   int    `default:"0" help:"Hands per table (overrides config)"`
	Seed    int64  `default:"0" help:"RNG seed (overrides config)"`
	Verbose bool   `short:"v" help:"Verbose logging"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tableStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// tableReport summarizes one table's run.
type tableReport struct {
	Name        string
	HandsPlayed int
	Showdowns   int
	FinalChips  map[string]int
	Busted      []string
	Conserved   bool
	Expected    int
	Observed    int
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	cfg, err := simconfig.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		kctx.Exit(1)
	}
	if cli.Hands > 0 {
		cfg.Simulation.Hands = cli.Hands
	}
	if cli.Seed != 0 {
		cfg.Simulation.Seed = cli.Seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		kctx.Exit(1)
	}

	level := parseLevel(cfg.Simulation.LogLevel)
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	fmt.Println(titleStyle.Render("holdem-sim"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d table(s), %d hands each, seed %d",
		len(cfg.Tables), cfg.Simulation.Hands, cfg.Simulation.Seed)))
	fmt.Println()

	start := time.Now()
	reports, err := run(cfg, logger)
	if err != nil {
		logger.Error("simulation failed", "err", err)
		kctx.Exit(1)
	}

	printReports(reports, time.Since(start))

	for _, r := range reports {
		if !r.Conserved {
			kctx.Exit(1)
		}
	}
	kctx.Exit(0)
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// run plays every configured table to completion in parallel against one
// shared command service.
func run(cfg *simconfig.Config, logger *log.Logger) ([]tableReport, error) {
	svcCfg := engine.DefaultConfig()
	svcCfg.Seed = cfg.Simulation.Seed
	svcCfg.AutoPlayAI = true

	svc, err := engine.NewCommandService(svcCfg, logger)
	if err != nil {
		return nil, err
	}
	query := engine.NewQueryService(svc)

	reports := make([]tableReport, len(cfg.Tables))
	var g errgroup.Group
	for i, table := range cfg.Tables {
		g.Go(func() error {
			report, err := runTable(svc, query, table, cfg.Simulation, int64(i+1), logger)
			if err != nil {
				return fmt.Errorf("table %s: %w", table.Name, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func runTable(svc *engine.CommandService, query *engine.QueryService, table simconfig.TableConfig,
	sim simconfig.SimulationSettings, stream int64, logger *log.Logger) (tableReport, error) {

	report := tableReport{Name: table.Name, FinalChips: make(map[string]int)}

	ids := make([]string, len(table.Seats))
	chips := make(map[string]int)
	for i, seat := range table.Seats {
		ids[i] = seat.Name
		if seat.Chips > 0 {
			chips[seat.Name] = seat.Chips
		}
	}

	res := svc.CreateGame(engine.CreateGameParams{
		GameID:       table.Name,
		PlayerIDs:    ids,
		Chips:        chips,
		InitialChips: table.InitialChips,
		SmallBlind:   table.SmallBlind,
		BigBlind:     table.BigBlind,
		Seed:         randutil.Derive(sim.Seed, stream),
	})
	if !res.Success {
		return report, fmt.Errorf("create game: %s", res.Message)
	}

	// The strategies share the table goroutine, so one rng is enough.
	rng := randutil.New(randutil.Derive(sim.Seed, stream+1_000_000))
	for _, seat := range table.Seats {
		strategy := buildStrategy(seat.Strategy, rng)
		if strategy == nil {
			return report, fmt.Errorf("unknown strategy %s", seat.Strategy)
		}
		if err := svc.RegisterStrategy(table.Name, seat.Name, strategy); err != nil {
			return report, err
		}
	}

	var mu sync.Mutex
	var showdowns int
	_, err := svc.SubscribeGame(table.Name, engine.EventHandEnded, func(e engine.Event) {
		if e.Data["trigger"] == "showdown" {
			mu.Lock()
			showdowns++
			mu.Unlock()
		}
	})
	if err != nil {
		return report, err
	}

	for hand := 0; hand < sim.Hands; hand++ {
		over, err := query.IsGameOver(table.Name)
		if err != nil {
			return report, err
		}
		if over.Over {
			logger.Info("table finished early", "table", table.Name, "hands", hand, "reason", over.Reason)
			break
		}

		// With every seat automated the hand plays to completion here.
		if res := svc.StartNewHand(table.Name); !res.Success {
			return report, fmt.Errorf("hand %d: %s", hand+1, res.Message)
		}
		report.HandsPlayed++

		snap, err := query.GetSnapshot(table.Name)
		if err != nil {
			return report, err
		}
		if snap.State.CurrentPhase != engine.PhaseFinished {
			return report, fmt.Errorf("hand %d stalled in %s", hand+1, snap.State.CurrentPhase)
		}
	}

	snap, err := query.GetSnapshot(table.Name)
	if err != nil {
		return report, err
	}
	total := 0
	for _, p := range snap.State.Players {
		report.FinalChips[p.ID] = p.Chips
		total += p.Chips
		if p.Chips == 0 {
			report.Busted = append(report.Busted, p.ID)
		}
	}
	mu.Lock()
	report.Showdowns = showdowns
	mu.Unlock()
	report.Expected = snap.State.StartingTotal
	report.Observed = total + snap.State.PotTotal
	report.Conserved = report.Observed == report.Expected
	return report, nil
}

func printReports(reports []tableReport, elapsed time.Duration) {
	for _, r := range reports {
		fmt.Println(tableStyle.Render("table " + r.Name))
		fmt.Printf("  hands: %d  showdowns: %d\n", r.HandsPlayed, r.Showdowns)

		names := make([]string, 0, len(r.FinalChips))
		for name := range r.FinalChips {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-12s %6d chips\n", name, r.FinalChips[name])
		}
		if len(r.Busted) > 0 {
			fmt.Printf("  busted: %s\n", strings.Join(r.Busted, ", "))
		}

		if r.Conserved {
			fmt.Println("  " + okStyle.Render(fmt.Sprintf("chips conserved (%d)", r.Observed)))
		} else {
			fmt.Println("  " + badStyle.Render(fmt.Sprintf(
				"CHIP CONSERVATION VIOLATION: expected %d, got %d", r.Expected, r.Observed)))
		}
		fmt.Println()
	}
	fmt.Println(dimStyle.Render("completed in " + elapsed.Round(time.Millisecond).String()))
}
