package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lixenwraith/pedsim/api"
	"github.com/lixenwraith/pedsim/audio"
	"github.com/lixenwraith/pedsim/config"
	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/measure"
	"github.com/lixenwraith/pedsim/render"
	"github.com/lixenwraith/pedsim/service"
	"github.com/lixenwraith/pedsim/simulation"
	"github.com/lixenwraith/pedsim/status"
	"github.com/lixenwraith/pedsim/store"
)

var (
	configPath = flag.String("config", "", "Scenario TOML file (or first argument)")
	headless   = flag.Bool("headless", false, "Run without the terminal view")
	dbPath     = flag.String("db", "", "Record the run into this SQLite file")
	plotPath   = flag.String("plot", "", "Write the fundamental diagram image (png, svg, pdf)")
	chartPath  = flag.String("chart", "", "Write an interactive HTML chart of area observations")
	httpAddr   = flag.String("http", "", "Serve the status API on this address, e.g. :8080")
	sound      = flag.Bool("sound", false, "Play a tone on arrivals and stuck pedestrians")
	wallClock  = flag.Bool("wall", false, "Drive movement from the wall clock instead of simulated time")
	logPath    = flag.String("log", "", "Log file; terminal mode discards logs without it")
	progress   = flag.Uint64("progress", 100, "Headless progress log interval in ticks, 0 disables")
	jsonOut    = flag.Bool("json", false, "Print the summary as JSON")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pedsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := *configPath
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		flag.Usage()
		return errors.New("no scenario given")
	}

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else if !*headless {
		// Log lines would tear the terminal view
		log.SetOutput(io.Discard)
	}

	sc, err := config.Load(path)
	if err != nil {
		return err
	}

	reg := status.NewRegistry()
	opts := []simulation.Option{simulation.WithRegistry(reg)}
	if *wallClock {
		opts = append(opts, simulation.WithClock(engine.NewWallClock()))
	}
	sim, err := simulation.New(sc, opts...)
	if err != nil {
		return err
	}
	sim.Scheduler().SetRealtime(!*headless || *wallClock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	var services []service.Service
	if *dbPath != "" {
		services = append(services, &service.Func{
			ID: "store",
			OnStart: func(ctx context.Context) error {
				var err error
				if st, err = store.Open(*dbPath); err != nil {
					return err
				}
				cfgText, err := sc.Marshal()
				if err == nil {
					err = st.CreateRun(ctx, store.Run{
						ID:        sim.ID(),
						Scenario:  sc.Name,
						Strategy:  sim.World().Costs.Strategy,
						Config:    string(cfgText),
						StartedAt: time.Now(),
					})
				}
				if err != nil {
					st.Close()
					return fmt.Errorf("failed to record run: %w", err)
				}
				sim.Scheduler().RegisterEventHandler(store.NewRecorder(st, sim.ID()))
				return nil
			},
			OnStop: func() error { return st.Close() },
		})
	}

	if *httpAddr != "" {
		var srv *api.Server
		var deps []string
		if *dbPath != "" {
			deps = []string{"store"}
		}
		services = append(services, &service.Func{
			ID:       "api",
			Requires: deps,
			OnStart: func(context.Context) error {
				srv = api.NewServer(reg, sim.World().Areas, st)
				addr, err := srv.Start(*httpAddr)
				if err != nil {
					return fmt.Errorf("failed to start api: %w", err)
				}
				log.Printf("api listening on %s", addr)
				return nil
			},
			OnStop: func() error {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			},
		})
	}

	if *sound {
		var chime *audio.Chime
		services = append(services, &service.Func{
			ID: "audio",
			OnStart: func(context.Context) error {
				var err error
				if chime, err = audio.NewChime(); err != nil {
					// Non-fatal, the run goes on silent
					log.Printf("audio unavailable: %v (continuing without sound)", err)
					return nil
				}
				sim.Scheduler().RegisterEventHandler(chime)
				return nil
			},
			OnStop: func() error {
				if chime != nil {
					chime.Close()
				}
				return nil
			},
		})
	}

	hub := service.NewHub()
	for _, svc := range services {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}
	if err := hub.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := hub.StopAll(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	reason, err := simulate(ctx, sim, sc.Verbose)
	if err != nil {
		return err
	}
	sum := sim.Summary()

	if st != nil {
		if err := st.FinishRun(context.Background(), sim.ID(), time.Now(), reason.String(),
			sum.Ticks, sum.SimTime.Seconds(), sum.Arrivals); err != nil {
			log.Printf("failed to finish run record: %v", err)
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return err
		}
	} else if err := sum.Write(os.Stdout); err != nil {
		return err
	}

	if err := export(sim); err != nil {
		return err
	}

	if *httpAddr != "" && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "run finished, api still serving, Ctrl-C to exit")
		<-ctx.Done()
	}
	return nil
}

// simulate runs to completion, restoring the terminal even when the run panics
func simulate(ctx context.Context, sim *simulation.Simulation, verbose bool) (reason engine.StopReason, err error) {
	if *headless {
		sim.SetRenderer(&engine.Headless{ProgressEvery: *progress})
		return sim.Run(ctx), nil
	}

	term, err := render.NewTerminal(verbose)
	if err != nil {
		return engine.StopNone, err
	}
	defer func() {
		term.Close()
		if r := recover(); r != nil {
			err = fmt.Errorf("simulation crashed: %v\n%s", r, debug.Stack())
		}
	}()
	sim.SetRenderer(term)
	return sim.Run(ctx), nil
}

func export(sim *simulation.Simulation) error {
	byArea := sim.Observations()

	if *plotPath != "" {
		var all []measure.Observation
		for _, obs := range byArea {
			all = append(all, obs...)
		}
		fit, err := measure.FitDiagram(all)
		if err != nil {
			log.Printf("no fit for plot: %v", err)
			fit = nil
		}
		if err := measure.SavePlot(*plotPath, all, fit); err != nil {
			if errors.Is(err, measure.ErrInsufficientData) {
				fmt.Fprintf(os.Stderr, "plot skipped: %v\n", err)
			} else {
				return err
			}
		}
	}

	if *chartPath != "" {
		f, err := os.Create(*chartPath)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		defer f.Close()
		if err := measure.RenderChart(f, byArea); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
	}
	return nil
}
