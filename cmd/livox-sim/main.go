package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/banshee-data/livox.sim/internal/config"
	"github.com/banshee-data/livox.sim/internal/lidar/collision"
	"github.com/banshee-data/livox.sim/internal/lidar/monitor"
	"github.com/banshee-data/livox.sim/internal/lidar/network"
	"github.com/banshee-data/livox.sim/internal/lidar/sensor"
	"github.com/banshee-data/livox.sim/internal/lidar/storage/sqlite"
	"github.com/banshee-data/livox.sim/internal/timeutil"
	"github.com/banshee-data/livox.sim/internal/version"

	"github.com/google/uuid"
)

var (
	configFile  = flag.String("config", config.DefaultConfigPath, "Path to the simulator JSON config")
	maxFrames   = flag.Int("frames", 0, "Stop after this many frames (0 runs until interrupted)")
	dbFile      = flag.String("db", "", "Path to the SQLite frame store (empty disables storage)")
	listen      = flag.String("listen", ":8082", "HTTP monitor listen address (empty disables the monitor)")
	forwardAddr = flag.String("forward-addr", "", "Address to forward encoded frames to over UDP (empty disables)")
	forwardPort = flag.Int("forward-port", 5600, "UDP port to forward encoded frames to")
	logInterval = flag.Int("log-interval", 10, "Forwarder drop logging interval in seconds")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

type dropCounter struct{ n atomic.Int64 }

func (d *dropCounter) AddDropped() { d.n.Add(1) }

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("livox-sim %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadSimConfig(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	scfg, err := sensor.ConfigFromSim(cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve sensor config: %w", err)
	}
	world, err := buildWorld(cfg.World)
	if err != nil {
		return fmt.Errorf("failed to build world: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	var pubs sensor.Publishers

	drops := &dropCounter{}
	if *forwardAddr != "" {
		fwd, err := network.NewFrameForwarder(*forwardAddr, *forwardPort, drops, time.Duration(*logInterval)*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create forwarder: %w", err)
		}
		defer fwd.Close()
		fwd.Start(ctx)
		pubs = append(pubs, fwd)
	}

	var store *sqlite.FrameStore
	if *dbFile != "" {
		store, err = sqlite.Open(*dbFile)
		if err != nil {
			return fmt.Errorf("failed to open frame store: %w", err)
		}
		defer store.Close()
	}

	shape := collision.NewMultiRay(scfg.ParentPose, scfg.Bounds.Min, world)
	s, err := sensor.New(scfg, shape, pubs)
	if err != nil {
		return fmt.Errorf("failed to load sensor: %w", err)
	}

	loop := &tickLoop{
		sensor:    s,
		clock:     timeutil.RealClock{},
		period:    timeutil.Period(cfg.GetUpdateRateHz()),
		maxFrames: *maxFrames,
		runID:     runID,
	}

	if store != nil {
		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		run := &sqlite.Run{
			RunID:       runID,
			PatternPath: scfg.PatternPath,
			PatternSize: s.Pattern().Len(),
			Samples:     scfg.Batch.SamplesPerFrame,
			DownSample:  scfg.Batch.DownSample,
			ConfigJSON:  cfgJSON,
		}
		if err := store.StartRun(run); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		loop.recorder = store
		defer func() {
			if err := store.EndRun(runID, time.Now()); err != nil {
				log.Printf("Failed to close run: %v", err)
			}
		}()
	}

	var wg sync.WaitGroup
	if *listen != "" {
		fwdStatus := ""
		if *forwardAddr != "" {
			fwdStatus = fmt.Sprintf("%s:%d", *forwardAddr, *forwardPort)
		}
		ws, err := monitor.NewWebServer(monitor.WebServerConfig{
			Address:     *listen,
			Store:       store,
			RunID:       runID,
			ForwardAddr: fwdStatus,
		})
		if err != nil {
			return fmt.Errorf("failed to create monitor: %w", err)
		}
		loop.sinks = append(loop.sinks, ws)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(ctx); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	log.Printf("livox-sim %s run %s: %d rays/frame at %.1f Hz", version.Version, runID, s.Capacity(), cfg.GetUpdateRateHz())
	n, err := loop.run(ctx)
	log.Printf("Produced %d frames (%d forwarded records dropped)", n, drops.n.Load())

	stop()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("tick loop stopped: %w", err)
	}
	return nil
}
