package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/hevlyo/pegabola/internal/audit"
	"github.com/hevlyo/pegabola/internal/sim/tuning"
	"github.com/hevlyo/pegabola/internal/sim/world"
	"github.com/hevlyo/pegabola/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", "", "http listen address (overrides tuning)")
		tuningPath  = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		auditDir    = flag.String("audit", "", "directory for the zstd JSONL audit log (empty to disable)")
		seed        = flag.Int64("seed", 0, "world rng seed (0 = time-based)")
		enablePprof = flag.Bool("pprof", false, "expose net/http/pprof handlers")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	w := world.New(worldConfig(tune, *seed), logger)

	if *auditDir != "" {
		aw := audit.NewWriter(*auditDir, "audit")
		defer aw.Close()
		w.SetAuditLogger(aw)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsrv := ws.NewServer(w, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsrv.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := w.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP pegabola_players Current number of joined players.\n")
		fmt.Fprintf(rw, "# TYPE pegabola_players gauge\n")
		fmt.Fprintf(rw, "pegabola_players %d\n", m.Players)

		fmt.Fprintf(rw, "# HELP pegabola_clients Current number of connected clients.\n")
		fmt.Fprintf(rw, "# TYPE pegabola_clients gauge\n")
		fmt.Fprintf(rw, "pegabola_clients %d\n", m.Clients)

		fmt.Fprintf(rw, "# HELP pegabola_active_items Current number of collectible items.\n")
		fmt.Fprintf(rw, "# TYPE pegabola_active_items gauge\n")
		fmt.Fprintf(rw, "pegabola_active_items %d\n", m.ActiveItems)

		fmt.Fprintf(rw, "# HELP pegabola_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE pegabola_queue_depth gauge\n")
		fmt.Fprintf(rw, "pegabola_queue_depth{queue=%q} %d\n", "inbox", m.InboxDepth)
		fmt.Fprintf(rw, "pegabola_queue_depth{queue=%q} %d\n", "join", m.JoinDepth)
		fmt.Fprintf(rw, "pegabola_queue_depth{queue=%q} %d\n", "leave", m.LeaveDepth)
	})
	if *enablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	listen := tune.ListenAddr
	if *addr != "" {
		listen = *addr
	}
	if listen == "" {
		listen = ":25565"
	}

	srv := &http.Server{Addr: listen, Handler: mux}
	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Printf("listening on %s", listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http: %v", err)
	}
}

func worldConfig(t tuning.Tuning, seed int64) world.Config {
	// Sort the kind table so the rng consumes it in a stable order.
	names := make([]string, 0, len(t.ItemKinds))
	for name := range t.ItemKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	kinds := make([]world.ItemKind, 0, len(names))
	for _, name := range names {
		k := t.ItemKinds[name]
		kinds = append(kinds, world.ItemKind{Name: name, Value: k.Value, Color: k.Color})
	}

	return world.Config{
		WorldSize:       t.WorldSize,
		BoundsSlack:     t.BoundsSlack,
		ItemCount:       t.ItemCount,
		Kinds:           kinds,
		RespawnDelay:    time.Duration(t.RespawnDelayMs) * time.Millisecond,
		CollectDistance: t.MaxCollectDistance,
		NicknameMaxLen:  t.NicknameMaxLen,
		MoveLimit: world.LimitConfig{
			Max:    t.RateLimits.Move.Max,
			Window: time.Duration(t.RateLimits.Move.WindowMs) * time.Millisecond,
		},
		CollectLimit: world.LimitConfig{
			Max:    t.RateLimits.Collect.Max,
			Window: time.Duration(t.RateLimits.Collect.WindowMs) * time.Millisecond,
		},
		Weather: world.WeatherConfig{
			Enabled:     t.Weather.Enabled,
			MinInterval: time.Duration(t.Weather.MinIntervalS) * time.Second,
			MaxInterval: time.Duration(t.Weather.MaxIntervalS) * time.Second,
		},
		Zones: world.ZoneConfig{
			Enabled:       t.Zones.Enabled,
			SpawnInterval: time.Duration(t.Zones.SpawnIntervalS) * time.Second,
			MaxActive:     t.Zones.MaxActive,
			MinDuration:   time.Duration(t.Zones.MinDurationS) * time.Second,
			MaxDuration:   time.Duration(t.Zones.MaxDurationS) * time.Second,
		},
		Seed: seed,
	}
}
