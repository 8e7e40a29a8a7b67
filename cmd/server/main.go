package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	persistlog "voxelsandbox.dev/internal/persistence/log"
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/input"
	"voxelsandbox.dev/internal/sim/tuning"
	"voxelsandbox.dev/internal/sim/world"
	"voxelsandbox.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world generation seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index (journals are still written)")
		outQueue   = flag.Int("out_queue", 16, "frames buffered per renderer session before it is resynced")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	cfg, err := world.ConfigFromTuning(tune, *seed)
	if err != nil {
		logger.Fatalf("world config: %v", err)
	}

	latch := input.NewLatch()
	w, err := world.New(cfg, cats, latch)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	gs := w.GenStats()
	logger.Printf("generated seed=%d blocks=%d trees=%d digest=%s", cfg.Seed, w.Store().Len(), gs.Trees, w.Store().Digest())

	startedAt := time.Now().UTC()
	runID := startedAt.Format("20060102T150405Z")
	runDir := filepath.Join(*dataDir, "runs", runID)
	if err := persistlog.WriteManifest(runDir, persistlog.RunManifest{
		RunID:     runID,
		Seed:      cfg.Seed,
		StartedAt: startedAt,
		Digest:    w.Store().Digest(),
		Tuning:    tune,
	}); err != nil {
		logger.Fatalf("write manifest: %v", err)
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(runDir, runID, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.RecordRun(cfg.Seed, startedAt, w.Store().Digest(), cats); err != nil {
			logger.Printf("index backend: record run: %v", err)
		}
	}

	tickLogger := persistlog.NewTickLogger(runDir)
	defer tickLogger.Close()
	editLogger := persistlog.NewEditLogger(runDir)
	defer editLogger.Close()
	if idx != nil {
		tickLogger.Tee(func(e world.TickLogEntry) { _ = idx.WriteTick(e) })
		editLogger.Tee(func(e world.EditEntry) { _ = idx.WriteEdit(e) })
	}
	w.SetTickLogger(tickLogger)
	w.SetEditLogger(editLogger)

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, latch, logger)
	wsSrv.OutQueue = *outQueue
	if idx != nil {
		wsSrv.SetSessionHook(idx)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(w, wsSrv, idx, envBool("VS_ENABLE_PPROF_HTTP", false), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("run=%s dir=%s", runID, runDir)
	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	<-worldDone
	logger.Printf("stopped at tick=%d", w.CurrentTick())
}

func newMux(w *world.World, wsSrv *ws.Server, idx runtimeIndex, enablePprof bool, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			OK     bool         `json:"ok"`
			Status world.Status `json:"status"`
			Index  any          `json:"index,omitempty"`
		}{OK: true, Status: w.Status()}
		if idx != nil {
			resp.Index = idx.Stats()
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(w.Registry(), promhttp.HandlerOpts{}))

	// Local-only state dump (does not affect simulation determinism).
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		p := w.Status()
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(struct {
			Seed     int64        `json:"seed"`
			Palette  string       `json:"palette_digest"`
			Status   world.Status `json:"status"`
			GenTrees int          `json:"gen_trees"`
		}{
			Seed:     w.Config().Seed,
			Palette:  w.Catalog().PaletteDigest,
			Status:   p,
			GenTrees: w.GenStats().Trees,
		})
	})

	if enablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else if logger != nil {
		logger.Printf("pprof endpoints disabled (VS_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	return mux
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
