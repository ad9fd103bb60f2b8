package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"retailtwin.io/internal/persistence/indexdb"
	"retailtwin.io/internal/persistence/journal"
	"retailtwin.io/internal/sim/tuning"
	"retailtwin.io/internal/sim/world"
	"retailtwin.io/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "listen address (overrides tuning)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		envFile    = flag.String("env", ".env", "env file loaded before reading RT_* overrides")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite event index")
		noJournal  = flag.Bool("disable_journal", false, "disable the jsonl event journal")
		withPprof  = flag.Bool("pprof", false, "expose net/http/pprof handlers")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		logger.Fatalf("load env file: %v", err)
	}

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	tune.ApplyEnv()
	if strings.TrimSpace(*addr) != "" {
		tune.Addr = *addr
	}

	var sinks []world.EventSink

	if !*noJournal {
		jw := journal.NewWriter(filepath.Join(*dataDir, "journal"), "events")
		defer jw.Close()
		sinks = append(sinks, jw)
	}
	if !*disableDB {
		idx, err := indexdb.Open(filepath.Join(*dataDir, "index", "events.db"))
		if err != nil {
			logger.Fatalf("open event index: %v", err)
		}
		defer idx.Close()
		sinks = append(sinks, idx)
	}

	w := world.New(world.Config{
		Tuning: tune,
		Logger: log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds),
		Sinks:  sinks,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("world loop: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	if *withPprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              tune.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s (sensor=%s customer=%s prediction=%s layout=%s)",
		tune.Addr, tune.UpdateInterval(), tune.CustomerInterval(),
		tune.StockPredictionInterval(), tune.LayoutValidationInterval())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("listen: %v", err)
	}
	logger.Printf("server stopped")
}
