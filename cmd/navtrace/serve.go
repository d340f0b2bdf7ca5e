package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/navtrace/internal/config"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/server"
	"github.com/san-kum/navtrace/internal/session"
	"github.com/san-kum/navtrace/internal/storage"
)

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve("", preset, configFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addr
	}
	if cmd.Flags().Changed("persist") {
		cfg.Server.PersistUploads = persist
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()
	mgr := session.NewManager(scene.New(cfg.Scene()), cfg.Plotly(), cfg.Server.MaxSessions)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, arg := range args {
		l, err := openTrace(arg)
		if err != nil {
			return err
		}
		s, _, err := mgr.Add(ctx, l.name, l.tr)
		if err != nil {
			return err
		}
		if l.storedID != "" {
			mgr.SetStoredID(s.ID, l.storedID)
		}
		fmt.Printf("loaded %s as %s (%d frames)\n", l.name, s.ID, len(s.Scenes))
	}

	srv := server.New(mgr, st, server.Options{
		Addr:        cfg.Server.Addr,
		BodyLimit:   cfg.Server.BodyLimit,
		CORSOrigins: cfg.Server.CORSOrigins,
		Persist:     cfg.Server.PersistUploads,
		PlotlyCDN:   cfg.Export.PlotlyCDN,
		SVGWidth:    cfg.Export.Width,
		SVGHeight:   cfg.Export.Height,
		Version:     version,
		Quiet:       quiet,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
