// markdrop uploads locally-dropped image files to an S3-compatible object
// store and splices markdown links to them into a document.
//
//	markdrop drop -doc notes.md screenshot.png photo.jpg
//	markdrop serve -addr :8087
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/koustreak/markdrop/internal/logger"
	"github.com/koustreak/markdrop/internal/objstore/minio"
	"github.com/koustreak/markdrop/internal/pipeline"
	"github.com/koustreak/markdrop/internal/settings"
	"github.com/koustreak/markdrop/internal/settingsui"
)

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded .env")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "drop":
		err = runDrop(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "markdrop: %s\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  markdrop drop  -doc FILE [-line N] [-col N] [-c settings.yaml] IMAGE...
  markdrop serve [-addr :8087] [-c settings.yaml]
`)
}

// settingsPath resolves the settings file: flag value, then
// MARKDROP_SETTINGS, then ./markdrop.yaml.
func settingsPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("MARKDROP_SETTINGS"); p != "" {
		return p
	}
	return "markdrop.yaml"
}

func runDrop(args []string) error {
	fs := flag.NewFlagSet("drop", flag.ExitOnError)
	docPath := fs.String("doc", "", "markdown document to insert links into")
	line := fs.Int("line", -1, "caret line (0-based, default: end of document)")
	col := fs.Int("col", 0, "caret column (0-based)")
	cfgPath := fs.String("c", "", "settings file (default $MARKDROP_SETTINGS or markdrop.yaml)")
	level := fs.String("log", "info", "log level (debug, info, warn, error)")
	_ = fs.Parse(args)

	if *docPath == "" || fs.NArg() == 0 {
		usage()
		return fmt.Errorf("drop requires -doc and at least one file")
	}

	log := logger.New(&logger.Config{Level: *level, Format: "console", Output: os.Stderr})

	store, err := settings.NewStore(settingsPath(*cfgPath))
	if err != nil {
		return err
	}

	host, err := newCLIHost(*docPath, *line, *col)
	if err != nil {
		return err
	}

	ev, err := host.readEvent(fs.Args())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe := pipeline.New(store, minio.New, log)
	interceptor := host.interceptor(pipe)
	if handled := interceptor.OnDrop(ctx, ev); !handled {
		fmt.Fprintln(os.Stderr, "no image files in drop, nothing to do")
		return nil
	}

	return host.flush()
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8087", "listen address for the settings surface")
	cfgPath := fs.String("c", "", "settings file (default $MARKDROP_SETTINGS or markdrop.yaml)")
	level := fs.String("log", "info", "log level (debug, info, warn, error)")
	_ = fs.Parse(args)

	log := logger.New(&logger.Config{Level: *level, Format: "json", Output: os.Stderr})

	store, err := settings.NewStore(settingsPath(*cfgPath))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      settingsui.NewServer(store, minio.New, log).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("settings surface listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server error: %s", err)
		}
	}()

	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
