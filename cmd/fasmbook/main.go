package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/browser"
	flag "github.com/spf13/pflag"

	"fasmbook/internal/server"
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: fasmbook <dir> [--host HOST] [--port PORT] [--no-open]\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Serves a Markdown book directory as a local reader with live reload.\n")
		flag.PrintDefaults()
	}

	host := flag.String("host", "127.0.0.1", "host/interface to bind to")
	port := flag.Int("port", 0, "port to listen on (0 = auto)")
	noOpen := flag.Bool("no-open", false, "do not open the browser automatically")
	verbose := flag.BoolP("verbose", "v", false, "log every request")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	root, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fatal(err)
	}
	st, err := os.Stat(root)
	if err != nil {
		fatal(err)
	}
	if !st.IsDir() {
		fatal(errors.New("path must be a directory"))
	}

	s, err := server.New(server.Options{Root: root, Log: log})
	if err != nil {
		fatal(err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		fatal(err)
	}
	url := fmt.Sprintf("http://%s/", ln.Addr().String())

	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(err)
		}
	}()

	fmt.Printf("fasmbook: serving %s\n", root)
	fmt.Printf("fasmbook: open %s\n", url)
	if assets := s.AssetBaseURL(); assets != "" {
		fmt.Printf("fasmbook: book assets %s\n", assets)
	}
	if !*noOpen {
		_ = browser.OpenURL(url)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	_ = s.Close()
}

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "fasmbook: %v\n", err)
	os.Exit(1)
}
