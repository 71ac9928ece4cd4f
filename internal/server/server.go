// Package server wires the book reader together: the JSON API the UI
// consumes, the embedded UI assets, the live-reload socket, and a
// separate-origin file server for raw chapter assets.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fasmbook/internal/book"
	"fasmbook/internal/render"
	"fasmbook/internal/search"
	"fasmbook/internal/util"
	"fasmbook/internal/watch"
	"fasmbook/internal/web"
)

type Options struct {
	Root string
	Log  *slog.Logger

	// AssetHost/AssetPort control the separate server that serves raw
	// book files (images, downloads). Raw book content stays on a
	// different origin than the reader UI and its API.
	//
	// If AssetPort is 0, an available port is chosen.
	AssetHost string
	AssetPort int
}

type Server struct {
	rootAbs  string
	log      *slog.Logger
	cfg      book.Config
	renderer *render.Renderer
	hub      *watch.Hub
	watcher  *watch.Watcher

	assetBaseURL string
	assetSrv     *http.Server
	assetLn      net.Listener
}

func New(opts Options) (*Server, error) {
	rootAbs, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	if opts.AssetHost == "" {
		opts.AssetHost = "127.0.0.1"
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	cfg, err := book.LoadConfig(rootAbs)
	if err != nil {
		return nil, err
	}

	hub := watch.NewHub()
	w, err := watch.NewWatcher(rootAbs, hub, opts.Log)
	if err != nil {
		return nil, err
	}

	r, err := render.New(render.Options{
		BookRootAbs: rootAbs,
		Markdown:    cfg.Render.MarkdownOptions(),
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	s := &Server{
		rootAbs:  rootAbs,
		log:      opts.Log,
		cfg:      cfg,
		renderer: r,
		hub:      hub,
		watcher:  w,
	}

	if err := s.startAssetServer(opts.AssetHost, opts.AssetPort); err != nil {
		_ = w.Close()
		return nil, err
	}

	return s, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.assetSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.assetSrv.Shutdown(ctx)
	}
	if s.assetLn != nil {
		_ = s.assetLn.Close()
	}
	return nil
}

func (s *Server) AssetBaseURL() string {
	return s.assetBaseURL
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Reader UI assets (embedded).
	mux.Handle("/app/", http.StripPrefix("/app/", http.FileServer(web.FS())))

	// Raw book assets; the handler redirects to the separate origin.
	mux.HandleFunc("/asset/", s.handleAssetRedirect)

	// API
	mux.HandleFunc("/api/book", s.handleBook)
	mux.HandleFunc("/api/tree", s.handleTree)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/search", s.handleSearch)

	// WebSocket
	mux.HandleFunc("/ws", s.hub.ServeWS)

	// Client routes
	mux.HandleFunc("/chapter/", s.handleIndex)
	mux.HandleFunc("/", s.handleIndex)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) startAssetServer(host string, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}

	s.assetLn = ln
	s.assetBaseURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	assetMux := http.NewServeMux()
	assetMux.HandleFunc("/", s.handleAssetDirect)

	srv := &http.Server{
		Handler:      assetMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.assetSrv = srv

	go func() {
		_ = srv.Serve(ln)
	}()

	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	web.ServeIndex(w, r)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chapters, err := book.ListChapters(s.rootAbs, s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		Title    string         `json:"title"`
		Author   string         `json:"author,omitempty"`
		Chapters []book.Chapter `json:"chapters"`
	}{Title: s.cfg.Title, Author: s.cfg.Author, Chapters: chapters})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tree, err := book.BuildTree(s.rootAbs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, tree)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query().Get("path")
	if q == "" {
		// Default to the first chapter in reading order.
		chapters, err := book.ListChapters(s.rootAbs, s.cfg)
		if err != nil || len(chapters) == 0 {
			http.Error(w, "book has no chapters", http.StatusNotFound)
			return
		}
		q = chapters[0].Path
	}

	// Accept either URL-escaped or raw.
	if unesc, err := url.PathUnescape(q); err == nil {
		q = unesc
	}

	resolved, err := util.ResolveChapterRel(s.rootAbs, q)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	res, err := s.renderer.RenderFile(resolved.Rel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := search.Chapters(s.rootAbs, r.URL.Query().Get("q"), 200)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, res)
}

func (s *Server) handleAssetRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel := cleanURLPath(strings.TrimPrefix(r.URL.Path, "/asset/"))

	if s.assetLn == nil || s.assetBaseURL == "" {
		http.Error(w, "asset server not available", http.StatusServiceUnavailable)
		return
	}

	u, _ := url.Parse(s.assetBaseURL)
	u.Path = "/" + rel
	u.RawQuery = r.URL.RawQuery
	// Permanent redirect is safe since the chosen port is stable for the
	// process.
	http.Redirect(w, r, u.String(), http.StatusPermanentRedirect)
}

func (s *Server) handleAssetDirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel := cleanURLPath(strings.TrimPrefix(r.URL.Path, "/"))

	abs, _, err := util.ResolveBookPath(s.rootAbs, rel)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	// No directory listings.
	if st, err := util.Stat(abs); err != nil || st.IsDir() {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	// Light caching; live reload refreshes content anyway.
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, abs)
}

func cleanURLPath(rel string) string {
	rel, _ = url.PathUnescape(rel)
	rel = path.Clean("/" + rel)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "." {
		rel = ""
	}
	return rel
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
