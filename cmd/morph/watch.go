package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vcrobe/morph/config"
	"github.com/vcrobe/morph/errors"
	"github.com/vcrobe/morph/events"
	"github.com/vcrobe/morph/metrics"
	"github.com/vcrobe/morph/runtime"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the page whenever a data file or template changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var m *metrics.Metrics
		if cfg.MetricsAddr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m = metrics.New(reg)
			srv := serveMetrics(cfg.MetricsAddr, reg, logger)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		loop := runtime.NewLoop(
			runtime.WithInterval(time.Duration(cfg.FrameInterval)),
			runtime.WithLoopLogger(logger))

		p, err := loadPage(cfg, loop, m, logger)
		if err != nil {
			return err
		}
		defer m.ObserveDocument(p.doc)()

		out := &outputWriter{page: p, sched: loop, path: cfg.Output, stdout: cmd.OutOrStdout(), logger: logger}
		p.doc.Events().On(events.Render, func(*events.Event) { out.schedule() })

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		for _, dir := range p.watchDirs() {
			if err := watcher.Add(dir); err != nil {
				return err
			}
			logger.Debug("watching", "dir", dir)
		}

		go p.watchFiles(ctx, watcher, loop)

		logger.Info("morph watching", "page", cfg.Page, "components", len(p.components))
		if err := loop.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("morph stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

// outputWriter coalesces the render events of one frame into a single write.
type outputWriter struct {
	page    *page
	sched   runtime.Scheduler
	path    string
	stdout  io.Writer
	logger  *slog.Logger
	pending bool
}

func (w *outputWriter) schedule() {
	if w.pending {
		return
	}
	w.pending = true
	w.sched.RequestFrame(func() {
		w.pending = false
		if err := w.page.writeOutput(w.path, w.stdout); err != nil {
			w.logger.Error("write output failed", "path", w.path, "err", err)
			return
		}
		w.logger.Debug("page written", "path", w.path)
	})
}

// poster runs functions on the document-owning goroutine.
type poster interface {
	Post(fn func()) bool
}

// watchDirs returns the directories holding data files and templates.
// Directories are watched instead of files so editors that replace files
// by rename are still seen.
func (p *page) watchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(path string) {
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for path := range p.storeFiles {
		add(path)
	}
	for _, c := range p.components {
		add(c.cfg.Template)
	}
	return dirs
}

func (p *page) watchFiles(ctx context.Context, watcher *fsnotify.Watcher, loop poster) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			p.handleFileEvent(ev, loop)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("watch error", "err", err)
		}
	}
}

// handleFileEvent reloads whatever was read from ev.Name. File I/O happens
// on the calling goroutine; the document is only touched inside loop.Post.
// Files that fail to load are reported and the previous data or template
// stays in place.
func (p *page) handleFileEvent(ev fsnotify.Event, loop poster) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	if s, ok := p.storeFor(ev.Name); ok {
		data, err := config.LoadData(ev.Name)
		if err != nil {
			errors.Report(&errors.Error{Op: "main.reloadStore", Kind: errors.KindStore, Err: err})
			return
		}
		p.logger.Info("data changed", "store", s.Namespace(), "file", ev.Name)
		loop.Post(func() { s.Replace(data) })
		return
	}

	comps := p.componentsUsing(ev.Name)
	if len(comps) == 0 {
		return
	}
	tmpl, err := parseTemplate(ev.Name)
	if err != nil {
		errors.Report(&errors.Error{Op: "main.reloadTemplate", Kind: errors.KindParse, Err: err})
		return
	}
	p.logger.Info("template changed", "file", ev.Name, "components", len(comps))
	loop.Post(func() {
		for _, c := range comps {
			c.tmpl = tmpl
			c.ctrl.Render()
		}
	})
}
