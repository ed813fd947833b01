package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vcrobe/morph/config"
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/metrics"
	"github.com/vcrobe/morph/runtime"
	"github.com/vcrobe/morph/store"
	"github.com/vcrobe/morph/vdom"
)

// page is a loaded document with its stores and render controllers.
type page struct {
	cfg        *config.Config
	doc        *dom.Document
	stores     map[string]*store.Store
	storeFiles map[string]string
	components []*component
	logger     *slog.Logger
}

type component struct {
	cfg  config.ComponentConfig
	tmpl *template.Template
	ctrl *runtime.Controller
}

// loadPage parses the page, loads every store and attaches one controller
// per component. Renders are requested on sched.
func loadPage(cfg *config.Config, sched runtime.Scheduler, m *metrics.Metrics, logger *slog.Logger) (*page, error) {
	f, err := os.Open(cfg.Page)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", cfg.Page, err)
	}

	p := &page{
		cfg:        cfg,
		doc:        doc,
		stores:     make(map[string]*store.Store),
		storeFiles: make(map[string]string),
		logger:     logger,
	}

	for _, sc := range cfg.Stores {
		data := map[string]any{}
		if sc.Data != "" {
			data, err = config.LoadData(sc.Data)
			if err != nil {
				return nil, fmt.Errorf("store %s: %w", sc.Name, err)
			}
			p.storeFiles[filepath.Clean(sc.Data)] = sc.Name
		}
		p.stores[sc.Name] = store.New(data, sc.Name,
			store.WithSink(doc),
			store.WithLogger(logger),
			store.WithMetrics(m))
	}

	for _, cc := range cfg.Components {
		tmpl, err := parseTemplate(cc.Template)
		if err != nil {
			return nil, err
		}
		comp := &component{cfg: cc, tmpl: tmpl}
		name := cc.Name
		if name == "" {
			name = cc.Mount
		}
		comp.ctrl = runtime.New(doc, vdom.Selector(cc.Mount), func() (string, error) {
			return p.execute(comp.tmpl)
		},
			runtime.WithStores(cc.Stores...),
			runtime.WithInlineEvents(cc.AllowInlineEvents),
			runtime.WithScheduler(sched),
			runtime.WithLogger(logger),
			runtime.WithMetrics(m),
			runtime.WithName(name))
		p.components = append(p.components, comp)
	}

	logger.Debug("page loaded", "page", cfg.Page, "stores", len(p.stores), "components", len(p.components))
	return p, nil
}

func parseTemplate(path string) (*template.Template, error) {
	tmpl, err := template.New(filepath.Base(path)).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tmpl, nil
}

// data returns the snapshots of all stores keyed by store name.
func (p *page) data() map[string]any {
	data := make(map[string]any, len(p.stores))
	for name, s := range p.stores {
		data[name] = s.Snapshot()
	}
	return data
}

func (p *page) execute(tmpl *template.Template) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p.data()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// storeFor returns the store loaded from path.
func (p *page) storeFor(path string) (*store.Store, bool) {
	name, ok := p.storeFiles[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return p.stores[name], true
}

// componentsUsing returns the components rendered from the template at path.
func (p *page) componentsUsing(path string) []*component {
	var out []*component
	for _, c := range p.components {
		if filepath.Clean(c.cfg.Template) == filepath.Clean(path) {
			out = append(out, c)
		}
	}
	return out
}

// write serializes the page to w.
func (p *page) write(w io.Writer) error {
	_, err := p.doc.WriteTo(w)
	return err
}

// writeOutput writes the page to path, or to stdout when path is empty.
// Files are replaced atomically.
func (p *page) writeOutput(path string, stdout io.Writer) error {
	if path == "" {
		return p.write(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".morph-*.html")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := p.write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
