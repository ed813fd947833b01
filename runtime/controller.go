// Package runtime binds templates to live mounts. A Controller re-renders
// its mount whenever one of its stores announces a change, coalescing any
// number of changes into a single frame.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/errors"
	"github.com/vcrobe/morph/events"
	"github.com/vcrobe/morph/metrics"
	"github.com/vcrobe/morph/vdom"
)

// Template produces the HTML for one render.
type Template func() (string, error)

// State is the render state of a Controller.
type State int32

const (
	// StateIdle means no frame is pending.
	StateIdle State = iota
	// StateScheduled means a frame is pending.
	StateScheduled
	// StateRendering means the template or the patch is running.
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRendering:
		return "rendering"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Controller renders a template into a mount on demand and whenever a
// watched store changes.
type Controller struct {
	doc         *dom.Document
	mount       vdom.Mount
	template    Template
	stores      []string
	allowEvents bool
	scheduler   Scheduler
	logger      *slog.Logger
	metrics     *metrics.Metrics
	name        string

	mu       sync.Mutex
	pending  *frameRequest
	state    State
	removers []func()
}

// frameRequest is the token a frame callback compares against the pending
// request. id is only read and written under Controller.mu.
type frameRequest struct {
	id FrameID
}

// New creates a controller, requests the first render and starts listening
// for store changes on the document.
//
// Without WithScheduler, frames run on the shared scheduler returned by
// DefaultScheduler: on timer goroutines, one frame at a time across every
// controller using it. Anything else that touches doc must then run inside
// a template or a frame; otherwise pass a Loop and Post to it.
func New(doc *dom.Document, mount vdom.Mount, template Template, opts ...Option) *Controller {
	c := &Controller{
		doc:      doc,
		mount:    mount,
		template: template,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scheduler == nil {
		c.scheduler = DefaultScheduler()
	}
	if c.logger == nil {
		c.logger = console.Logger()
	}
	if c.name == "" {
		c.name = mount.String()
	}

	c.Render()
	c.Start()
	return c
}

// Name returns the label used in logs and metrics.
func (c *Controller) Name() string {
	return c.name
}

// State returns the current render state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Events returns the store event types the controller listens for.
func (c *Controller) Events() []string {
	if len(c.stores) == 0 {
		return []string{events.StoreChange}
	}
	names := make([]string, len(c.stores))
	for i, s := range c.stores {
		names[i] = events.StoreEventName(s)
	}
	return names
}

// Start listens for store changes. Calling Start on a started controller
// does nothing.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removers != nil {
		return
	}
	for _, name := range c.Events() {
		c.removers = append(c.removers, c.doc.Events().On(name, c.handle))
	}
	c.logger.Debug("controller started", "component", c.name, "events", c.Events())
}

// Stop removes the store listeners. A frame already requested still runs.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, remove := range c.removers {
		remove()
	}
	c.removers = nil
	c.logger.Debug("controller stopped", "component", c.name)
}

func (c *Controller) handle(*events.Event) {
	c.Render()
}

// Render requests a frame, replacing any frame already pending so that
// several requests in one frame produce a single render.
func (c *Controller) Render() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.scheduler.CancelFrame(c.pending.id)
		c.metrics.FrameCoalesced(c.name)
	}
	req := &frameRequest{}
	req.id = c.scheduler.RequestFrame(func() { c.frame(req) })
	c.pending = req
	if c.state == StateIdle {
		c.state = StateScheduled
	}
}

func (c *Controller) frame(req *frameRequest) {
	c.mu.Lock()
	if c.pending != req {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.state = StateRendering
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.pending != nil {
			c.state = StateScheduled
		} else {
			c.state = StateIdle
		}
		c.mu.Unlock()
	}()

	start := time.Now()
	src, err := c.template()
	if err != nil {
		c.metrics.RenderFailed(c.name)
		errors.Report(&errors.Error{
			Op:        "runtime.Controller.render",
			Kind:      errors.KindTemplate,
			Err:       err,
			Component: c.name,
		})
		return
	}

	mount, err := c.mount.Resolve(c.doc)
	if err != nil {
		c.metrics.RenderFailed(c.name)
		errors.Report(&errors.Error{
			Op:        "runtime.Controller.render",
			Kind:      errors.KindMount,
			Err:       err,
			Component: c.name,
		})
		return
	}
	if mount == nil {
		c.logger.Debug("mount not found, render skipped", "component", c.name, "mount", c.mount.String())
		return
	}

	vdom.RenderTo(c.doc, mount, src, c.allowEvents)
	elapsed := time.Since(start)
	c.metrics.RenderDone(c.name, elapsed)
	c.logger.Debug("rendered", "component", c.name, "duration", elapsed)
}
