// Package metrics exposes prometheus collectors for renders, document
// mutations and store notifications.
//
// A nil *Metrics is valid; every method on it is a no-op.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vcrobe/morph/dom"
)

// Metrics groups the collectors recorded by controllers and stores.
type Metrics struct {
	renders            *prometheus.CounterVec
	renderDuration     *prometheus.HistogramVec
	renderErrors       *prometheus.CounterVec
	framesCoalesced    *prometheus.CounterVec
	mutations          *prometheus.CounterVec
	storeNotifications *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is useful in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "morph_renders_total",
				Help: "Total number of completed render passes",
			},
			[]string{"component"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "morph_render_duration_seconds",
				Help:    "Duration of render passes, template included",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"component"},
		),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "morph_render_errors_total",
				Help: "Total number of render passes whose template failed",
			},
			[]string{"component"},
		),
		framesCoalesced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "morph_frames_coalesced_total",
				Help: "Render requests folded into an already pending frame",
			},
			[]string{"component"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "morph_dom_mutations_total",
				Help: "Mutations applied to the live document",
			},
			[]string{"kind"},
		),
		storeNotifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "morph_store_notifications_total",
				Help: "Change notifications dispatched by stores",
			},
			[]string{"event"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.renders,
			m.renderDuration,
			m.renderErrors,
			m.framesCoalesced,
			m.mutations,
			m.storeNotifications,
		)
	}
	return m
}

// RenderDone records a completed render pass.
func (m *Metrics) RenderDone(component string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(component).Inc()
	m.renderDuration.WithLabelValues(component).Observe(d.Seconds())
}

// RenderFailed records a render pass whose template returned an error.
func (m *Metrics) RenderFailed(component string) {
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(component).Inc()
}

// FrameCoalesced records a render request that replaced a pending frame.
func (m *Metrics) FrameCoalesced(component string) {
	if m == nil {
		return
	}
	m.framesCoalesced.WithLabelValues(component).Inc()
}

// StoreNotified records a store change notification.
func (m *Metrics) StoreNotified(event string) {
	if m == nil {
		return
	}
	m.storeNotifications.WithLabelValues(event).Inc()
}

// Mutation records one mutation of the given kind.
func (m *Metrics) Mutation(kind dom.MutationKind) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind.String()).Inc()
}

// ObserveDocument counts every mutation of doc until stop is called.
func (m *Metrics) ObserveDocument(doc *dom.Document) (stop func()) {
	if m == nil {
		return func() {}
	}
	return doc.Observe(func(r dom.MutationRecord) {
		m.Mutation(r.Kind)
	})
}
