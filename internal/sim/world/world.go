package world

import (
	"log"
	"math/rand"
	"time"

	"retailtwin.io/internal/sim/customers"
	"retailtwin.io/internal/sim/inventory"
	"retailtwin.io/internal/sim/layout"
	"retailtwin.io/internal/sim/security"
	"retailtwin.io/internal/sim/sensors"
	"retailtwin.io/internal/sim/tuning"
	"retailtwin.io/internal/sim/zones"
)

type Config struct {
	Tuning tuning.Tuning
	Logger *log.Logger

	// Now is the simulation clock; nil means time.Now. Injected by tests.
	Now func() time.Time

	// Sinks receive every broadcast frame off the sim's semantic path.
	Sinks []EventSink
}

// JoinRequest registers a connection with the fan-out set. The initial_data
// frame is queued on Out before any event frame.
type JoinRequest struct {
	ConnID string
	Out    chan []byte
}

// CommandEnvelope is one parsed inbound frame routed to the world goroutine.
type CommandEnvelope struct {
	ConnID string
	Type   string
	Raw    []byte
}

// EventSink observes broadcast events (journal, index). Sinks are called
// from the world goroutine and must not block for long.
type EventSink interface {
	WriteEvent(e SinkEntry) error
}

type SinkEntry struct {
	Timestamp int64  `json:"timestamp"`
	Envelope  string `json:"envelope"`
	Event     string `json:"event,omitempty"`
	Data      any    `json:"data"`
}

// World is the single-threaded authoritative simulation. All domain state
// must be accessed only from the world loop goroutine.
type World struct {
	cfg    Config
	logger *log.Logger
	now    func() time.Time
	rng    *rand.Rand

	registry  *zones.Registry
	sensors   *sensors.Manager
	security  *security.Domain
	inventory *inventory.Domain
	customers *customers.Domain
	layout    *layout.Domain

	clients map[string]*clientState

	join  chan JoinRequest
	leave chan string
	inbox chan CommandEnvelope
	stop  chan struct{}
}

type clientState struct {
	Out chan []byte
}

func New(cfg Config) *World {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	rng := rand.New(rand.NewSource(cfg.Tuning.Seed))

	zoneSpecs := make([]zones.Spec, 0, len(cfg.Tuning.Zones))
	for _, z := range cfg.Tuning.Zones {
		zoneSpecs = append(zoneSpecs, zones.Spec{ID: z.ID, Width: z.Width, Length: z.Length, Height: z.Height})
	}
	registry := zones.NewRegistry(zoneSpecs, now())
	zoneIDs := registry.IDs()

	patterns := make([]customers.Pattern, 0, len(cfg.Tuning.Patterns))
	for _, p := range cfg.Tuning.Patterns {
		patterns = append(patterns, customers.Pattern{
			Name:                   p.Name,
			AvgTimeInStore:         time.Duration(p.AvgTimeInStoreMs) * time.Millisecond,
			InteractionProbability: p.InteractionProbability,
			PurchaseProbability:    p.PurchaseProbability,
		})
	}

	return &World{
		cfg:       cfg,
		logger:    cfg.Logger,
		now:       now,
		rng:       rng,
		registry:  registry,
		sensors:   sensors.New(zoneIDs, rng, now),
		security:  security.New(zoneIDs, now),
		inventory: inventory.New(zoneIDs, now),
		customers: customers.New(zoneIDs, patterns, rng, now),
		layout:    layout.New(registry, now),
		clients:   make(map[string]*clientState),
		join:      make(chan JoinRequest, 16),
		leave:     make(chan string, 16),
		inbox:     make(chan CommandEnvelope, 64),
		stop:      make(chan struct{}),
	}
}

func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }
func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }

func (w *World) Stop() { close(w.stop) }

// Zones returns the zone ids in declaration order.
func (w *World) Zones() []string { return w.registry.IDs() }

// Domain accessors for tests and read-only callers. Mutations must stay on
// the world goroutine.
func (w *World) Security() *security.Domain   { return w.security }
func (w *World) Inventory() *inventory.Domain { return w.inventory }
func (w *World) Customers() *customers.Domain { return w.customers }
func (w *World) Layout() *layout.Domain       { return w.layout }
func (w *World) Sensors() *sensors.Manager    { return w.sensors }
