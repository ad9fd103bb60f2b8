package world

import (
	"context"
	"time"
)

// Run drives the four simulation tick sources and drains the connection
// channels. Everything runs on this one goroutine; tick handlers must stay
// short and non-blocking.
func (w *World) Run(ctx context.Context) error {
	sensorTicker := time.NewTicker(w.cfg.Tuning.UpdateInterval())
	customerTicker := time.NewTicker(w.cfg.Tuning.CustomerInterval())
	predictionTicker := time.NewTicker(w.cfg.Tuning.StockPredictionInterval())
	layoutTicker := time.NewTicker(w.cfg.Tuning.LayoutValidationInterval())
	defer sensorTicker.Stop()
	defer customerTicker.Stop()
	defer predictionTicker.Stop()
	defer layoutTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case id := <-w.leave:
			w.handleLeave(id)
		case env := <-w.inbox:
			w.safeTick("command", func() { w.dispatch(env) })
		case <-sensorTicker.C:
			w.safeTick("sensor", w.SensorTick)
		case <-customerTicker.C:
			w.safeTick("customer", w.CustomerTick)
		case <-predictionTicker.C:
			w.safeTick("prediction", w.PredictionTick)
		case <-layoutTicker.C:
			w.safeTick("layout", w.LayoutTick)
		}
	}
}

// safeTick isolates one tick invocation so a panic in one domain cannot
// stop the other domains' ticks.
func (w *World) safeTick(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Printf("tick %s: recovered: %v", name, r)
		}
	}()
	fn()
}

func (w *World) handleJoin(req JoinRequest) {
	w.sendTo(req.Out, w.initialData())
	w.clients[req.ConnID] = &clientState{Out: req.Out}
	w.logger.Printf("conn %s joined (%d open)", req.ConnID, len(w.clients))
}

func (w *World) handleLeave(connID string) {
	if _, ok := w.clients[connID]; !ok {
		return
	}
	delete(w.clients, connID)
	w.logger.Printf("conn %s left (%d open)", connID, len(w.clients))
}

// SensorTick perturbs all readings, feeds motion into the security domain,
// sweeps recording-clear deadlines, and broadcasts a full status_update.
func (w *World) SensorTick() {
	motions := w.sensors.Tick()
	for _, m := range motions {
		events, _ := w.security.ReportMotion(m.Zone, m.Value)
		for _, ev := range events {
			w.broadcastSecurityEvent(ev)
		}
	}
	w.security.Sweep()
	w.broadcastStatusUpdate()
}

// CustomerTick runs one autonomous behavior step: random arrivals, per-agent
// interaction and purchase trials, random movement and departures.
func (w *World) CustomerTick() {
	zoneIDs := w.registry.IDs()
	if len(zoneIDs) == 0 {
		return
	}

	if w.rng.Float64() < 0.3 {
		agent, ev := w.customers.Spawn()
		w.broadcastCustomerEvent(ev)
		if moveEv, ok := w.customers.Move(agent.ID, zoneIDs[w.rng.Intn(len(zoneIDs))]); ok {
			w.broadcastCustomerEvent(moveEv)
		}
	}

	for _, agent := range w.customers.Active() {
		if ev, ok := w.customers.Interact(agent.ID); ok && ev != nil {
			w.broadcastCustomerEvent(ev)
		}
		if ev, ok := w.customers.Purchase(agent.ID); ok && ev != nil {
			w.broadcastCustomerEvent(ev)
		}
		if w.rng.Float64() < 0.2 {
			next := zoneIDs[w.rng.Intn(len(zoneIDs))]
			if next != agent.CurrentZone {
				if ev, ok := w.customers.Move(agent.ID, next); ok {
					w.broadcastCustomerEvent(ev)
				}
			}
		}
		if w.rng.Float64() < 0.1 {
			if ev, ok := w.customers.Depart(agent.ID); ok {
				w.broadcastCustomerEvent(ev)
			}
		}
	}
}

// PredictionTick runs usage prediction over every product.
func (w *World) PredictionTick() {
	for _, ev := range w.inventory.PredictAll() {
		w.broadcastInventoryEvent(ev)
	}
}

// LayoutTick validates evacuation routes for every zone and broadcasts a
// warning for each failure.
func (w *World) LayoutTick() {
	for _, zoneID := range w.registry.IDs() {
		validation, ok := w.layout.ValidateEvacuationRoutes(zoneID)
		if !ok || validation.HasValidRoutes {
			continue
		}
		w.broadcastLayoutWarning(zoneID, validation)
	}
}
