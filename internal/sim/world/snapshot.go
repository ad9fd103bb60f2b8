package world

import (
	"retailtwin.io/internal/protocol"
	"retailtwin.io/internal/sim/customers"
	"retailtwin.io/internal/sim/inventory"
	"retailtwin.io/internal/sim/layout"
	"retailtwin.io/internal/sim/security"
	"retailtwin.io/internal/sim/sensors"
)

// SnapshotData is the merged state of every domain, sent as initial_data on
// connect and as status_update on each sensor tick.
type SnapshotData struct {
	Temperature map[string]sensors.ReadingStatus `json:"temperature"`
	Humidity    map[string]sensors.ReadingStatus `json:"humidity"`
	Pressure    map[string]sensors.ReadingStatus `json:"pressure"`
	Motion      map[string]sensors.ReadingStatus `json:"motion"`
	Stock       map[string]sensors.ReadingStatus `json:"stock"`

	Security  security.Status     `json:"security"`
	Inventory inventory.Status    `json:"inventory"`
	Customers customers.Analytics `json:"customers"`
	Layout    layout.Status       `json:"layout"`
}

func (w *World) snapshotData() SnapshotData {
	byKind := w.sensors.Snapshot()
	return SnapshotData{
		Temperature: byKind[string(sensors.Temperature)],
		Humidity:    byKind[string(sensors.Humidity)],
		Pressure:    byKind[string(sensors.Pressure)],
		Motion:      byKind[string(sensors.Motion)],
		Stock:       byKind[string(sensors.Stock)],
		Security:    w.security.Snapshot(),
		Inventory:   w.inventory.Snapshot(),
		Customers:   w.customers.Snapshot(),
		Layout:      w.layout.Snapshot(),
	}
}

func (w *World) initialData() protocol.InitialDataMsg {
	return protocol.InitialDataMsg{
		Type: protocol.TypeInitialData,
		Data: w.snapshotData(),
	}
}
