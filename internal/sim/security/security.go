package security

import (
	"time"

	"github.com/google/uuid"
)

// RecordingClearDelay is how long a zone must stay motion-free before its
// camera stops recording.
const RecordingClearDelay = 30 * time.Second

type Camera struct {
	ID         string
	Zone       string
	Active     bool
	Recording  bool
	LastMotion time.Time
}

type MotionSensor struct {
	ID          string
	Zone        string
	Active      bool
	LastTrigger time.Time
}

type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
)

type Alert struct {
	ID             string      `json:"id"`
	Kind           string      `json:"type"`
	Zone           string      `json:"zone"`
	Severity       string      `json:"severity"`
	Message        string      `json:"message"`
	Status         AlertStatus `json:"status"`
	Timestamp      int64       `json:"timestamp"`
	AcknowledgedAt int64       `json:"acknowledgedAt,omitempty"`
}

// Domain holds per-zone camera and motion-sensor state plus the alert set.
// Alerts are append-only for the process lifetime; acknowledge is the only
// mutation.
type Domain struct {
	cameras map[string]*Camera
	sensors map[string]*MotionSensor
	alerts  map[string]*Alert
	order   []string // alert ids in creation order

	// clearAt holds, per zone, the armed deadline after which a motion-free
	// camera stops recording. Any motion cancels the deadline, so a stale
	// timer can never clear a recording that restarted.
	clearAt map[string]time.Time

	now func() time.Time
}

func New(zoneIDs []string, now func() time.Time) *Domain {
	d := &Domain{
		cameras: make(map[string]*Camera, len(zoneIDs)),
		sensors: make(map[string]*MotionSensor, len(zoneIDs)),
		alerts:  make(map[string]*Alert),
		clearAt: make(map[string]time.Time),
		now:     now,
	}
	for _, zone := range zoneIDs {
		d.cameras[zone] = &Camera{ID: "cam_" + zone, Zone: zone, Active: true}
		d.sensors[zone] = &MotionSensor{ID: "motion_" + zone, Zone: zone, Active: true}
	}
	return d
}

// ReportMotion feeds one motion reading into the zone's state machine.
// Unknown zones are ignored and report ok=false.
func (d *Domain) ReportMotion(zone string, value float64) (events []Event, ok bool) {
	cam := d.cameras[zone]
	sensor := d.sensors[zone]
	if cam == nil || sensor == nil {
		return nil, false
	}

	if value > 0 {
		ts := d.now()
		cam.LastMotion = ts
		sensor.LastTrigger = ts
		cam.Recording = true
		delete(d.clearAt, zone)

		events = append(events, MotionDetected{
			Zone:      zone,
			Timestamp: ts.UnixMilli(),
			Camera:    cam.ID,
			Sensor:    sensor.ID,
		})
		alert := d.createAlert(zone, "motion", "medium", "Motion detected in zone "+zone)
		events = append(events, NewAlert{Alert: *alert})
		return events, true
	}

	// No motion: arm the clear deadline once; it stays armed until either
	// the deadline passes (Sweep) or motion cancels it.
	if cam.Recording {
		if _, armed := d.clearAt[zone]; !armed {
			d.clearAt[zone] = d.now().Add(RecordingClearDelay)
		}
	}
	return nil, true
}

// Sweep clears recording on every camera whose motion-free deadline passed.
// Called from the sensor tick.
func (d *Domain) Sweep() {
	now := d.now()
	for zone, deadline := range d.clearAt {
		if now.Before(deadline) {
			continue
		}
		if cam := d.cameras[zone]; cam != nil {
			cam.Recording = false
		}
		delete(d.clearAt, zone)
	}
}

func (d *Domain) createAlert(zone, kind, severity, message string) *Alert {
	a := &Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		Zone:      zone,
		Severity:  severity,
		Message:   message,
		Status:    AlertActive,
		Timestamp: d.now().UnixMilli(),
	}
	d.alerts[a.ID] = a
	d.order = append(d.order, a.ID)
	return a
}

// Acknowledge transitions an alert active -> acknowledged. The ok result
// distinguishes applied from ignored (unknown id).
func (d *Domain) Acknowledge(id string) (Event, bool) {
	a := d.alerts[id]
	if a == nil {
		return nil, false
	}
	a.Status = AlertAcknowledged
	a.AcknowledgedAt = d.now().UnixMilli()
	return AlertUpdated{Alert: *a}, true
}

func (d *Domain) Alert(id string) (Alert, bool) {
	a := d.alerts[id]
	if a == nil {
		return Alert{}, false
	}
	return *a, true
}

func (d *Domain) Camera(zone string) (Camera, bool) {
	c := d.cameras[zone]
	if c == nil {
		return Camera{}, false
	}
	return *c, true
}

// ClearArmed reports whether a recording-clear deadline is armed for zone.
func (d *Domain) ClearArmed(zone string) bool {
	_, armed := d.clearAt[zone]
	return armed
}
