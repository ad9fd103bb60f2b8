package security

// Status is the wire view of the security domain, merged into snapshots.
type Status struct {
	Cameras       map[string]CameraStatus       `json:"cameras"`
	MotionSensors map[string]MotionSensorStatus `json:"motionSensors"`
	ActiveAlerts  []Alert                       `json:"activeAlerts"`
}

type CameraStatus struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Recording  bool   `json:"recording"`
	Zone       string `json:"zone"`
	LastMotion int64  `json:"lastMotion,omitempty"`
}

type MotionSensorStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Zone        string `json:"zone"`
	LastTrigger int64  `json:"lastTrigger,omitempty"`
}

func (d *Domain) Snapshot() Status {
	s := Status{
		Cameras:       make(map[string]CameraStatus, len(d.cameras)),
		MotionSensors: make(map[string]MotionSensorStatus, len(d.sensors)),
		ActiveAlerts:  []Alert{},
	}
	for zone, c := range d.cameras {
		cs := CameraStatus{ID: c.ID, Status: statusText(c.Active), Recording: c.Recording, Zone: zone}
		if !c.LastMotion.IsZero() {
			cs.LastMotion = c.LastMotion.UnixMilli()
		}
		s.Cameras[c.ID] = cs
	}
	for zone, m := range d.sensors {
		ms := MotionSensorStatus{ID: m.ID, Status: statusText(m.Active), Zone: zone}
		if !m.LastTrigger.IsZero() {
			ms.LastTrigger = m.LastTrigger.UnixMilli()
		}
		s.MotionSensors[m.ID] = ms
	}
	for _, id := range d.order {
		if a := d.alerts[id]; a != nil && a.Status == AlertActive {
			s.ActiveAlerts = append(s.ActiveAlerts, *a)
		}
	}
	return s
}

func statusText(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
