package security

// Event is the security domain's outbound event union.
type Event interface {
	Kind() string
}

type MotionDetected struct {
	Zone      string `json:"zone"`
	Timestamp int64  `json:"timestamp"`
	Camera    string `json:"camera"`
	Sensor    string `json:"sensor"`
}

func (MotionDetected) Kind() string { return "motion_detected" }

type NewAlert struct {
	Alert
}

func (NewAlert) Kind() string { return "new_alert" }

type AlertUpdated struct {
	Alert
}

func (AlertUpdated) Kind() string { return "alert_updated" }
