package layout

// Event is the layout domain's outbound event union.
type Event interface {
	Kind() string
}

type ObjectAdded struct {
	ZoneID   string `json:"zoneId"`
	ObjectID string `json:"objectId"`
	Object   Object `json:"object"`
}

func (ObjectAdded) Kind() string { return "object_added" }
