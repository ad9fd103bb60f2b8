package customers

// Event is the customer domain's outbound event union.
type Event interface {
	Kind() string
}

type CustomerEntered struct {
	CustomerID string `json:"customerId"`
	Pattern    string `json:"pattern"`
	EntryTime  int64  `json:"entryTime"`
}

func (CustomerEntered) Kind() string { return "customer_entered" }

type CustomerMoved struct {
	CustomerID string `json:"customerId"`
	FromZone   string `json:"fromZone,omitempty"`
	ToZone     string `json:"toZone"`
	Timestamp  int64  `json:"timestamp"`
}

func (CustomerMoved) Kind() string { return "customer_moved" }

type CustomerInteraction struct {
	CustomerID       string `json:"customerId"`
	Zone             string `json:"zone"`
	Timestamp        int64  `json:"timestamp"`
	InteractionCount int    `json:"interactionCount"`
}

func (CustomerInteraction) Kind() string { return "customer_interaction" }

type CustomerPurchase struct {
	CustomerID    string `json:"customerId"`
	Zone          string `json:"zone"`
	Timestamp     int64  `json:"timestamp"`
	PurchaseCount int    `json:"purchaseCount"`
}

func (CustomerPurchase) Kind() string { return "customer_purchase" }

type CustomerLeft struct {
	CustomerID   string   `json:"customerId"`
	TimeInStore  int64    `json:"timeInStore"` // millis
	VisitedZones []string `json:"visitedZones"`
	Interactions int      `json:"interactions"`
	Purchases    int      `json:"purchases"`
}

func (CustomerLeft) Kind() string { return "customer_left" }
