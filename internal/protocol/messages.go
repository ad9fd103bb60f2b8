package protocol

// initial_data (server -> client): full merged snapshot sent once on connect.
type InitialDataMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// status_update (server -> client): periodic full snapshot.
type StatusUpdateMsg struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // unix millis
	Data      any    `json:"data"`
}

// {domain}_event (server -> client): one emitted domain event.
type EventMsg struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// layout_warning (server -> client): failed periodic evacuation validation.
type LayoutWarningMsg struct {
	Type       string `json:"type"`
	ZoneID     string `json:"zoneId"`
	Validation any    `json:"validation"`
}

// response (server -> client): command acknowledgment, optionally with a result.
type ResponseMsg struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// error (server -> client): the connection stays open after an error.
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// inventory_command (client -> server)
type InventoryCommandMsg struct {
	Type      string          `json:"type"`
	Command   string          `json:"command"` // add_product | update_stock
	ProductID string          `json:"productId"`
	Product   *ProductPayload `json:"productData,omitempty"`
	Quantity  int             `json:"quantity,omitempty"`
	Cause     string          `json:"cause,omitempty"`
}

type ProductPayload struct {
	Name         string `json:"name,omitempty"`
	InitialStock int    `json:"initialStock"`
	MinStock     int    `json:"minStock"`
	MaxStock     int    `json:"maxStock"`
	ReorderPoint int    `json:"reorderPoint"`
	Zone         string `json:"zone"`
}

// customer_command (client -> server)
type CustomerCommandMsg struct {
	Type       string `json:"type"`
	Command    string `json:"command"` // create_customer | move_customer | remove_customer
	CustomerID string `json:"customerId,omitempty"`
	NewZone    string `json:"newZone,omitempty"`
}

// security_command (client -> server)
type SecurityCommandMsg struct {
	Type    string `json:"type"`
	Command string `json:"command"` // acknowledge_alert
	AlertID string `json:"alertId"`
}

// layout_command (client -> server)
type LayoutCommandMsg struct {
	Type    string         `json:"type"`
	Command string         `json:"command"` // add_object | validate_zone | optimize_zone
	ZoneID  string         `json:"zoneId"`
	Object  *ObjectPayload `json:"object,omitempty"`
}

type ObjectPayload struct {
	Width    float64  `json:"width"`
	Length   float64  `json:"length"`
	Height   float64  `json:"height"`
	Position Position `json:"position"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
