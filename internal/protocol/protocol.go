package protocol

import "encoding/json"

// Server -> client envelope types.
const (
	TypeInitialData    = "initial_data"
	TypeStatusUpdate   = "status_update"
	TypeSecurityEvent  = "security_event"
	TypeInventoryEvent = "inventory_event"
	TypeCustomerEvent  = "customer_event"
	TypeLayoutEvent    = "layout_event"
	TypeLayoutWarning  = "layout_warning"
	TypeResponse       = "response"
	TypeError          = "error"
)

// Client -> server envelope types.
const (
	TypeInventoryCommand = "inventory_command"
	TypeCustomerCommand  = "customer_command"
	TypeSecurityCommand  = "security_command"
	TypeLayoutCommand    = "layout_command"
)

// BaseMessage lets us route inbound JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
