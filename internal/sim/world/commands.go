package world

import (
	"encoding/json"
	"errors"
	"fmt"

	"retailtwin.io/internal/protocol"
	"retailtwin.io/internal/sim/inventory"
	"retailtwin.io/internal/sim/layout"
)

// dispatch routes one inbound frame to its command family. Validation
// failures are reported only to the issuing connection; resulting domain
// events are broadcast to everyone.
func (w *World) dispatch(env CommandEnvelope) {
	switch env.Type {
	case protocol.TypeInventoryCommand:
		w.handleInventoryCommand(env)
	case protocol.TypeCustomerCommand:
		w.handleCustomerCommand(env)
	case protocol.TypeSecurityCommand:
		w.handleSecurityCommand(env)
	case protocol.TypeLayoutCommand:
		w.handleLayoutCommand(env)
	default:
		// Unrecognized types get an acknowledgment, not an error.
		w.sendToConn(env.ConnID, protocol.ResponseMsg{
			Type:    protocol.TypeResponse,
			Status:  "ok",
			Message: "message received",
		})
	}
}

func (w *World) commandError(connID, code string, err error) {
	w.sendToConn(connID, protocol.ErrorMsg{
		Type:    protocol.TypeError,
		Code:    code,
		Message: err.Error(),
	})
}

func (w *World) handleInventoryCommand(env CommandEnvelope) {
	var cmd protocol.InventoryCommandMsg
	if err := json.Unmarshal(env.Raw, &cmd); err != nil {
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("inventory_command: %w", err))
		return
	}
	switch cmd.Command {
	case "add_product":
		if cmd.ProductID == "" || cmd.Product == nil {
			w.commandError(env.ConnID, protocol.ErrBadRequest, errors.New("add_product requires productId and productData"))
			return
		}
		w.inventory.AddProduct(cmd.ProductID, inventory.ProductSpec{
			Name:         cmd.Product.Name,
			InitialStock: cmd.Product.InitialStock,
			MinStock:     cmd.Product.MinStock,
			MaxStock:     cmd.Product.MaxStock,
			ReorderPoint: cmd.Product.ReorderPoint,
			Zone:         cmd.Product.Zone,
		})
		w.sendToConn(env.ConnID, protocol.ResponseMsg{
			Type:   protocol.TypeResponse,
			Status: "ok",
			Result: map[string]string{"productId": cmd.ProductID},
		})
	case "update_stock":
		cause := cmd.Cause
		if cause == "" {
			cause = "manual"
		}
		// Unknown product ids stay a silent no-op on the wire; the domain
		// result still distinguishes applied from ignored for callers.
		events, _ := w.inventory.AdjustStock(cmd.ProductID, cmd.Quantity, cause)
		for _, ev := range events {
			w.broadcastInventoryEvent(ev)
		}
	default:
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("unknown inventory command: %s", cmd.Command))
	}
}

func (w *World) handleCustomerCommand(env CommandEnvelope) {
	var cmd protocol.CustomerCommandMsg
	if err := json.Unmarshal(env.Raw, &cmd); err != nil {
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("customer_command: %w", err))
		return
	}
	switch cmd.Command {
	case "create_customer":
		agent, ev := w.customers.Spawn()
		w.broadcastCustomerEvent(ev)
		w.sendToConn(env.ConnID, protocol.ResponseMsg{
			Type:   protocol.TypeResponse,
			Status: "ok",
			Result: map[string]string{"customerId": agent.ID},
		})
	case "move_customer":
		if ev, ok := w.customers.Move(cmd.CustomerID, cmd.NewZone); ok {
			w.broadcastCustomerEvent(ev)
		}
	case "remove_customer":
		if ev, ok := w.customers.Depart(cmd.CustomerID); ok {
			w.broadcastCustomerEvent(ev)
		}
	default:
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("unknown customer command: %s", cmd.Command))
	}
}

func (w *World) handleSecurityCommand(env CommandEnvelope) {
	var cmd protocol.SecurityCommandMsg
	if err := json.Unmarshal(env.Raw, &cmd); err != nil {
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("security_command: %w", err))
		return
	}
	switch cmd.Command {
	case "acknowledge_alert":
		if ev, ok := w.security.Acknowledge(cmd.AlertID); ok {
			w.broadcastSecurityEvent(ev)
		}
	default:
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("unknown security command: %s", cmd.Command))
	}
}

func (w *World) handleLayoutCommand(env CommandEnvelope) {
	var cmd protocol.LayoutCommandMsg
	if err := json.Unmarshal(env.Raw, &cmd); err != nil {
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("layout_command: %w", err))
		return
	}
	switch cmd.Command {
	case "add_object":
		if cmd.Object == nil {
			w.commandError(env.ConnID, protocol.ErrBadRequest, errors.New("add_object requires an object"))
			return
		}
		obj, ev, err := w.layout.AddObject(cmd.ZoneID, layout.ObjectSpec{
			Width:    cmd.Object.Width,
			Length:   cmd.Object.Length,
			Height:   cmd.Object.Height,
			Position: layout.Position{X: cmd.Object.Position.X, Y: cmd.Object.Position.Y},
		})
		if err != nil {
			w.commandError(env.ConnID, layoutErrCode(err), err)
			return
		}
		w.broadcastLayoutEvent(ev)
		w.sendToConn(env.ConnID, protocol.ResponseMsg{
			Type:   protocol.TypeResponse,
			Status: "ok",
			Result: map[string]string{"objectId": obj.ID},
		})
	case "validate_zone":
		validation, ok := w.layout.ValidateEvacuationRoutes(cmd.ZoneID)
		if !ok {
			w.commandError(env.ConnID, protocol.ErrUnknownZone, fmt.Errorf("unknown zone: %s", cmd.ZoneID))
			return
		}
		w.sendToConn(env.ConnID, protocol.ResponseMsg{
			Type:   protocol.TypeResponse,
			Status: "ok",
			Result: map[string]any{"validation": validation},
		})
	case "optimize_zone":
		opt, ok := w.layout.Optimize(cmd.ZoneID)
		if !ok {
			w.commandError(env.ConnID, protocol.ErrUnknownZone, fmt.Errorf("unknown zone: %s", cmd.ZoneID))
			return
		}
		w.sendToConn(env.ConnID, protocol.ResponseMsg{
			Type:   protocol.TypeResponse,
			Status: "ok",
			Result: map[string]any{"optimization": opt},
		})
	default:
		w.commandError(env.ConnID, protocol.ErrBadRequest, fmt.Errorf("unknown layout command: %s", cmd.Command))
	}
}

func layoutErrCode(err error) string {
	switch {
	case errors.Is(err, layout.ErrUnknownZone):
		return protocol.ErrUnknownZone
	case errors.Is(err, layout.ErrInvalidDimensions):
		return protocol.ErrValidation
	case errors.Is(err, layout.ErrCollision):
		return protocol.ErrCollision
	default:
		return protocol.ErrInternal
	}
}
