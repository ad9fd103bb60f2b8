package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"retailtwin.io/internal/protocol"
)

// probe connects to a running server, prints every frame, and optionally
// fires a round of sample commands. Dev tool only.
func main() {
	var (
		url    = flag.String("url", "ws://localhost:3001/v1/ws", "ws url")
		sample = flag.Bool("sample", false, "send a round of sample commands after connect")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[probe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if *sample {
		go sendSamples(conn, logger)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			logger.Printf("unparsable frame: %s", msg)
			continue
		}
		switch base.Type {
		case protocol.TypeStatusUpdate:
			logger.Printf("status_update (%d bytes)", len(msg))
		default:
			logger.Printf("%s: %s", base.Type, msg)
		}
	}
}

func sendSamples(conn *websocket.Conn, logger *log.Logger) {
	write := func(v any) {
		b, err := json.Marshal(v)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			logger.Printf("write: %v", err)
		}
	}

	write(protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "add_product",
		ProductID: "P1",
		Product: &protocol.ProductPayload{
			Name:         "sample product",
			InitialStock: 50,
			MinStock:     10,
			MaxStock:     100,
			ReorderPoint: 20,
			Zone:         "A1",
		},
	})
	write(protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "update_stock",
		ProductID: "P1",
		Quantity:  -35,
		Cause:     "sale",
	})
	write(protocol.CustomerCommandMsg{
		Type:    protocol.TypeCustomerCommand,
		Command: "create_customer",
	})
	write(protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "add_object",
		ZoneID:  "A1",
		Object: &protocol.ObjectPayload{
			Width:  2,
			Length: 2,
			Height: 1,
			Position: protocol.Position{
				X: 1,
				Y: 1,
			},
		},
	})
	write(protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "validate_zone",
		ZoneID:  "A1",
	})
}
