package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/room4-2/tablefinder/messages"
)

func main() {
	// Flags
	serverURL := flag.String("server", "ws://localhost:8080/ws", "WebSocket server URL")
	debug := flag.Bool("debug", false, "Ask the server for the act and state of each reply")
	flag.Parse()

	url := *serverURL
	if *debug {
		url += "?debug=true"
	}

	log.Printf("🔌 Connecting to %s...", url)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Println("✅ Connected! Type /restart, /ping or /quit")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	// Read responses from server
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Println("Read error:", err)
				}
				return
			}
			printServerMessage(data)
		}
	}()

	// Send typed lines
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			log.Println("Connection closed")
			return
		case <-interrupt:
			log.Println("\n👋 Interrupted, closing...")
			closeConn(conn)
			return
		case line, ok := <-lines:
			if !ok || line == "/quit" {
				closeConn(conn)
				return
			}
			msg, err := clientMessage(line)
			if err != nil {
				log.Printf("❌ %v", err)
				continue
			}
			if msg == nil {
				continue
			}
			data, err := sonic.Marshal(msg)
			if err != nil {
				log.Printf("❌ Failed to encode message: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Send error: %v", err)
				return
			}
		}
	}
}

// clientMessage turns a typed line into a client message. Lines starting
// with a slash are control commands; blank lines produce nothing.
func clientMessage(line string) (*messages.ClientMessage, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	var (
		msgType string
		payload any
	)
	switch line {
	case "/restart":
		msgType, payload = messages.TypeControl, messages.ControlPayload{Action: messages.ActionRestart}
	case "/ping":
		msgType, payload = messages.TypeControl, messages.ControlPayload{Action: messages.ActionPing}
	case "/end":
		msgType, payload = messages.TypeControl, messages.ControlPayload{Action: messages.ActionEnd}
	default:
		if strings.HasPrefix(line, "/") {
			return nil, fmt.Errorf("unknown command %s", line)
		}
		msgType, payload = messages.TypeUtterance, messages.UtterancePayload{Text: line}
	}

	raw, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &messages.ClientMessage{Type: msgType, Payload: raw}, nil
}

func printServerMessage(data []byte) {
	var msg messages.ServerMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		log.Println("Parse error:", err)
		return
	}
	raw, err := sonic.Marshal(msg.Payload)
	if err != nil {
		log.Println("Parse error:", err)
		return
	}

	switch msg.Type {
	case messages.TypeText:
		var payload messages.TextResponsePayload
		sonic.Unmarshal(raw, &payload)
		if payload.Act != "" {
			fmt.Printf("📝 %s  [%s -> %s]\n", payload.Text, payload.Act, payload.State)
		} else {
			fmt.Printf("📝 %s\n", payload.Text)
		}

	case messages.TypeStatus:
		var payload messages.StatusPayload
		sonic.Unmarshal(raw, &payload)
		if payload.Status != messages.StatusTurnComplete {
			log.Printf("📊 Status: %s %s", payload.Status, payload.Message)
		}

	case messages.TypeError:
		var payload messages.ErrorPayload
		sonic.Unmarshal(raw, &payload)
		log.Printf("❌ Error: %s %s", payload.Code, payload.Message)
	}
}

func closeConn(conn *websocket.Conn) {
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
