package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool
	var joinRoom string
	var heartbeat time.Duration

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream realtime events over a websocket connection",
		Long: `Connect to the server's websocket endpoint and stream events in real-time.

Events include:
  - room_joined: You entered a room
  - player_joined: Another player entered your room
  - player_left: A player left your room
  - player_moved: A player's position changed
  - chat_message: Chat broadcast to your room
  - heartbeat_ack: Server acknowledged a heartbeat
  - error: A command was rejected

With --join the connection joins the given room first, so room events start
flowing immediately. Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(joinRoom, heartbeat, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&joinRoom, "join", "", "Room id to join after connecting")
	cmd.Flags().DurationVar(&heartbeat, "heartbeat", 10*time.Second, "Heartbeat interval")

	return cmd
}

// WireEvent is a server-to-client event frame
type WireEvent struct {
	Type     string    `json:"type"`
	RoomID   string    `json:"room_id,omitempty"`
	PlayerID string    `json:"player_id,omitempty"`
	Name     string    `json:"name,omitempty"`
	Message  string    `json:"message,omitempty"`
	Position *WireVec3 `json:"position,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// WireVec3 is a position triple on the wire
type WireVec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func streamEvents(joinRoom string, heartbeat time.Duration, jsonOutput bool) error {
	if cfg.Token == "" {
		return fmt.Errorf("no token - login first")
	}

	wsURL, err := websocketURL(cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %w (HTTP %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Println("Connected")
	}

	if joinRoom != "" {
		join := map[string]string{"type": "join_room", "room_id": joinRoom}
		if err := conn.WriteJSON(join); err != nil {
			return fmt.Errorf("join failed: %w", err)
		}
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	// Keep the session alive
	go func() {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteJSON(map[string]string{"type": "heartbeat"}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			if !jsonOutput {
				fmt.Println("\nDisconnected")
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var ev WireEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		printEvent(ev, raw, jsonOutput)
	}
}

// websocketURL rewrites the API base URL into the /ws endpoint
func websocketURL(serverURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	u.Path = "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func printEvent(ev WireEvent, raw []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(raw))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	switch ev.Type {
	case "room_joined":
		fmt.Printf("[%s] joined room %s (%s)\n", timestamp, ev.Name, ev.RoomID)
	case "player_joined":
		fmt.Printf("[%s] %s joined (%s)\n", timestamp, ev.Name, ev.PlayerID)
	case "player_left":
		fmt.Printf("[%s] %s left\n", timestamp, ev.PlayerID)
	case "player_moved":
		if ev.Position != nil {
			fmt.Printf("[%s] %s moved to (%.1f, %.1f, %.1f)\n",
				timestamp, ev.PlayerID, ev.Position.X, ev.Position.Y, ev.Position.Z)
		}
	case "chat_message":
		fmt.Printf("[%s] <%s> %s\n", timestamp, ev.PlayerID, ev.Message)
	case "heartbeat_ack":
		// Quiet unless verbose
		if cfg.Verbose {
			fmt.Printf("[%s] heartbeat ack\n", timestamp)
		}
	case "error":
		fmt.Printf("[%s] error: %s\n", timestamp, ev.Message)
	default:
		fmt.Printf("[%s] %s: %s\n", timestamp, ev.Type, string(raw))
	}
}
