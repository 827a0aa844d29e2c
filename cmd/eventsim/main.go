// Command eventsim posts simulated host log lines to a running hooks service.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/hll-crcon/stats-hooks/internal/models"
)

func main() {
	url := flag.String("url", "http://localhost:8080/api/v1/hooks/events", "hooks ingest endpoint")
	token := flag.String("token", os.Getenv("HOOK_TOKEN"), "hook token")
	kind := flag.String("kind", "chat", "event to send: chat, connected or match_end")
	playerID := flag.String("player-id", "76561198000000000", "player id")
	name := flag.String("name", "TestPlayer", "player name")
	text := flag.String("text", "!me", "chat content")
	flag.Parse()

	event := models.LogEvent{
		Server:      "1",
		TimestampMs: time.Now().UnixMilli(),
		PlayerName1: *name,
		PlayerID1:   *playerID,
	}
	switch models.EventKind(*kind) {
	case models.EventChat:
		event.Action = "CHAT[Allies][Unit]"
		event.SubContent = *text
	case models.EventConnected:
		event.Action = "CONNECTED"
	case models.EventMatchEnd:
		event.Action = "MATCH ENDED"
		event.PlayerName1, event.PlayerID1 = "", ""
	default:
		log.Fatalf("Unknown event kind %q", *kind)
	}
	event.Raw = fmt.Sprintf("%s %s(%s): %s", event.Action, event.PlayerName1, event.PlayerID1, event.SubContent)

	// One JSON object per line
	payload, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest("POST", *url, bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("X-Hook-Token", *token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Response: %s\n", string(body))

	if resp.StatusCode != http.StatusAccepted {
		os.Exit(1)
	}
}
