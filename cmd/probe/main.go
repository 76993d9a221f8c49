package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"market-streamer/src/models"

	"github.com/gorilla/websocket"
)

// probe is a manual smoke-test client: it subscribes to a symbol list and
// prints every batch until interrupted.
func main() {
	addr := flag.String("addr", "localhost:8080", "streamer host:port")
	symbols := flag.String("symbols", "AAPL,MSFT", "comma-separated symbols")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *addr)
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		fmt.Printf("failed to connect to %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	subscribe := models.MClientMessage{
		Type:    models.MessageTypeSubscribe,
		Symbols: strings.Split(*symbols, ","),
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		fmt.Printf("failed to subscribe: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("subscribed to %s on %s\n", *symbols, url)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				fmt.Printf("read error: %v\n", err)
				return
			}

			var batch models.MBatchMessage
			if err := json.Unmarshal(raw, &batch); err != nil {
				fmt.Printf("<< %s\n", raw)
				continue
			}

			for _, quote := range batch.Data {
				flag := ""
				if quote.IsSynthetic {
					flag = " [synthetic]"
				}
				fmt.Printf("%-6s %10.2f  %+7.2f (%+.2f%%)  source=%s%s\n",
					quote.Symbol, quote.Price, quote.Change, quote.ChangePercent,
					quote.Source, flag)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}
