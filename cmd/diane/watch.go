package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/cleberrangel/diane-api/internal/capture"
	ws "github.com/cleberrangel/diane-api/internal/websocket"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func watchCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream capture notifications and form state changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			c, err := s.connect(ctx)
			if err != nil {
				return err
			}

			header := http.Header{}
			header.Set("Authorization", "Bearer "+c.Token())
			conn, resp, err := websocket.DefaultDialer.DialContext(ctx, ws.FromHTTPURL(c.BaseURL(), "/api/ws"), header)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("websocket handshake: %s", resp.Status)
				}
				return fmt.Errorf("websocket dial: %w", err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				conn.Close()
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Watching... (Ctrl+C to stop)")
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return fmt.Errorf("websocket read: %w", err)
				}
				printEvent(out, data)
			}
		},
	}
}

// event espelha ws.Message com o payload ainda cru
type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func printEvent(out io.Writer, data []byte) {
	var ev event
	if err := json.Unmarshal(data, &ev); err != nil {
		fmt.Fprintf(out, "? %s\n", data)
		return
	}

	switch ev.Type {
	case ws.TypeNotification:
		var n capture.Notification
		if err := json.Unmarshal(ev.Data, &n); err == nil {
			_ = printNotification(out)(context.Background(), "", n)
			return
		}
	case ws.TypeCaptureState:
		var st struct {
			State string `json:"state"`
			Input string `json:"input"`
		}
		if err := json.Unmarshal(ev.Data, &st); err == nil {
			fmt.Fprintf(out, "· %s %q\n", st.State, st.Input)
			return
		}
	}
	fmt.Fprintf(out, "%s %s\n", ev.Type, ev.Data)
}
