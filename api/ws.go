package api

import (
	"log"
	"net/http"
	"time"

	"github.com/SAADSTACK/NeuroMetric-AI/notifier"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// EventsHandler streams store-change events to a connected view over a
// websocket. A view waiting for approval re-queries its profile on each
// signal; views in any other state are expected to ignore it.
func (h *APIHandler) EventsHandler(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ERROR: [Events] Failed to upgrade to websocket: %v", err)
			return
		}
		defer conn.Close()

		events, cancel := hub.Subscribe()
		defer cancel()
		log.Printf("INFO: [Events] View connected from %s (%d observers).", c.ClientIP(), hub.SubscriberCount())

		// Read pump: we never expect client messages, but reading is what
		// detects the peer going away and unblocks the close path.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.Printf("WARN: [Events] Unexpected websocket close: %v", err)
					}
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				log.Printf("INFO: [Events] View from %s disconnected.", c.ClientIP())
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("WARN: [Events] Failed to deliver event '%s' to %s: %v", event.Type, c.ClientIP(), err)
					return
				}
			}
		}
	}
}
