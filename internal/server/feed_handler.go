package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/grandmaster/internal/server/hub"
	"github.com/mdouchement/grandmaster/internal/server/middlewares"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + writeWait
)

// feed contains the change feed handlers.
type feed struct {
	hub      *hub.Hub
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader
}

///// Subscribe
////
//

// Subscribe streams the change events of the collection over a websocket.
func (h *feed) Subscribe(c echo.Context) error {
	// Registered before the upgrade so no event published after the handshake is missed.
	sub := h.hub.Subscribe(c.Param("id"))
	defer h.hub.Unsubscribe(sub)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already replied to the client.
		return nil
	}
	defer conn.Close()

	log := h.logger.WithFields(logrus.Fields{
		"collection_id": sub.CollectionID(),
		"subject":       middlewares.AccessKeySubject(c),
	})
	log.Info("Change feed opened")
	defer log.Info("Change feed closed")

	done := make(chan struct{})
	go func() {
		defer close(done)

		conn.SetReadDeadline(time.Now().Add(pongWait)) // nolint: errcheck
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		// Incoming frames are ignored, the loop only detects the end of the connection.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait)) // nolint: errcheck
			if !ok {
				// Dropped by the hub.
				msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber too slow")
				conn.WriteMessage(websocket.CloseMessage, msg) // nolint: errcheck
				return nil
			}

			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Warn("Could not write change event")
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) // nolint: errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
