package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cheeseechops/CamdramAPI/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only and carries no private data.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades the request and keeps the socket subscribed until the
// client goes away.
func WSHandler(hub *Hub) gin.HandlerFunc {
	log := logging.NewComponentLogger(hub.logger, "ws")
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug("upgrade failed", logging.Error(err))
			return
		}
		remote := c.ClientIP()

		if err := writeWS(ws, hub.welcome(TransportWebsocket)); err != nil {
			_ = ws.Close()
			return
		}
		hub.AddWS(ws)
		log.Debug("client connected", logging.String("remote", remote))
		defer func() {
			hub.RemoveWS(ws)
			log.Debug("client disconnected", logging.String("remote", remote))
		}()

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}
