package controller

import (
	"net/http"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var voiceUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The browser client is served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// VoiceSession upgrades the connection to a websocket and bridges it to the
// user's voice session. The socket closes when the client disconnects or the
// session cannot be opened.
func VoiceSession(ctx *gin.Context) {
	userID := ctx.Query("userId")
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	svc, err := factory.GetServiceFactory().NewVoiceService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	conn, err := voiceUpgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Errorf("voice websocket upgrade failed for user %s: %v", userID, err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warnf("voice websocket close failed for user %s: %v", userID, err)
		}
	}()

	// Session events come from the read loop and from reply goroutines; the
	// websocket allows one writer at a time.
	var writeMu sync.Mutex
	session, svcErr := svc.OpenSession(userID, func(event *model.VoiceServerEvent) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(event)
	})
	if svcErr != nil {
		_ = conn.WriteJSON(gin.H{"error": svcErr.Message})
		return
	}
	defer svc.CloseSession(session)

	for {
		var event model.VoiceClientEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("voice websocket for user %s closed unexpectedly: %v", userID, err)
			}
			return
		}
		session.HandleEvent(&event)
	}
}
