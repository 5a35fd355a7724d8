package signal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/config"
	"github.com/dokojong/server/internal/core"
	"github.com/dokojong/server/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller accepts websocket sessions and feeds their frames to the
// dispatcher.
type Controller struct {
	rooms      *core.Registry
	dispatcher *core.Dispatcher
	limiter    *RegisterLimiter
	cfg        *config.Config
}

func NewController(rooms *core.Registry, dispatcher *core.Dispatcher, cfg *config.Config) *Controller {
	return &Controller{
		rooms:      rooms,
		dispatcher: dispatcher,
		limiter:    NewRegisterLimiter(cfg.RegisterBurst, cfg.RegisterWindow),
		cfg:        cfg,
	}
}

// HandleWS upgrades the request, registers the client in its room and runs
// the connection's pumps. The (roomId, userId) pair comes from upstream
// routing; the nickname arrives later in the user.register frame.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	userID := domain.UserID(c.GetString("user_id"))
	roomID := domain.RoomID(c.Param("room_id"))
	if !ctl.limiter.Allow(userID) {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	conn := newWSConn(ws, ctl.cfg.SendBuffer)
	room := ctl.rooms.GetOrCreate(roomID)
	user := room.Register(conn, userID, "")
	log.Info().Str("module", "signal").Str("room", string(roomID)).
		Str("user", string(userID)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, room, user, conn)
}
