package signal

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump is the one unit cancelled on transport loss. A mutation already
// inside the room lock finishes before the unregister runs.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, room *core.Room, user *core.User, c *wsConn) {
	defer func() {
		room.Unregister(user.ID, c)
		c.Close(core.CloseDisconnection)
		cancel()
		log.Info().Str("module", "signal").Str("room", string(room.ID())).
			Str("user", string(user.ID)).Msg("readPump closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatcher.Dispatch(room, user, data)
		}
	}
}
