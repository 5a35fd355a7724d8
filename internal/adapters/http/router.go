package http

import (
	"context"
	"math/rand"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/adapters/signal"
	"github.com/dokojong/server/internal/config"
)

const userCookieMaxAge = 3 * 24 * 60 * 60

// UserTokenMiddleware issues the stable per-client identifier every room
// operation keys on. Missing or malformed cookies get a fresh UUID.
func UserTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("user_id")
		if _, err := uuid.Parse(token); err != nil {
			token = uuid.NewString()
			c.SetCookie("user_id", token, userCookieMaxAge, "/", "", false, true)
		}
		c.Set("user_id", token)
		c.Next()
	}
}

// Rooms are addressed by 4-digit codes.
func isRoomCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func newRoomCode() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = byte('0' + rand.Intn(10))
	}
	return string(b)
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("DokojongSessions", store))
	r.Use(UserTokenMiddleware())

	r.Static("/assets", filepath.Join(cfg.StaticPath, "assets"))
	r.StaticFile("/favicon.svg", filepath.Join(cfg.StaticPath, "favicon.svg"))
	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticPath, "index.html"))
	})

	r.GET("/:room_id", func(c *gin.Context) {
		roomID := c.Param("room_id")
		switch {
		case roomID == "xxxx":
			// the front end asks here for a fresh room code
			c.String(http.StatusOK, newRoomCode())
		case isRoomCode(roomID):
			c.File(filepath.Join(cfg.StaticPath, "index.html"))
		default:
			c.Redirect(http.StatusFound, "/")
		}
	})

	r.GET("/:room_id/ws", func(c *gin.Context) {
		if !isRoomCode(c.Param("room_id")) {
			c.Redirect(http.StatusFound, "/")
			return
		}
		ctl.HandleWS(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}
