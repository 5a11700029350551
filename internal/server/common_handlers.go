package server

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/config"
)

func (s *Server) healthHandler(ctx echo.Context) error {
	return ctx.JSON(200, s.server.Health())
}

// websocketHandler upgrades the connection and pins it to the realtime
// hub until the client disconnects. Events published by the background
// workers are fanned out to every open session of the user.
func (s *Server) websocketHandler(ctx echo.Context) error {
	userID, ok := ctx.Request().Context().Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return ctx.JSON(401, Res{Message: "Unauthorized"})
	}

	conn, err := websocket.Accept(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	s.hub.Register(userID, conn)
	defer s.hub.Unregister(userID, conn)

	// Drain the connection; clients only receive.
	readCtx := ctx.Request().Context()
	for {
		if _, _, err := conn.Read(readCtx); err != nil {
			break
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
	return nil
}
