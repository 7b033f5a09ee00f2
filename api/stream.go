package api

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/Abhijadhav03/momentum/app"
	"github.com/Abhijadhav03/momentum/notify"
)

// streamBoard sends the derived board once, then every board event as a
// server-sent event until the client goes away.
func streamBoard(ctrl *app.Controller, broker *notify.Broker, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		c.Response().WriteHeader(http.StatusOK)

		ctx := c.Request().Context()
		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		if err := writeEvent(c, "board", ctrl.Board()); err != nil {
			logger.WithError(err).Debug("stream closed")
			return nil
		}
		flusher.Flush()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-ch:
				if err := writeEvent(c, ev.Type, ev); err != nil {
					logger.WithError(err).Debug("stream closed")
					return nil
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(c echo.Context, name string, payload any) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return err
	}
	w := c.Response()
	if _, err := w.Write([]byte("event: " + name + "\ndata: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
