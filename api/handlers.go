package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/Abhijadhav03/momentum/app"
	"github.com/Abhijadhav03/momentum/auth"
	"github.com/Abhijadhav03/momentum/board"
	"github.com/Abhijadhav03/momentum/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, ctrl *app.Controller, opts Options) {
	if opts.Auth == nil {
		panic("api.Register: authenticator is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e.JSONSerializer = JSONSerializer{}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "momentum",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(GzipRequestMiddleware())

	e.GET("/healthz", healthz(opts))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	observe := RequestMetrics(logger)
	e.POST("/api/auth/login", login(ctrl), observe)
	if opts.Broker != nil {
		e.GET("/api/board/stream", streamBoard(ctrl, opts.Broker, logger), observe, requireAuth(opts.Auth, true))
	}

	g := e.Group("/api", observe, requireAuth(opts.Auth, false))
	g.POST("/auth/logout", logout(ctrl))
	g.GET("/auth/me", me(ctrl))

	g.GET("/board", getBoard(ctrl))
	g.POST("/board/reset", resetBoard(ctrl))
	g.POST("/board/drag/start", dragStart(ctrl))
	g.POST("/board/drag/over", dragOver(ctrl))
	g.POST("/board/drag/end", dragEnd(ctrl))

	g.GET("/tasks", getTasks(ctrl))
	g.POST("/tasks", createTask(ctrl, opts.Deduper, logger))
	g.PATCH("/tasks/:id", updateTask(ctrl))
	g.DELETE("/tasks/:id", deleteTask(ctrl))
	g.POST("/tasks/:id/move", moveTask(ctrl))

	g.GET("/view", getView(ctrl))
	g.PATCH("/view", patchView(ctrl))

	g.GET("/activity", getActivity(ctrl))
	g.DELETE("/activity", clearActivity(ctrl))

	g.GET("/toasts", getToasts(ctrl))
	g.DELETE("/toasts/:id", dismissToast(ctrl))
}

func healthz(opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		if opts.Health != nil {
			if err := opts.Health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	}
}

// writeError maps controller errors to HTTP statuses.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, board.ErrNotDraggable):
		setErrorStage(c, "validation")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, app.ErrTaskNotFound):
		setErrorStage(c, "not_found")
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		setErrorStage(c, "auth")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
	}
	setErrorStage(c, "internal")
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func badBody(c echo.Context, err error) error {
	setErrorStage(c, "decode")
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func login(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c, err)
		}
		token, user, err := ctrl.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
	}
}

func logout(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.Logout(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}
}

func me(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := ctrl.CurrentUser()
		if !ok {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: auth.ErrNotAuthenticated.Error()})
		}
		return c.JSON(http.StatusOK, user)
	}
}

func getBoard(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, ctrl.Board())
	}
}

func resetBoard(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.ResetBoard(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}
}

func getTasks(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, tasksResponse{Tasks: ctrl.Tasks()})
	}
}

func createTask(ctrl *app.Controller, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var in domain.TaskInput
		if err := decodeBody(c, &in); err != nil {
			return badBody(c, err)
		}

		key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
		dedupe := key != "" && deduper != nil
		if dedupe {
			added, err := deduper.Add(ctx, userID(c), key)
			if err != nil {
				// Redis outages must not block task creation.
				logger.WithError(err).Warn("idempotency check failed; processing without it")
				dedupe = false
			} else if !added {
				setErrorStage(c, "duplicate")
				return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
			}
		}

		task, err := ctrl.CreateTask(ctx, in)
		if err != nil {
			if dedupe {
				if rerr := deduper.Remove(ctx, userID(c), key); rerr != nil {
					logger.WithError(rerr).Warn("unable to release idempotency key")
				}
			}
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch domain.TaskPatch
		if err := decodeBody(c, &patch); err != nil {
			return badBody(c, err)
		}
		task, err := ctrl.UpdateTask(c.Request().Context(), c.Param("id"), patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := ctrl.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func moveTask(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req moveRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c, err)
		}
		task, err := ctrl.MoveTask(c.Request().Context(), c.Param("id"), req.Status)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func getView(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, ctrl.View())
	}
}

func patchView(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch domain.ViewPatch
		if err := decodeBody(c, &patch); err != nil {
			return badBody(c, err)
		}
		view, err := ctrl.SetView(c.Request().Context(), patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	}
}

func dragStart(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var item board.Item
		if err := decodeBody(c, &item); err != nil {
			return badBody(c, err)
		}
		task, err := ctrl.DragStart(item)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, dragStartResponse{State: board.Dragging, Task: task})
	}
}

func dragOver(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dragRequest
		if err := decodeBody(c, &req); err != nil && !errors.Is(err, errEmptyBody) {
			return badBody(c, err)
		}
		col, ok := ctrl.DragOver(req.Over)
		return c.JSON(http.StatusOK, dragOverResponse{Column: col, Valid: ok})
	}
}

func dragEnd(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dragRequest
		if err := decodeBody(c, &req); err != nil && !errors.Is(err, errEmptyBody) {
			return badBody(c, err)
		}
		return c.JSON(http.StatusOK, ctrl.DragEnd(c.Request().Context(), req.Over))
	}
}

func getActivity(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, activityResponse{Logs: ctrl.Activity()})
	}
}

func clearActivity(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.ClearActivity(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}
}

func getToasts(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, toastsResponse{Toasts: ctrl.Toasts()})
	}
}

func dismissToast(ctrl *app.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !ctrl.DismissToast(c.Param("id")) {
			setErrorStage(c, "not_found")
			return c.JSON(http.StatusNotFound, errorResponse{Error: "toast not found"})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
