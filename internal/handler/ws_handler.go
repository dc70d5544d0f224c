package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/riskprofile-backend/internal/middleware"
	"github.com/stemsi/riskprofile-backend/internal/model"
	"github.com/stemsi/riskprofile-backend/internal/response"
	"github.com/stemsi/riskprofile-backend/internal/service"
	ws "github.com/stemsi/riskprofile-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler drives the assessment over a WebSocket, one action per message.
type WSHandler struct {
	assessmentService *service.AssessmentService
	logins            middleware.LoginChecker
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	assessmentService *service.AssessmentService,
	logins middleware.LoginChecker,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		assessmentService: assessmentService,
		logins:            logins,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// AssessmentStream godoc
// WS /ws/v1/assessment/stream?token=...
// Sends the current step on connect, then answers each action.
func (h *WSHandler) AssessmentStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	userID := claims.UserID
	wsLog := h.log.With().Int("user_id", userID).Logger()
	wsLog.Info().Msg("User connected")

	ctx := c.Request.Context()

	h.sendStep(ctx, conn, userID, "", "")

	for {
		req, err := ws.ReadRequest(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		// Logging in elsewhere ends this stream too.
		if err := h.logins.ValidateLoginSession(ctx, userID, claims.ID); err != nil {
			_ = ws.WriteError(conn, string(response.ErrSessionInvalidated), response.GetMessage(response.ErrSessionInvalidated), nil)
			return
		}

		switch req.Action {
		case ws.ActionState:
			h.sendStep(ctx, conn, userID, "", "")
		case ws.ActionAnswer:
			if req.Choice == "" {
				_ = ws.WriteError(conn, string(response.ErrValidation), "choice is required", nil)
				continue
			}
			h.sendStep(ctx, conn, userID, req.Choice, "")
		case ws.ActionBack:
			h.sendStep(ctx, conn, userID, "", model.NavigateBack)
		case ws.ActionResults:
			h.sendResults(ctx, conn, wsLog, userID)
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			_ = ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action", nil)
		}
	}
}

func (h *WSHandler) sendStep(ctx context.Context, conn *websocket.Conn, userID int, choice, navigate string) {
	step, err := h.assessmentService.NextStep(ctx, userID, choice, navigate)
	if err != nil {
		_, code := assessmentError(err)
		if code == response.ErrInternal {
			h.log.Error().Err(err).Int("user_id", userID).Msg("Step failed")
		}
		var payload any
		if step != nil {
			payload = step
		}
		_ = ws.WriteError(conn, string(code), response.GetMessage(code), payload)
		return
	}
	_ = ws.WriteTyped(conn, ws.StepResponse{Event: ws.EventStep, Step: step})
}

func (h *WSHandler) sendResults(ctx context.Context, conn *websocket.Conn, log zerolog.Logger, userID int) {
	results, err := h.assessmentService.GetResults(ctx, userID)
	if err != nil {
		_, code := assessmentError(err)
		if code == response.ErrInternal {
			log.Error().Err(err).Msg("Results failed")
		}
		_ = ws.WriteError(conn, string(code), response.GetMessage(code), nil)
		return
	}
	_ = ws.WriteTyped(conn, ws.ResultsResponse{Event: ws.EventResults, Results: results})
}
