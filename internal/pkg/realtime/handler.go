package realtime

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexasuite/powerup/internal/pkg/apperrors"
)

// MembershipChecker reports whether a profile belongs to a community
type MembershipChecker interface {
	IsMember(ctx context.Context, communityID, profileID int64) (bool, error)
}

// Handler upgrades HTTP requests into community event subscriptions
type Handler struct {
	hub        *Hub
	membership MembershipChecker
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, membership MembershipChecker, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		membership: membership,
		logger:     logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to a community's event stream
// @Description Upgrades the HTTP connection to a WebSocket subscribed to the community channel
// @Tags communities, websocket
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} gin.H "Invalid community ID"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} gin.H "Forbidden: not a member of the community"
// @Router /ws/communities/{id} [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	communityIDStr := c.Param("id")
	communityID, err := strconv.ParseInt(communityIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid community ID",
		})
		return
	}

	// Profile ID is set by the auth middleware
	profileIDValue, exists := c.Get("profileID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Profile ID not found in context",
		})
		return
	}

	profileID, ok := profileIDValue.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid profile ID format",
		})
		return
	}

	// Only members may subscribe to a community channel
	isMember, err := h.membership.IsMember(c, communityID, profileID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("communityID", communityID).
			Int64("profileID", profileID).
			Msg("Failed to check membership")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check membership",
		})
		return
	}

	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{
			"error": apperrors.NewForbiddenError("Not a member of this community").Error(),
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("communityID", communityID).
			Int64("profileID", profileID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:         h.hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		profileID:   profileID,
		communityID: communityID,
		logger:      h.logger,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("communityID", communityID).
		Int64("profileID", profileID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Event subscription established")
}
