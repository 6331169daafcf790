package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListChatThreads handles GET /api/projects/:id/chat/threads
func (h *Handlers) ListChatThreads(c *gin.Context) {
	threads, err := h.services.Chat.ListThreads(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, threads)
}

// JoinChatThread handles POST /api/chat/threads/:id/join
func (h *Handlers) JoinChatThread(c *gin.Context) {
	participant, err := h.services.Chat.AdminJoin(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, participant)
}

// LeaveChatThread handles POST /api/chat/threads/:id/leave
func (h *Handlers) LeaveChatThread(c *gin.Context) {
	if err := h.services.Chat.AdminLeave(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"left": true})
}

// ListChatParticipants handles GET /api/chat/threads/:id/participants
func (h *Handlers) ListChatParticipants(c *gin.Context) {
	participants, err := h.services.Chat.ListActiveParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, participants)
}
