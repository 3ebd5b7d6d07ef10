package interfaces

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ranker/domain"
)

const userIDKey = "userID"

// tokenFromHeader accepts "Token <t>" and "Bearer <t>".
func tokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(token)
	}
	return ""
}

func (h *HTTPHandler) resolveUser(c *gin.Context) (uint, error) {
	token := tokenFromHeader(c.GetHeader("Authorization"))
	if token == "" {
		return 0, domain.ErrUnauthorized
	}
	return h.tokens.Resolve(c.Request.Context(), token)
}

func (h *HTTPHandler) requireAuth(c *gin.Context) {
	id, err := h.resolveUser(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(userIDKey, id)
	c.Next()
}

// optionalAuth records the user when a valid token is present and lets
// anonymous requests through.
func (h *HTTPHandler) optionalAuth(c *gin.Context) {
	if id, err := h.resolveUser(c); err == nil {
		c.Set(userIDKey, id)
	}
	c.Next()
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

type tokenRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// ObtainToken exchanges a username and password for an API token.
func (h *HTTPHandler) ObtainToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrUnauthorized) {
		badRequest(c, "Unable to log in with provided credentials.")
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout revokes the token used for the request.
func (h *HTTPHandler) Logout(c *gin.Context) {
	token := tokenFromHeader(c.GetHeader("Authorization"))
	if err := h.tokens.Revoke(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
