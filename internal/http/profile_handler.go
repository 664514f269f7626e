package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"perplexacare/internal/service"
)

// ProfileHandler mantiene dependencias para los endpoints de perfil.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
	guestUserID string
}

func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService, guestUserID string) *ProfileHandler {
	return &ProfileHandler{
		logger:      logger,
		profileServ: profileServ,
		guestUserID: guestUserID,
	}
}

// GetProfile maneja GET /api/profile. Sin registro almacenado devuelve
// un objeto vacío con 200, no un 404, para simplificar al cliente.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := h.resolveUserID(c)

	profile, found, err := h.profileServ.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("fetch profile failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch profile"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PutProfile maneja PUT /api/profile: normaliza el payload laxo y hace
// upsert del registro completo.
func (h *ProfileHandler) PutProfile(c *gin.Context) {
	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid profile payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := h.resolveUserID(c)
	profile, err := h.profileServ.Save(c.Request.Context(), userID, input)
	if err != nil {
		h.logger.Error("update profile failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) resolveUserID(c *gin.Context) string {
	if claims, ok := GetAuthClaims(c); ok {
		return claims.UserID
	}
	return h.guestUserID
}
