package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/relations"
)

// RelationshipHandler exposes the playlist relationship graph
type RelationshipHandler struct {
	graph *relations.Client
}

// NewRelationshipHandler creates a new RelationshipHandler instance
func NewRelationshipHandler(graph *relations.Client) *RelationshipHandler {
	return &RelationshipHandler{graph: graph}
}

func parsePlaylistID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateRelationship links a source playlist to a related one
func (h *RelationshipHandler) CreateRelationship(c *gin.Context) {
	source, ok := parsePlaylistID(c, "id")
	if !ok {
		return
	}

	var input struct {
		RelatedPlaylistID uint                    `json:"related_playlist_id" binding:"required"`
		Kind              models.RelationshipKind `json:"kind" binding:"required"`
		Strength          float64                 `json:"strength"`
		Metadata          datatypes.JSON          `json:"metadata"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rel, err := h.graph.Create(c.Request.Context(), source, input.RelatedPlaylistID, input.Kind, input.Strength, input.Metadata)
	if err != nil {
		// Uniqueness violations on the (source, related) pair land here too
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rel)
}

// ListRelationships returns the outgoing edges of a playlist, strongest first
func (h *RelationshipHandler) ListRelationships(c *gin.Context) {
	source, ok := parsePlaylistID(c, "id")
	if !ok {
		return
	}

	related, err := h.graph.ListRelated(c.Request.Context(), source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relationships"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": related})
}

// UpdateRelationship patches kind/strength/metadata on an edge.
// A missing pair is a no-op success.
func (h *RelationshipHandler) UpdateRelationship(c *gin.Context) {
	source, ok := parsePlaylistID(c, "id")
	if !ok {
		return
	}
	related, ok := parsePlaylistID(c, "relatedId")
	if !ok {
		return
	}

	var input struct {
		Kind     *models.RelationshipKind `json:"kind"`
		Strength *float64                 `json:"strength"`
		Metadata datatypes.JSON           `json:"metadata"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes := relations.Changes{
		Kind:     input.Kind,
		Strength: input.Strength,
		Metadata: input.Metadata,
	}

	if err := h.graph.Update(c.Request.Context(), source, related, changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteRelationship removes an edge; missing pairs succeed silently
func (h *RelationshipHandler) DeleteRelationship(c *gin.Context) {
	source, ok := parsePlaylistID(c, "id")
	if !ok {
		return
	}
	related, ok := parsePlaylistID(c, "relatedId")
	if !ok {
		return
	}

	if err := h.graph.Delete(c.Request.Context(), source, related); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete relationship"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relationship deleted"})
}

// FindSimilar ranks playlists by shared-track count with the source
func (h *RelationshipHandler) FindSimilar(c *gin.Context) {
	source, ok := parsePlaylistID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	similar, err := h.graph.FindSimilar(c.Request.Context(), source, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute similar playlists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": similar})
}
