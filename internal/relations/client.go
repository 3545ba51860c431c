package relations

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// DefaultSimilarLimit caps FindSimilar results when the caller doesn't say
const DefaultSimilarLimit = 5

// Client runs typed queries against the playlist relationship graph.
// Unlike the cache layer, every operation here propagates backend
// errors: relationship mutations must be observably reliable.
type Client struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Client {
	return &Client{db: db}
}

// Create inserts one directed edge. A second insert for the same
// (source, related) pair violates the unique index and the backend
// error is returned as-is.
func (c *Client) Create(ctx context.Context, source, related uint, kind models.RelationshipKind, strength float64, metadata datatypes.JSON) (*models.PlaylistRelationship, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown relationship kind %q", kind)
	}

	rel := models.PlaylistRelationship{
		SourcePlaylistID:  source,
		RelatedPlaylistID: related,
		Kind:              kind,
		Strength:          strength,
		Metadata:          metadata,
	}

	if err := c.db.WithContext(ctx).Create(&rel).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

// RelatedPlaylist is a relationship row joined with the related
// playlist's display fields.
type RelatedPlaylist struct {
	ID                uint                    `json:"id"`
	SourcePlaylistID  uint                    `json:"source_playlist_id"`
	RelatedPlaylistID uint                    `json:"related_playlist_id"`
	Kind              models.RelationshipKind `json:"kind"`
	Strength          float64                 `json:"strength"`
	Metadata          datatypes.JSON          `json:"metadata"`
	RelatedName       string                  `json:"related_name"`
	RelatedColor      string                  `json:"related_color"`
}

// ListRelated returns the outgoing edges of a playlist, strongest
// first. Tie order between equal strengths is whatever the backend
// picks — callers must not depend on it.
func (c *Client) ListRelated(ctx context.Context, playlistID uint) ([]RelatedPlaylist, error) {
	out := []RelatedPlaylist{}

	err := c.db.WithContext(ctx).
		Table("playlist_relationships").
		Select("playlist_relationships.id, playlist_relationships.source_playlist_id, playlist_relationships.related_playlist_id, playlist_relationships.kind, playlist_relationships.strength, playlist_relationships.metadata, playlists.name AS related_name, playlists.color AS related_color").
		Joins("JOIN playlists ON playlists.id = playlist_relationships.related_playlist_id AND playlists.deleted_at IS NULL").
		Where("playlist_relationships.source_playlist_id = ?", playlistID).
		Order("playlist_relationships.strength DESC").
		Find(&out).Error

	return out, err
}

// Changes carries the optional fields of an Update. The key pair
// itself can never be changed.
type Changes struct {
	Kind     *models.RelationshipKind
	Strength *float64
	Metadata datatypes.JSON
}

// Update patches the edge addressed by (source, related). A missing
// row is a silent no-op success — deployed dashboard clients treat
// "already gone" as done.
func (c *Client) Update(ctx context.Context, source, related uint, changes Changes) error {
	updates := map[string]interface{}{}

	if changes.Kind != nil {
		if !changes.Kind.Valid() {
			return fmt.Errorf("unknown relationship kind %q", *changes.Kind)
		}
		updates["kind"] = *changes.Kind
	}
	if changes.Strength != nil {
		updates["strength"] = *changes.Strength
	}
	if changes.Metadata != nil {
		updates["metadata"] = changes.Metadata
	}

	if len(updates) == 0 {
		return nil
	}

	return c.db.WithContext(ctx).
		Model(&models.PlaylistRelationship{}).
		Where("source_playlist_id = ? AND related_playlist_id = ?", source, related).
		Updates(updates).Error
}

// Delete removes the edge addressed by (source, related). Missing row
// is a no-op success, same as Update.
func (c *Client) Delete(ctx context.Context, source, related uint) error {
	return c.db.WithContext(ctx).
		Where("source_playlist_id = ? AND related_playlist_id = ?", source, related).
		Delete(&models.PlaylistRelationship{}).Error
}

// SimilarPlaylist is a candidate ranked by how many tracks it shares
// with the source playlist.
type SimilarPlaylist struct {
	PlaylistID   uint   `json:"playlist_id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	SharedTracks int    `json:"shared_tracks"`
}

// FindSimilar ranks playlists by shared-track count with the source:
// a co-occurrence self-join over playlist_tracks. Candidates with no
// overlap never appear, the source itself is excluded, and a source
// with zero tracks yields an empty result rather than an error.
func (c *Client) FindSimilar(ctx context.Context, playlistID uint, limit int) ([]SimilarPlaylist, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	out := []SimilarPlaylist{}

	err := c.db.WithContext(ctx).
		Table("playlist_tracks AS source").
		Select("candidates.playlist_id AS playlist_id, playlists.name, playlists.color, COUNT(*) AS shared_tracks").
		Joins("JOIN playlist_tracks AS candidates ON candidates.track_id = source.track_id AND candidates.playlist_id <> source.playlist_id").
		Joins("JOIN playlists ON playlists.id = candidates.playlist_id AND playlists.deleted_at IS NULL").
		Where("source.playlist_id = ?", playlistID).
		Group("candidates.playlist_id, playlists.name, playlists.color").
		Order("shared_tracks DESC").
		Limit(limit).
		Find(&out).Error

	return out, err
}
