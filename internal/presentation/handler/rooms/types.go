package rooms

import "github.com/Phantasm0009/search-party/internal/domain"

// createRoomRequest represents the request to create a new search room
type createRoomRequest struct {
	Name string `json:"name" example:"Trip planning"` // Display name; empty falls back to a default
}

// roomDetailResponse is a room summary enriched with the current ranking
type roomDetailResponse struct {
	domain.RoomSummary
	TopResults []domain.RankedResult `json:"topResults"`
}
