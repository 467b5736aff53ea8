package rooms

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Phantasm0009/search-party/internal/domain"
	"github.com/Phantasm0009/search-party/internal/infrastructure/events"
	"github.com/Phantasm0009/search-party/internal/infrastructure/json"
	"github.com/Phantasm0009/search-party/internal/infrastructure/metrics"
	"github.com/Phantasm0009/search-party/internal/infrastructure/repository"
	"github.com/Phantasm0009/search-party/internal/infrastructure/ws"
	"github.com/Phantasm0009/search-party/internal/presentation/utils"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	rooms         *repository.Rooms
	core          *ws.Core
	roomPublisher *events.RoomPublisher
	metrics       *metrics.Metrics
}

func NewHandler(
	rooms *repository.Rooms,
	core *ws.Core,
	roomPublisher *events.RoomPublisher,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		rooms:         rooms,
		core:          core,
		roomPublisher: roomPublisher,
		metrics:       m,
	}
}

// CreateRoomHandler godoc
// @Summary      Create a new search room
// @Description  Creates a room and returns its public summary
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body createRoomRequest false "Room creation parameters"
// @Success      201 {object} domain.RoomSummary "Room created successfully"
// @Failure      400 {object} map[string]interface{} "Bad request - malformed body"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /rooms [post]
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.Read(r, &req); err != nil && !errors.Is(err, io.EOF) {
		json.WriteValidationError(w, err)
		return
	}

	newRoom := domain.NewRoom(req.Name)

	ctx := r.Context()
	if err := h.rooms.Create(ctx, newRoom); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomAlreadyExists):
			json.WriteError(w, http.StatusConflict, err, "Room already exists")
		default:
			log.Printf("Repository error creating room %s: %v", newRoom.ID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	h.metrics.ActiveRooms.Set(float64(h.rooms.Len()))

	summary := newRoom.Summary()
	if err := h.roomPublisher.PublishRoomCreated(ctx, summary); err != nil {
		log.Printf("Error publishing room created: %v\n", err)
	}

	json.Write(w, http.StatusCreated, summary)
}

// GetRoomHandler godoc
// @Summary      Get room details
// @Description  Retrieves the room summary together with its current top results
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} roomDetailResponse "Room details"
// @Failure      400 {object} map[string]interface{} "Bad request - missing room ID"
// @Failure      404 {object} map[string]interface{} "Room not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /rooms/{roomId} [get]
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	room, err := h.rooms.GetByID(r.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		default:
			log.Printf("Failed to find room: %v", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, roomDetailResponse{
		RoomSummary: room.Summary(),
		TopResults:  room.TopResults(0),
	})
}

// ConnectHandler godoc
// @Summary      Open the event stream
// @Description  Upgrades to a WebSocket carrying the room event protocol; room binding happens in-band via a join_room event
// @Tags         rooms
// @Success      101 {object} map[string]interface{} "Switching Protocols - WebSocket connection established"
// @Failure      400 {object} map[string]interface{} "Bad request - upgrade failed"
// @Router       /ws [get]
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	// The cookie must be written before the upgrade hijacks the response.
	participantHint := utils.EnsureParticipantID(w, r)

	conn, err := ws.Upgrade(w, r)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(conn, participantHint)

	h.core.Register() <- client

	go client.WriteMessage()
	go client.ReadMessage(h.core)
}
