package ws

// Inbound event names (client -> server).
const (
	EventJoinRoom             = "join_room"
	EventNewSearch            = "new_search"
	EventResultClick          = "result_click"
	EventVoteResult           = "vote_result"
	EventSendMessage          = "send_message"
	EventToggleSharedBrowsing = "toggle_shared_browsing"
	EventNavigateShared       = "navigate_shared"
	EventSharedScroll         = "shared_scroll"
	EventIframeStateUpdate    = "iframe_state_update"
)

// Outbound event names (server -> client).
const (
	EventRoomJoined            = "room_joined"
	EventUserJoined            = "user_joined"
	EventUserLeft              = "user_left"
	EventSearchAdded           = "search_added"
	EventTopResultsUpdated     = "top_results_updated"
	EventVoteUpdated           = "vote_updated"
	EventMessageReceived       = "message_received"
	EventResultClicked         = "result_clicked"
	EventSharedNavigation      = "shared_navigation"
	EventSharedBrowsingToggled = "shared_browsing_toggled"
	EventSharedScrollUpdate    = "shared_scroll_update"
	EventIframeStateReceived   = "iframe_state_received"
	EventUserClickedLink       = "user_clicked_link"
	EventError                 = "error"
)
