package protocol

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants used for the client-server protocol.
// Event names mix cases for compatibility with existing clients.
const (
	// Client to server commands
	TypeJoinGame              MessageType = "joinGame"
	TypeAction                MessageType = "action"
	TypeJoinQueue             MessageType = "join_queue"
	TypeLeaveQueue            MessageType = "leave_queue"
	TypeCheckQueueStatus      MessageType = "check_queue_status"
	TypeCheckActiveSession    MessageType = "check_active_session"
	TypeCheckActiveStatus     MessageType = "check_active_status"
	TypeRequestSeat           MessageType = "request_seat"
	TypeHostSelfSeat          MessageType = "host_self_seat"
	TypeAdminAction           MessageType = "admin_action"
	TypeCreatePrivateGame     MessageType = "create_private_game"
	TypeJoinByCode            MessageType = "join_by_code"
	TypeListTables            MessageType = "list_tables"
	TypeCreateTournament      MessageType = "create_tournament"
	TypeRegisterTournament    MessageType = "register_tournament"
	TypeUnregisterTournament  MessageType = "unregister_tournament"
	TypeTournamentAdminAction MessageType = "tournament_admin_action"
	TypeGetTournamentState    MessageType = "get_tournament_state"
	TypeJoinTournamentRoom    MessageType = "join_tournament_room"
	TypeJoinTable             MessageType = "join_table"

	// Server to client events
	TypeGameState             MessageType = "gameState"
	TypeSyncGame              MessageType = "SYNC_GAME"
	TypeDealStreet            MessageType = "DEAL_STREET"
	TypeHandRunout            MessageType = "HAND_RUNOUT"
	TypeTurnTimerStarted      MessageType = "turn_timer_started"
	TypePlayerStatusUpdate    MessageType = "PLAYER_STATUS_UPDATE"
	TypePlayerMovedSpectator  MessageType = "PLAYER_MOVED_TO_SPECTATOR"
	TypePlayerEliminated      MessageType = "PLAYER_ELIMINATED"
	TypeSeatVacated           MessageType = "SEAT_VACATED"
	TypeMatchFound            MessageType = "match_found"
	TypeQueueInfo             MessageType = "queue_info"
	TypeQueueUpdate           MessageType = "queue_update"
	TypeQueueStatus           MessageType = "queue_status"
	TypeSessionStatus         MessageType = "session_status"
	TypeActiveStatus          MessageType = "ActiveStatus"
	TypeGameFinished          MessageType = "GAME_FINISHED"
	TypeGameReconnected       MessageType = "game-reconnected"
	TypeTableList             MessageType = "table_list"
	TypeSeatRequest           MessageType = "seat_request"
	TypeError                 MessageType = "error"

	// Tournament lifecycle events
	TypeTournamentStatusChanged    MessageType = "TOURNAMENT_STATUS_CHANGED"
	TypeTournamentRegistered       MessageType = "TOURNAMENT_PLAYER_REGISTERED"
	TypeTournamentUnregistered     MessageType = "TOURNAMENT_PLAYER_UNREGISTERED"
	TypeTournamentCountChanged     MessageType = "TOURNAMENT_PARTICIPANT_COUNT_CHANGED"
	TypeTournamentBlindsAdvanced   MessageType = "TOURNAMENT_BLIND_LEVEL_ADVANCED"
	TypeTournamentLevelWarning     MessageType = "TOURNAMENT_LEVEL_WARNING"
	TypeTournamentEliminated       MessageType = "TOURNAMENT_PLAYER_ELIMINATED"
	TypeTournamentTransferred      MessageType = "TOURNAMENT_PLAYER_TRANSFERRED"
	TypeTournamentTablesBalanced   MessageType = "TOURNAMENT_TABLES_BALANCED"
	TypeTournamentTablesMerged     MessageType = "TOURNAMENT_TABLES_MERGED"
	TypeTournamentCompleted        MessageType = "TOURNAMENT_COMPLETED"
	TypeTournamentCancelled        MessageType = "TOURNAMENT_CANCELLED"
	TypeTournamentPlayerBanned     MessageType = "TOURNAMENT_PLAYER_BANNED"
	TypeTournamentPlayerLeft       MessageType = "TOURNAMENT_PLAYER_LEFT"
	TypeTournamentPosition         MessageType = "TOURNAMENT_FINISH_POSITION"
	TypeTournamentState            MessageType = "tournament_state"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
