package protocol

import (
	"encoding/json"
	"time"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// MustMessage is NewMessage for payloads that cannot fail to marshal
func MustMessage(messageType MessageType, data interface{}) *Message {
	m, err := NewMessage(messageType, data)
	if err != nil {
		panic("protocol: marshal " + string(messageType) + ": " + err.Error())
	}
	return m
}

// Client → Server Commands

type JoinGameData struct {
	GameID string `json:"gameId"`
}

type ActionData struct {
	GameID string `json:"gameId"`
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
	Index  *int   `json:"index,omitempty"` // hole card index for reveal
	Seat   int    `json:"seat"`
}

type JoinQueueData struct {
	QueueType string `json:"queueType"`
}

type LeaveQueueData struct {
	QueueType string `json:"queueType"`
}

type RequestSeatData struct {
	GameID string `json:"gameId"`
}

type HostSelfSeatData struct {
	GameID    string `json:"gameId"`
	SeatIndex *int   `json:"seatIndex,omitempty"`
}

type AdminActionData struct {
	GameID     string `json:"gameId"`
	Type       string `json:"type"`
	TargetID   string `json:"targetId,omitempty"`
	Seat       int    `json:"seat,omitempty"`
	Amount     int    `json:"amount,omitempty"`
	SmallBlind int    `json:"smallBlind,omitempty"`
	BigBlind   int    `json:"bigBlind,omitempty"`
}

// SeatRequestData notifies a private-table host of a pending seat request
type SeatRequestData struct {
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
}

type CreatePrivateGameData struct {
	Variant string `json:"variant"`
}

type JoinByCodeData struct {
	Code string `json:"code"`
}

type RegisterTournamentData struct {
	TournamentID string `json:"tournamentId"`
}

type TournamentAdminActionData struct {
	TournamentID string          `json:"tournamentId"`
	Type         string          `json:"type"`
	TargetID     string          `json:"targetId,omitempty"`
	Settings     json.RawMessage `json:"settings,omitempty"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
}

// Server → Client Events

// PlayerView is a player's seat as seen in a snapshot. HoleCards is null for
// seats other than the recipient's unless revealed at showdown; a partially
// revealed hand carries null entries for the still-hidden cards.
type PlayerView struct {
	UserID     string    `json:"userId"`
	Seat       int       `json:"seat"`
	Chips      int       `json:"chips"`
	Status     string    `json:"status"`
	HoleCards  []*string `json:"holeCards"`
	CurrentBet int       `json:"currentBet"`
	TotalBet   int       `json:"totalBet"`
	Folded     bool      `json:"folded"`
	AllIn      bool      `json:"allIn"`
	IsHost     bool      `json:"isHost,omitempty"`
}

type PotView struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// GameStateData is the self-contained table snapshot. Clients replace their
// state with it wholesale, never merge.
type GameStateData struct {
	GameID           string       `json:"gameId"`
	TournamentID     string       `json:"tournamentId,omitempty"`
	JoinCode         string       `json:"joinCode,omitempty"`
	Players          []PlayerView `json:"players"`
	CommunityCards   []string     `json:"communityCards"`
	Pots             []PotView    `json:"pots"`
	ButtonSeat       int          `json:"buttonSeat"`
	SBSeat           int          `json:"sbSeat"`
	BBSeat           int          `json:"bbSeat"`
	CurrentPhase     string       `json:"currentPhase"`
	CurrentActorSeat int          `json:"currentActorSeat"`
	MinRaise         int          `json:"minRaise"`
	LastRaiseAmount  int          `json:"lastRaiseAmount"`
	HandNumber       uint64       `json:"handNumber"`
	SmallBlind       int          `json:"smallBlind"`
	BigBlind         int          `json:"bigBlind"`
	HighBet          int          `json:"highBet"`
	Paused           bool         `json:"paused,omitempty"`
}

type DealStreetData struct {
	GameID         string   `json:"gameId"`
	Round          string   `json:"round"`
	Cards          []string `json:"cards"`
	CommunityCards []string `json:"communityCards"`
}

type HandRunoutData struct {
	GameID     string   `json:"gameId"`
	HandNumber uint64   `json:"handNumber"`
	WinnerID   string   `json:"winnerId"`
	Board      []string `json:"board"`
}

type TurnTimerStartedData struct {
	GameID     string `json:"gameId"`
	Deadline   int64  `json:"deadline"` // epoch millis
	Duration   int64  `json:"duration"` // millis
	ActiveSeat int    `json:"activeSeat"`
}

type PlayerStatusUpdateData struct {
	GameID    string `json:"gameId"`
	PlayerID  string `json:"playerId"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Action    string `json:"action,omitempty"`
}

type SeatVacatedData struct {
	GameID    string `json:"gameId"`
	SeatIndex int    `json:"seatIndex"`
	PlayerID  string `json:"playerId,omitempty"`
}

type MatchFoundData struct {
	GameID       string   `json:"gameId"`
	TournamentID string   `json:"tournamentId,omitempty"`
	QueueType    string   `json:"queueType,omitempty"`
	Players      []string `json:"players,omitempty"`
}

type QueueInfoData struct {
	QueueType string `json:"queueType"`
	Count     int    `json:"count"`
	Needed    int    `json:"needed"`
	Target    int    `json:"target"`
}

type QueueStatusData struct {
	InQueue   bool   `json:"inQueue"`
	QueueType string `json:"queueType,omitempty"`
	Position  int    `json:"position,omitempty"`
	Length    int    `json:"length,omitempty"`
}

type SessionStatusData struct {
	InGame bool   `json:"inGame"`
	GameID string `json:"gameId,omitempty"`
	Status string `json:"status,omitempty"`
}

// ActiveStatusData consolidates a user's live attachments
type ActiveStatusData struct {
	Game       *SessionStatusData `json:"game,omitempty"`
	Tournament *TournamentRef     `json:"tournament,omitempty"`
	Queue      *QueueStatusData   `json:"queue,omitempty"`
}

type TournamentRef struct {
	TournamentID string `json:"tournamentId"`
	Status       string `json:"status"`
}

// GameStats summarizes a finished table game
type GameStats struct {
	TotalHands     uint64         `json:"totalHands"`
	StartingStacks map[string]int `json:"startingStacks"`
	FinalStacks    map[string]int `json:"finalStacks"`
	ChipChanges    map[string]int `json:"chipChanges"`
}

type GameFinishedData struct {
	GameID    string     `json:"gameId"`
	Reason    string     `json:"reason"`
	WinnerID  string     `json:"winnerId,omitempty"`
	Timestamp int64      `json:"timestamp"`
	Stats     *GameStats `json:"stats,omitempty"`
}

type TableInfo struct {
	ID          string `json:"id"`
	Variant     string `json:"variant"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Stakes      string `json:"stakes"`
	Status      string `json:"status"`
	Private     bool   `json:"private"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type ErrorData struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Tournament events

type TournamentStatusData struct {
	TournamentID string `json:"tournamentId"`
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
}

type TournamentRegistrationData struct {
	TournamentID     string `json:"tournamentId"`
	PlayerID         string `json:"playerId"`
	ParticipantCount int    `json:"participantCount"`
}

type TournamentBlindsData struct {
	TournamentID string `json:"tournamentId"`
	Level        int    `json:"level"`
	SmallBlind   int    `json:"smallBlind"`
	BigBlind     int    `json:"bigBlind"`
	LevelEndsAt  int64  `json:"levelEndsAt"` // epoch millis
}

type TournamentLevelWarningData struct {
	TournamentID    string `json:"tournamentId"`
	TimeRemainingMs int64  `json:"timeRemainingMs"`
	CurrentLevel    int    `json:"currentLevel"`
}

type TournamentEliminationData struct {
	TournamentID   string `json:"tournamentId"`
	PlayerID       string `json:"playerId"`
	FinishPosition int    `json:"finishPosition"`
	Remaining      int    `json:"remaining"`
}

type TournamentTransferData struct {
	TournamentID  string `json:"tournamentId"`
	PlayerID      string `json:"playerId"`
	SourceTableID string `json:"sourceTableId"`
	TargetTableID string `json:"targetTableId"`
	TargetSeat    int    `json:"targetSeat"`
	Chips         int    `json:"chips"`
}

type TournamentBalanceData struct {
	TournamentID string   `json:"tournamentId"`
	TableIDs     []string `json:"tableIds"`
	ClosedTables []string `json:"closedTables,omitempty"`
}

// TournamentResult is one row of the final standings
type TournamentResult struct {
	UserID         string `json:"userId"`
	FinishPosition int    `json:"finishPosition"`
	Chips          int    `json:"chips,omitempty"`
}

type TournamentCompletedData struct {
	TournamentID string             `json:"tournamentId"`
	WinnerID     string             `json:"winnerId"`
	Results      []TournamentResult `json:"results"`
	Timestamp    int64              `json:"timestamp"`
}

// TournamentParticipantView is a participant in a state snapshot
type TournamentParticipantView struct {
	UserID         string `json:"userId"`
	Status         string `json:"status"`
	Chips          int    `json:"chips"`
	TableID        string `json:"tableId,omitempty"`
	Seat           int    `json:"seat,omitempty"`
	FinishPosition int    `json:"finishPosition,omitempty"`
}

// TournamentStateData is the authoritative tournament snapshot
type TournamentStateData struct {
	TournamentID     string                      `json:"tournamentId"`
	HostID           string                      `json:"hostId"`
	Status           string                      `json:"status"`
	CurrentLevel     int                         `json:"currentLevel"`
	SmallBlind       int                         `json:"smallBlind"`
	BigBlind         int                         `json:"bigBlind"`
	LevelEndsAt      int64                       `json:"levelEndsAt,omitempty"`
	ParticipantCount int                         `json:"participantCount"`
	ActiveCount      int                         `json:"activeCount"`
	Participants     []TournamentParticipantView `json:"participants"`
	TableIDs         []string                    `json:"tableIds"`
}

type TournamentFinishPositionData struct {
	TournamentID   string `json:"tournamentId"`
	FinishPosition int    `json:"finishPosition"`
}
