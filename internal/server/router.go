package server

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/lobby"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/tournament"
)

var (
	errNotFound       = errors.New("game not found")
	errUnknownCommand = errors.New("unknown command")
)

// SessionRouter maps inbound socket commands onto the service. It validates
// and authorizes but never mutates game state itself; tables, the matchmaker
// and tournament supervisors do their own mutation on their own goroutines.
type SessionRouter struct {
	service   *Service
	broadcast *Broadcaster
	logger    *log.Logger
}

// NewSessionRouter creates the command dispatcher
func NewSessionRouter(service *Service, broadcast *Broadcaster, logger *log.Logger) *SessionRouter {
	return &SessionRouter{
		service:   service,
		broadcast: broadcast,
		logger:    logger.WithPrefix("router"),
	}
}

// Dispatch routes one parsed command from a socket
func (r *SessionRouter) Dispatch(conn *Connection, msg *protocol.Message) {
	userID := conn.UserID()
	if err := r.dispatch(conn, userID, msg); err != nil {
		conn.SendError(string(msg.Type)+"_failed", err.Error())
	}
}

func (r *SessionRouter) dispatch(conn *Connection, userID string, msg *protocol.Message) error {
	switch msg.Type {
	case protocol.TypeJoinGame:
		var data protocol.JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		snap, err := r.service.JoinGame(userID, data.GameID)
		if err != nil {
			return err
		}
		return conn.SendMessage(protocol.MustMessage(protocol.TypeGameState, snap))

	case protocol.TypeJoinTable:
		var data protocol.JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		snap, err := r.service.JoinGame(userID, data.TableID)
		if err != nil {
			return err
		}
		return conn.SendMessage(protocol.MustMessage(protocol.TypeGameState, snap))

	case protocol.TypeAction:
		var data protocol.ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		tbl, ok := r.service.Table(data.GameID)
		if !ok {
			return errNotFound
		}
		return tbl.HandleAction(userID, data)

	case protocol.TypeJoinQueue:
		var data protocol.JoinQueueData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		if err := r.service.Matchmaker().Join(userID, data.QueueType); err != nil {
			return err
		}
		r.broadcast.JoinRoom(userID, lobby.QueueRoom(data.QueueType))
		return nil

	case protocol.TypeLeaveQueue:
		var data protocol.LeaveQueueData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		r.broadcast.LeaveRoom(userID, lobby.QueueRoom(data.QueueType))
		return r.service.Matchmaker().Leave(userID, data.QueueType)

	case protocol.TypeCheckQueueStatus:
		status := r.service.Matchmaker().Status(userID)
		return conn.SendMessage(protocol.MustMessage(protocol.TypeQueueStatus, status))

	case protocol.TypeCheckActiveSession:
		session := r.service.ActiveSession(userID)
		return conn.SendMessage(protocol.MustMessage(protocol.TypeSessionStatus, session))

	case protocol.TypeCheckActiveStatus:
		status := r.service.ActiveStatus(userID)
		return conn.SendMessage(protocol.MustMessage(protocol.TypeActiveStatus, status))

	case protocol.TypeListTables:
		return conn.SendMessage(protocol.MustMessage(protocol.TypeTableList, r.service.ListTables()))

	case protocol.TypeCreatePrivateGame:
		var data protocol.CreatePrivateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		tbl, err := r.service.CreatePrivateGame(userID, data.Variant)
		if err != nil {
			return err
		}
		return conn.SendMessage(protocol.MustMessage(protocol.TypeGameState, tbl.Join(userID)))

	case protocol.TypeJoinByCode:
		var data protocol.JoinByCodeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		gameID, err := r.service.ResolveJoinCode(data.Code)
		if err != nil {
			return err
		}
		snap, err := r.service.JoinGame(userID, gameID)
		if err != nil {
			return err
		}
		return conn.SendMessage(protocol.MustMessage(protocol.TypeGameState, snap))

	case protocol.TypeRequestSeat:
		var data protocol.RequestSeatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		tbl, ok := r.service.Table(data.GameID)
		if !ok {
			return errNotFound
		}
		return tbl.RequestSeat(userID)

	case protocol.TypeHostSelfSeat:
		var data protocol.HostSelfSeatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		tbl, ok := r.service.Table(data.GameID)
		if !ok {
			return errNotFound
		}
		return tbl.HostSelfSeat(userID, data.SeatIndex)

	case protocol.TypeAdminAction:
		var data protocol.AdminActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		tbl, ok := r.service.Table(data.GameID)
		if !ok {
			return errNotFound
		}
		return tbl.Admin(userID, data)

	case protocol.TypeCreateTournament:
		var settings tournament.Settings
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &settings); err != nil {
				return err
			}
		}
		sup, err := r.service.CreateTournament(userID, settings)
		if err != nil {
			return err
		}
		return conn.SendMessage(protocol.MustMessage(protocol.TypeTournamentState, sup.State()))

	case protocol.TypeRegisterTournament:
		var data protocol.RegisterTournamentData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		sup, ok := r.service.Tournament(data.TournamentID)
		if !ok {
			return errNotFound
		}
		r.broadcast.JoinRoom(userID, sup.ID())
		return sup.Register(userID)

	case protocol.TypeUnregisterTournament:
		var data protocol.RegisterTournamentData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		sup, ok := r.service.Tournament(data.TournamentID)
		if !ok {
			return errNotFound
		}
		return sup.Unregister(userID)

	case protocol.TypeTournamentAdminAction:
		var data protocol.TournamentAdminActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		sup, ok := r.service.Tournament(data.TournamentID)
		if !ok {
			return errNotFound
		}
		return sup.Admin(userID, data)

	case protocol.TypeGetTournamentState:
		var data protocol.RegisterTournamentData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		sup, ok := r.service.Tournament(data.TournamentID)
		if !ok {
			return errNotFound
		}
		return conn.SendMessage(protocol.MustMessage(protocol.TypeTournamentState, sup.State()))

	case protocol.TypeJoinTournamentRoom:
		var data protocol.RegisterTournamentData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		sup, ok := r.service.Tournament(data.TournamentID)
		if !ok {
			return errNotFound
		}
		r.broadcast.JoinRoom(userID, sup.ID())
		return conn.SendMessage(protocol.MustMessage(protocol.TypeTournamentState, sup.State()))

	default:
		r.logger.Debug("unknown command", "type", msg.Type, "userId", userID)
		return errUnknownCommand
	}
}
