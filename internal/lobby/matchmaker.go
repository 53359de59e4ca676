// Package lobby implements matchmaking: one FIFO queue per variant. When a
// queue reaches the variant's target size the head entries are dequeued and a
// table is minted atomically under the queue's lock, so a user can never be
// matched twice.
package lobby

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/table"
)

// Broadcaster delivers queue events to subscribed users
type Broadcaster interface {
	Publish(room string, msg *protocol.Message)
	PublishTo(userID string, msg *protocol.Message)
}

// TableMinter creates and seats a table for the matched users, returning the
// new table's id. Seating order follows the queue order.
type TableMinter func(variant table.Variant, userIDs []string) (string, error)

// ActiveChecker reports whether a user is already in a live game; queued
// users must not be.
type ActiveChecker func(userID string) bool

type queue struct {
	mu      sync.Mutex
	variant table.Variant
	entries []string
}

// Matchmaker owns the per-variant queues. A user may wait in at most one
// queue across all variants.
type Matchmaker struct {
	logger    *log.Logger
	broadcast Broadcaster
	mint      TableMinter
	inGame    ActiveChecker

	queues map[string]*queue

	mu        sync.Mutex
	userQueue map[string]string // userID -> variant slug
}

// QueueRoom names the broadcast room for a variant's queue watchers
func QueueRoom(slug string) string {
	return "queue:" + slug
}

// New creates a matchmaker for the given variants
func New(variants []table.Variant, mint TableMinter, broadcast Broadcaster, inGame ActiveChecker, logger *log.Logger) *Matchmaker {
	m := &Matchmaker{
		logger:    logger.WithPrefix("lobby"),
		broadcast: broadcast,
		mint:      mint,
		inGame:    inGame,
		queues:    make(map[string]*queue, len(variants)),
		userQueue: make(map[string]string),
	}
	for _, v := range variants {
		m.queues[v.Slug] = &queue{variant: v}
	}
	return m
}

// Variants lists the queueable variants
func (m *Matchmaker) Variants() []table.Variant {
	out := make([]table.Variant, 0, len(m.queues))
	for _, q := range m.queues {
		out = append(out, q.variant)
	}
	return out
}

// Variant looks up a variant by slug
func (m *Matchmaker) Variant(slug string) (table.Variant, bool) {
	q, ok := m.queues[slug]
	if !ok {
		return table.Variant{}, false
	}
	return q.variant, true
}

// Join enqueues userID for the variant. It rejects users already queued
// anywhere or already playing. Reaching the target size dequeues the head
// entries and mints their table before the queue lock is released.
func (m *Matchmaker) Join(userID, slug string) error {
	q, ok := m.queues[slug]
	if !ok {
		return fmt.Errorf("unknown queue %q", slug)
	}
	if m.inGame != nil && m.inGame(userID) {
		return fmt.Errorf("already in an active game")
	}

	m.mu.Lock()
	if existing, queued := m.userQueue[userID]; queued {
		m.mu.Unlock()
		return fmt.Errorf("already queued for %s", existing)
	}
	m.userQueue[userID] = slug
	m.mu.Unlock()

	q.mu.Lock()
	q.entries = append(q.entries, userID)
	m.logger.Info("queue joined", "queueType", slug, "userId", userID, "length", len(q.entries))

	var matched []string
	if len(q.entries) >= q.variant.QueueTarget() {
		matched = append(matched, q.entries[:q.variant.QueueTarget()]...)
		q.entries = q.entries[q.variant.QueueTarget():]
	}
	length := len(q.entries)
	q.mu.Unlock()

	if matched != nil {
		m.launch(q.variant, matched)
	} else {
		// Joiners go to the back of the line
		m.broadcast.PublishTo(userID, protocol.MustMessage(protocol.TypeQueueUpdate, protocol.QueueStatusData{
			InQueue: true, QueueType: slug, Position: length, Length: length,
		}))
	}
	m.publishInfo(slug, length)
	return nil
}

// Leave removes userID from the variant's queue
func (m *Matchmaker) Leave(userID, slug string) error {
	q, ok := m.queues[slug]
	if !ok {
		return fmt.Errorf("unknown queue %q", slug)
	}

	q.mu.Lock()
	found := false
	for i, id := range q.entries {
		if id == userID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			found = true
			break
		}
	}
	length := len(q.entries)
	q.mu.Unlock()

	if !found {
		return fmt.Errorf("not in queue")
	}
	m.mu.Lock()
	delete(m.userQueue, userID)
	m.mu.Unlock()

	m.broadcast.PublishTo(userID, protocol.MustMessage(protocol.TypeQueueUpdate, protocol.QueueStatusData{
		InQueue: false, QueueType: slug,
	}))
	m.publishInfo(slug, length)
	return nil
}

// Remove drops userID from whatever queue they wait in, e.g. on disconnect
func (m *Matchmaker) Remove(userID string) {
	m.mu.Lock()
	slug, queued := m.userQueue[userID]
	m.mu.Unlock()
	if queued {
		_ = m.Leave(userID, slug)
	}
}

// Status reports userID's queue membership
func (m *Matchmaker) Status(userID string) protocol.QueueStatusData {
	m.mu.Lock()
	slug, queued := m.userQueue[userID]
	m.mu.Unlock()
	if !queued {
		return protocol.QueueStatusData{InQueue: false}
	}
	q := m.queues[slug]
	q.mu.Lock()
	defer q.mu.Unlock()
	pos := 0
	for i, id := range q.entries {
		if id == userID {
			pos = i + 1
			break
		}
	}
	return protocol.QueueStatusData{
		InQueue:   true,
		QueueType: slug,
		Position:  pos,
		Length:    len(q.entries),
	}
}

// launch mints the table for a full match and notifies every matched user
func (m *Matchmaker) launch(v table.Variant, userIDs []string) {
	m.mu.Lock()
	for _, id := range userIDs {
		delete(m.userQueue, id)
	}
	m.mu.Unlock()

	gameID, err := m.mint(v, userIDs)
	if err != nil {
		m.logger.Error("mint table", "queueType", v.Slug, "error", err)
		for _, id := range userIDs {
			m.broadcast.PublishTo(id, protocol.MustMessage(protocol.TypeError, protocol.ErrorData{
				Error: "match_failed", Message: "Could not create game, please requeue",
			}))
		}
		return
	}
	m.logger.Info("match found", "queueType", v.Slug, "gameId", gameID, "players", len(userIDs))
	for _, id := range userIDs {
		m.broadcast.PublishTo(id, protocol.MustMessage(protocol.TypeMatchFound, protocol.MatchFoundData{
			GameID:    gameID,
			QueueType: v.Slug,
			Players:   userIDs,
		}))
	}
}

// publishInfo broadcasts queue length to the queue's watchers
func (m *Matchmaker) publishInfo(slug string, length int) {
	q := m.queues[slug]
	target := q.variant.QueueTarget()
	needed := target - length
	if needed < 0 {
		needed = 0
	}
	msg := protocol.MustMessage(protocol.TypeQueueInfo, protocol.QueueInfoData{
		QueueType: slug,
		Count:     length,
		Needed:    needed,
		Target:    target,
	})
	m.broadcast.Publish(QueueRoom(slug), msg)
}
