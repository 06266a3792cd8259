package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var roomTracer = otel.Tracer("room-service")

const (
	// tombstoneTTL bounds how long a deleted room id keeps refusing joins.
	tombstoneTTL = time.Minute
	dropReason   = "delivery failed"
)

type member struct {
	profile domain.UserProfile
	ch      contracts.Channel
	seq     uint64
}

// roomSession is dead once it has been removed from the table; holders must retry.
type roomSession struct {
	mu      sync.Mutex
	members map[string]*member
	dead    bool
}

// sorted returns members in join order.
func (s *roomSession) sorted() []*member {
	ms := lo.Values(s.members)
	sort.Slice(ms, func(i, j int) bool { return ms[i].seq < ms[j].seq })
	return ms
}

// RoomManager keeps the live membership of audio rooms in memory. A room exists
// here only while it has at least one member.
type RoomManager struct {
	mu      sync.Mutex
	rooms   map[string]*roomSession
	deleted map[string]time.Time // room id -> deletion time
	seq     uint64
	repo    domain.RoomRepository
	log     *slog.Logger
}

func NewRoomManager(log *slog.Logger, repo domain.RoomRepository) *RoomManager {
	return &RoomManager{
		rooms:   make(map[string]*roomSession),
		deleted: make(map[string]time.Time),
		repo:    repo,
		log:     log,
	}
}

// lockSession returns the locked, live session for roomID, creating it when create is set.
// It returns nil for a room deleted within tombstoneTTL, even when create is set.
func (m *RoomManager) lockSession(roomID string, create bool) *roomSession {
	for {
		m.mu.Lock()
		s, ok := m.rooms[roomID]
		if !ok {
			if !create || m.deletedLocked(roomID) {
				m.mu.Unlock()
				return nil
			}
			s = &roomSession{members: make(map[string]*member)}
			m.rooms[roomID] = s
		}
		m.mu.Unlock()

		s.mu.Lock()
		if !s.dead {
			return s
		}
		s.mu.Unlock()
	}
}

// gcLocked drops an empty session from the table. s.mu must be held.
func (m *RoomManager) gcLocked(roomID string, s *roomSession) {
	if len(s.members) > 0 {
		return
	}
	s.dead = true
	m.mu.Lock()
	if m.rooms[roomID] == s {
		delete(m.rooms, roomID)
	}
	m.mu.Unlock()
	m.log.Debug("rooms - gc - removed empty room", logging.Room(roomID))
}

// deletedLocked reports a recent tombstone. m.mu must be held.
func (m *RoomManager) deletedLocked(roomID string) bool {
	at, ok := m.deleted[roomID]
	return ok && time.Since(at) < tombstoneTTL
}

// tombstoneLocked records roomID as deleted and forgets expired ids. m.mu must be held.
func (m *RoomManager) tombstoneLocked(roomID string) {
	now := time.Now()
	for id, at := range m.deleted {
		if now.Sub(at) >= tombstoneTTL {
			delete(m.deleted, id)
		}
	}
	m.deleted[roomID] = now
}

// dropLocked removes a member whose channel refused a frame and closes that channel,
// so its reader exits and the usual cleanup runs. s.mu must be held.
func (m *RoomManager) dropLocked(ctx context.Context, roomID string, s *roomSession, userID string, err error) {
	mem, ok := s.members[userID]
	if !ok {
		return
	}
	delete(s.members, userID)
	mem.ch.Close(domain.CloseServerError, dropReason)
	m.log.WarnContext(ctx, "rooms - send - dropped member", logging.Room(roomID), logging.User(userID), logging.Err(err))
}

func (m *RoomManager) nextSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// broadcastLocked sends data to every member except exclude and drops members whose
// channel fails. s.mu must be held.
func (m *RoomManager) broadcastLocked(ctx context.Context, roomID string, s *roomSession, data []byte, exclude string) int {
	delivered := 0
	for id, mem := range s.members {
		if id == exclude {
			continue
		}
		if err := mem.ch.Send(ctx, data); err != nil {
			m.dropLocked(ctx, roomID, s, id, err)
			continue
		}
		delivered++
	}
	return delivered
}

// Join admits a member to a live room and returns the profiles already present.
// A second join by the same user replaces and closes the previous channel.
func (m *RoomManager) Join(ctx context.Context, roomID string, profile domain.UserProfile, ch contracts.Channel) ([]domain.UserProfile, error) {
	ctx, span := roomTracer.Start(ctx, "RoomManager.Join", trace.WithAttributes(
		attribute.String("room_id", roomID),
		attribute.String("user_id", profile.ID),
	))
	defer span.End()

	room, err := m.repo.GetRoom(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "room lookup failed")
		return nil, err
	}
	if !room.IsLive {
		return nil, domain.ErrRoomNotLive
	}

	joined, err := domain.Encode(domain.NewUserJoined(roomID, profile))
	if err != nil {
		return nil, err
	}
	seq := m.nextSeq()

	s := m.lockSession(roomID, true)
	if s == nil {
		m.log.InfoContext(ctx, "rooms - join - room deleted meanwhile", logging.Room(roomID), logging.User(profile.ID))
		return nil, domain.ErrRoomNotFound
	}
	defer s.mu.Unlock()

	existing := lo.FilterMap(s.sorted(), func(mem *member, _ int) (domain.UserProfile, bool) {
		return mem.profile, mem.profile.ID != profile.ID
	})
	prev := s.members[profile.ID]
	s.members[profile.ID] = &member{profile: profile, ch: ch, seq: seq}
	if prev != nil && prev.ch != ch {
		prev.ch.Close(domain.CloseNormal, "replaced by a newer connection")
	}

	connected, err := domain.Encode(domain.NewConnected(roomID, profile, existing))
	if err == nil {
		err = ch.Send(ctx, connected)
	}
	if err != nil {
		delete(s.members, profile.ID)
		m.gcLocked(roomID, s)
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectionGone, err)
	}
	delivered := m.broadcastLocked(ctx, roomID, s, joined, profile.ID)

	m.log.InfoContext(ctx, "rooms - join - ok", logging.Room(roomID), logging.User(profile.ID),
		logging.Members(len(s.members)), slog.Int("notified", delivered))
	return existing, nil
}

// Leave removes userID regardless of which channel it holds and tells the others.
func (m *RoomManager) Leave(ctx context.Context, roomID, userID string) bool {
	s := m.lockSession(roomID, false)
	if s == nil {
		return false
	}
	defer s.mu.Unlock()

	mem, ok := s.members[userID]
	if !ok {
		return false
	}
	delete(s.members, userID)
	m.announceLeftLocked(ctx, roomID, s, mem.profile)
	m.gcLocked(roomID, s)
	return true
}

// Detach is the connection cleanup path. Membership is only removed when ch still
// owns it; peers are told the user left unless a newer connection took over.
func (m *RoomManager) Detach(ctx context.Context, roomID string, profile domain.UserProfile, ch contracts.Channel) {
	s := m.lockSession(roomID, false)
	if s == nil {
		return
	}
	defer s.mu.Unlock()

	if cur, ok := s.members[profile.ID]; ok {
		if cur.ch != ch {
			m.log.DebugContext(ctx, "rooms - detach - superseded", logging.Room(roomID), logging.User(profile.ID))
			return
		}
		delete(s.members, profile.ID)
	}
	m.announceLeftLocked(ctx, roomID, s, profile)
	m.gcLocked(roomID, s)
	m.log.InfoContext(ctx, "rooms - detach - ok", logging.Room(roomID), logging.User(profile.ID), logging.Members(len(s.members)))
}

func (m *RoomManager) announceLeftLocked(ctx context.Context, roomID string, s *roomSession, profile domain.UserProfile) {
	data, err := domain.Encode(domain.NewUserLeft(roomID, profile))
	if err != nil {
		m.log.ErrorContext(ctx, "rooms - leave - encode failed", logging.Room(roomID), logging.Err(err))
		return
	}
	m.broadcastLocked(ctx, roomID, s, data, profile.ID)
}

// Broadcast returns how many members accepted the envelope.
func (m *RoomManager) Broadcast(ctx context.Context, roomID string, env domain.Envelope, excludeUserID string) int {
	data, err := domain.Encode(env)
	if err != nil {
		m.log.ErrorContext(ctx, "rooms - broadcast - encode failed", logging.Room(roomID), logging.Err(err))
		return 0
	}
	s := m.lockSession(roomID, false)
	if s == nil {
		return 0
	}
	defer s.mu.Unlock()
	n := m.broadcastLocked(ctx, roomID, s, data, excludeUserID)
	m.gcLocked(roomID, s)
	return n
}

// RelaySignal forwards a signalling payload to its target, or to every other
// member when the target is absent or not in the room.
func (m *RoomManager) RelaySignal(ctx context.Context, roomID, fromUserID string, in domain.SignalIn) int {
	data, err := domain.Encode(domain.NewSignal(fromUserID, in))
	if err != nil {
		m.log.ErrorContext(ctx, "rooms - relay signal - encode failed", logging.Room(roomID), logging.Err(err))
		return 0
	}
	s := m.lockSession(roomID, false)
	if s == nil {
		return 0
	}
	defer s.mu.Unlock()

	if _, ok := s.members[fromUserID]; !ok {
		m.log.DebugContext(ctx, "rooms - relay signal - sender not a member", logging.Room(roomID), logging.User(fromUserID))
		return 0
	}
	if target, ok := s.members[in.TargetUserID]; ok && in.TargetUserID != fromUserID {
		if err := target.ch.Send(ctx, data); err != nil {
			m.dropLocked(ctx, roomID, s, in.TargetUserID, err)
			m.gcLocked(roomID, s)
			return 0
		}
		return 1
	}
	n := m.broadcastLocked(ctx, roomID, s, data, fromUserID)
	m.gcLocked(roomID, s)
	return n
}

// Chat echoes to the sender as well so clients can confirm delivery by temp_id.
// Only current members may post.
func (m *RoomManager) Chat(ctx context.Context, roomID string, from domain.UserProfile, in domain.ChatIn) int {
	data, err := domain.Encode(domain.NewChat(roomID, from, in))
	if err != nil {
		m.log.ErrorContext(ctx, "rooms - chat - encode failed", logging.Room(roomID), logging.Err(err))
		return 0
	}
	s := m.lockSession(roomID, false)
	if s == nil {
		return 0
	}
	defer s.mu.Unlock()

	if _, ok := s.members[from.ID]; !ok {
		m.log.DebugContext(ctx, "rooms - chat - sender not a member", logging.Room(roomID), logging.User(from.ID))
		return 0
	}
	n := m.broadcastLocked(ctx, roomID, s, data, "")
	m.gcLocked(roomID, s)
	return n
}

// DeleteRoomAndNotify tells every member the room is gone, closes their sockets
// and forgets the room. Joins already past the storage check are refused afterwards.
func (m *RoomManager) DeleteRoomAndNotify(ctx context.Context, roomID string) int {
	m.mu.Lock()
	s, ok := m.rooms[roomID]
	delete(m.rooms, roomID)
	m.tombstoneLocked(roomID)
	m.mu.Unlock()
	if !ok {
		return 0
	}

	s.mu.Lock()
	s.dead = true
	members := s.sorted()
	s.members = make(map[string]*member)
	s.mu.Unlock()

	// A struct of two strings always marshals.
	data, _ := domain.Encode(domain.NewRoomDeleted())
	for _, mem := range members {
		_ = mem.ch.Send(ctx, data)
		mem.ch.Close(domain.CloseNormal, "room deleted")
	}
	m.log.InfoContext(ctx, "rooms - delete - members notified", logging.Room(roomID), logging.Members(len(members)))
	return len(members)
}

// Members returns user ids in join order.
func (m *RoomManager) Members(roomID string) []string {
	s := m.lockSession(roomID, false)
	if s == nil {
		return []string{}
	}
	defer s.mu.Unlock()
	return lo.Map(s.sorted(), func(mem *member, _ int) string { return mem.profile.ID })
}

func (m *RoomManager) ActiveCount(roomID string) int {
	s := m.lockSession(roomID, false)
	if s == nil {
		return 0
	}
	defer s.mu.Unlock()
	return len(s.members)
}

// RoomService holds the room operations that also touch persistence.
type RoomService struct {
	repo     domain.RoomRepository
	sessions *RoomManager
	tx       contracts.Transactor
	log      *slog.Logger
}

func NewRoomService(log *slog.Logger, repo domain.RoomRepository, sessions *RoomManager, tx contracts.Transactor) *RoomService {
	return &RoomService{repo: repo, sessions: sessions, tx: tx, log: log}
}

// DeleteRoom is host only. The persisted room goes first so later joins fail the
// storage check; joins already past it are refused by the tombstone.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID, requesterID string) error {
	ctx, span := roomTracer.Start(ctx, "RoomService.DeleteRoom", trace.WithAttributes(
		attribute.String("room_id", roomID),
		attribute.String("user_id", requesterID),
	))
	defer span.End()

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if room.HostID != requesterID {
		s.log.WarnContext(ctx, "rooms - delete - not host", logging.Room(roomID), logging.User(requesterID))
		return domain.ErrNotRoomHost
	}
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteRoom(txCtx, roomID)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
		s.log.ErrorContext(ctx, "rooms - delete - persist failed", logging.Room(roomID), logging.Err(err))
		return err
	}
	notified := s.sessions.DeleteRoomAndNotify(ctx, roomID)
	s.log.InfoContext(ctx, "rooms - delete - ok", logging.Room(roomID), logging.Members(notified))
	return nil
}
