package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"kumpul/server/internal/models"
)

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory Store used by the test suite and for local
// development without a database. It mirrors the PostgresStore semantics,
// including the uniqueness guarantees on event conversations and direct
// pairs.
type MemoryStore struct {
	mu sync.Mutex

	conversations map[int64]*models.Conversation
	participants  map[int64]map[int64]*models.Participant // conversationID -> userID
	messages      map[int64][]*models.Message             // conversationID, insertion order
	byEvent       map[int64]int64                         // eventID -> conversationID
	byDirectKey   map[string]int64
	byMessageID   map[int64]*models.Message

	users  map[int64]models.UserProfile
	events map[int64]string

	nextConversationID int64
	nextMessageID      int64
	clock              func() time.Time
	lastStamp          time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[int64]*models.Conversation),
		participants:  make(map[int64]map[int64]*models.Participant),
		messages:      make(map[int64][]*models.Message),
		byEvent:       make(map[int64]int64),
		byDirectKey:   make(map[string]int64),
		byMessageID:   make(map[int64]*models.Message),
		users:         make(map[int64]models.UserProfile),
		events:        make(map[int64]string),
		clock:         time.Now,
	}
}

// SeedUser registers a platform user for directory lookups.
func (s *MemoryStore) SeedUser(profile models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.ID] = profile
}

// SeedEvent registers a platform event for directory lookups.
func (s *MemoryStore) SeedEvent(eventID int64, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[eventID] = title
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// now returns a timestamp no earlier than any previously issued one, so
// message order stays total even when the wall clock is coarse.
func (s *MemoryStore) now() time.Time {
	t := s.clock()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t
}

func (s *MemoryStore) addParticipantLocked(conversationID, userID int64, at time.Time) {
	members := s.participants[conversationID]
	if members == nil {
		members = make(map[int64]*models.Participant)
		s.participants[conversationID] = members
	}
	if _, ok := members[userID]; ok {
		return
	}
	members[userID] = &models.Participant{
		ConversationID: conversationID,
		UserID:         userID,
		JoinedAt:       at,
	}
}

func (s *MemoryStore) EnsureEventConversation(ctx context.Context, eventID int64, title string, creatorID int64) (*models.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEvent[eventID]; ok {
		conv := *s.conversations[id]
		return &conv, false, nil
	}

	s.nextConversationID++
	event := eventID
	name := title
	conv := &models.Conversation{
		ID:        s.nextConversationID,
		Type:      models.ConversationEvent,
		Title:     &name,
		EventID:   &event,
		CreatedBy: creatorID,
		CreatedAt: s.now(),
	}
	s.conversations[conv.ID] = conv
	s.byEvent[eventID] = conv.ID
	s.addParticipantLocked(conv.ID, creatorID, conv.CreatedAt)

	out := *conv
	return &out, true, nil
}

func (s *MemoryStore) EnsureDirectConversation(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := directKey(userA, userB)
	if id, ok := s.byDirectKey[key]; ok {
		conv := *s.conversations[id]
		return &conv, false, nil
	}

	s.nextConversationID++
	conv := &models.Conversation{
		ID:        s.nextConversationID,
		Type:      models.ConversationDirect,
		CreatedBy: userA,
		CreatedAt: s.now(),
	}
	s.conversations[conv.ID] = conv
	s.byDirectKey[key] = conv.ID
	s.addParticipantLocked(conv.ID, userA, conv.CreatedAt)
	s.addParticipantLocked(conv.ID, userB, conv.CreatedAt)

	out := *conv
	return &out, true, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *conv
	return &out, nil
}

func (s *MemoryStore) AddParticipant(ctx context.Context, conversationID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return ErrNotFound
	}
	s.addParticipantLocked(conversationID, userID, s.now())
	return nil
}

func (s *MemoryStore) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.participants[conversationID][userID]
	return ok, nil
}

func (s *MemoryStore) ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.participants[conversationID]
	ids := make([]int64, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) SetLastRead(ctx context.Context, conversationID, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[conversationID][userID]
	if !ok {
		return ErrNotFound
	}
	stamp := at
	p.LastReadAt = &stamp
	return nil
}

func (s *MemoryStore) InsertMessage(ctx context.Context, p InsertMessageParams) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[p.ConversationID]; !ok {
		return nil, ErrNotFound
	}

	s.nextMessageID++
	msg := &models.Message{
		ID:             s.nextMessageID,
		SenderID:       p.SenderID,
		ConversationID: p.ConversationID,
		ReceiverID:     p.ReceiverID,
		Content:        p.Content,
		CreatedAt:      s.now(),
	}
	s.messages[p.ConversationID] = append(s.messages[p.ConversationID], msg)
	s.byMessageID[msg.ID] = msg

	out := *msg
	return &out, nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[conversationID]
	out := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, *msg)
	}
	return out, nil
}

func (s *MemoryStore) ListConversationSummaries(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []models.ConversationSummary
	for convID, members := range s.participants {
		p, ok := members[userID]
		if !ok {
			continue
		}
		msgs := s.messages[convID]
		if len(msgs) == 0 {
			// Quiet conversations never show up in the inbox.
			continue
		}
		conv := s.conversations[convID]
		last := *msgs[len(msgs)-1]

		unread := last.SenderID != userID
		if unread && p.LastReadAt != nil && !last.CreatedAt.After(*p.LastReadAt) {
			unread = false
		}

		sum := models.ConversationSummary{
			ID:               conv.ID,
			Type:             conv.Type,
			Title:            conv.Title,
			EventID:          conv.EventID,
			ParticipantCount: len(members),
			LastMessage: models.LastMessage{
				SenderID:  last.SenderID,
				Content:   last.Content,
				CreatedAt: last.CreatedAt,
			},
			Unread: unread,
		}
		if conv.Type == models.ConversationDirect {
			for memberID := range members {
				if memberID == userID {
					continue
				}
				if profile, ok := s.users[memberID]; ok {
					peer := profile
					sum.Peer = &peer
				}
			}
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage.CreatedAt, summaries[j].LastMessage.CreatedAt
		if a.Equal(b) {
			return summaries[i].ID > summaries[j].ID
		}
		return a.After(b)
	})
	return summaries, nil
}

func (s *MemoryStore) MarkMessageRead(ctx context.Context, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byMessageID[messageID]
	if !ok || msg.ReceiverID == nil {
		return ErrNotFound
	}
	msg.IsRead = true
	return nil
}

func (s *MemoryStore) MarkAllMessagesRead(ctx context.Context, receiverID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msgs := range s.messages {
		for i := range msgs {
			if msgs[i].ReceiverID != nil && *msgs[i].ReceiverID == receiverID {
				msgs[i].IsRead = true
			}
		}
	}
	return nil
}

func (s *MemoryStore) GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := profile
	return &out, nil
}

func (s *MemoryStore) GetEventTitle(ctx context.Context, eventID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, ok := s.events[eventID]
	if !ok {
		return "", ErrNotFound
	}
	return title, nil
}
