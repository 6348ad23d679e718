package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// SessionStore owns every session, its ordered message log and the resource
// handles held by those messages. All methods are safe for concurrent use;
// appends to one session are linearized by the store lock.
//
// Resource handles are released outside the lock, exactly once, when the
// owning session is deleted or the store is closed.
type SessionStore struct {
	mu       sync.RWMutex
	sessions []entity.Session
	messages map[entity.SessionID][]entity.Message
	activeID entity.SessionID
	seq      entity.MessageID

	releaser domain.ResourceAllocator
	now      func() time.Time
	newID    func() entity.SessionID
	logger   *slog.Logger
}

// NewSessionStore creates an empty store. releaser frees the handles of
// binary document artifacts and may be nil when no allocator is in use.
func NewSessionStore(releaser domain.ResourceAllocator, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		messages: make(map[entity.SessionID][]entity.Message),
		releaser: releaser,
		now:      time.Now,
		newID:    func() entity.SessionID { return entity.SessionID(uuid.NewString()) },
		logger:   logger.With("component", "session_store"),
	}
}

// CreateSession appends a new session named after the current session count
// and makes it active
func (s *SessionStore) CreateSession() entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.exists(id) {
		id = s.newID()
	}

	session := entity.Session{
		ID:          id,
		DisplayName: fmt.Sprintf("New Session %d", len(s.sessions)+1),
		CreatedAt:   s.now(),
	}
	s.sessions = append(s.sessions, session)
	s.messages[id] = nil
	s.activeID = id

	s.logger.Debug("session created", "session_id", id, "name", session.DisplayName)
	return session
}

// SelectSession makes id the active session. An unknown id leaves the active
// session unchanged and returns a SessionNotFound error, which callers are
// free to ignore.
func (s *SessionStore) SelectSession(id entity.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(id) {
		return domain.NewSessionNotFoundError(id)
	}
	s.activeID = id
	return nil
}

// DeleteSession removes a session and its log, releasing every resource
// handle the log holds. Unknown ids are a no-op. It reports whether a session
// was removed.
func (s *SessionStore) DeleteSession(ctx context.Context, id entity.SessionID) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	log := s.messages[id]
	s.sessions = append(s.sessions[:idx:idx], s.sessions[idx+1:]...)
	delete(s.messages, id)
	if s.activeID == id {
		s.activeID = ""
	}
	s.mu.Unlock()

	released := s.releaseAll(ctx, log)
	s.logger.Debug("session deleted", "session_id", id, "messages", len(log), "released", released)
	return true
}

// AppendMessage appends a message to sessionID. It fails with a
// SessionNotFound error if the session is gone; the caller then still owns
// any resource held by artifact and must release it.
func (s *SessionStore) AppendMessage(sessionID entity.SessionID, sender entity.Sender, artifact entity.Artifact) (entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(sessionID) {
		return entity.Message{}, domain.NewSessionNotFoundError(sessionID)
	}

	s.seq++
	msg := entity.Message{ID: s.seq, Sender: sender, Artifact: artifact}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return msg, nil
}

// Hydrate inserts sessions that are not already present, in order, together
// with their messages. Existing sessions and the active selection are left
// untouched. It returns the number of sessions inserted.
func (s *SessionStore) Hydrate(sessions []domain.HydratedSession) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, hs := range sessions {
		if hs.Session.ID == "" || s.exists(hs.Session.ID) {
			continue
		}
		session := hs.Session
		if session.DisplayName == "" {
			session.DisplayName = fmt.Sprintf("Session %s", session.ID)
		}
		s.sessions = append(s.sessions, session)

		log := make([]entity.Message, 0, len(hs.Messages))
		for _, hm := range hs.Messages {
			s.seq++
			log = append(log, entity.Message{ID: s.seq, Sender: hm.Sender, Artifact: hm.Artifact})
		}
		s.messages[session.ID] = log
		inserted++
	}
	return inserted
}

// Sessions returns a copy of the ordered session list
func (s *SessionStore) Sessions() []entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Session(nil), s.sessions...)
}

// Session returns the session with id
func (s *SessionStore) Session(id entity.SessionID) (entity.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.sessions[idx], true
	}
	return entity.Session{}, false
}

// ActiveSessionID returns the active session id, or "" when none is active
func (s *SessionStore) ActiveSessionID() entity.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveSession returns the active session, if any
func (s *SessionStore) ActiveSession() (entity.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return entity.Session{}, false
	}
	return s.sessions[s.indexOf(s.activeID)], true
}

// Messages returns a copy of the message log of id (nil for unknown ids)
func (s *SessionStore) Messages(id entity.SessionID) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Message(nil), s.messages[id]...)
}

// ActiveMessages returns a copy of the active session's message log
func (s *SessionStore) ActiveMessages() []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return nil
	}
	return append([]entity.Message(nil), s.messages[s.activeID]...)
}

// Len returns the number of sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close tears the store down: every session is removed and every resource
// handle released. The store is empty and usable afterwards.
func (s *SessionStore) Close(ctx context.Context) {
	s.mu.Lock()
	var logs []entity.Message
	for _, session := range s.sessions {
		logs = append(logs, s.messages[session.ID]...)
	}
	s.sessions = nil
	s.messages = make(map[entity.SessionID][]entity.Message)
	s.activeID = ""
	s.mu.Unlock()

	released := s.releaseAll(ctx, logs)
	s.logger.Debug("session store closed", "released", released)
}

// releaseAll releases the handle of every document artifact in log.
// Failures are logged; each handle is attempted exactly once.
func (s *SessionStore) releaseAll(ctx context.Context, log []entity.Message) int {
	if s.releaser == nil {
		return 0
	}
	released := 0
	for _, msg := range log {
		handle, ok := entity.OwnedResource(msg.Artifact)
		if !ok {
			continue
		}
		if err := s.releaser.Release(ctx, handle); err != nil {
			s.logger.Warn("failed to release resource", "handle", handle, "message_id", msg.ID, "error", err)
			continue
		}
		released++
	}
	return released
}

func (s *SessionStore) exists(id entity.SessionID) bool {
	_, ok := s.messages[id]
	return ok
}

func (s *SessionStore) indexOf(id entity.SessionID) int {
	for i, session := range s.sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}
