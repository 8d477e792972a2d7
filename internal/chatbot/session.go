package chatbot

import (
	"sync"
	"time"

	"chorebot-api/internal/common"
)

// DefaultSessionTimeout drops a pending conversation step after inactivity
const DefaultSessionTimeout = 10 * time.Minute

// SessionManager keeps per-user conversation state in memory. Sessions idle
// for longer than the timeout are treated as absent and evicted lazily.
type SessionManager struct {
	sessions map[int64]*ChatSession
	mutex    sync.Mutex
	clock    common.Clock
	timeout  time.Duration
}

func NewSessionManager(clock common.Clock, timeout time.Duration) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &SessionManager{
		sessions: make(map[int64]*ChatSession),
		clock:    clock,
		timeout:  timeout,
	}
}

// Get returns a copy of the user's live session
func (sm *SessionManager) Get(userID int64) (ChatSession, bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session, ok := sm.liveLocked(userID)
	if !ok {
		return ChatSession{}, false
	}
	return *session, true
}

// Await records that the next text message from the user answers state
func (sm *SessionManager) Await(userID, chatID int64, state SessionState, taskID uint) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session := sm.touchLocked(userID, chatID)
	session.State = state
	session.TaskID = taskID
}

// Reset clears the pending step but keeps view preferences
func (sm *SessionManager) Reset(userID int64) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if session, ok := sm.sessions[userID]; ok {
		session.State = SessionStateIdle
		session.TaskID = 0
		session.LastActivity = sm.clock.Now()
	}
}

// ToggleShowChecked flips the shopping view mode and returns the new value
func (sm *SessionManager) ToggleShowChecked(userID, chatID int64) bool {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session := sm.touchLocked(userID, chatID)
	session.ShowChecked = !session.ShowChecked
	return session.ShowChecked
}

// ShowChecked reports the shopping view mode, false by default
func (sm *SessionManager) ShowChecked(userID int64) bool {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if session, ok := sm.liveLocked(userID); ok {
		return session.ShowChecked
	}
	return false
}

// Cleanup evicts every expired session and returns how many were removed
func (sm *SessionManager) Cleanup() int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	removed := 0
	cutoff := sm.clock.Now().Add(-sm.timeout)
	for userID, session := range sm.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(sm.sessions, userID)
			removed++
		}
	}
	return removed
}

func (sm *SessionManager) Len() int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	return len(sm.sessions)
}

func (sm *SessionManager) liveLocked(userID int64) (*ChatSession, bool) {
	session, ok := sm.sessions[userID]
	if !ok {
		return nil, false
	}
	if sm.clock.Now().Sub(session.LastActivity) > sm.timeout {
		delete(sm.sessions, userID)
		return nil, false
	}
	return session, true
}

func (sm *SessionManager) touchLocked(userID, chatID int64) *ChatSession {
	session, ok := sm.liveLocked(userID)
	if !ok {
		session = &ChatSession{UserID: userID, State: SessionStateIdle}
		sm.sessions[userID] = session
	}
	session.ChatID = chatID
	session.LastActivity = sm.clock.Now()
	return session
}
