package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/darukaearth/rag-server/models"
)

const defaultWebsiteContext = "default"

// Turn is one completed query/answer exchange. Immutable once appended.
type Turn struct {
	Query     string
	Answer    string
	Timestamp time.Time
}

type session struct {
	id        string
	website   string
	createdAt time.Time
	turns     []Turn
}

// SessionStore keeps per-session conversation history, isolated by
// (website context, session id). Appending is the only mutation besides an
// explicit, confirm-gated clear. Safe for concurrent use.
type SessionStore struct {
	mu sync.RWMutex
	// website context -> session id -> session
	sessions map[string]map[string]*session

	maxPerWebsite int
	historyWindow int
}

// NewSessionStore builds a store that keeps at most maxPerWebsite sessions per
// website context and injects at most historyWindow turns into prompts.
func NewSessionStore(maxPerWebsite, historyWindow int) *SessionStore {
	return &SessionStore{
		sessions:      make(map[string]map[string]*session),
		maxPerWebsite: maxPerWebsite,
		historyWindow: historyWindow,
	}
}

func normalizeWebsite(website string) string {
	if website == "" {
		return defaultWebsiteContext
	}
	return website
}

// locked; caller holds s.mu.
func (s *SessionStore) getOrCreateLocked(sessionID, website string) *session {
	byID, ok := s.sessions[website]
	if !ok {
		byID = make(map[string]*session)
		s.sessions[website] = byID
	}
	sess, ok := byID[sessionID]
	if !ok {
		sess = &session{
			id:        sessionID,
			website:   website,
			createdAt: time.Now(),
		}
		byID[sessionID] = sess
		s.evictOldestLocked(website)
	}
	return sess
}

// evictOldestLocked drops the oldest sessions once a website context exceeds
// its cap. Caller holds s.mu.
func (s *SessionStore) evictOldestLocked(website string) {
	byID := s.sessions[website]
	if len(byID) <= s.maxPerWebsite {
		return
	}
	all := make([]*session, 0, len(byID))
	for _, sess := range byID {
		all = append(all, sess)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })
	for _, sess := range all[:len(byID)-s.maxPerWebsite] {
		delete(byID, sess.id)
	}
}

// GetOrCreate returns the session summary, creating the session on first use.
// The same session id under a different website context is a distinct session.
func (s *SessionStore) GetOrCreate(sessionID, website string) models.SessionSummary {
	website = normalizeWebsite(website)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(sessionID, website)
	return models.SessionSummary{
		SessionID:      sess.id,
		WebsiteContext: sess.website,
		TurnCount:      len(sess.turns),
	}
}

// Append adds one completed exchange to the session, creating it if needed.
// The store lock serializes concurrent appends to the same session.
func (s *SessionStore) Append(sessionID, website string, turn Turn) {
	website = normalizeWebsite(website)
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(sessionID, website)
	sess.turns = append(sess.turns, turn)
}

// Get returns the full transcript of a session.
func (s *SessionStore) Get(sessionID, website string) (models.SessionDetailResponse, error) {
	website = normalizeWebsite(website)
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[website][sessionID]
	if !ok {
		return models.SessionDetailResponse{}, fmt.Errorf("%w: session %q for website %q", models.ErrNotFound, sessionID, website)
	}
	turns := make([]models.TurnPayload, 0, len(sess.turns))
	for _, t := range sess.turns {
		turns = append(turns, models.TurnPayload{
			Query:     t.Query,
			Answer:    t.Answer,
			Timestamp: t.Timestamp,
		})
	}
	return models.SessionDetailResponse{
		SessionID:      sess.id,
		WebsiteContext: sess.website,
		TurnCount:      len(sess.turns),
		CreatedAt:      sess.createdAt,
		Turns:          turns,
	}, nil
}

// List returns summaries of every session, optionally filtered by website
// context.
func (s *SessionStore) List(websiteFilter string) []models.SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []models.SessionSummary
	for website, byID := range s.sessions {
		if websiteFilter != "" && website != websiteFilter {
			continue
		}
		for _, sess := range byID {
			summaries = append(summaries, models.SessionSummary{
				SessionID:      sess.id,
				WebsiteContext: sess.website,
				TurnCount:      len(sess.turns),
			})
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].WebsiteContext != summaries[j].WebsiteContext {
			return summaries[i].WebsiteContext < summaries[j].WebsiteContext
		}
		return summaries[i].SessionID < summaries[j].SessionID
	})
	return summaries
}

// Clear removes one session. Refuses without confirm and leaves the session
// untouched.
func (s *SessionStore) Clear(sessionID, website string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("%w: session clear requires confirm=true", models.ErrPrecondition)
	}
	website = normalizeWebsite(website)
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.sessions[website]
	if !ok {
		return fmt.Errorf("%w: session %q for website %q", models.ErrNotFound, sessionID, website)
	}
	if _, ok := byID[sessionID]; !ok {
		return fmt.Errorf("%w: session %q for website %q", models.ErrNotFound, sessionID, website)
	}
	delete(byID, sessionID)
	return nil
}

// ClearAll removes every session, or every session for one website context.
// Returns how many sessions were dropped.
func (s *SessionStore) ClearAll(website string, confirm bool) (int, error) {
	if !confirm {
		return 0, fmt.Errorf("%w: clearing sessions requires confirm=true", models.ErrPrecondition)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := 0
	if website != "" {
		cleared = len(s.sessions[website])
		delete(s.sessions, website)
		return cleared, nil
	}
	for _, byID := range s.sessions {
		cleared += len(byID)
	}
	s.sessions = make(map[string]map[string]*session)
	return cleared, nil
}

// FormattedHistory renders the most recent turns of a session as a prompt
// block. Returns "" for unknown or empty sessions; reading never creates a
// session.
func (s *SessionStore) FormattedHistory(sessionID, website string) string {
	website = normalizeWebsite(website)
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[website][sessionID]
	if !ok || len(sess.turns) == 0 {
		return ""
	}
	turns := sess.turns
	if len(turns) > s.historyWindow {
		turns = turns[len(turns)-s.historyWindow:]
	}

	var sb strings.Builder
	sb.WriteString("\n=== CONVERSATION HISTORY ===\n")
	for _, t := range turns {
		sb.WriteString("User: " + t.Query + "\n\n")
		sb.WriteString("Assistant: " + t.Answer + "\n\n")
	}
	sb.WriteString("=== END HISTORY ===\n")
	return sb.String()
}
