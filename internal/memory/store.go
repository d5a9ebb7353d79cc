package memory

import "sync"

// DefaultBudget is the default per-session token budget.
const DefaultBudget = 2000

// Turn is one question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// Session is a token-bounded buffer of prior turns for one chat.
//
// Recall and Record do not lock; callers that need the read-modify-write
// cycle to be atomic (the QA engine does) must hold the embedded mutex
// across both calls.
type Session struct {
	sync.Mutex
	budget int
	turns  []Turn
}

// Recall returns the retained turns, oldest first.
func (s *Session) Recall() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Record appends a turn, then evicts oldest-first until the buffer fits the
// token budget. A turn that alone exceeds the budget is itself evicted.
func (s *Session) Record(t Turn) {
	s.turns = append(s.turns, t)
	for len(s.turns) > 0 && s.tokens() > s.budget {
		s.turns = s.turns[1:]
	}
}

// Tokens returns the estimated token footprint of the retained turns.
func (s *Session) Tokens() int {
	return s.tokens()
}

func (s *Session) tokens() int {
	total := 0
	for _, t := range s.turns {
		total += estimateTokens(t.Question) + estimateTokens(t.Answer)
	}
	return total
}

// estimateTokens approximates the provider tokenizer at ~4 characters per
// token.
func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}

// Store holds per-chat sessions. It is owned by the chat service and
// injected where needed; nothing here is process-global.
type Store struct {
	mu       sync.Mutex
	budget   int
	sessions map[string]*Session
}

// NewStore constructs a Store with the given token budget per session.
func NewStore(budget int) *Store {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Store{
		budget:   budget,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for a chat id, creating it on first access.
// An empty chat id yields a fresh session that is never registered, so
// anonymous queries cannot observe each other's memory.
func (st *Store) Session(chatID string) *Session {
	if chatID == "" {
		return &Session{budget: st.budget}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[chatID]
	if !ok {
		sess = &Session{budget: st.budget}
		st.sessions[chatID] = sess
	}
	return sess
}

// Drop removes the session for a chat id, releasing its buffer.
func (st *Store) Drop(chatID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
}
