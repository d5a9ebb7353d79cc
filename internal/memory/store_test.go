package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRecallChronological(t *testing.T) {
	store := NewStore(1000)
	sess := store.Session("chat-1")

	sess.Record(Turn{Question: "q1", Answer: "a1"})
	sess.Record(Turn{Question: "q2", Answer: "a2"})

	turns := sess.Recall()
	require.Len(t, turns, 2)
	assert.Equal(t, "q1", turns[0].Question)
	assert.Equal(t, "q2", turns[1].Question)
}

func TestSessionEvictsOldestFirst(t *testing.T) {
	// Each turn below is 2 estimated tokens (4 chars ~= 1 token).
	store := NewStore(5)
	sess := store.Session("chat-1")

	sess.Record(Turn{Question: "aaaa", Answer: "1111"})
	sess.Record(Turn{Question: "bbbb", Answer: "2222"})
	sess.Record(Turn{Question: "cccc", Answer: "3333"})

	turns := sess.Recall()
	require.Len(t, turns, 2)
	assert.Equal(t, "bbbb", turns[0].Question)
	assert.Equal(t, "cccc", turns[1].Question)
	assert.LessOrEqual(t, sess.Tokens(), 5)
}

func TestSessionNeverExceedsBudget(t *testing.T) {
	store := NewStore(5)
	sess := store.Session("chat-1")

	sess.Record(Turn{Question: strings.Repeat("q", 100), Answer: strings.Repeat("a", 100)})

	assert.Empty(t, sess.Recall())
	assert.LessOrEqual(t, sess.Tokens(), 5)
}

func TestStoreReturnsSameSessionPerChat(t *testing.T) {
	store := NewStore(100)
	first := store.Session("chat-1")
	first.Record(Turn{Question: "q", Answer: "a"})

	again := store.Session("chat-1")
	assert.Len(t, again.Recall(), 1)

	other := store.Session("chat-2")
	assert.Empty(t, other.Recall())
}

func TestAnonymousSessionsAreIsolated(t *testing.T) {
	store := NewStore(100)

	first := store.Session("")
	first.Record(Turn{Question: "secret", Answer: "answer"})

	second := store.Session("")
	assert.Empty(t, second.Recall())
}

func TestDropReleasesSession(t *testing.T) {
	store := NewStore(100)
	store.Session("chat-1").Record(Turn{Question: "q", Answer: "a"})

	store.Drop("chat-1")
	assert.Empty(t, store.Session("chat-1").Recall())
}
