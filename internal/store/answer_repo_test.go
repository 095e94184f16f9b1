package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnswerKey(t *testing.T) {
	k := answerKey("math", "2+2")
	require.Len(t, k, 64)
	require.Equal(t, k, answerKey("math", "2+2"))

	require.NotEqual(t, k, answerKey("science", "2+2"))
	require.NotEqual(t, k, answerKey("math", "2+3"))

	// the separator keeps (domain, question) boundaries unambiguous
	require.NotEqual(t, answerKey("ab", "c"), answerKey("a", "bc"))
}
