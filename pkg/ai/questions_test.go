package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuestionMarkdown(t *testing.T) {
	content := `**Type**: conceptual
**Question**: Explain how a binary search tree keeps lookups logarithmic.
**Hint**: Consider what the ordering invariant guarantees at each node.
---
**Type**: coding
**Question**: Implement breadth-first search over an adjacency list.
Some trailing commentary the model added.
**Hint**: A queue drives the traversal order.
---
This block is malformed and has no fields.`

	questions := ParseQuestionMarkdown(content)
	require.Len(t, questions, 2)

	require.Equal(t, "conceptual", questions[0].Type)
	require.Equal(t, "Explain how a binary search tree keeps lookups logarithmic.", questions[0].Text)
	require.Equal(t, "Consider what the ordering invariant guarantees at each node.", questions[0].Hint)

	// Only the first line after the marker is kept.
	require.Equal(t, "coding", questions[1].Type)
	require.Equal(t, "Implement breadth-first search over an adjacency list.", questions[1].Text)
	require.Equal(t, "A queue drives the traversal order.", questions[1].Hint)
}

func TestParseQuestionMarkdownEmpty(t *testing.T) {
	require.Empty(t, ParseQuestionMarkdown(""))
	require.Empty(t, ParseQuestionMarkdown("no markers here"))
}

func TestNewOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{})
	require.Error(t, err)
}
