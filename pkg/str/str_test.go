package str

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringToInt(t *testing.T) {
	n, err := StringToInt("42")
	assert.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = StringToInt("")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = StringToInt("not a number")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "", Truncate("hello", 0))

	// rune-safe cut
	assert.Equal(t, "héll...", Truncate("héllo world", 4))
}

func TestFirstNonEmptyLine(t *testing.T) {
	assert.Equal(t, "second", FirstNonEmptyLine("\n  \nsecond\nthird"))
	assert.Equal(t, "", FirstNonEmptyLine("   \n\t\n"))
	assert.Equal(t, "only", FirstNonEmptyLine("only"))
}
