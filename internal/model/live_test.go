package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiveDisplay(t *testing.T) {
	for _, valid := range []string{
		"board", "clue", "response", "preWVC",
		"preFinalClue", "finalClue", "finalResponse", "finalStats",
	} {
		parsed, err := ParseLiveDisplay(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, LiveDisplay(valid), parsed)
	}
}

func TestParseLiveDisplayRejectsUnknown(t *testing.T) {
	_, err := ParseLiveDisplay("lobby")
	assert.Error(t, err)

	_, err = ParseLiveDisplay("")
	assert.Error(t, err)
}
