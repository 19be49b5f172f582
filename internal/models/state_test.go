package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRunState(t *testing.T) {
	st := NewRunState()
	assert.Equal(t, -1, st.LastProcessedIndex)
	assert.NotNil(t, st.LastSentIDs)
}

func TestRunState_CursorFor(t *testing.T) {
	st := NewRunState()
	assert.Zero(t, st.CursorFor("news"), "unknown source starts at zero")

	st.AdvanceCursor("news", 105)
	assert.Equal(t, int64(105), st.CursorFor("news"))
	assert.Zero(t, st.CursorFor("other"))
}

func TestRunState_AdvanceCursorIsMonotonic(t *testing.T) {
	st := NewRunState()

	st.AdvanceCursor("news", 105)
	st.AdvanceCursor("news", 100)
	assert.Equal(t, int64(105), st.CursorFor("news"), "cursor never moves backwards")

	st.AdvanceCursor("news", 110)
	assert.Equal(t, int64(110), st.CursorFor("news"))
}
