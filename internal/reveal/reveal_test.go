// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/model"
)

func TestChunkSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 2},
		{1, 2},
		{119, 2},
		{180, 3},
		{600, 10},
		{6001, 100},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ChunkSize(tc.n), "ChunkSize(%d)", tc.n)
	}
}

// TestReveal_Progression checks monotonic growth, the tick count formula and
// the upper bound over a range of lengths.
func TestReveal_Progression(t *testing.T) {
	for _, n := range []int{1, 2, 3, 59, 60, 121, 180, 599, 1000, 4321} {
		full := strings.Repeat("가", n)
		msg := &model.Message{ID: "1", Content: full}
		set := NewSet()
		h := set.Start(msg)

		require.Equal(t, "", msg.Content, "content must be cleared at start")

		ticks := 0
		prev := 0
		for {
			ok, finished := set.Advance(h.ID())
			require.True(t, ok)
			ticks++
			shown := utf8.RuneCountInString(msg.Content)
			require.GreaterOrEqual(t, shown, prev, "displayed length must not decrease")
			require.LessOrEqual(t, shown, n, "displayed length must not exceed the full text")
			prev = shown
			if finished {
				break
			}
			require.Less(t, ticks, n+1, "animation did not terminate")
		}

		chunk := n / 60
		if chunk < 2 {
			chunk = 2
		}
		want := (n + chunk - 1) / chunk
		assert.Equal(t, want, ticks, "n=%d", n)
		assert.Equal(t, Ticks(n), ticks, "n=%d", n)
		assert.Equal(t, full, msg.Content)
		assert.Equal(t, 0, set.Len())
	}
}

func TestReveal_StaleTickIgnored(t *testing.T) {
	set := NewSet()
	msg := &model.Message{ID: "1", Content: "abcd"}
	h := set.Start(msg)

	set.Advance(h.ID())
	set.Advance(h.ID())

	ok, _ := set.Advance(h.ID())
	assert.False(t, ok, "finished handle should not keep ticking")
	ok, _ = set.Advance(999)
	assert.False(t, ok)
}

func TestReveal_CancelAllRestoresText(t *testing.T) {
	set := NewSet()
	a := &model.Message{ID: "a", Content: strings.Repeat("x", 300)}
	b := &model.Message{ID: "b", Content: "short reply"}
	ha := set.Start(a)
	set.Start(b)
	set.Advance(ha.ID())

	assert.True(t, set.Animating("a"))
	assert.Equal(t, 2, set.CancelAll())
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Animating("a"))
	assert.Len(t, a.Content, 300)
	assert.Equal(t, "short reply", b.Content)

	ok, _ := set.Advance(ha.ID())
	assert.False(t, ok, "canceled handle must ignore late ticks")
}

func TestReveal_EmptyMessage(t *testing.T) {
	set := NewSet()
	h := set.Start(&model.Message{ID: "e"})
	assert.True(t, h.Done())
	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 0, Ticks(0))
}

func TestTick_ReturnsCommand(t *testing.T) {
	assert.NotNil(t, Tick(1, 0))
}
