package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/application/dialogue"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

type scriptedTurns struct {
	seen []dialogue.Turn
}

func (s *scriptedTurns) Handle(_ context.Context, t dialogue.Turn) ([]dialogue.Message, error) {
	s.seen = append(s.seen, t)
	switch t.Text {
	case "boom":
		return nil, errors.New("store down")
	case "为什么":
		return []dialogue.Message{{Role: shared.RoleUser, Content: "请解释：为什么"}}, nil
	}
	return []dialogue.Message{{Role: shared.RoleAssistant, Content: "好的：" + t.Text}}, nil
}

func TestLoop(t *testing.T) {
	turns := &scriptedTurns{}
	var out bytes.Buffer

	in := strings.NewReader("你好\n\n为什么\nboom\nexit\n不会读到这里\n")
	require.NoError(t, loop(context.Background(), turns, "kid", in, &out))

	require.Len(t, turns.seen, 3)
	for _, turn := range turns.seen {
		assert.Equal(t, "kid", turn.UserID)
	}

	text := out.String()
	assert.Contains(t, text, "好的：你好")
	assert.Contains(t, text, forwardedPrefix+"请解释：为什么")
	assert.Contains(t, text, "走神了")
	assert.NotContains(t, text, "store down")
	assert.Contains(t, text, "再见～")
}

func TestLoop_StopsAtEOF(t *testing.T) {
	turns := &scriptedTurns{}
	var out bytes.Buffer

	require.NoError(t, loop(context.Background(), turns, "kid", strings.NewReader("一年级"), &out))
	assert.Len(t, turns.seen, 1)
}
