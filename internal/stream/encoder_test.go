package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Run("progress update carries event name and status", func(t *testing.T) {
		b, err := Encode(ProgressWith(StatusTaskDone, map[string]any{"task": "analyze"}))
		require.NoError(t, err)
		require.Equal(t, "event: progress_update\ndata: {\"status\":\"task_done\",\"task\":\"analyze\"}\n\n", string(b))
	})

	t.Run("terminal messages have no event name", func(t *testing.T) {
		b, err := Encode(Completed(map[string]any{"output": "X"}))
		require.NoError(t, err)
		require.Equal(t, "data: {\"output\":\"X\",\"status\":\"completed\"}\n\n", string(b))
	})

	t.Run("error terminal carries reason under message", func(t *testing.T) {
		b, err := Encode(Errorf("boom %d", 42))
		require.NoError(t, err)
		require.Equal(t, "data: {\"message\":\"boom 42\",\"status\":\"error\"}\n\n", string(b))
	})

	t.Run("ping encodes as empty object", func(t *testing.T) {
		b, err := Encode(Ping())
		require.NoError(t, err)
		require.Equal(t, "event: ping\ndata: {}\n\n", string(b))
	})

	t.Run("unmarshalable payload fails", func(t *testing.T) {
		_, err := Encode(Completed(map[string]any{"ch": make(chan int)}))
		require.Error(t, err)
	})
}
