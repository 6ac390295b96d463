package queue

import (
	"errors"
	"testing"

	"cinenacional-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskAndDecode(t *testing.T) {
	task, err := NewTask(shared.TypeProcessImage, shared.ProcessImagePayload{ImageID: 7, ObjectKey: "images/a/original.jpg"})
	require.NoError(t, err)
	assert.Equal(t, shared.TypeProcessImage, task.Type())

	var p shared.ProcessImagePayload
	require.NoError(t, Decode(task, &p))
	assert.Equal(t, int64(7), p.ImageID)
	assert.Equal(t, "images/a/original.jpg", p.ObjectKey)
}

func TestDecode_MalformedSkipsRetry(t *testing.T) {
	var p shared.ProcessImagePayload
	err := Decode(asynq.NewTask(shared.TypeProcessImage, []byte("{")), &p)

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestOptions_EveryTaskHasAQueue(t *testing.T) {
	for _, typ := range []string{shared.TypeProcessImage, shared.TypeDeleteImages, shared.TypeSlugAudit} {
		assert.NotEmpty(t, Options(typ), typ)
	}
	assert.Empty(t, Options("unknown"))
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	_, err := NewScheduler(asynq.RedisClientOpt{Addr: "localhost:6379"}, "Mars/Olympus", zeroLogger())
	assert.ErrorContains(t, err, "Mars/Olympus")
}

func zeroLogger() zerolog.Logger { return zerolog.Nop() }
