package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

type sinkMock struct {
	WriteFunc          func(ctx context.Context, data []model.StateSnapshot) error
	RegisterDeviceFunc func(light model.Light) error
}

func (m *sinkMock) Write(ctx context.Context, data []model.StateSnapshot) error {
	return m.WriteFunc(ctx, data)
}

func (m *sinkMock) RegisterDevice(light model.Light) error {
	return m.RegisterDeviceFunc(light)
}

func snapshot(name, state string, brightness int) model.StateSnapshot {
	return model.StateSnapshot{
		Name:       name,
		UUID:       model.Identifier(name + "-uuid"),
		State:      state,
		Attributes: map[string]any{"brightness": brightness},
		Timestamp:  time.Now(),
	}
}

func TestRegisterTwice(t *testing.T) {
	p := New(WithLogger(zaptest.NewLogger(t)))
	s := &sinkMock{}
	require.NoError(t, p.Register("mqtt", s))
	assert.ErrorIs(t, p.Register("mqtt", s), ErrAlreadyRegistered)
}

func TestPublishDeduplicates(t *testing.T) {
	p := New(WithLogger(zaptest.NewLogger(t)))
	var written [][]model.StateSnapshot
	require.NoError(t, p.Register("mqtt", &sinkMock{
		WriteFunc: func(_ context.Context, data []model.StateSnapshot) error {
			written = append(written, data)
			return nil
		},
	}))

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, []model.StateSnapshot{snapshot("Hall", model.StateOn, 128)}))
	require.NoError(t, p.Publish(ctx, []model.StateSnapshot{snapshot("Hall", model.StateOn, 128)}))
	require.NoError(t, p.Publish(ctx, []model.StateSnapshot{
		snapshot("Hall", model.StateOn, 255),
		snapshot("Porch", model.StateOff, 0),
	}))

	require.Len(t, written, 2)
	assert.Len(t, written[0], 1)
	assert.Equal(t, []string{"Hall", "Porch"}, []string{written[1][0].Name, written[1][1].Name})
	assert.Equal(t, 255, written[1][0].Attributes["brightness"])
}

func TestPublishSharedNameTrackedSeparately(t *testing.T) {
	p := New(WithLogger(zaptest.NewLogger(t)))
	var written []model.StateSnapshot
	require.NoError(t, p.Register("mqtt", &sinkMock{
		WriteFunc: func(_ context.Context, data []model.StateSnapshot) error {
			written = append(written, data...)
			return nil
		},
	}))

	kitchen := snapshot("Ceiling", model.StateOn, 128)
	kitchen.UUID = "kitchen-a"
	bath := snapshot("Ceiling", model.StateOn, 128)
	bath.UUID = "bath-a"

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, []model.StateSnapshot{kitchen}))
	require.NoError(t, p.Publish(ctx, []model.StateSnapshot{bath}))

	require.Len(t, written, 2)
	assert.Equal(t, model.Identifier("bath-a"), written[1].UUID)
}

func TestPublishSinkFailureIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	p := New(WithLogger(zap.New(core)))

	var got []model.StateSnapshot
	require.NoError(t, p.Register("a-broken", &sinkMock{
		WriteFunc: func(context.Context, []model.StateSnapshot) error { return errors.New("boom") },
	}))
	require.NoError(t, p.Register("b-postgres", &sinkMock{
		WriteFunc: func(_ context.Context, data []model.StateSnapshot) error {
			got = data
			return nil
		},
	}))

	require.NoError(t, p.Publish(context.Background(), []model.StateSnapshot{snapshot("Hall", model.StateOn, 1)}))
	assert.Len(t, got, 1)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a-broken", logs.All()[0].ContextMap()["publisher"])
}

func TestRegisterDevice(t *testing.T) {
	p := New(WithLogger(zaptest.NewLogger(t)))
	var lights []model.Light
	for _, name := range []string{"mqtt", "postgres"} {
		require.NoError(t, p.Register(name, &sinkMock{
			RegisterDeviceFunc: func(l model.Light) error {
				lights = append(lights, l)
				return nil
			},
		}))
	}

	require.NoError(t, p.RegisterDevice(model.Light{Name: "Hall", Kind: "dimmer"}))
	assert.Len(t, lights, 2)
}
