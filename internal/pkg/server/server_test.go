package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/loxone-integration/internal/pkg/bridge"
	"github.com/anicoll/loxone-integration/internal/pkg/command"
	"github.com/anicoll/loxone-integration/internal/pkg/loxone"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

type lightServiceMock struct {
	DevicesFunc func(ctx context.Context) ([]model.StateSnapshot, error)
	DeviceFunc  func(ctx context.Context, name string) (model.StateSnapshot, error)
	ExecuteFunc func(ctx context.Context, name string, req command.Request) error
}

func (m *lightServiceMock) Devices(ctx context.Context) ([]model.StateSnapshot, error) {
	return m.DevicesFunc(ctx)
}

func (m *lightServiceMock) Device(ctx context.Context, name string) (model.StateSnapshot, error) {
	return m.DeviceFunc(ctx, name)
}

func (m *lightServiceMock) Execute(ctx context.Context, name string, req command.Request) error {
	return m.ExecuteFunc(ctx, name, req)
}

type historyReaderMock struct {
	GetStateHistoryFunc func(ctx context.Context, uuid model.Identifier, limit int) ([]model.StateSnapshot, error)
}

func (m *historyReaderMock) GetStateHistory(ctx context.Context, uuid model.Identifier, limit int) ([]model.StateSnapshot, error) {
	return m.GetStateHistoryFunc(ctx, uuid, limit)
}

func knownDevice(_ context.Context, key string) (model.StateSnapshot, error) {
	switch key {
	case "Hall", "hall-a":
		return model.StateSnapshot{Name: "Hall", UUID: "hall-a", State: model.StateOn}, nil
	case "Ceiling":
		return model.StateSnapshot{}, fmt.Errorf("%w: %q is used by 2 lights", bridge.ErrAmbiguousDevice, key)
	default:
		return model.StateSnapshot{}, fmt.Errorf("%w: %s", bridge.ErrUnknownDevice, key)
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, New(&lightServiceMock{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListDevices(t *testing.T) {
	h := New(&lightServiceMock{
		DevicesFunc: func(context.Context) ([]model.StateSnapshot, error) {
			return []model.StateSnapshot{{Name: "Hall"}, {Name: "Desk"}}, nil
		},
	}, nil)

	rec := do(t, h, http.MethodGet, "/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Devices []model.StateSnapshot `json:"devices"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "Desk", body.Devices[1].Name)
}

func TestGetDevice(t *testing.T) {
	h := New(&lightServiceMock{DeviceFunc: knownDevice}, nil)

	rec := do(t, h, http.MethodGet, "/devices/Hall", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap model.StateSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, model.Identifier("hall-a"), snap.UUID)

	rec = do(t, h, http.MethodGet, "/devices/hall-a", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/devices/Nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var e Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, ErrCodeNotFound, e.Code)

	rec = do(t, h, http.MethodGet, "/devices/Ceiling", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, ErrCodeConflict, e.Code)
}

func TestPostCommand(t *testing.T) {
	tests := map[string]struct {
		body     string
		execErr  error
		wantCode int
		wantReq  *command.Request
	}{
		"brightness": {
			body:     `{"action":"turn_on","brightness":128}`,
			wantCode: http.StatusAccepted,
			wantReq:  func() *command.Request { r := command.SetBrightness(128); return &r }(),
		},
		"scene list": {
			body:     `{"action":"turn_on","scene":"Reading,Party"}`,
			wantCode: http.StatusAccepted,
			wantReq:  func() *command.Request { r := command.SetScene("Reading,Party"); return &r }(),
		},
		"malformed body": {
			body:     `{"action":`,
			wantCode: http.StatusBadRequest,
		},
		"unknown field": {
			body:     `{"action":"turn_on","speed":3}`,
			wantCode: http.StatusBadRequest,
		},
		"unknown action": {
			body:     `{"action":"toggle"}`,
			execErr:  fmt.Errorf("%w: %q", command.ErrUnknownAction, "toggle"),
			wantCode: http.StatusBadRequest,
		},
		"shared name": {
			body:     `{"action":"turn_off"}`,
			execErr:  bridge.ErrAmbiguousDevice,
			wantCode: http.StatusConflict,
		},
		"relay down": {
			body:     `{"action":"turn_off"}`,
			execErr:  loxone.ErrNotConnected,
			wantCode: http.StatusBadGateway,
		},
		"unexpected": {
			body:     `{"action":"turn_off"}`,
			execErr:  errors.New("boom"),
			wantCode: http.StatusInternalServerError,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got *command.Request
			h := New(&lightServiceMock{
				ExecuteFunc: func(_ context.Context, name string, req command.Request) error {
					assert.Equal(t, "Hall", name)
					got = &req
					return tt.execErr
				},
			}, nil)

			rec := do(t, h, http.MethodPost, "/devices/Hall/commands", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantReq != nil {
				assert.Equal(t, tt.wantReq, got)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	var (
		gotUUID  model.Identifier
		gotLimit int
	)
	history := &historyReaderMock{
		GetStateHistoryFunc: func(_ context.Context, uuid model.Identifier, limit int) ([]model.StateSnapshot, error) {
			gotUUID, gotLimit = uuid, limit
			return []model.StateSnapshot{{Name: "Hall", UUID: uuid, State: model.StateOff}}, nil
		},
	}
	h := New(&lightServiceMock{DeviceFunc: knownDevice}, history)

	rec := do(t, h, http.MethodGet, "/devices/Hall/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Identifier("hall-a"), gotUUID)
	assert.Equal(t, 5, gotLimit)

	rec = do(t, h, http.MethodGet, "/devices/Hall/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultHistoryLimit, gotLimit)

	rec = do(t, h, http.MethodGet, "/devices/Hall/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/devices/Nope/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHistoryDisabled(t *testing.T) {
	h := New(&lightServiceMock{DeviceFunc: knownDevice}, nil)
	rec := do(t, h, http.MethodGet, "/devices/Hall/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
