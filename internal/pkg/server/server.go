// Package server exposes the lights over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/bridge"
	"github.com/anicoll/loxone-integration/internal/pkg/command"
	"github.com/anicoll/loxone-integration/internal/pkg/loxone"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

const defaultHistoryLimit = 50

type lightService interface {
	Devices(ctx context.Context) ([]model.StateSnapshot, error)
	Device(ctx context.Context, key string) (model.StateSnapshot, error)
	Execute(ctx context.Context, key string, req command.Request) error
}

type historyReader interface {
	GetStateHistory(ctx context.Context, uuid model.Identifier, limit int) ([]model.StateSnapshot, error)
}

type server struct {
	lights  lightService
	history historyReader
	logger  *zap.Logger
}

// CommandPayload is the body of POST /devices/{key}/commands. Brightness is
// 0-255, ColorTemp in mireds and HSColor is [hue, saturation].
type CommandPayload struct {
	Action     command.Action `json:"action"`
	Brightness *int           `json:"brightness,omitempty"`
	ColorTemp  *int           `json:"color_temp,omitempty"`
	HSColor    *[2]float64    `json:"hs_color,omitempty"`
	Scene      *string        `json:"scene,omitempty"`
}

func (p CommandPayload) request() command.Request {
	return command.Request{
		Action:     p.Action,
		Brightness: p.Brightness,
		ColorTemp:  p.ColorTemp,
		HSColor:    p.HSColor,
		Scene:      p.Scene,
	}
}

// New returns the API handler. Lights are addressed by uuid, or by name when
// no other light shares it. history may be nil when no database is
// configured.
func New(lights lightService, history historyReader) http.Handler {
	s := &server{lights: lights, history: history, logger: zap.L()}

	r := chi.NewRouter()
	r.Use(LoggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.handleListDevices)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", s.handleGetDevice)
			r.Get("/history", s.handleGetHistory)
			r.Post("/commands", s.handlePostCommand)
		})
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.lights.Devices(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

func (s *server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.lights.Device(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "state history is not enabled")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	d, err := s.lights.Device(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	states, err := s.history.GetStateHistory(r.Context(), d.UUID, limit)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": states, "count": len(states)})
}

func (s *server) handlePostCommand(w http.ResponseWriter, r *http.Request) {
	payload, err := unmarshalPayload[CommandPayload](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	key := chi.URLParam(r, "key")
	if err := s.lights.Execute(r.Context(), key, payload.request()); err != nil {
		s.handleError(w, err)
		return
	}
	s.logger.Info("command accepted", zap.String("device", key), zap.String("action", string(payload.Action)))
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bridge.ErrUnknownDevice):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, bridge.ErrAmbiguousDevice):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, command.ErrUnknownAction), errors.Is(err, command.ErrUnsupportedDevice):
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, loxone.ErrNotConnected):
		writeError(w, http.StatusBadGateway, ErrCodeGateway, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
