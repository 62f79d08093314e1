package cmd

import (
	"context"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// MockRelayService is a mock implementation of the RelayService interface.
type MockRelayService struct {
	ConnectFunc      func(ctx context.Context) error
	DisconnectedFunc func() <-chan error
	SendFunc         func(ctx context.Context, cmds []model.OutboundCommand) error
	CloseFunc        func() error
}

func (m *MockRelayService) Connect(ctx context.Context) error {
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx)
	}
	return nil
}

func (m *MockRelayService) Disconnected() <-chan error {
	if m.DisconnectedFunc != nil {
		return m.DisconnectedFunc()
	}
	// never fires
	return make(chan error)
}

func (m *MockRelayService) Send(ctx context.Context, cmds []model.OutboundCommand) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, cmds)
	}
	return nil
}

func (m *MockRelayService) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
