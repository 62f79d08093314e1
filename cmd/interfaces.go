package cmd

import (
	"context"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// RelayService is what run needs from the miniserver relay client.
type RelayService interface {
	Connect(ctx context.Context) error
	Disconnected() <-chan error
	Send(ctx context.Context, cmds []model.OutboundCommand) error
	Close() error
}
