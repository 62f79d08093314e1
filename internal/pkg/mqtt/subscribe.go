package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/command"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

const commandQueueSize = 64

type pendingCommand struct {
	light model.Light
	req   command.Request
}

// Subscribe listens for json schema commands on every light's command topic.
// Commands are handed to handler in arrival order from a separate goroutine,
// so a slow handler never holds up the paho client. Commands for lights that
// were never registered are dropped, as are commands arriving while the
// queue is full.
func (s *service) Subscribe(ctx context.Context, handler CommandHandler) error {
	queue := make(chan pendingCommand, commandQueueSize)
	err := wait(s.client.Subscribe(lightTopic("+", "set"), 1, func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
		s.enqueue(queue, msg)
	}))
	if err != nil {
		return err
	}
	go s.runCommands(ctx, handler, queue)
	return nil
}

func (s *service) enqueue(queue chan<- pendingCommand, msg paho_mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	if len(parts) != 3 {
		return
	}
	s.mu.Lock()
	light, ok := s.lights[parts[1]]
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("command for unknown light", zap.String("topic", msg.Topic()))
		return
	}

	var ls model.LightState
	if err := json.Unmarshal(msg.Payload(), &ls); err != nil {
		s.logger.Warn("invalid command payload", zap.String("device", light.Name), zap.Error(err))
		return
	}
	select {
	case queue <- pendingCommand{light: light, req: toRequest(ls)}:
	default:
		s.logger.Warn("command queue full, dropping command", zap.String("device", light.Name))
	}
}

func (s *service) runCommands(ctx context.Context, handler CommandHandler, queue <-chan pendingCommand) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-queue:
			if err := handler(ctx, c.light.UUID.String(), c.req); err != nil {
				s.logger.Error("failed to execute command",
					zap.String("device", c.light.Name),
					zap.Stringer("uuid", c.light.UUID),
					zap.Error(err))
			}
		}
	}
}

func toRequest(ls model.LightState) command.Request {
	if strings.EqualFold(ls.State, model.StateOff) {
		return command.TurnOff()
	}
	req := command.Request{
		Action:     command.ActionTurnOn,
		Brightness: ls.Brightness,
		ColorTemp:  ls.ColorTemp,
		Scene:      ls.Effect,
	}
	if ls.Color != nil {
		req.HSColor = &[2]float64{ls.Color.H, ls.Color.S}
	}
	return req
}
