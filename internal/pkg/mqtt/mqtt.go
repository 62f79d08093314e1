// Package mqtt presents lights to Home Assistant over MQTT using the json
// light schema: retained discovery configs, state updates and a command
// subscription.
package mqtt

import (
	"context"
	"errors"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/command"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

const (
	DefaultDiscoveryPrefix = "homeassistant"
	baseTopic              = "loxone"
	manufacturer           = "Loxone"
	timeout                = 5 * time.Second
)

var ErrConnectTimeout = errors.New("unable to connect in time")

// CommandHandler carries out a command received for the light with uuid key.
type CommandHandler func(ctx context.Context, key string, req command.Request) error

type service struct {
	client paho_mqtt.Client
	prefix string
	logger *zap.Logger

	mu      sync.Mutex
	lights  map[string]model.Light // by object id
	effects map[string]string
}

func WithDiscoveryPrefix(prefix string) func(*service) {
	return func(s *service) {
		s.prefix = prefix
	}
}

func WithLogger(l *zap.Logger) func(*service) {
	return func(s *service) {
		s.logger = l
	}
}

func New(client paho_mqtt.Client, opts ...func(*service)) *service {
	s := &service{
		client:  client,
		prefix:  DefaultDiscoveryPrefix,
		logger:  zap.L(),
		lights:  make(map[string]model.Light),
		effects: make(map[string]string),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(timeout)
	if res {
		return token.Error()
	}
	if err := token.Error(); err != nil {
		return err
	}
	return ErrConnectTimeout
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}

func wait(token paho_mqtt.Token) error {
	if !token.WaitTimeout(timeout) {
		return errors.New("mqtt operation timed out")
	}
	return token.Error()
}
