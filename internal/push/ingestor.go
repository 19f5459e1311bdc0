// Package push routes remote notifications and token refreshes arriving
// outside the method channel (the messaging-service and app-delegate paths)
// to the native SDK.
//
// A message is normalized to string values, classified by the SDK and either
// ingested by it or handed to the application's fallback handler.
package push

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/codec"
)

// Receiver is the push surface of a platform binding.
type Receiver interface {
	Platform() string
	IsChannelPush(payload map[string]string) (bool, error)
	Receive(payload map[string]string) error
	RegisterToken(token string) error
}

// Storer is implemented by receivers that can keep a tapped notification
// until the SDK is booted.
type Storer interface {
	Store(payload map[string]string) error
}

// Message is a remote notification as seen by the fallback handler.
type Message struct {
	ID   string
	Data map[string]string
}

// Fallback receives whatever the SDK does not consume.
type Fallback interface {
	OnMessage(msg Message)
	OnNewToken(token string)
}

// Outcome reports how a message was routed.
type Outcome string

const (
	OutcomeIngested  Outcome = "ingested"
	OutcomeForwarded Outcome = "forwarded"
	// OutcomeDropped means the message was not Channel.io's and no fallback
	// is installed.
	OutcomeDropped Outcome = "dropped"
)

// Ingestor routes push traffic to a Receiver.
type Ingestor struct {
	receiver Receiver
	fallback Fallback
	logger   *zap.Logger
}

// NewIngestor creates an ingestor. fallback may be nil.
func NewIngestor(receiver Receiver, fallback Fallback, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		receiver: receiver,
		fallback: fallback,
		logger:   logger.With(zap.String("platform", receiver.Platform())),
	}
}

// OnMessageReceived handles a delivered notification.
func (in *Ingestor) OnMessageReceived(data map[string]any) (Message, Outcome) {
	return in.route(data, false)
}

// OnNotificationTapped handles a notification the user opened. Receivers that
// implement Storer also keep it so it can be opened after boot.
func (in *Ingestor) OnNotificationTapped(data map[string]any) (Message, Outcome) {
	return in.route(data, true)
}

func (in *Ingestor) route(data map[string]any, tapped bool) (Message, Outcome) {
	msg := Message{ID: uuid.NewString(), Data: codec.StringifyPayload(data)}
	logger := in.logger.With(zap.String("messageId", msg.ID), zap.Bool("tapped", tapped))

	ok, err := in.receiver.IsChannelPush(msg.Data)
	if err != nil {
		logger.Warn("Push classification failed", zap.Error(err))
		return msg, in.forward(msg)
	}
	if !ok {
		logger.Debug("Not a Channel.io push")
		return msg, in.forward(msg)
	}

	if err := in.receiver.Receive(msg.Data); err != nil {
		logger.Warn("Push ingestion failed", zap.Error(err))
		return msg, in.forward(msg)
	}
	if tapped {
		if s, ok := in.receiver.(Storer); ok {
			if err := s.Store(msg.Data); err != nil {
				logger.Warn("Failed to store tapped push", zap.Error(err))
			}
		}
	}

	logger.Info("Push ingested", zap.String("chatId", msg.Data["chatId"]))
	return msg, OutcomeIngested
}

func (in *Ingestor) forward(msg Message) Outcome {
	if in.fallback == nil {
		return OutcomeDropped
	}
	in.fallback.OnMessage(msg)
	return OutcomeForwarded
}

// OnNewToken registers a refreshed device token. The token is forwarded to
// the fallback whether or not registration succeeds.
func (in *Ingestor) OnNewToken(token string) error {
	err := in.receiver.RegisterToken(token)
	if err != nil {
		in.logger.Warn("Push token registration failed", zap.Error(err))
	} else {
		in.logger.Info("Push token registered")
	}
	if in.fallback != nil {
		in.fallback.OnNewToken(token)
	}
	return err
}
