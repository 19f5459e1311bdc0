package android

import (
	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// relay implements Listener by translating each callback to a wire event.
type relay struct {
	emitter *bridge.Emitter
}

var _ Listener = (*relay)(nil)

func (r *relay) OnBadgeChanged(count int) {
	r.emitter.Emit(protocol.EventBadgeChanged, protocol.BadgePayload(count, 0))
}

func (r *relay) OnBadgeChangedDetailed(unread, alert int) {
	r.emitter.Emit(protocol.EventBadgeChanged, protocol.BadgePayload(unread, alert))
}

func (r *relay) OnChatCreated(chatID string) {
	r.emitter.Emit(protocol.EventChatCreated, map[string]any{"chatId": chatID})
}

func (r *relay) OnPopupDataReceived(popup PopupData) {
	p := protocol.PopupPayload{
		ChatID:    popup.ChatID,
		AvatarURL: popup.AvatarURL,
		Name:      popup.Name,
		Timestamp: popup.Timestamp,
	}
	if popup.Message != nil {
		p.Message = *popup.Message
	}
	r.emitter.Emit(protocol.EventPopupDataReceived, p.Map())
}

// OnPushNotificationClicked always reports the click as handled.
func (r *relay) OnPushNotificationClicked(chatID string) bool {
	r.emitter.Emit(protocol.EventPushNotificationClicked, map[string]any{"chatId": chatID})
	return true
}

// OnURLClicked always lets the URL open externally. Routing by URL is left to
// the application.
func (r *relay) OnURLClicked(url string) bool {
	r.emitter.Emit(protocol.EventURLClicked, map[string]any{"url": url})
	return false
}

func (r *relay) OnShowMessenger() {
	r.emitter.Emit(protocol.EventShowMessenger, nil)
}

func (r *relay) OnHideMessenger() {
	r.emitter.Emit(protocol.EventHideMessenger, nil)
}

func (r *relay) OnFollowUpChanged(data map[string]string) {
	payload := make(map[string]any, len(data))
	for k, v := range data {
		payload[k] = v
	}
	r.emitter.Emit(protocol.EventFollowUpChanged, payload)
}
