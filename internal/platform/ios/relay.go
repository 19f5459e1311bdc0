package ios

import (
	"net/url"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

type delegate struct {
	emitter *bridge.Emitter
}

var _ Delegate = (*delegate)(nil)

func (d *delegate) OnChannelButtonClicked() {
	d.emitter.Emit(protocol.EventChannelButtonClicked, nil)
}

// OnBadgeChanged is the only badge shape iOS reports.
func (d *delegate) OnBadgeChanged(unread, alert int) {
	d.emitter.Emit(protocol.EventBadgeChanged, protocol.BadgePayload(unread, alert))
}

func (d *delegate) OnChatCreated(chatID string) {
	d.emitter.Emit(protocol.EventChatCreated, map[string]any{"chatId": chatID})
}

func (d *delegate) OnPopupDataReceived(popup PopupData) {
	p := protocol.PopupPayload{
		ChatID:    popup.ChatID,
		AvatarURL: popup.AvatarURL,
		Name:      popup.Name,
	}
	if popup.Message != nil {
		p.Message = *popup.Message
	}
	d.emitter.Emit(protocol.EventPopupDataReceived, p.Map())
}

// OnPushNotificationClicked forwards the click; the SDK keeps handling it.
func (d *delegate) OnPushNotificationClicked(chatID string) {
	d.emitter.Emit(protocol.EventPushNotificationClicked, map[string]any{"chatId": chatID})
}

// OnURLClicked always lets the URL open externally.
func (d *delegate) OnURLClicked(u *url.URL) bool {
	var s string
	if u != nil {
		s = u.String()
	}
	d.emitter.Emit(protocol.EventURLClicked, map[string]any{"url": s})
	return false
}

func (d *delegate) OnShowMessenger() {
	d.emitter.Emit(protocol.EventShowMessenger, nil)
}

func (d *delegate) OnHideMessenger() {
	d.emitter.Emit(protocol.EventHideMessenger, nil)
}

func (d *delegate) OnFollowUpChanged(data map[string]any) {
	d.emitter.Emit(protocol.EventFollowUpChanged, data)
}
