package sandbox

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/codec"
	"github.com/zlc_ai/channelio-bridge/internal/platform/android"
)

// ErrNotBooted is reported by operations that need a booted SDK.
var ErrNotBooted = errors.New("channel.io: not booted")

// Android simulates the Android SDK.
type Android struct {
	*core

	listenerMu sync.RWMutex
	listener   android.Listener
}

var _ android.SDK = (*Android)(nil)

// NewAndroid creates an Android simulator.
func NewAndroid(opts Options, logger *zap.Logger) *Android {
	return &Android{core: newCore(opts, logger)}
}

func (a *Android) SetListener(l android.Listener) {
	a.listenerMu.Lock()
	a.listener = l
	a.listenerMu.Unlock()
}

func (a *Android) ClearListener() {
	a.SetListener(nil)
}

// notify invokes fn with the current listener from a background goroutine.
func (a *Android) notify(fn func(l android.Listener)) {
	a.later(0, func() {
		a.listenerMu.RLock()
		l := a.listener
		a.listenerMu.RUnlock()
		if l != nil {
			fn(l)
		}
	})
}

func (a *Android) Boot(cfg android.BootConfig, cb android.BootCallback) error {
	var memberID *string
	if cfg.MemberID != "" {
		memberID = &cfg.MemberID
	}
	a.later(a.opts.BootDelay, func() {
		result, u := a.boot(cfg.PluginKey, memberID, cfg.Language, cfg.Profile)
		switch result {
		case outcomeSuccess:
			if cfg.Appearance != nil {
				a.setAppearance(*cfg.Appearance)
			}
			snap := a.snapshot()
			cb(android.BootStatusSuccess, androidUser(u, snap))
			a.notify(func(l android.Listener) { l.OnBadgeChangedDetailed(snap.Unread, snap.Alert) })
		case outcomeAccessDenied:
			cb(android.BootStatusAccessDenied, nil)
		default:
			cb(android.BootStatusNotInitialized, nil)
		}
	})
	return nil
}

func (a *Android) Sleep() error {
	a.sleep()
	return nil
}

func (a *Android) Shutdown() error {
	a.shutdown()
	return nil
}

func (a *Android) ShowChannelButton() error {
	a.setButton(true)
	return nil
}

func (a *Android) HideChannelButton() error {
	a.setButton(false)
	return nil
}

func (a *Android) ShowMessenger() error {
	if a.setMessenger(true) {
		a.notify(func(l android.Listener) { l.OnShowMessenger() })
	}
	return nil
}

func (a *Android) HideMessenger() error {
	if a.setMessenger(false) {
		a.notify(func(l android.Listener) { l.OnHideMessenger() })
	}
	return nil
}

func (a *Android) OpenChat(chatID, message *string) error {
	if !a.isBooted() {
		return ErrNotBooted
	}
	if chatID == nil {
		id := newChatID()
		a.notify(func(l android.Listener) { l.OnChatCreated(id) })
	}
	return a.ShowMessenger()
}

func (a *Android) OpenWorkflow(*string) error {
	if !a.isBooted() {
		return ErrNotBooted
	}
	return a.ShowMessenger()
}

func (a *Android) Track(eventName string, _ map[string]any) error {
	if !a.isBooted() {
		return ErrNotBooted
	}
	a.logger.Debug("Sandbox track", zap.String("event", eventName))
	return nil
}

func (a *Android) UpdateUser(data android.UserData, cb android.UserUpdateCallback) error {
	a.later(0, func() {
		u, ok := a.update(data.ProfileMap, data.Language, data.Tags, data.UnsubscribeTexting, data.UnsubscribeEmail)
		a.completeUser(u, ok, cb)
	})
	return nil
}

func (a *Android) AddTags(tags []string, cb android.UserUpdateCallback) error {
	a.later(0, func() {
		u, ok := a.addTags(tags)
		a.completeUser(u, ok, cb)
	})
	return nil
}

func (a *Android) RemoveTags(tags []string, cb android.UserUpdateCallback) error {
	a.later(0, func() {
		u, ok := a.removeTags(tags)
		a.completeUser(u, ok, cb)
	})
	return nil
}

func (a *Android) completeUser(u *user, ok bool, cb android.UserUpdateCallback) {
	if !ok {
		cb(ErrNotBooted, nil)
		return
	}
	cb(nil, androidUser(u, a.snapshot()))
}

func (a *Android) SetPage(page *string, _ map[string]any) error {
	a.setPage(page)
	return nil
}

func (a *Android) ResetPage() error {
	a.setPage(nil)
	return nil
}

func (a *Android) HidePopup() error {
	return nil
}

func (a *Android) InitPushToken(token string) error {
	a.setPushToken(token)
	return nil
}

func (a *Android) IsChannelPushNotification(payload map[string]string) (bool, error) {
	return isChannelPush(payload), nil
}

func (a *Android) ReceivePushNotification(payload map[string]string) error {
	unread, alert, ok := a.receive(payload)
	if !ok {
		return nil
	}
	popup := android.PopupData{
		ChatID:    payload["chatId"],
		AvatarURL: payload["avatarUrl"],
		Name:      payload["personName"],
		Timestamp: time.Now().UnixMilli(),
	}
	if msg, has := payload["message"]; has {
		popup.Message = &msg
	}
	a.notify(func(l android.Listener) {
		l.OnBadgeChangedDetailed(unread, alert)
		l.OnPopupDataReceived(popup)
	})
	return nil
}

func (a *Android) HasStoredPushNotification() (bool, error) {
	return a.hasStored(), nil
}

func (a *Android) OpenStoredPushNotification() error {
	if _, ok := a.openStored(); ok {
		a.notify(func(l android.Listener) { l.OnShowMessenger() })
	}
	return nil
}

func (a *Android) IsBooted() (bool, error) {
	return a.isBooted(), nil
}

func (a *Android) SetDebugMode(flag bool) error {
	a.setDebug(flag)
	return nil
}

func (a *Android) SetAppearance(appearance codec.Appearance) error {
	a.setAppearance(appearance)
	return nil
}

// Snapshot returns the current simulator state.
func (a *Android) Snapshot() Snapshot {
	return a.snapshot()
}

// ClickURL simulates a link tap inside the messenger and returns whether the
// listener asked to open it in-app.
func (a *Android) ClickURL(url string) bool {
	a.listenerMu.RLock()
	l := a.listener
	a.listenerMu.RUnlock()
	return l != nil && l.OnURLClicked(url)
}

// ClickPush simulates a tap on a Channel.io notification and returns whether
// the listener handled it.
func (a *Android) ClickPush(chatID string) bool {
	a.listenerMu.RLock()
	l := a.listener
	a.listenerMu.RUnlock()
	return l != nil && l.OnPushNotificationClicked(chatID)
}

// ChangeBadge simulates the legacy single-count badge callback.
func (a *Android) ChangeBadge(count int) {
	a.notify(func(l android.Listener) { l.OnBadgeChanged(count) })
}

// ChangeFollowUp simulates a follow-up state change.
func (a *Android) ChangeFollowUp(data map[string]string) {
	a.notify(func(l android.Listener) { l.OnFollowUpChanged(data) })
}

func androidUser(u *user, s Snapshot) *android.User {
	if u == nil {
		return nil
	}
	lang := u.language
	return &android.User{
		ID:        u.id,
		MemberID:  u.memberID,
		Name:      u.name,
		AvatarURL: u.avatarURL,
		Profile:   u.profile,
		Alert:     s.Alert,
		Unread:    s.Unread,
		Language:  &lang,
		Tags:      u.tags,
	}
}
