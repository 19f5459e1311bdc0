package sandbox

import (
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/codec"
	"github.com/zlc_ai/channelio-bridge/internal/platform/ios"
)

// IOS simulates the iOS SDK. The delegate reference is held the way the
// native SDK holds it: replaced by SetDelegate and cleared with nil.
type IOS struct {
	*core

	delegateMu sync.RWMutex
	delegate   ios.Delegate
}

var _ ios.SDK = (*IOS)(nil)

// NewIOS creates an iOS simulator.
func NewIOS(opts Options, logger *zap.Logger) *IOS {
	return &IOS{core: newCore(opts, logger)}
}

func (s *IOS) SetDelegate(d ios.Delegate) {
	s.delegateMu.Lock()
	s.delegate = d
	s.delegateMu.Unlock()
}

func (s *IOS) current() ios.Delegate {
	s.delegateMu.RLock()
	defer s.delegateMu.RUnlock()
	return s.delegate
}

func (s *IOS) notify(fn func(d ios.Delegate)) {
	s.later(0, func() {
		if d := s.current(); d != nil {
			fn(d)
		}
	})
}

func (s *IOS) Boot(cfg ios.BootConfig, completion func(ios.BootStatus, *ios.User)) {
	var profile map[string]any
	if cfg.Profile != nil {
		profile = make(map[string]any, len(cfg.Profile.Properties)+4)
		for k, v := range cfg.Profile.Properties {
			profile[k] = v
		}
		for key, v := range map[string]*string{
			"name":         cfg.Profile.Name,
			"avatarUrl":    cfg.Profile.AvatarURL,
			"mobileNumber": cfg.Profile.MobileNumber,
			"email":        cfg.Profile.Email,
		} {
			if v != nil {
				profile[key] = *v
			}
		}
	}

	s.later(s.opts.BootDelay, func() {
		result, u := s.boot(cfg.PluginKey, cfg.MemberID, cfg.Language, profile)
		switch result {
		case outcomeSuccess:
			if cfg.Appearance != nil {
				s.setAppearance(*cfg.Appearance)
			}
			snap := s.snapshot()
			completion(ios.BootStatusSuccess, iosUser(u, snap))
			s.notify(func(d ios.Delegate) { d.OnBadgeChanged(snap.Unread, snap.Alert) })
		case outcomeAccessDenied:
			completion(ios.BootStatusAccessDenied, nil)
		default:
			completion(ios.BootStatusNotInitialized, nil)
		}
	})
}

func (s *IOS) Sleep()             { s.sleep() }
func (s *IOS) Shutdown()          { s.shutdown() }
func (s *IOS) ShowChannelButton() { s.setButton(true) }
func (s *IOS) HideChannelButton() { s.setButton(false) }
func (s *IOS) ResetPage()         { s.setPage(nil) }
func (s *IOS) HidePopup()         {}

func (s *IOS) ShowMessenger() {
	if s.setMessenger(true) {
		s.notify(func(d ios.Delegate) { d.OnShowMessenger() })
	}
}

func (s *IOS) HideMessenger() {
	if s.setMessenger(false) {
		s.notify(func(d ios.Delegate) { d.OnHideMessenger() })
	}
}

func (s *IOS) OpenChat(chatID, _ *string) {
	if !s.isBooted() {
		return
	}
	if chatID == nil {
		id := newChatID()
		s.notify(func(d ios.Delegate) { d.OnChatCreated(id) })
	}
	s.ShowMessenger()
}

func (s *IOS) OpenWorkflow(*string) {
	s.ShowMessenger()
}

func (s *IOS) Track(eventName string, _ map[string]any) {
	s.logger.Debug("Sandbox track", zap.String("event", eventName))
}

func (s *IOS) UpdateUser(profile map[string]any, completion func(bool, *ios.User)) {
	s.later(0, func() {
		var (
			language       *codec.Language
			tags           []string
			texting, email *bool
		)
		rest := make(map[string]any, len(profile))
		for k, v := range profile {
			switch k {
			case "language":
				if token, ok := v.(string); ok {
					l := codec.ParseLanguage(token)
					language = &l
				}
			case "tags":
				tags, _ = v.([]string)
			case "unsubscribeTexting":
				if b, ok := v.(bool); ok {
					texting = &b
				}
			case "unsubscribeEmail":
				if b, ok := v.(bool); ok {
					email = &b
				}
			default:
				rest[k] = v
			}
		}
		u, ok := s.update(rest, language, tags, texting, email)
		if !ok {
			completion(false, nil)
			return
		}
		completion(true, iosUser(u, s.snapshot()))
	})
}

func (s *IOS) AddTags(tags []string, completion func(error, *ios.User)) {
	s.later(0, func() {
		u, ok := s.addTags(tags)
		s.completeTags(u, ok, completion)
	})
}

func (s *IOS) RemoveTags(tags []string, completion func(error, *ios.User)) {
	s.later(0, func() {
		u, ok := s.removeTags(tags)
		s.completeTags(u, ok, completion)
	})
}

func (s *IOS) completeTags(u *user, ok bool, completion func(error, *ios.User)) {
	if !ok {
		completion(ErrNotBooted, nil)
		return
	}
	completion(nil, iosUser(u, s.snapshot()))
}

func (s *IOS) SetPage(page *string, _ map[string]any) { s.setPage(page) }
func (s *IOS) InitPushToken(token string)             { s.setPushToken(token) }
func (s *IOS) SetDebugMode(flag bool)                 { s.setDebug(flag) }
func (s *IOS) SetAppearance(a codec.Appearance)       { s.setAppearance(a) }
func (s *IOS) IsBooted() bool                         { return s.isBooted() }
func (s *IOS) HasStoredPushNotification() bool        { return s.hasStored() }
func (s *IOS) StorePushNotification(p map[string]string) {
	s.store(p)
}

func (s *IOS) IsChannelPushNotification(payload map[string]string) bool {
	return isChannelPush(payload)
}

func (s *IOS) ReceivePushNotification(payload map[string]string) {
	unread, alert, ok := s.receive(payload)
	if !ok {
		return
	}
	popup := ios.PopupData{
		ChatID:    payload["chatId"],
		AvatarURL: payload["avatarUrl"],
		Name:      payload["personName"],
	}
	if msg, has := payload["message"]; has {
		popup.Message = &msg
	}
	s.notify(func(d ios.Delegate) {
		d.OnBadgeChanged(unread, alert)
		d.OnPopupDataReceived(popup)
	})
}

func (s *IOS) OpenStoredPushNotification() {
	if chatID, ok := s.openStored(); ok {
		s.notify(func(d ios.Delegate) {
			d.OnPushNotificationClicked(chatID)
			d.OnShowMessenger()
		})
	}
}

// Snapshot returns the current simulator state.
func (s *IOS) Snapshot() Snapshot {
	return s.snapshot()
}

// ClickChannelButton simulates a tap on the launcher button.
func (s *IOS) ClickChannelButton() {
	s.notify(func(d ios.Delegate) { d.OnChannelButtonClicked() })
	s.ShowMessenger()
}

// ClickURL simulates a link tap and returns whether the delegate asked to
// open it in-app.
func (s *IOS) ClickURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	d := s.current()
	return d != nil && d.OnURLClicked(u)
}

// ChangeFollowUp simulates a follow-up state change.
func (s *IOS) ChangeFollowUp(data map[string]any) {
	s.notify(func(d ios.Delegate) { d.OnFollowUpChanged(data) })
}

func iosUser(u *user, snap Snapshot) *ios.User {
	if u == nil {
		return nil
	}
	return &ios.User{
		ID:        u.id,
		MemberID:  u.memberID,
		Name:      u.name,
		AvatarURL: u.avatarURL,
		Profile:   u.profile,
		Alert:     snap.Alert,
		Unread:    snap.Unread,
		Language:  u.language.String(),
		Tags:      u.tags,
	}
}
