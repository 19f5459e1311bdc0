package android

import (
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/codec"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

func (m *Manager) entries() []bridge.Entry {
	return []bridge.Entry{
		bridge.Async(protocol.MethodBoot, protocol.ErrCodeBoot, codec.DecodeBoot, m.boot),
		bridge.Sync(protocol.MethodSleep, protocol.ErrCodeSleep, codec.DecodeEmpty, void(m.sdk.Sleep)),
		bridge.Sync(protocol.MethodShutdown, protocol.ErrCodeShutdown, codec.DecodeEmpty, void(m.sdk.Shutdown)),
		bridge.Sync(protocol.MethodShowChannelButton, protocol.ErrCodeShowChannelButton, codec.DecodeEmpty, void(m.sdk.ShowChannelButton)),
		bridge.Sync(protocol.MethodHideChannelButton, protocol.ErrCodeHideChannelButton, codec.DecodeEmpty, void(m.sdk.HideChannelButton)),
		bridge.Sync(protocol.MethodShowMessenger, protocol.ErrCodeShowMessenger, codec.DecodeEmpty, void(m.sdk.ShowMessenger)),
		bridge.Sync(protocol.MethodHideMessenger, protocol.ErrCodeHideMessenger, codec.DecodeEmpty, void(m.sdk.HideMessenger)),
		bridge.Sync(protocol.MethodOpenChat, protocol.ErrCodeOpenChat, codec.DecodeOpenChat, func(req codec.OpenChatRequest) (any, error) {
			return nil, m.sdk.OpenChat(req.ChatID, req.Message)
		}),
		bridge.Sync(protocol.MethodOpenWorkflow, protocol.ErrCodeOpenWorkflow, codec.DecodeOpenWorkflow, func(req codec.OpenWorkflowRequest) (any, error) {
			return nil, m.sdk.OpenWorkflow(req.WorkflowID)
		}),
		bridge.Sync(protocol.MethodTrack, protocol.ErrCodeTrack, codec.DecodeTrack, func(req codec.TrackRequest) (any, error) {
			return nil, m.sdk.Track(req.EventName, req.Properties)
		}),
		bridge.Async(protocol.MethodUpdateUser, protocol.ErrCodeUpdateUser, codec.DecodeUpdateUser, m.updateUser),
		bridge.Async(protocol.MethodAddTags, protocol.ErrCodeAddTags, codec.DecodeTags, func(req codec.TagsRequest, res bridge.Result) error {
			return m.sdk.AddTags(req.Tags, m.collapse(protocol.MethodAddTags, res))
		}),
		bridge.Async(protocol.MethodRemoveTags, protocol.ErrCodeRemoveTags, codec.DecodeTags, func(req codec.TagsRequest, res bridge.Result) error {
			return m.sdk.RemoveTags(req.Tags, m.collapse(protocol.MethodRemoveTags, res))
		}),
		bridge.Sync(protocol.MethodSetPage, protocol.ErrCodeSetPage, codec.DecodeSetPage, func(req codec.SetPageRequest) (any, error) {
			return nil, m.sdk.SetPage(req.Page, req.Profile)
		}),
		bridge.Sync(protocol.MethodResetPage, protocol.ErrCodeResetPage, codec.DecodeEmpty, void(m.sdk.ResetPage)),
		bridge.Sync(protocol.MethodHidePopup, protocol.ErrCodeHidePopup, codec.DecodeEmpty, void(m.sdk.HidePopup)),
		bridge.Sync(protocol.MethodInitPushToken, protocol.ErrCodeInitPushToken, codec.DecodePushToken, func(req codec.PushTokenRequest) (any, error) {
			return nil, m.sdk.InitPushToken(req.Token)
		}),
		bridge.Sync(protocol.MethodIsChannelPushNotification, protocol.ErrCodeIsChannelPushNotification, codec.DecodePushPayload, func(req codec.PushPayloadRequest) (any, error) {
			return m.sdk.IsChannelPushNotification(req.Payload)
		}),
		bridge.Sync(protocol.MethodReceivePushNotification, protocol.ErrCodeReceivePushNotification, codec.DecodePushPayload, func(req codec.PushPayloadRequest) (any, error) {
			return nil, m.sdk.ReceivePushNotification(req.Payload)
		}),
		bridge.Sync(protocol.MethodHasStoredPushNotification, protocol.ErrCodeHasStoredPushNotification, codec.DecodeEmpty, func(codec.Empty) (any, error) {
			return m.sdk.HasStoredPushNotification()
		}),
		bridge.Sync(protocol.MethodOpenStoredPushNotification, protocol.ErrCodeOpenStoredPushNotification, codec.DecodeEmpty, void(m.sdk.OpenStoredPushNotification)),
		bridge.Sync(protocol.MethodIsBooted, protocol.ErrCodeIsBooted, codec.DecodeEmpty, func(codec.Empty) (any, error) {
			return m.sdk.IsBooted()
		}),
		bridge.Sync(protocol.MethodSetDebugMode, protocol.ErrCodeSetDebugMode, codec.DecodeDebugMode, func(req codec.DebugModeRequest) (any, error) {
			return nil, m.sdk.SetDebugMode(req.Flag)
		}),
		bridge.Sync(protocol.MethodSetAppearance, protocol.ErrCodeSetAppearance, codec.DecodeAppearance, func(req codec.AppearanceRequest) (any, error) {
			return nil, m.sdk.SetAppearance(req.Appearance)
		}),
	}
}

func (m *Manager) boot(req codec.BootRequest, res bridge.Result) error {
	cfg := BootConfig{
		PluginKey:         req.PluginKey,
		Language:          req.Language,
		Appearance:        req.Appearance,
		TrackDefaultEvent: req.TrackDefaultEvent,
		Profile:           scalarProfile(req.Profile),
	}
	if req.MemberID != nil {
		cfg.MemberID = *req.MemberID
	}
	if b := req.ChannelButton; b != nil {
		cfg.ChannelButton = &ButtonOption{Icon: b.Icon, Position: b.Position, XMargin: b.XMargin, YMargin: b.YMargin}
	}
	if b := req.Bubble; b != nil {
		cfg.Bubble = &BubbleOption{Position: b.Position, YMargin: b.YMargin}
	}

	return m.sdk.Boot(cfg, func(status BootStatus, user *User) {
		res.Success(protocol.BootResult(wireStatus(status), wireUser(user)))
	})
}

func (m *Manager) updateUser(req codec.UpdateUserRequest, res bridge.Result) error {
	return m.sdk.UpdateUser(UserData{
		ProfileMap:         req.Profile,
		Language:           req.Language,
		Tags:               req.Tags,
		UnsubscribeTexting: req.UnsubscribeTexting,
		UnsubscribeEmail:   req.UnsubscribeEmail,
	}, m.collapse(protocol.MethodUpdateUser, res))
}

// collapse resolves res with whether the update succeeded. The fault detail
// is logged, not reported.
func (m *Manager) collapse(method string, res bridge.Result) UserUpdateCallback {
	return func(err error, _ *User) {
		if err != nil {
			m.logger.Warn("User update failed", zap.String("method", method), zap.Error(err))
		}
		res.Success(err == nil)
	}
}

func void(call func() error) func(codec.Empty) (any, error) {
	return func(codec.Empty) (any, error) {
		return nil, call()
	}
}

// scalarProfile keeps the property kinds the SDK profile accepts.
func scalarProfile(in map[string]any) Profile {
	if in == nil {
		return nil
	}
	out := make(Profile, len(in))
	for k, v := range in {
		switch v.(type) {
		case string, bool:
			out[k] = v
		default:
			if codec.IsNumber(v) {
				out[k] = v
			}
		}
	}
	return out
}

func wireStatus(s BootStatus) protocol.BootStatus {
	if s == BootStatusUnknownError {
		return protocol.BootStatusUnknown
	}
	status := protocol.BootStatus(s.Name())
	switch status {
	case protocol.BootStatusSuccess, protocol.BootStatusNotInitialized, protocol.BootStatusNetworkTimeout,
		protocol.BootStatusNotAvailableVersion, protocol.BootStatusServiceUnderConstruction,
		protocol.BootStatusRequirePayment, protocol.BootStatusAccessDenied:
		return status
	default:
		return protocol.BootStatusUnknown
	}
}

func wireUser(u *User) *protocol.User {
	if u == nil {
		return nil
	}
	out := &protocol.User{
		ID:        u.ID,
		MemberID:  u.MemberID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Profile:   u.Profile,
		Alert:     u.Alert,
		Unread:    u.Unread,
		Tags:      u.Tags,
	}
	if u.Language != nil {
		out.Language = u.Language.String()
	}
	return out
}
