package ios

import (
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/codec"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

func (m *Manager) entries() []bridge.Entry {
	sdk := m.sdk
	return []bridge.Entry{
		bridge.Async(protocol.MethodBoot, protocol.ErrCodeBoot, codec.DecodeBoot, m.boot),
		bridge.Sync(protocol.MethodSleep, protocol.ErrCodeSleep, codec.DecodeEmpty, void(sdk.Sleep)),
		bridge.Sync(protocol.MethodShutdown, protocol.ErrCodeShutdown, codec.DecodeEmpty, void(sdk.Shutdown)),
		bridge.Sync(protocol.MethodShowChannelButton, protocol.ErrCodeShowChannelButton, codec.DecodeEmpty, void(sdk.ShowChannelButton)),
		bridge.Sync(protocol.MethodHideChannelButton, protocol.ErrCodeHideChannelButton, codec.DecodeEmpty, void(sdk.HideChannelButton)),
		bridge.Sync(protocol.MethodShowMessenger, protocol.ErrCodeShowMessenger, codec.DecodeEmpty, void(sdk.ShowMessenger)),
		bridge.Sync(protocol.MethodHideMessenger, protocol.ErrCodeHideMessenger, codec.DecodeEmpty, void(sdk.HideMessenger)),
		bridge.Sync(protocol.MethodOpenChat, protocol.ErrCodeOpenChat, codec.DecodeOpenChat, func(req codec.OpenChatRequest) (any, error) {
			sdk.OpenChat(req.ChatID, req.Message)
			return nil, nil
		}),
		bridge.Sync(protocol.MethodOpenWorkflow, protocol.ErrCodeOpenWorkflow, codec.DecodeOpenWorkflow, func(req codec.OpenWorkflowRequest) (any, error) {
			sdk.OpenWorkflow(req.WorkflowID)
			return nil, nil
		}),
		bridge.Sync(protocol.MethodTrack, protocol.ErrCodeTrack, codec.DecodeTrack, func(req codec.TrackRequest) (any, error) {
			sdk.Track(req.EventName, req.Properties)
			return nil, nil
		}),
		bridge.Async(protocol.MethodUpdateUser, protocol.ErrCodeUpdateUser, codec.DecodeUpdateUser, func(req codec.UpdateUserRequest, res bridge.Result) error {
			sdk.UpdateUser(flattenUpdate(req), func(success bool, _ *User) {
				res.Success(success)
			})
			return nil
		}),
		bridge.Async(protocol.MethodAddTags, protocol.ErrCodeAddTags, codec.DecodeTags, func(req codec.TagsRequest, res bridge.Result) error {
			sdk.AddTags(req.Tags, m.collapse(protocol.MethodAddTags, res))
			return nil
		}),
		bridge.Async(protocol.MethodRemoveTags, protocol.ErrCodeRemoveTags, codec.DecodeTags, func(req codec.TagsRequest, res bridge.Result) error {
			sdk.RemoveTags(req.Tags, m.collapse(protocol.MethodRemoveTags, res))
			return nil
		}),
		bridge.Sync(protocol.MethodSetPage, protocol.ErrCodeSetPage, codec.DecodeSetPage, func(req codec.SetPageRequest) (any, error) {
			profile := req.Profile
			if profile == nil {
				profile = map[string]any{}
			}
			sdk.SetPage(req.Page, profile)
			return nil, nil
		}),
		bridge.Sync(protocol.MethodResetPage, protocol.ErrCodeResetPage, codec.DecodeEmpty, void(sdk.ResetPage)),
		bridge.Sync(protocol.MethodHidePopup, protocol.ErrCodeHidePopup, codec.DecodeEmpty, void(sdk.HidePopup)),
		bridge.Sync(protocol.MethodInitPushToken, protocol.ErrCodeInitPushToken, codec.DecodePushToken, func(req codec.PushTokenRequest) (any, error) {
			sdk.InitPushToken(req.Token)
			return nil, nil
		}),
		bridge.Sync(protocol.MethodIsChannelPushNotification, protocol.ErrCodeIsChannelPushNotification, codec.DecodePushPayload, func(req codec.PushPayloadRequest) (any, error) {
			return sdk.IsChannelPushNotification(req.Payload), nil
		}),
		bridge.Sync(protocol.MethodReceivePushNotification, protocol.ErrCodeReceivePushNotification, codec.DecodePushPayload, func(req codec.PushPayloadRequest) (any, error) {
			sdk.ReceivePushNotification(req.Payload)
			return nil, nil
		}),
		bridge.Sync(protocol.MethodHasStoredPushNotification, protocol.ErrCodeHasStoredPushNotification, codec.DecodeEmpty, func(codec.Empty) (any, error) {
			return sdk.HasStoredPushNotification(), nil
		}),
		bridge.Sync(protocol.MethodOpenStoredPushNotification, protocol.ErrCodeOpenStoredPushNotification, codec.DecodeEmpty, void(sdk.OpenStoredPushNotification)),
		bridge.Sync(protocol.MethodIsBooted, protocol.ErrCodeIsBooted, codec.DecodeEmpty, func(codec.Empty) (any, error) {
			return sdk.IsBooted(), nil
		}),
		bridge.Sync(protocol.MethodSetDebugMode, protocol.ErrCodeSetDebugMode, codec.DecodeDebugMode, func(req codec.DebugModeRequest) (any, error) {
			sdk.SetDebugMode(req.Flag)
			return nil, nil
		}),
		bridge.Sync(protocol.MethodSetAppearance, protocol.ErrCodeSetAppearance, codec.DecodeAppearance, func(req codec.AppearanceRequest) (any, error) {
			sdk.SetAppearance(req.Appearance)
			return nil, nil
		}),
	}
}

func (m *Manager) boot(req codec.BootRequest, res bridge.Result) error {
	cfg := BootConfig{
		PluginKey:         req.PluginKey,
		MemberID:          req.MemberID,
		Language:          req.Language,
		Appearance:        req.Appearance,
		TrackDefaultEvent: req.TrackDefaultEvent,
		Profile:           buildProfile(req.Profile),
	}
	if b := req.ChannelButton; b != nil {
		cfg.ChannelButtonOption = &ChannelButtonOption{Icon: b.Icon, Position: b.Position, XMargin: b.XMargin, YMargin: b.YMargin}
	}
	if b := req.Bubble; b != nil {
		cfg.BubbleOption = &BubbleOption{Position: b.Position, YMargin: b.YMargin}
	}

	m.sdk.Boot(cfg, func(status BootStatus, user *User) {
		res.Success(protocol.BootResult(wireStatus(status), wireUser(user)))
	})
	return nil
}

var profileFields = map[string]bool{"name": true, "avatarUrl": true, "mobileNumber": true, "email": true}

func buildProfile(in map[string]any) *Profile {
	if in == nil {
		return nil
	}
	p := &Profile{Properties: make(map[string]any)}
	str := func(key string) *string {
		if s, ok := in[key].(string); ok {
			return &s
		}
		return nil
	}
	p.Name = str("name")
	p.AvatarURL = str("avatarUrl")
	p.MobileNumber = str("mobileNumber")
	p.Email = str("email")
	for k, v := range in {
		if !profileFields[k] {
			p.Properties[k] = v
		}
	}
	return p
}

// flattenUpdate merges a partial update into the single mapping the iOS SDK
// takes. Absent fields are left out.
func flattenUpdate(req codec.UpdateUserRequest) map[string]any {
	out := make(map[string]any, len(req.Profile)+4)
	for k, v := range req.Profile {
		out[k] = v
	}
	if req.Language != nil {
		out["language"] = req.Language.String()
	}
	if req.Tags != nil {
		out["tags"] = req.Tags
	}
	if req.UnsubscribeTexting != nil {
		out["unsubscribeTexting"] = *req.UnsubscribeTexting
	}
	if req.UnsubscribeEmail != nil {
		out["unsubscribeEmail"] = *req.UnsubscribeEmail
	}
	return out
}

func (m *Manager) collapse(method string, res bridge.Result) func(error, *User) {
	return func(err error, _ *User) {
		if err != nil {
			m.logger.Warn("Tag update failed", zap.String("method", method), zap.Error(err))
		}
		res.Success(err == nil)
	}
}

func void(call func()) func(codec.Empty) (any, error) {
	return func(codec.Empty) (any, error) {
		call()
		return nil, nil
	}
}

func wireStatus(s BootStatus) protocol.BootStatus {
	switch s {
	case BootStatusSuccess:
		return protocol.BootStatusSuccess
	case BootStatusNotInitialized:
		return protocol.BootStatusNotInitialized
	case BootStatusNetworkTimeout:
		return protocol.BootStatusNetworkTimeout
	case BootStatusNotAvailableVersion:
		return protocol.BootStatusNotAvailableVersion
	case BootStatusServiceUnderConstruction:
		return protocol.BootStatusServiceUnderConstruction
	case BootStatusRequirePayment:
		return protocol.BootStatusRequirePayment
	case BootStatusAccessDenied:
		return protocol.BootStatusAccessDenied
	default:
		return protocol.BootStatusUnknown
	}
}

func wireUser(u *User) *protocol.User {
	if u == nil {
		return nil
	}
	return &protocol.User{
		ID:        u.ID,
		MemberID:  u.MemberID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Profile:   u.Profile,
		Alert:     u.Alert,
		Unread:    u.Unread,
		Language:  u.Language,
		Tags:      u.Tags,
	}
}
