// Package ios binds the bridge to the iOS flavour of the Channel.io SDK.
//
// The iOS surface reports no errors from synchronous calls; a native fault
// surfaces as a panic, which the command table recovers at the handler
// boundary. Event callbacks arrive through a Delegate.
package ios

import (
	"net/url"

	"github.com/zlc_ai/channelio-bridge/internal/codec"
)

// BootStatus is the iOS SDK boot outcome.
type BootStatus int

const (
	BootStatusSuccess BootStatus = iota
	BootStatusNotInitialized
	BootStatusNetworkTimeout
	BootStatusNotAvailableVersion
	BootStatusServiceUnderConstruction
	BootStatusRequirePayment
	BootStatusAccessDenied
	BootStatusUnknown
)

// Profile is the boot profile. Well-known fields are typed; anything else goes
// to Properties.
type Profile struct {
	Name         *string
	AvatarURL    *string
	MobileNumber *string
	Email        *string
	Properties   map[string]any
}

// ChannelButtonOption places the launcher button.
type ChannelButtonOption struct {
	Icon     codec.ButtonIcon
	Position codec.ButtonPosition
	XMargin  float32
	YMargin  float32
}

// BubbleOption places the inline bubble.
type BubbleOption struct {
	Position codec.BubblePosition
	YMargin  *float32
}

// BootConfig is handed to SDK.Boot and not touched afterwards.
type BootConfig struct {
	PluginKey           string
	MemberID            *string
	Language            *codec.Language
	Appearance          *codec.Appearance
	TrackDefaultEvent   *bool
	Profile             *Profile
	ChannelButtonOption *ChannelButtonOption
	BubbleOption        *BubbleOption
}

// User is the iOS SDK user record. Language is already a locale token.
type User struct {
	ID        string
	MemberID  string
	Name      string
	AvatarURL string
	Profile   map[string]any
	Alert     int
	Unread    int
	Language  string
	Tags      []string
}

// PopupData describes an in-app popup.
type PopupData struct {
	ChatID    string
	AvatarURL string
	Name      string
	Message   *string
}

// SDK is the iOS Channel.io surface the bridge consumes.
type SDK interface {
	Boot(cfg BootConfig, completion func(status BootStatus, user *User))
	Sleep()
	Shutdown()
	ShowChannelButton()
	HideChannelButton()
	ShowMessenger()
	HideMessenger()
	OpenChat(chatID, message *string)
	OpenWorkflow(workflowID *string)
	Track(eventName string, eventProperty map[string]any)
	// UpdateUser takes a flat profile mapping, including language, tags and
	// subscription flags.
	UpdateUser(profile map[string]any, completion func(success bool, user *User))
	AddTags(tags []string, completion func(err error, user *User))
	RemoveTags(tags []string, completion func(err error, user *User))
	SetPage(page *string, profile map[string]any)
	ResetPage()
	HidePopup()
	InitPushToken(token string)
	IsChannelPushNotification(payload map[string]string) bool
	ReceivePushNotification(payload map[string]string)
	StorePushNotification(payload map[string]string)
	HasStoredPushNotification() bool
	OpenStoredPushNotification()
	IsBooted() bool
	SetDebugMode(flag bool)
	SetAppearance(appearance codec.Appearance)

	// SetDelegate replaces the delegate. Nil clears it.
	SetDelegate(d Delegate)
}

// Delegate is the iOS SDK callback contract. The SDK may invoke it from any
// goroutine.
type Delegate interface {
	OnChannelButtonClicked()
	OnBadgeChanged(unread, alert int)
	OnChatCreated(chatID string)
	OnPopupDataReceived(popup PopupData)
	OnPushNotificationClicked(chatID string)
	// OnURLClicked returns true to open the URL inside the messenger.
	OnURLClicked(u *url.URL) bool
	OnShowMessenger()
	OnHideMessenger()
	OnFollowUpChanged(data map[string]any)
}
