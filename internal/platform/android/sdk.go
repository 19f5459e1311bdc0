// Package android binds the bridge to the Android flavour of the Channel.io
// SDK. The SDK surface is consumed through the SDK and Listener interfaces;
// synchronous SDK faults surface as returned errors.
package android

import (
	"github.com/zlc_ai/channelio-bridge/internal/codec"
)

// BootStatus is the Android SDK boot outcome.
type BootStatus int

const (
	BootStatusSuccess BootStatus = iota
	BootStatusNotInitialized
	BootStatusNetworkTimeout
	BootStatusNotAvailableVersion
	BootStatusServiceUnderConstruction
	BootStatusRequirePayment
	BootStatusAccessDenied
	BootStatusUnknownError
)

// Name returns the enum constant name as the SDK spells it.
func (s BootStatus) Name() string {
	switch s {
	case BootStatusSuccess:
		return "SUCCESS"
	case BootStatusNotInitialized:
		return "NOT_INITIALIZED"
	case BootStatusNetworkTimeout:
		return "NETWORK_TIMEOUT"
	case BootStatusNotAvailableVersion:
		return "NOT_AVAILABLE_VERSION"
	case BootStatusServiceUnderConstruction:
		return "SERVICE_UNDER_CONSTRUCTION"
	case BootStatusRequirePayment:
		return "REQUIRE_PAYMENT"
	case BootStatusAccessDenied:
		return "ACCESS_DENIED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// ButtonOption places the launcher button.
type ButtonOption struct {
	Icon     codec.ButtonIcon
	Position codec.ButtonPosition
	XMargin  float32
	YMargin  float32
}

// BubbleOption places the inline bubble. A nil YMargin keeps the SDK default.
type BubbleOption struct {
	Position codec.BubblePosition
	YMargin  *float32
}

// Profile holds scalar profile properties. Values are string, float64 or bool.
type Profile map[string]any

// BootConfig is handed to SDK.Boot and not touched afterwards.
type BootConfig struct {
	PluginKey         string
	MemberID          string
	Language          *codec.Language
	Appearance        *codec.Appearance
	TrackDefaultEvent *bool
	Profile           Profile
	ChannelButton     *ButtonOption
	Bubble            *BubbleOption
}

// User is the Android SDK user record.
type User struct {
	ID        string
	MemberID  string
	Name      string
	AvatarURL string
	Profile   map[string]any
	Alert     int
	Unread    int
	Language  *codec.Language
	Tags      []string
}

// UserData is a partial user update. Nil fields are left untouched.
type UserData struct {
	ProfileMap         map[string]any
	Language           *codec.Language
	Tags               []string
	UnsubscribeTexting *bool
	UnsubscribeEmail   *bool
}

// PopupData describes an in-app popup.
type PopupData struct {
	ChatID    string
	AvatarURL string
	Name      string
	// Message is nil when the popup carries no text.
	Message   *string
	Timestamp int64
}

// BootCallback receives the boot outcome, possibly on another goroutine.
type BootCallback func(status BootStatus, user *User)

// UserUpdateCallback receives a user update outcome, possibly on another
// goroutine. A nil err means success.
type UserUpdateCallback func(err error, user *User)

// SDK is the Android Channel.io surface the bridge consumes.
type SDK interface {
	Boot(cfg BootConfig, cb BootCallback) error
	Sleep() error
	Shutdown() error
	ShowChannelButton() error
	HideChannelButton() error
	ShowMessenger() error
	HideMessenger() error
	OpenChat(chatID, message *string) error
	OpenWorkflow(workflowID *string) error
	Track(eventName string, eventProperty map[string]any) error
	UpdateUser(data UserData, cb UserUpdateCallback) error
	AddTags(tags []string, cb UserUpdateCallback) error
	RemoveTags(tags []string, cb UserUpdateCallback) error
	SetPage(page *string, profile map[string]any) error
	ResetPage() error
	HidePopup() error
	InitPushToken(token string) error
	IsChannelPushNotification(payload map[string]string) (bool, error)
	ReceivePushNotification(payload map[string]string) error
	HasStoredPushNotification() (bool, error)
	OpenStoredPushNotification() error
	IsBooted() (bool, error)
	SetDebugMode(flag bool) error
	SetAppearance(appearance codec.Appearance) error

	// SetListener replaces the registered listener.
	SetListener(l Listener)
	// ClearListener removes the registered listener.
	ClearListener()
}

// Listener is the Android SDK callback contract. The SDK may invoke it from
// any goroutine.
type Listener interface {
	// OnBadgeChanged reports a single combined count.
	OnBadgeChanged(count int)
	// OnBadgeChangedDetailed reports unread and alert counts separately.
	OnBadgeChangedDetailed(unread, alert int)
	OnChatCreated(chatID string)
	OnPopupDataReceived(popup PopupData)
	// OnPushNotificationClicked returns true when the app handled the click.
	OnPushNotificationClicked(chatID string) bool
	// OnURLClicked returns true to open the URL inside the messenger.
	OnURLClicked(url string) bool
	OnShowMessenger()
	OnHideMessenger()
	OnFollowUpChanged(data map[string]string)
}
