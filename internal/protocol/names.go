package protocol

// Command names.
const (
	MethodBoot                       = "boot"
	MethodSleep                      = "sleep"
	MethodShutdown                   = "shutdown"
	MethodShowChannelButton          = "showChannelButton"
	MethodHideChannelButton          = "hideChannelButton"
	MethodShowMessenger              = "showMessenger"
	MethodHideMessenger              = "hideMessenger"
	MethodOpenChat                   = "openChat"
	MethodOpenWorkflow               = "openWorkflow"
	MethodTrack                      = "track"
	MethodUpdateUser                 = "updateUser"
	MethodAddTags                    = "addTags"
	MethodRemoveTags                 = "removeTags"
	MethodSetPage                    = "setPage"
	MethodResetPage                  = "resetPage"
	MethodHidePopup                  = "hidePopup"
	MethodInitPushToken              = "initPushToken"
	MethodIsChannelPushNotification  = "isChannelPushNotification"
	MethodReceivePushNotification    = "receivePushNotification"
	MethodHasStoredPushNotification  = "hasStoredPushNotification"
	MethodOpenStoredPushNotification = "openStoredPushNotification"
	MethodIsBooted                   = "isBooted"
	MethodSetDebugMode               = "setDebugMode"
	MethodSetAppearance              = "setAppearance"
)

// Methods lists every supported command name.
var Methods = []string{
	MethodBoot, MethodSleep, MethodShutdown,
	MethodShowChannelButton, MethodHideChannelButton,
	MethodShowMessenger, MethodHideMessenger,
	MethodOpenChat, MethodOpenWorkflow, MethodTrack,
	MethodUpdateUser, MethodAddTags, MethodRemoveTags,
	MethodSetPage, MethodResetPage, MethodHidePopup,
	MethodInitPushToken, MethodIsChannelPushNotification, MethodReceivePushNotification,
	MethodHasStoredPushNotification, MethodOpenStoredPushNotification,
	MethodIsBooted, MethodSetDebugMode, MethodSetAppearance,
}

// Event names.
const (
	EventBadgeChanged            = "onBadgeChanged"
	EventChatCreated             = "onChatCreated"
	EventPopupDataReceived       = "onPopupDataReceived"
	EventPushNotificationClicked = "onPushNotificationClicked"
	EventURLClicked              = "onUrlClicked"
	EventShowMessenger           = "onShowMessenger"
	EventHideMessenger           = "onHideMessenger"
	EventFollowUpChanged         = "onFollowUpChanged"
	EventChannelButtonClicked    = "onChannelButtonClicked"
)

// Error codes shared by every command.
const (
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeInvalidArguments = "INVALID_ARGUMENTS"
)

// Per-command fault codes.
const (
	ErrCodeBoot                       = "BOOT_ERROR"
	ErrCodeSleep                      = "SLEEP_ERROR"
	ErrCodeShutdown                   = "SHUTDOWN_ERROR"
	ErrCodeShowChannelButton          = "SHOW_CHANNEL_BUTTON_ERROR"
	ErrCodeHideChannelButton          = "HIDE_CHANNEL_BUTTON_ERROR"
	ErrCodeShowMessenger              = "SHOW_MESSENGER_ERROR"
	ErrCodeHideMessenger              = "HIDE_MESSENGER_ERROR"
	ErrCodeOpenChat                   = "OPEN_CHAT_ERROR"
	ErrCodeOpenWorkflow               = "OPEN_WORKFLOW_ERROR"
	ErrCodeTrack                      = "TRACK_ERROR"
	ErrCodeUpdateUser                 = "UPDATE_USER_ERROR"
	ErrCodeAddTags                    = "ADD_TAGS_ERROR"
	ErrCodeRemoveTags                 = "REMOVE_TAGS_ERROR"
	ErrCodeSetPage                    = "SET_PAGE_ERROR"
	ErrCodeResetPage                  = "RESET_PAGE_ERROR"
	ErrCodeHidePopup                  = "HIDE_POPUP_ERROR"
	ErrCodeInitPushToken              = "INIT_PUSH_TOKEN_ERROR"
	ErrCodeIsChannelPushNotification  = "IS_CHANNEL_PUSH_NOTIFICATION_ERROR"
	ErrCodeReceivePushNotification    = "RECEIVE_PUSH_NOTIFICATION_ERROR"
	ErrCodeHasStoredPushNotification  = "HAS_STORED_PUSH_NOTIFICATION_ERROR"
	ErrCodeOpenStoredPushNotification = "OPEN_STORED_PUSH_NOTIFICATION_ERROR"
	ErrCodeIsBooted                   = "IS_BOOTED_ERROR"
	ErrCodeSetDebugMode               = "SET_DEBUG_MODE_ERROR"
	ErrCodeSetAppearance              = "SET_APPEARANCE_ERROR"
)

// BootStatus is the platform-neutral boot outcome reported on the wire.
type BootStatus string

const (
	BootStatusSuccess                  BootStatus = "SUCCESS"
	BootStatusNotInitialized           BootStatus = "NOT_INITIALIZED"
	BootStatusNetworkTimeout           BootStatus = "NETWORK_TIMEOUT"
	BootStatusNotAvailableVersion      BootStatus = "NOT_AVAILABLE_VERSION"
	BootStatusServiceUnderConstruction BootStatus = "SERVICE_UNDER_CONSTRUCTION"
	BootStatusRequirePayment           BootStatus = "REQUIRE_PAYMENT"
	BootStatusAccessDenied             BootStatus = "ACCESS_DENIED"
	BootStatusUnknown                  BootStatus = "UNKNOWN"
)
