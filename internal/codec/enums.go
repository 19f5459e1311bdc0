package codec

// Language is a supported messenger locale.
type Language int

const (
	// LanguageKorean is the primary supported locale and the fallback for
	// unrecognized tokens.
	LanguageKorean Language = iota
	LanguageEnglish
	LanguageJapanese
)

var languageTokens = map[string]Language{
	"ko": LanguageKorean,
	"en": LanguageEnglish,
	"ja": LanguageJapanese,
}

// ParseLanguage maps a locale token. Unknown tokens fall back to Korean.
func ParseLanguage(token string) Language {
	if l, ok := languageTokens[token]; ok {
		return l
	}
	return LanguageKorean
}

// String returns the locale token.
func (l Language) String() string {
	switch l {
	case LanguageEnglish:
		return "en"
	case LanguageJapanese:
		return "ja"
	default:
		return "ko"
	}
}

// Appearance is the messenger color scheme.
type Appearance int

const (
	// AppearanceSystem follows the OS setting; fallback for unknown tokens.
	AppearanceSystem Appearance = iota
	AppearanceLight
	AppearanceDark
)

// ParseAppearance maps an appearance token. Unknown tokens fall back to system.
func ParseAppearance(token string) Appearance {
	switch token {
	case "light":
		return AppearanceLight
	case "dark":
		return AppearanceDark
	default:
		return AppearanceSystem
	}
}

// String returns the appearance token.
func (a Appearance) String() string {
	switch a {
	case AppearanceLight:
		return "light"
	case AppearanceDark:
		return "dark"
	default:
		return "system"
	}
}

// ButtonIcon is the launcher button icon.
type ButtonIcon string

const (
	ButtonIconChannel             ButtonIcon = "channel"
	ButtonIconChatBubbleFilled    ButtonIcon = "chatBubbleFilled"
	ButtonIconChatProgressFilled  ButtonIcon = "chatProgressFilled"
	ButtonIconChatQuestionFilled  ButtonIcon = "chatQuestionFilled"
	ButtonIconChatLightningFilled ButtonIcon = "chatLightningFilled"
	ButtonIconChatBubbleAltFilled ButtonIcon = "chatBubbleAltFilled"
	ButtonIconSmsFilled           ButtonIcon = "smsFilled"
	ButtonIconCommentFilled       ButtonIcon = "commentFilled"
	ButtonIconSendForwardFilled   ButtonIcon = "sendForwardFilled"
	ButtonIconHelpFilled          ButtonIcon = "helpFilled"
	ButtonIconChatProgress        ButtonIcon = "chatProgress"
	ButtonIconChatQuestion        ButtonIcon = "chatQuestion"
	ButtonIconChatBubbleAlt       ButtonIcon = "chatBubbleAlt"
	ButtonIconSms                 ButtonIcon = "sms"
	ButtonIconComment             ButtonIcon = "comment"
	ButtonIconSendForward         ButtonIcon = "sendForward"
	ButtonIconCommunication       ButtonIcon = "communication"
	ButtonIconHeadset             ButtonIcon = "headset"
)

// ButtonIcons lists every known icon in declaration order.
var ButtonIcons = []ButtonIcon{
	ButtonIconChannel, ButtonIconChatBubbleFilled, ButtonIconChatProgressFilled,
	ButtonIconChatQuestionFilled, ButtonIconChatLightningFilled, ButtonIconChatBubbleAltFilled,
	ButtonIconSmsFilled, ButtonIconCommentFilled, ButtonIconSendForwardFilled,
	ButtonIconHelpFilled, ButtonIconChatProgress, ButtonIconChatQuestion,
	ButtonIconChatBubbleAlt, ButtonIconSms, ButtonIconComment,
	ButtonIconSendForward, ButtonIconCommunication, ButtonIconHeadset,
}

var buttonIconSet = func() map[string]ButtonIcon {
	m := make(map[string]ButtonIcon, len(ButtonIcons))
	for _, icon := range ButtonIcons {
		m[string(icon)] = icon
	}
	return m
}()

// ParseButtonIcon maps an icon token. Unknown tokens fall back to channel.
func ParseButtonIcon(token string) ButtonIcon {
	if icon, ok := buttonIconSet[token]; ok {
		return icon
	}
	return ButtonIconChannel
}

// ButtonPosition is the horizontal anchor of the launcher button.
type ButtonPosition int

const (
	ButtonPositionRight ButtonPosition = iota
	ButtonPositionLeft
)

// ParseButtonPosition maps a position token. Unknown tokens fall back to right.
func ParseButtonPosition(token string) ButtonPosition {
	if token == "left" {
		return ButtonPositionLeft
	}
	return ButtonPositionRight
}

// BubblePosition is the vertical anchor of the inline bubble.
type BubblePosition int

const (
	BubblePositionTop BubblePosition = iota
	BubblePositionBottom
)

// ParseBubblePosition maps a position token. Unknown tokens fall back to top.
func ParseBubblePosition(token string) BubblePosition {
	if token == "bottom" {
		return BubblePositionBottom
	}
	return BubblePositionTop
}
