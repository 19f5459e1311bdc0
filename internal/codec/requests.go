package codec

// DefaultButtonMargin is applied to each launcher button margin not supplied.
const DefaultButtonMargin float32 = 16

// Empty is the decoded request of a command without arguments.
type Empty struct{}

// DecodeEmpty ignores any arguments.
func DecodeEmpty(Args) (Empty, error) {
	return Empty{}, nil
}

// ButtonOptions configures the launcher button.
type ButtonOptions struct {
	Icon     ButtonIcon
	Position ButtonPosition
	XMargin  float32
	YMargin  float32
}

// BubbleOptions configures the inline message bubble.
type BubbleOptions struct {
	Position BubblePosition
	// YMargin is nil when not supplied; the SDK default applies.
	YMargin *float32
}

// BootRequest is the decoded boot command.
type BootRequest struct {
	PluginKey         string
	MemberID          *string
	Language          *Language
	Appearance        *Appearance
	TrackDefaultEvent *bool
	Profile           map[string]any
	// ChannelButton is nil when channelButtonOption is absent.
	ChannelButton *ButtonOptions
	// Bubble is nil when bubbleOption is absent.
	Bubble *BubbleOptions
}

// DecodeBoot decodes boot arguments.
func DecodeBoot(a Args) (BootRequest, error) {
	var req BootRequest
	var err error

	if req.PluginKey, err = a.RequiredString("pluginKey"); err != nil {
		return req, err
	}
	if req.MemberID, err = a.String("memberId"); err != nil {
		return req, err
	}
	if req.Language, err = decodeLanguage(a, "language"); err != nil {
		return req, err
	}
	if req.Appearance, err = decodeAppearance(a, "appearance"); err != nil {
		return req, err
	}
	if req.TrackDefaultEvent, err = a.Bool("trackDefaultEvent"); err != nil {
		return req, err
	}
	if req.Profile, err = a.Map("profile"); err != nil {
		return req, err
	}

	button, err := a.Sub("channelButtonOption")
	if err != nil {
		return req, err
	}
	if button != nil {
		if req.ChannelButton, err = decodeButtonOptions(button); err != nil {
			return req, err
		}
	}

	bubble, err := a.Sub("bubbleOption")
	if err != nil {
		return req, err
	}
	if bubble != nil {
		if req.Bubble, err = decodeBubbleOptions(bubble); err != nil {
			return req, err
		}
	}

	return req, nil
}

func decodeButtonOptions(a Args) (*ButtonOptions, error) {
	opts := &ButtonOptions{
		Icon:     ButtonIconChannel,
		Position: ButtonPositionRight,
		XMargin:  DefaultButtonMargin,
		YMargin:  DefaultButtonMargin,
	}

	icon, err := a.String("icon")
	if err != nil {
		return nil, prefixed("channelButtonOption", err)
	}
	if icon != nil {
		opts.Icon = ParseButtonIcon(*icon)
	}

	position, err := a.String("position")
	if err != nil {
		return nil, prefixed("channelButtonOption", err)
	}
	if position != nil {
		opts.Position = ParseButtonPosition(*position)
	}

	x, err := a.Float32("xMargin")
	if err != nil {
		return nil, prefixed("channelButtonOption", err)
	}
	if x != nil {
		opts.XMargin = *x
	}

	y, err := a.Float32("yMargin")
	if err != nil {
		return nil, prefixed("channelButtonOption", err)
	}
	if y != nil {
		opts.YMargin = *y
	}

	return opts, nil
}

func decodeBubbleOptions(a Args) (*BubbleOptions, error) {
	opts := &BubbleOptions{Position: BubblePositionTop}

	position, err := a.String("position")
	if err != nil {
		return nil, prefixed("bubbleOption", err)
	}
	if position != nil {
		opts.Position = ParseBubblePosition(*position)
	}

	if opts.YMargin, err = a.Float32("yMargin"); err != nil {
		return nil, prefixed("bubbleOption", err)
	}
	return opts, nil
}

// TrackRequest is the decoded track command.
type TrackRequest struct {
	EventName string
	// Properties is nil when no property map was sent.
	Properties map[string]any
}

// DecodeTrack decodes track arguments. "properties" is accepted as an alias
// of "eventProperty".
func DecodeTrack(a Args) (TrackRequest, error) {
	var req TrackRequest
	var err error

	if req.EventName, err = a.RequiredString("eventName"); err != nil {
		return req, err
	}
	key := "eventProperty"
	if !a.Has(key) {
		key = "properties"
	}
	if req.Properties, err = a.Map(key); err != nil {
		return req, err
	}
	return req, nil
}

// UpdateUserRequest is the decoded updateUser command. Nil fields are left
// untouched by the SDK.
type UpdateUserRequest struct {
	Profile            map[string]any
	Language           *Language
	Tags               []string
	UnsubscribeTexting *bool
	UnsubscribeEmail   *bool
}

// DecodeUpdateUser decodes updateUser arguments.
func DecodeUpdateUser(a Args) (UpdateUserRequest, error) {
	var req UpdateUserRequest
	var err error

	if req.Profile, err = a.Map("profile"); err != nil {
		return req, err
	}
	if req.Language, err = decodeLanguage(a, "language"); err != nil {
		return req, err
	}
	if req.Tags, err = a.StringList("tags"); err != nil {
		return req, err
	}
	if req.UnsubscribeTexting, err = a.Bool("unsubscribeTexting"); err != nil {
		return req, err
	}
	if req.UnsubscribeEmail, err = a.Bool("unsubscribeEmail"); err != nil {
		return req, err
	}
	return req, nil
}

// TagsRequest is the decoded addTags / removeTags command.
type TagsRequest struct {
	Tags []string
}

// DecodeTags decodes addTags and removeTags arguments.
func DecodeTags(a Args) (TagsRequest, error) {
	tags, err := a.RequiredStringList("tags")
	return TagsRequest{Tags: tags}, err
}

// OpenChatRequest is the decoded openChat command.
type OpenChatRequest struct {
	ChatID  *string
	Message *string
}

// DecodeOpenChat decodes openChat arguments.
func DecodeOpenChat(a Args) (OpenChatRequest, error) {
	var req OpenChatRequest
	var err error

	if req.ChatID, err = a.String("chatId"); err != nil {
		return req, err
	}
	req.Message, err = a.String("message")
	return req, err
}

// OpenWorkflowRequest is the decoded openWorkflow command.
type OpenWorkflowRequest struct {
	WorkflowID *string
}

// DecodeOpenWorkflow decodes openWorkflow arguments.
func DecodeOpenWorkflow(a Args) (OpenWorkflowRequest, error) {
	id, err := a.String("workflowId")
	return OpenWorkflowRequest{WorkflowID: id}, err
}

// SetPageRequest is the decoded setPage command.
type SetPageRequest struct {
	Page    *string
	Profile map[string]any
}

// DecodeSetPage decodes setPage arguments.
func DecodeSetPage(a Args) (SetPageRequest, error) {
	var req SetPageRequest
	var err error

	if req.Page, err = a.String("page"); err != nil {
		return req, err
	}
	req.Profile, err = a.Map("profile")
	return req, err
}

// PushTokenRequest is the decoded initPushToken command.
type PushTokenRequest struct {
	Token string
}

// DecodePushToken decodes initPushToken arguments.
func DecodePushToken(a Args) (PushTokenRequest, error) {
	token, err := a.RequiredString("token")
	return PushTokenRequest{Token: token}, err
}

// PushPayloadRequest is the decoded isChannelPushNotification /
// receivePushNotification command. Payload is already normalized.
type PushPayloadRequest struct {
	Payload map[string]string
}

// DecodePushPayload decodes the payload argument and normalizes its values.
func DecodePushPayload(a Args) (PushPayloadRequest, error) {
	payload, err := a.RequiredMap("payload")
	if err != nil {
		return PushPayloadRequest{}, err
	}
	return PushPayloadRequest{Payload: StringifyPayload(payload)}, nil
}

// DebugModeRequest is the decoded setDebugMode command.
type DebugModeRequest struct {
	Flag bool
}

// DecodeDebugMode decodes setDebugMode arguments.
func DecodeDebugMode(a Args) (DebugModeRequest, error) {
	flag, err := a.RequiredBool("flag")
	return DebugModeRequest{Flag: flag}, err
}

// AppearanceRequest is the decoded setAppearance command.
type AppearanceRequest struct {
	Appearance Appearance
}

// DecodeAppearance decodes setAppearance arguments.
func DecodeAppearance(a Args) (AppearanceRequest, error) {
	token, err := a.RequiredString("appearance")
	if err != nil {
		return AppearanceRequest{}, err
	}
	return AppearanceRequest{Appearance: ParseAppearance(token)}, nil
}

func decodeLanguage(a Args, key string) (*Language, error) {
	token, err := a.String(key)
	if err != nil || token == nil {
		return nil, err
	}
	l := ParseLanguage(*token)
	return &l, nil
}

func decodeAppearance(a Args, key string) (*Appearance, error) {
	token, err := a.String(key)
	if err != nil || token == nil {
		return nil, err
	}
	ap := ParseAppearance(*token)
	return &ap, nil
}

// prefixed qualifies a nested field name with its parent key.
func prefixed(parent string, err error) error {
	switch e := err.(type) {
	case *InvalidArgumentError:
		return &InvalidArgumentError{Field: parent + "." + e.Field, Expected: e.Expected, Got: e.Got}
	case *MissingParameterError:
		return &MissingParameterError{Field: parent + "." + e.Field}
	default:
		return err
	}
}
