package protocol

// User is the wire form of the native user record returned by boot.
type User struct {
	ID        string
	MemberID  string
	Name      string
	AvatarURL string
	Profile   map[string]any
	Alert     int
	Unread    int
	// Language is the locale token ("ko", "en", "ja"); empty when unknown.
	Language string
	Tags     []string
}

// Map returns the user as a wire mapping.
func (u User) Map() map[string]any {
	var language any
	if u.Language != "" {
		language = u.Language
	}
	var tags any
	if u.Tags != nil {
		tags = u.Tags
	}
	return map[string]any{
		"id":        u.ID,
		"memberId":  u.MemberID,
		"name":      u.Name,
		"avatarUrl": u.AvatarURL,
		"profile":   u.Profile,
		"alert":     u.Alert,
		"unread":    u.Unread,
		"language":  language,
		"tags":      tags,
	}
}

// BootResult builds the boot response payload. The user is reported only when
// the status is SUCCESS.
func BootResult(status BootStatus, user *User) map[string]any {
	result := map[string]any{
		"success": status == BootStatusSuccess,
		"status":  string(status),
		"user":    nil,
	}
	if status == BootStatusSuccess && user != nil {
		result["user"] = user.Map()
	}
	return result
}

// BadgePayload normalizes both native badge shapes.
func BadgePayload(unread, alert int) map[string]any {
	return map[string]any{"unread": unread, "alert": alert}
}

// PopupPayload is the wire form of a popup notification.
type PopupPayload struct {
	ChatID    string
	AvatarURL string
	Name      string
	Message   string
	// Timestamp is omitted when zero; only one platform reports it.
	Timestamp int64
}

// Map returns the popup as a wire mapping.
func (p PopupPayload) Map() map[string]any {
	m := map[string]any{
		"chatId":    p.ChatID,
		"avatarUrl": p.AvatarURL,
		"name":      p.Name,
		"message":   p.Message,
	}
	if p.Timestamp != 0 {
		m["timestamp"] = p.Timestamp
	}
	return m
}
