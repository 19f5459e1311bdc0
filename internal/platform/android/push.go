package android

// PushReceiver adapts an SDK to the push ingestion path of the messaging
// service.
type PushReceiver struct {
	SDK SDK
}

// Platform names the binding.
func (p PushReceiver) Platform() string {
	return PlatformName
}

// IsChannelPush classifies a normalized payload.
func (p PushReceiver) IsChannelPush(payload map[string]string) (bool, error) {
	return p.SDK.IsChannelPushNotification(payload)
}

// Receive hands a classified payload to the SDK.
func (p PushReceiver) Receive(payload map[string]string) error {
	return p.SDK.ReceivePushNotification(payload)
}

// RegisterToken registers a refreshed device token.
func (p PushReceiver) RegisterToken(token string) error {
	return p.SDK.InitPushToken(token)
}
