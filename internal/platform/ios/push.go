package ios

import "fmt"

// PushReceiver adapts an SDK to the push ingestion path of the app delegate.
// The iOS SDK reports faults as panics; they are returned as errors here.
type PushReceiver struct {
	SDK SDK
}

// Platform names the binding.
func (p PushReceiver) Platform() string {
	return PlatformName
}

// IsChannelPush classifies a normalized payload.
func (p PushReceiver) IsChannelPush(payload map[string]string) (ok bool, err error) {
	defer recoverFault(&err)
	return p.SDK.IsChannelPushNotification(payload), nil
}

// Receive hands a classified payload to the SDK.
func (p PushReceiver) Receive(payload map[string]string) (err error) {
	defer recoverFault(&err)
	p.SDK.ReceivePushNotification(payload)
	return nil
}

// Store keeps a tapped notification so it can be opened after boot.
func (p PushReceiver) Store(payload map[string]string) (err error) {
	defer recoverFault(&err)
	p.SDK.StorePushNotification(payload)
	return nil
}

// RegisterToken registers a refreshed device token.
func (p PushReceiver) RegisterToken(token string) (err error) {
	defer recoverFault(&err)
	p.SDK.InitPushToken(token)
	return nil
}

func recoverFault(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("ios sdk fault: %v", r)
	}
}
