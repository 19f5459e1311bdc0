package push_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zlc_ai/channelio-bridge/internal/platform/android"
	"github.com/zlc_ai/channelio-bridge/internal/platform/ios"
	"github.com/zlc_ai/channelio-bridge/internal/push"
	"github.com/zlc_ai/channelio-bridge/internal/sandbox"
)

type mockReceiver struct {
	mock.Mock
}

func (m *mockReceiver) Platform() string { return "test" }

func (m *mockReceiver) IsChannelPush(payload map[string]string) (bool, error) {
	args := m.Called(payload)
	return args.Bool(0), args.Error(1)
}

func (m *mockReceiver) Receive(payload map[string]string) error {
	return m.Called(payload).Error(0)
}

func (m *mockReceiver) RegisterToken(token string) error {
	return m.Called(token).Error(0)
}

type recordingFallback struct {
	messages []push.Message
	tokens   []string
}

func (f *recordingFallback) OnMessage(msg push.Message) { f.messages = append(f.messages, msg) }
func (f *recordingFallback) OnNewToken(token string)    { f.tokens = append(f.tokens, token) }

func TestIngestor_Routing(t *testing.T) {
	normalized := map[string]string{"provider": "Channel.io", "badge": "3", "silent": "false"}
	raw := map[string]any{"provider": "Channel.io", "badge": 3, "silent": false}

	testCases := []struct {
		name        string
		setup       func(r *mockReceiver)
		want        push.Outcome
		wantForward int
	}{
		{
			name: "channel push is ingested",
			setup: func(r *mockReceiver) {
				r.On("IsChannelPush", normalized).Return(true, nil)
				r.On("Receive", normalized).Return(nil)
			},
			want: push.OutcomeIngested,
		},
		{
			name: "foreign push is forwarded",
			setup: func(r *mockReceiver) {
				r.On("IsChannelPush", normalized).Return(false, nil)
			},
			want:        push.OutcomeForwarded,
			wantForward: 1,
		},
		{
			name: "classification fault falls back",
			setup: func(r *mockReceiver) {
				r.On("IsChannelPush", normalized).Return(false, errors.New("sdk not ready"))
			},
			want:        push.OutcomeForwarded,
			wantForward: 1,
		},
		{
			name: "ingestion fault falls back",
			setup: func(r *mockReceiver) {
				r.On("IsChannelPush", normalized).Return(true, nil)
				r.On("Receive", normalized).Return(errors.New("context lost"))
			},
			want:        push.OutcomeForwarded,
			wantForward: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			receiver := &mockReceiver{}
			tc.setup(receiver)
			fallback := &recordingFallback{}

			msg, outcome := push.NewIngestor(receiver, fallback, nil).OnMessageReceived(raw)
			assert.Equal(t, tc.want, outcome)
			assert.Equal(t, normalized, msg.Data)
			assert.NotEmpty(t, msg.ID)
			require.Len(t, fallback.messages, tc.wantForward)
			if tc.wantForward > 0 {
				assert.Equal(t, msg, fallback.messages[0])
			}
			receiver.AssertExpectations(t)
		})
	}
}

func TestIngestor_NoFallbackDrops(t *testing.T) {
	receiver := &mockReceiver{}
	receiver.On("IsChannelPush", mock.Anything).Return(false, nil)

	_, outcome := push.NewIngestor(receiver, nil, nil).OnMessageReceived(map[string]any{"provider": "other"})
	assert.Equal(t, push.OutcomeDropped, outcome)
}

func TestIngestor_TokenAlwaysForwarded(t *testing.T) {
	receiver := &mockReceiver{}
	receiver.On("RegisterToken", "t-1").Return(nil).Once()
	receiver.On("RegisterToken", "t-2").Return(errors.New("not booted")).Once()
	fallback := &recordingFallback{}
	in := push.NewIngestor(receiver, fallback, nil)

	assert.NoError(t, in.OnNewToken("t-1"))
	assert.EqualError(t, in.OnNewToken("t-2"), "not booted")
	assert.Equal(t, []string{"t-1", "t-2"}, fallback.tokens)
	receiver.AssertExpectations(t)
}

func TestIngestor_AndroidSandbox(t *testing.T) {
	sdk := sandbox.NewAndroid(sandbox.Options{}, nil)
	in := push.NewIngestor(android.PushReceiver{SDK: sdk}, nil, nil)

	_, outcome := in.OnMessageReceived(map[string]any{"provider": sandbox.ChannelProvider, "chatId": "c-1"})
	assert.Equal(t, push.OutcomeIngested, outcome)
	stored, err := sdk.HasStoredPushNotification()
	require.NoError(t, err)
	assert.True(t, stored, "push before boot is kept by the sdk")

	require.NoError(t, in.OnNewToken("fcm"))
	assert.Equal(t, "fcm", sdk.Snapshot().PushToken)
}

func TestIngestor_IOSTapStores(t *testing.T) {
	sdk := sandbox.NewIOS(sandbox.Options{}, nil)
	in := push.NewIngestor(ios.PushReceiver{SDK: sdk}, nil, nil)

	_, outcome := in.OnNotificationTapped(map[string]any{"provider": sandbox.ChannelProvider, "chatId": "c-2"})
	assert.Equal(t, push.OutcomeIngested, outcome)
	assert.True(t, sdk.HasStoredPushNotification())
}

type panickySDK struct {
	ios.SDK
}

func (panickySDK) IsChannelPushNotification(map[string]string) bool {
	panic("unrecognized selector")
}

func TestIngestor_IOSPanicFallsBack(t *testing.T) {
	fallback := &recordingFallback{}
	in := push.NewIngestor(ios.PushReceiver{SDK: panickySDK{}}, fallback, nil)

	_, outcome := in.OnMessageReceived(map[string]any{"provider": sandbox.ChannelProvider})
	assert.Equal(t, push.OutcomeForwarded, outcome)
	assert.Len(t, fallback.messages, 1)
}

func TestIngestor_HTTP(t *testing.T) {
	receiver := &mockReceiver{}
	receiver.On("IsChannelPush", mock.Anything).Return(true, nil)
	receiver.On("Receive", mock.Anything).Return(nil)
	receiver.On("RegisterToken", "apns").Return(nil)
	in := push.NewIngestor(receiver, nil, nil)

	mux := http.NewServeMux()
	mux.Handle("/push", in.MessageHandler())
	mux.Handle("/push/token", in.TokenHandler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/push", "application/json",
		strings.NewReader(`{"data":{"provider":"Channel.io","count":1.5}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ingested", body["outcome"])
	assert.NotEmpty(t, body["messageId"])
	receiver.AssertCalled(t, "Receive", map[string]string{"provider": "Channel.io", "count": "1.5"})

	resp2, err := http.Post(srv.URL+"/push", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/push")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)

	resp4, err := http.Post(srv.URL+"/push/token", "application/json", strings.NewReader(`{"token":"apns"}`))
	require.NoError(t, err)
	resp4.Body.Close()
	assert.Equal(t, http.StatusOK, resp4.StatusCode)
	receiver.AssertExpectations(t)
}
