// Package sandbox provides simulated Channel.io SDKs for both platforms so the
// bridge can run end to end without a device. The simulators keep an
// in-memory user, complete asynchronous work from background goroutines and
// raise listener callbacks off the UI loop, as the native SDKs do.
package sandbox

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/codec"
)

// ChannelProvider is the provider value that marks a Channel.io push payload.
const ChannelProvider = "Channel.io"

// Options tune the simulators.
type Options struct {
	// BootDelay is how long boot takes before its completion fires.
	BootDelay time.Duration
	// Unread and Alert seed the badge counts of a booted user.
	Unread int
	Alert  int
	// RejectedKeys lists plugin keys that boot with ACCESS_DENIED.
	RejectedKeys []string
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeNotInitialized
	outcomeAccessDenied
)

type user struct {
	id                 string
	memberID           string
	name               string
	avatarURL          string
	profile            map[string]any
	language           codec.Language
	tags               []string
	unsubscribeTexting bool
	unsubscribeEmail   bool
}

// core is the state both platform simulators share.
type core struct {
	opts   Options
	logger *zap.Logger

	mu               sync.Mutex
	booted           bool
	sleeping         bool
	user             *user
	unread, alert    int
	buttonVisible    bool
	messengerVisible bool
	page             *string
	stored           map[string]string
	pushToken        string
	debug            bool
	appearance       codec.Appearance

	wg sync.WaitGroup
}

func newCore(opts Options, logger *zap.Logger) *core {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &core{opts: opts, logger: logger}
}

// later runs fn on a new goroutine after d.
func (c *core) later(d time.Duration, fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if d > 0 {
			time.Sleep(d)
		}
		fn()
	}()
}

// Wait blocks until every pending callback has fired.
func (c *core) Wait() {
	c.wg.Wait()
}

func (c *core) boot(pluginKey string, memberID *string, language *codec.Language, profile map[string]any) (outcome, *user) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case pluginKey == "":
		return outcomeNotInitialized, nil
	case slices.Contains(c.opts.RejectedKeys, pluginKey):
		return outcomeAccessDenied, nil
	}

	u := &user{id: uuid.NewString(), profile: map[string]any{}}
	if memberID != nil {
		u.memberID = *memberID
	}
	if language != nil {
		u.language = *language
	}
	for k, v := range profile {
		u.profile[k] = v
	}
	if name, ok := profile["name"].(string); ok {
		u.name = name
	}
	if avatar, ok := profile["avatarUrl"].(string); ok {
		u.avatarURL = avatar
	}

	c.booted = true
	c.sleeping = false
	c.user = u
	c.unread, c.alert = c.opts.Unread, c.opts.Alert
	c.buttonVisible = true
	c.logger.Debug("Sandbox booted", zap.String("userId", u.id))
	return outcomeSuccess, u.clone()
}

func (c *core) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.booted = false
	c.user = nil
	c.unread, c.alert = 0, 0
	c.buttonVisible = false
	c.messengerVisible = false
	c.page = nil
}

func (c *core) sleep() {
	c.mu.Lock()
	c.sleeping = true
	c.mu.Unlock()
}

func (c *core) isBooted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.booted
}

// setMessenger reports whether visibility changed.
func (c *core) setMessenger(visible bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.booted || c.messengerVisible == visible {
		return false
	}
	c.messengerVisible = visible
	return true
}

func (c *core) setButton(visible bool) {
	c.mu.Lock()
	c.buttonVisible = visible
	c.mu.Unlock()
}

func (c *core) setPage(page *string) {
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
}

func (c *core) setDebug(flag bool) {
	c.mu.Lock()
	c.debug = flag
	c.mu.Unlock()
}

func (c *core) setAppearance(a codec.Appearance) {
	c.mu.Lock()
	c.appearance = a
	c.mu.Unlock()
}

func (c *core) setPushToken(token string) {
	c.mu.Lock()
	c.pushToken = token
	c.mu.Unlock()
}

// update applies a partial user update. It reports false when not booted.
func (c *core) update(profile map[string]any, language *codec.Language, tags []string, texting, email *bool) (*user, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, false
	}
	for k, v := range profile {
		c.user.profile[k] = v
	}
	if language != nil {
		c.user.language = *language
	}
	if tags != nil {
		c.user.tags = slices.Clone(tags)
	}
	if texting != nil {
		c.user.unsubscribeTexting = *texting
	}
	if email != nil {
		c.user.unsubscribeEmail = *email
	}
	return c.user.clone(), true
}

func (c *core) addTags(tags []string) (*user, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, false
	}
	for _, t := range tags {
		if !slices.Contains(c.user.tags, t) {
			c.user.tags = append(c.user.tags, t)
		}
	}
	return c.user.clone(), true
}

func (c *core) removeTags(tags []string) (*user, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, false
	}
	c.user.tags = slices.DeleteFunc(c.user.tags, func(t string) bool {
		return slices.Contains(tags, t)
	})
	return c.user.clone(), true
}

func isChannelPush(payload map[string]string) bool {
	return payload["provider"] == ChannelProvider
}

// receive ingests a push. A push received before boot is stored instead.
// It reports whether the badge changed.
func (c *core) receive(payload map[string]string) (unread, alert int, delivered bool) {
	if !isChannelPush(payload) {
		return 0, 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.booted {
		c.stored = payload
		return 0, 0, false
	}
	c.unread++
	c.alert++
	return c.unread, c.alert, true
}

func (c *core) store(payload map[string]string) {
	if !isChannelPush(payload) {
		return
	}
	c.mu.Lock()
	c.stored = payload
	c.mu.Unlock()
}

func (c *core) hasStored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stored != nil
}

// openStored consumes the stored push and opens the messenger on its chat.
func (c *core) openStored() (chatID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored == nil || !c.booted {
		return "", false
	}
	chatID = c.stored["chatId"]
	c.stored = nil
	c.messengerVisible = true
	return chatID, true
}

// Snapshot is a read-only view of simulator state.
type Snapshot struct {
	Booted           bool
	Sleeping         bool
	ButtonVisible    bool
	MessengerVisible bool
	Debug            bool
	Appearance       codec.Appearance
	Page             *string
	PushToken        string
	Unread           int
	Alert            int
	Tags             []string
	Language         codec.Language
}

func (c *core) snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Booted:           c.booted,
		Sleeping:         c.sleeping,
		ButtonVisible:    c.buttonVisible,
		MessengerVisible: c.messengerVisible,
		Debug:            c.debug,
		Appearance:       c.appearance,
		Page:             c.page,
		PushToken:        c.pushToken,
		Unread:           c.unread,
		Alert:            c.alert,
	}
	if c.user != nil {
		s.Tags = slices.Clone(c.user.tags)
		s.Language = c.user.language
	}
	return s
}

func (u *user) clone() *user {
	cp := *u
	cp.profile = make(map[string]any, len(u.profile))
	for k, v := range u.profile {
		cp.profile[k] = v
	}
	cp.tags = slices.Clone(u.tags)
	return &cp
}

func newChatID() string {
	return "chat-" + uuid.NewString()[:8]
}
