// Package chat dispatches user messages to the place search or the advisor
// depending on the active mode, and keeps the conversation transcript.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go-safeher/advice"
	"go-safeher/category"
	"go-safeher/formatter"
	"go-safeher/metrics"
	"go-safeher/places"
	"go-safeher/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusy           = errors.New("a request is already in progress")
	ErrEmptyUtterance = errors.New("message is empty")
	ErrOriginSet      = errors.New("location already acquired")
	ErrInvalidOrigin  = errors.New("invalid coordinate")
)

type CategoryResolver interface {
	Resolve(utterance string) (types.CategoryID, bool)
	Supported() []string
}

type PlaceSearcher interface {
	Search(ctx context.Context, category types.CategoryID, origin types.Coordinate, notify places.Notifier) (places.Outcome, error)
}

type Advisor interface {
	Advise(ctx context.Context, question string) advice.Answer
}

// Deps are the collaborators of a Conversation. Missing fields get the
// built-in keyword tables, an unconfigured advisor, time.Now and
// uuid.NewString.
type Deps struct {
	Resolver CategoryResolver
	Searcher PlaceSearcher
	Advisor  Advisor
	Clock    func() time.Time
	NewID    func() string
	Logger   *zap.Logger
}

// Conversation is a single user's session. At most one Handle call runs at
// a time; the transcript only grows.
type Conversation struct {
	deps Deps

	mu      sync.Mutex
	mode    types.Mode
	origin  *types.Coordinate
	history History
	busy    bool
}

// New starts a conversation in the given mode with a welcome message.
func New(deps Deps, mode types.Mode) *Conversation {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = category.Default()
	}
	if deps.Advisor == nil {
		deps.Advisor = advice.NewRemoteWithClient(nil, advice.RemoteConfig{}, nil, deps.Logger)
	}
	if mode == "" {
		mode = types.Emergency
	}
	c := &Conversation{deps: deps, mode: mode}
	c.history = c.history.Append(c.message(types.SenderBot, welcomeText))
	return c
}

func (c *Conversation) Mode() types.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Busy reports whether a request is in flight. Callers should wait for it
// to clear before sending the next message.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Conversation) History() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Messages()
}

func (c *Conversation) Origin() (types.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.origin == nil {
		return types.Coordinate{}, false
	}
	return *c.origin, true
}

// SetOrigin records the user's location. It can be set only once.
func (c *Conversation) SetOrigin(coord types.Coordinate) error {
	if !coord.Valid() {
		return ErrInvalidOrigin
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.origin != nil {
		return ErrOriginSet
	}
	c.origin = &coord
	return nil
}

// SwitchMode changes the mode and appends a confirmation. A request already
// in flight finishes under the mode it started with.
func (c *Conversation) SwitchMode(mode types.Mode) types.Message {
	text := emergencyModeText
	if mode == types.Advice {
		text = adviceModeText
	}
	msg := c.message(types.SenderBot, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.history = c.history.Append(msg)
	return msg
}

// Handle records the utterance and returns the bot messages it produced,
// intermediate search notices first.
func (c *Conversation) Handle(ctx context.Context, utterance string) ([]types.Message, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	mode := c.mode
	origin := c.origin
	c.history = c.history.Append(c.message(types.SenderUser, utterance))
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	metrics.MessagesHandled.WithLabelValues(string(mode)).Inc()

	var replies []types.Message
	post := func(text string) {
		msg := c.message(types.SenderBot, text)
		c.mu.Lock()
		c.history = c.history.Append(msg)
		c.mu.Unlock()
		replies = append(replies, msg)
	}

	switch mode {
	case types.Advice:
		post(c.handleAdvice(ctx, utterance))
	default:
		post(c.handleEmergency(ctx, utterance, origin, post))
	}
	return replies, nil
}

func (c *Conversation) handleEmergency(ctx context.Context, utterance string, origin *types.Coordinate, notify places.Notifier) string {
	placeCategory, ok := c.deps.Resolver.Resolve(utterance)
	if !ok {
		return helpText(c.deps.Resolver.Supported())
	}
	if origin == nil {
		return locationRequiredText
	}
	if c.deps.Searcher == nil {
		return notConfiguredText
	}

	outcome, err := c.deps.Searcher.Search(ctx, placeCategory, *origin, notify)
	switch {
	case errors.Is(err, places.ErrNotConfigured):
		return notConfiguredText
	case err != nil:
		c.deps.Logger.Warn("place search failed", zap.String("category", string(placeCategory)), zap.Error(err))
		return searchErrorText
	case outcome.Status == places.StatusNotFound || len(outcome.Places) == 0:
		return notFoundText(placeCategory.Kind(), outcome.RadiusKm)
	}
	return formatter.Format(outcome.Places, placeCategory, outcome.RadiusKm)
}

func (c *Conversation) handleAdvice(ctx context.Context, question string) string {
	answer := c.deps.Advisor.Advise(ctx, question)
	c.deps.Logger.Debug("advice answered", zap.String("source", string(answer.Source)))
	return answer.Text
}

func (c *Conversation) message(sender types.Sender, text string) types.Message {
	return types.Message{
		ID:        c.deps.NewID(),
		Sender:    sender,
		Text:      text,
		Timestamp: c.deps.Clock(),
	}
}
