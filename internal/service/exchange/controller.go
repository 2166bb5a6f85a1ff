// Package exchange drives one request/response cycle against the completion
// collaborator: optimistic user-turn append, the remote call, and the
// reconciliation of success or failure back into the conversation store.
package exchange

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	model "github.com/kavyanshpal/kpchat/internal/model/chat"
	prefsmodel "github.com/kavyanshpal/kpchat/internal/model/prefs"
	"github.com/kavyanshpal/kpchat/internal/service/ai"
	"github.com/kavyanshpal/kpchat/internal/service/auth"
	"github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/internal/service/prefs"
)

// ApologyText is appended as a model turn when the collaborator fails.
// Transport detail never reaches the conversation record.
const ApologyText = "Sorry, I encountered an error processing your request."

// Exchange states.
const (
	StateIdle       = "idle"
	StateSubmitting = "submitting"
	StateFulfilled  = "fulfilled"
	StateFailed     = "failed"
)

// Speaker voices a model reply aloud. Implementations may be absent.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Result reports one completed exchange.
type Result struct {
	ConversationID string      `json:"conversationId"`
	UserTurn       model.Turn  `json:"userTurn"`
	ModelTurn      *model.Turn `json:"modelTurn,omitempty"`
	State          string      `json:"state"`
}

// Controller owns the submit state machine. One exchange may be in flight at
// a time; a submission binds to the conversation id captured at submit time,
// so a reply resolving after the user switched conversations still lands in
// the conversation it was asked in.
type Controller struct {
	auth      *auth.Service
	chats     *chat.Service
	prefs     *prefs.Service
	completer ai.Completer
	speaker   Speaker
	timeout   time.Duration
	log       *zap.Logger

	mu         sync.Mutex
	submitting bool
}

// NewController wires the exchange controller. speaker may be nil.
func NewController(authSvc *auth.Service, chats *chat.Service, prefsSvc *prefs.Service, completer ai.Completer, speaker Speaker, timeout time.Duration, log *zap.Logger) *Controller {
	return &Controller{
		auth:      authSvc,
		chats:     chats,
		prefs:     prefsSvc,
		completer: completer,
		speaker:   speaker,
		timeout:   timeout,
		log:       log,
	}
}

// Busy reports whether an exchange is currently submitting.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit runs one exchange for the active conversation. Precondition
// failures (blank text, exchange already in flight, no active conversation,
// no session identity) are silent no-ops returning a nil Result.
func (c *Controller) Submit(ctx context.Context, rawText string) (*Result, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, nil
	}

	identity, ok, err := c.auth.Current()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	conv, ok, err := c.chats.Active(identity.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, nil
	}
	c.submitting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	// Prior history is what existed before the optimistic append.
	history := make([]ai.Message, 0, len(conv.Turns))
	for _, t := range conv.Turns {
		history = append(history, ai.Message{Role: string(t.Role), Text: t.Text})
	}

	userTurn := chat.NewTurn(model.RoleUser, text)
	if _, err := c.chats.AppendTurn(identity.ID, conv.ID, userTurn); err != nil {
		return nil, err
	}

	result := &Result{ConversationID: conv.ID, UserTurn: userTurn}

	settings, err := c.prefs.Get(identity.ID)
	if err != nil {
		settings = prefsmodel.Defaults()
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.completer.Complete(callCtx, ai.Request{
		Model:    settings.Model,
		System:   ai.SystemInstruction,
		History:  history,
		UserText: text,
	})
	if err != nil {
		c.log.Warn("completion failed",
			zap.String("conversation", conv.ID),
			zap.String("model", settings.Model),
			zap.Error(err))

		apology := chat.NewTurn(model.RoleModel, ApologyText)
		if _, appendErr := c.chats.AppendTurn(identity.ID, conv.ID, apology); appendErr != nil {
			return nil, appendErr
		}
		result.ModelTurn = &apology
		result.State = StateFailed
		return result, nil
	}

	if reply == "" {
		// An empty reply is a policy no-op, not a failure.
		result.State = StateFulfilled
		return result, nil
	}

	modelTurn := chat.NewTurn(model.RoleModel, reply)
	if _, err := c.chats.AppendTurn(identity.ID, conv.ID, modelTurn); err != nil {
		return nil, err
	}
	result.ModelTurn = &modelTurn
	result.State = StateFulfilled

	if settings.VoiceEnabled && c.speaker != nil {
		go c.speak(reply)
	}

	return result, nil
}

// speak voices the reply on a detached context; failures are swallowed.
func (c *Controller) speak(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.speaker.Speak(ctx, text); err != nil {
		c.log.Debug("speak aloud failed", zap.Error(err))
	}
}
