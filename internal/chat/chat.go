// Package chat answers pantry questions through a chat completion backend,
// priming it with the caller's soon-to-expire food.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/expiry"
	"github.com/ecopantry/ecopantry/internal/model"
)

const (
	DefaultPersona     = "You are EcoPantry Copilot. Be concise and helpful."
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.4

	// FallbackReply is returned when the backend answers with no text.
	FallbackReply = "Sorry, I’m not sure."
)

// Message roles accepted in a conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// Request is one completion call.
type Request struct {
	Model       string
	Temperature float64
	Messages    []Message
}

// Completer sends a conversation to a completion backend and returns the
// first candidate's text, which may be empty.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ItemLister reads the caller's food items.
type ItemLister interface {
	List(ctx context.Context, c auth.Caller, f model.FoodItemFilter) ([]model.FoodItem, error)
}

type Service struct {
	completer   Completer
	items       ItemLister
	persona     string
	model       string
	temperature float64
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*Service)

func WithPersona(persona string) Option {
	return func(s *Service) { s.persona = persona }
}

func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(completer Completer, items ItemLister, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		completer:   completer,
		items:       items,
		persona:     DefaultPersona,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		now:         time.Now,
		logger:      logger.With("component", "chat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply answers the conversation. An authenticated caller gets a system
// message that lists their food expiring within the next week.
func (s *Service) Reply(ctx context.Context, c auth.Caller, history []Message) (string, error) {
	system, err := s.systemMessage(ctx, c)
	if err != nil {
		return "", err
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, history...)

	reply, err := s.completer.Complete(ctx, Request{
		Model:       s.model,
		Temperature: s.temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("complete chat: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

func (s *Service) systemMessage(ctx context.Context, c auth.Caller) (string, error) {
	if !c.Authenticated() {
		return s.persona, nil
	}

	items, err := s.items.List(ctx, c, model.FoodItemFilter{Sort: "expiry"})
	if err != nil {
		return "", fmt.Errorf("list chat context items: %w", err)
	}
	expiring := expiry.Select(items, s.now(), expiry.ListHorizon, expiry.ChatLimit)
	s.logger.Debug("built chat context", "user_id", c.UserID, "expiring", len(expiring))
	return SystemMessage(s.persona, expiring), nil
}

// SystemMessage appends a bullet list of the given items to persona. With no
// items it returns persona unchanged.
func SystemMessage(persona string, items []model.FoodItem) string {
	if len(items) == 0 {
		return persona
	}

	bullets := make([]string, 0, len(items))
	for _, item := range items {
		bullets = append(bullets, Bullet(item))
	}
	return persona + "\n\nItems expiring within 7 days:\n" + strings.Join(bullets, "\n") +
		"\n\nWhen asked for meal ideas, prioritize these."
}

// Bullet renders one item as "• name — quantity unit (exp: date)".
func Bullet(item model.FoodItem) string {
	exp := ""
	if item.ExpiryDate != nil {
		exp = item.ExpiryDate.String()
	}
	qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
	return fmt.Sprintf("• %s — %s %s (exp: %s)", item.Name, qty, item.Unit, exp)
}
