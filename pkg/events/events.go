// Package events implements the typed publish/subscribe bridge between
// the narrative engine and decoupled observers (journal, dialogue
// overlay, achievement popups). Delivery is synchronous, fire-and-forget
// and unordered across subscribers; there is no replay, so observers
// that need current state on attach must pull it from the engine.
package events

import "github.com/wildlight/questline/pkg/story"

// Type names a narrative event. The names are part of the wire contract
// with observers and must not change.
type Type string

const (
	TypeFlagChange          Type = "story-flag-change"
	TypeQuestAccepted       Type = "quest-accepted"
	TypeQuestUpdated        Type = "quest-updated"
	TypeQuestCompleted      Type = "quest-completed"
	TypeDialogueStart       Type = "dialogue-start"
	TypeDialogueNext        Type = "dialogue-next"
	TypeDialogueEnd         Type = "dialogue-end"
	TypeAchievementUnlocked Type = "game-achievement-unlocked"
	TypeNotification        Type = "game-notification"
)

// FlagChange is the payload of a story-flag-change event.
type FlagChange struct {
	ID    string `json:"id"`
	Value bool   `json:"value"`
}

// QuestEvent is the payload of quest-accepted, quest-updated and
// quest-completed events.
type QuestEvent struct {
	QuestID string `json:"questId"`
}

// DialogueEvent is the payload of dialogue-start and dialogue-next
// events. Options carries every option on the node, unfiltered.
type DialogueEvent struct {
	Text    string                 `json:"text"`
	Speaker string                 `json:"speaker"`
	Options []story.DialogueOption `json:"options"`
}

// AchievementUnlocked is the payload of a game-achievement-unlocked event.
type AchievementUnlocked struct {
	Achievement story.Achievement `json:"achievement"`
}

// Notification is the payload of a game-notification event.
type Notification struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Event pairs a type with its payload. Payload is one of the structs
// above, matching the event type.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Subscription is a registered handler. Unsubscribe through the bus.
type Subscription struct {
	id      int
	types   map[Type]bool
	handler Handler
}

// Bus is the in-process event bridge. It is not safe for concurrent use;
// the engine and its observers share a single logical thread of control.
type Bus struct {
	nextID int
	subs   []*Subscription
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for the given event types. With no types,
// the handler receives every event.
func (b *Bus) Subscribe(handler Handler, types ...Type) *Subscription {
	b.nextID++
	sub := &Subscription{id: b.nextID, handler: handler}
	if len(types) > 0 {
		sub.types = make(map[Type]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	b.subs = append(b.subs, sub)
	return sub
}

// Unsubscribe removes a subscription. Unknown subscriptions are a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching subscriber in
// registration order. Handlers may publish further events; recursion is
// not guarded against.
func (b *Bus) Publish(event Event) {
	// Snapshot so handlers can subscribe/unsubscribe mid-delivery.
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	for _, sub := range subs {
		if sub.types != nil && !sub.types[event.Type] {
			continue
		}
		sub.handler(event)
	}
}
