package engine

import (
	"strings"

	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/state"
	"github.com/wildlight/questline/pkg/story"
)

// At most one conversation is open at a time. Lifecycle:
// Closed -> Open(root) -> Open(next)* -> Closed.

// StartDialogue opens a conversation at the template's root node and
// publishes dialogue-start. An unknown dialogue ID starts nothing and
// publishes nothing (false).
func (e *Engine) StartDialogue(id string) bool {
	def, ok := e.dialogues[id]
	if !ok {
		e.logger.Debug("start of unknown dialogue", "dialogue_id", id)
		return false
	}
	e.session.Dialogue = &state.DialogueCursor{
		DialogueID: id,
		NodeID:     def.RootNodeID,
	}
	root := def.Root()
	e.bus.Publish(events.Event{
		Type:    events.TypeDialogueStart,
		Payload: dialoguePayload(root),
	})
	return true
}

// CurrentNode returns the open conversation's current node, or nil when
// no conversation is open. Observers that attach mid-conversation pull
// state from here instead of waiting for the next event.
func (e *Engine) CurrentNode() *story.DialogueNode {
	cur := e.session.Dialogue
	if cur == nil {
		return nil
	}
	def, ok := e.dialogues[cur.DialogueID]
	if !ok {
		return nil
	}
	node, ok := def.Nodes[cur.NodeID]
	if !ok {
		return nil
	}
	return &node
}

// SelectOption resolves the player's choice on the current node. Option
// actions run first (the only interpreted verb is set_flag, applied
// through the flag store so its broadcast and quest cascade fire), then
// the session advances to the option's next node and dialogue-next is
// published, or the conversation ends if the option has no next node.
//
// Option conditions are never evaluated here; every option on a node is
// selectable. No open conversation or an out-of-range index is a no-op.
func (e *Engine) SelectOption(index int) bool {
	node := e.CurrentNode()
	if node == nil {
		e.logger.Debug("option selected with no open dialogue", "index", index)
		return false
	}
	if index < 0 || index >= len(node.Options) {
		e.logger.Debug("option index out of range",
			"index", index, "options", len(node.Options))
		return false
	}
	opt := node.Options[index]

	for _, action := range opt.Actions {
		e.runAction(action)
	}

	if opt.NextNodeID == "" {
		e.EndDialogue()
		return true
	}

	def := e.dialogues[e.session.Dialogue.DialogueID]
	next, ok := def.Nodes[opt.NextNodeID]
	if !ok {
		// Malformed content; validated packs never hit this.
		e.logger.Debug("option points at unknown node",
			"dialogue_id", def.ID, "node_id", opt.NextNodeID)
		e.EndDialogue()
		return true
	}
	e.session.Dialogue.NodeID = opt.NextNodeID
	e.bus.Publish(events.Event{
		Type:    events.TypeDialogueNext,
		Payload: dialoguePayload(next),
	})
	return true
}

// EndDialogue closes the conversation and publishes dialogue-end.
func (e *Engine) EndDialogue() {
	e.session.Dialogue = nil
	e.bus.Publish(events.Event{Type: events.TypeDialogueEnd})
}

// runAction interprets one option action string. The only verb is
// "set_flag:<key>=<true|false>"; anything else is ignored.
func (e *Engine) runAction(action string) {
	rest, ok := strings.CutPrefix(action, "set_flag:")
	if !ok {
		e.logger.Debug("ignoring unrecognized dialogue action", "action", action)
		return
	}
	key, value, ok := strings.Cut(rest, "=")
	if !ok || key == "" {
		e.logger.Debug("malformed set_flag action", "action", action)
		return
	}
	switch value {
	case "true":
		e.SetFlag(key, true)
	case "false":
		e.SetFlag(key, false)
	default:
		e.logger.Debug("malformed set_flag action", "action", action)
	}
}

func dialoguePayload(node story.DialogueNode) events.DialogueEvent {
	return events.DialogueEvent{
		Text:    node.Text,
		Speaker: node.Speaker,
		Options: node.Options,
	}
}
