package story

import "fmt"

// DialogueOption is one player-selectable branch out of a dialogue node.
type DialogueOption struct {
	Text string `json:"text" yaml:"text"`
	// NextNodeID of "" terminates the conversation.
	NextNodeID string `json:"next_node_id,omitempty" yaml:"next_node_id,omitempty"`
	// Conditions are part of the authoring schema. The engine presents
	// all options regardless of conditions; hosts that want filtering
	// evaluate these themselves.
	Conditions []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	// Actions run when the option is chosen. The only interpreted verb
	// is "set_flag:<key>=<true|false>"; unrecognized actions are ignored.
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// DialogueNode is one turn of an NPC conversation graph.
type DialogueNode struct {
	ID      string           `json:"id" yaml:"id"`
	Text    string           `json:"text" yaml:"text"`
	Speaker string           `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Options []DialogueOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Dialogue is the immutable template for an NPC conversation.
// Cycles are legal; termination is the content author's responsibility.
type Dialogue struct {
	ID         string                  `json:"id" yaml:"id"`
	NPCID      string                  `json:"npc_id,omitempty" yaml:"npc_id,omitempty"`
	RootNodeID string                  `json:"root_node_id" yaml:"root_node_id"`
	Nodes      map[string]DialogueNode `json:"nodes" yaml:"nodes"`
}

// Validate checks a dialogue template for authoring mistakes, including
// options that point at nodes which do not exist.
func (d *Dialogue) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dialogue is missing an id")
	}
	if d.RootNodeID == "" {
		return fmt.Errorf("dialogue %q is missing a root node id", d.ID)
	}
	if len(d.Nodes) == 0 {
		return fmt.Errorf("dialogue %q has no nodes", d.ID)
	}
	if _, ok := d.Nodes[d.RootNodeID]; !ok {
		return fmt.Errorf("dialogue %q root node %q not found", d.ID, d.RootNodeID)
	}
	for nodeID, node := range d.Nodes {
		if node.ID != "" && node.ID != nodeID {
			return fmt.Errorf("dialogue %q node keyed %q declares id %q", d.ID, nodeID, node.ID)
		}
		for i, opt := range node.Options {
			if opt.Text == "" {
				return fmt.Errorf("dialogue %q node %q option %d has no text", d.ID, nodeID, i)
			}
			if opt.NextNodeID != "" {
				if _, ok := d.Nodes[opt.NextNodeID]; !ok {
					return fmt.Errorf("dialogue %q node %q option %d points at unknown node %q",
						d.ID, nodeID, i, opt.NextNodeID)
				}
			}
		}
	}
	return nil
}

// Root returns the root node. The dialogue is assumed validated.
func (d *Dialogue) Root() DialogueNode {
	return d.Nodes[d.RootNodeID]
}
