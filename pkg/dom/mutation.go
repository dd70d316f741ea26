package dom

// MutationOp is the type of a recorded DOM mutation.
type MutationOp uint8

const (
	MutationSetText      MutationOp = 0x01 // Update text/comment data
	MutationSetAttr      MutationOp = 0x02 // Set/update attribute
	MutationRemoveAttr   MutationOp = 0x03 // Remove attribute
	MutationInsertNode   MutationOp = 0x04 // Insert new node
	MutationRemoveNode   MutationOp = 0x05 // Remove node
	MutationMoveNode     MutationOp = 0x06 // Move node within its parent
	MutationAttachShadow MutationOp = 0x07 // Attach shadow root to host
	MutationAdoptSheet   MutationOp = 0x08 // Adopt stylesheet into shadow root
	MutationSetSheet     MutationOp = 0x09 // Replace stylesheet text
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case MutationSetText:
		return "SetText"
	case MutationSetAttr:
		return "SetAttr"
	case MutationRemoveAttr:
		return "RemoveAttr"
	case MutationInsertNode:
		return "InsertNode"
	case MutationRemoveNode:
		return "RemoveNode"
	case MutationMoveNode:
		return "MoveNode"
	case MutationAttachShadow:
		return "AttachShadow"
	case MutationAdoptSheet:
		return "AdoptSheet"
	case MutationSetSheet:
		return "SetSheet"
	default:
		return "Unknown"
	}
}

// Mutation is a single recorded DOM operation.
type Mutation struct {
	Op     MutationOp
	Target uint64 // node the operation applies to
	Parent uint64 // parent for Insert/Move/Remove and text changes
	Index  int    // position within parent after Insert/Move
	Before uint64 // next sibling after Insert/Move, 0 when appended
	Key    string // attribute name
	Value  string // attribute value or text
	Node   *Node  // inserted node
	HTML   string // inserted subtree as serialized at insertion time
}

// RecordMutations turns the mutation log on or off.
func (d *Document) RecordMutations(on bool) {
	d.recording = on
	if !on {
		d.mutations = nil
	}
}

// SetSerializer installs the function used to snapshot inserted subtrees
// into Mutation.HTML while recording.
func (d *Document) SetSerializer(fn func(*Node) string) {
	d.serialize = fn
}

// TakeMutations returns the mutations recorded since the last call and
// clears the log.
func (d *Document) TakeMutations() []Mutation {
	m := d.mutations
	d.mutations = nil
	return m
}

func (d *Document) record(m Mutation) {
	if d == nil || !d.recording {
		return
	}
	if m.Op == MutationInsertNode && m.Node != nil && d.serialize != nil {
		m.HTML = d.serialize(m.Node)
	}
	d.mutations = append(d.mutations, m)
}
