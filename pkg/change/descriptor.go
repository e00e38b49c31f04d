package change

// Kind names used in descriptors.
const (
	KindInsert  = "insert"
	KindRemove  = "remove"
	KindReplace = "replace"
	KindNoop    = "noop"
)

// Descriptor is the serializable form of a Change.
type Descriptor struct {
	Kind        string `json:"kind"                yaml:"kind"`
	Path        string `json:"path,omitempty"      yaml:"path,omitempty"`
	Text        string `json:"text,omitempty"      yaml:"text,omitempty"`
	OldText     string `json:"old_text,omitempty"  yaml:"old_text,omitempty"`
	Description string `json:"description"         yaml:"description"`
	Pos         int    `json:"pos"                 yaml:"pos"`
}

// Describe converts c to its Descriptor.
func Describe(c Change) Descriptor {
	desc := Descriptor{Kind: KindNoop, Description: c.Description()}

	switch typed := c.(type) {
	case *InsertChange:
		desc.Kind = KindInsert
		desc.Path = typed.Path
		desc.Pos = typed.Pos
		desc.Text = typed.ToAdd
	case *RemoveChange:
		desc.Kind = KindRemove
		desc.Path = typed.Path
		desc.Pos = typed.Pos
		desc.OldText = typed.ToRemove
	case *ReplaceChange:
		desc.Kind = KindReplace
		desc.Path = typed.Path
		desc.Pos = typed.Pos
		desc.OldText = typed.OldText
		desc.Text = typed.NewText
	}

	return desc
}

// DescribeAll converts every change.
func DescribeAll(changes []Change) []Descriptor {
	out := make([]Descriptor, 0, len(changes))

	for _, c := range changes {
		out = append(out, Describe(c))
	}

	return out
}
