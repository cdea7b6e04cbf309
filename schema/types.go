package schema

// ToodleID identifies a live session in the bridge's table. IDs are
// assigned strictly increasing from 1 and are never reused within a
// process lifetime, destroys included.
type ToodleID int64

// Label is a named, colored tag attached to items.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Equal reports whether two labels are the same label. Labels compare by
// whole value: the same name with a different color is a different label.
func (l Label) Equal(other Label) bool {
	return l.Name == other.Name && l.Color == other.Color
}

// Item is a single todo entry. Items are unique by UUID and carry an
// ordered label sequence with no value-equal duplicates.
type Item struct {
	UUID           string  `json:"uuid"`
	Name           string  `json:"name"`
	DueDate        *int64  `json:"due_date"`
	CompletionDate *int64  `json:"completion_date"`
	Labels         []Label `json:"labels"`
}

// HasLabel reports whether a value-equal label is already attached.
func (i Item) HasLabel(label Label) bool {
	for _, l := range i.Labels {
		if l.Equal(label) {
			return true
		}
	}
	return false
}

// Login is a stored credential record, unique by UUID.
type Login struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

// Epoch converts an epoch-seconds value to the wire's optional timestamp.
func Epoch(seconds int64) *int64 {
	return &seconds
}
