package schema

// Type is the wire discriminator selecting a request or response variant.
// Requests and successful responses share the same tag; Err is
// response-only.
type Type string

// Variant tags.
const (
	TypeNewToodle     Type = "NewToodle"
	TypeDestroyToodle Type = "DestroyToodle"
	TypeGetLabels     Type = "GetLabels"
	TypeGetTodos      Type = "GetTodos"
	TypeCreateTodo    Type = "CreateTodo"
	TypeDeleteTodo    Type = "DeleteTodo"
	TypeMarkCompleted Type = "MarkCompleted"
	TypeCreateLabel   Type = "CreateLabel"
	TypeAddLabel      Type = "AddLabel"
	TypeSetDue        Type = "SetDue"
	TypeErr           Type = "Err"
)

// Request is the closed set of protocol requests. The bridge's dispatch
// switch is exhaustive over these types.
type Request interface {
	RequestType() Type
}

// NewToodleRequest opens a session against the store at URI.
type NewToodleRequest struct {
	URI string `json:"uri"`
}

// DestroyToodleRequest removes a session from the table.
type DestroyToodleRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
}

// GetLabelsRequest lists every label known to the store.
type GetLabelsRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
}

// GetTodosRequest lists items, optionally filtered by label names.
type GetTodosRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	Labels   []string `json:"labels,omitempty"`
}

// CreateTodoRequest creates an item with a due date and label names.
type CreateTodoRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	Name     string   `json:"name"`
	Due      int64    `json:"due"`
	Labels   []string `json:"labels"`
}

// DeleteTodoRequest deletes an item by uuid.
type DeleteTodoRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	ID       string   `json:"id"`
}

// MarkCompletedRequest stamps an item's completion date.
type MarkCompletedRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	ID       string   `json:"id"`
}

// CreateLabelRequest creates a label in the store.
type CreateLabelRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
}

// AddLabelRequest attaches a label to an item. Attaching a label the
// item already carries succeeds without duplicating it.
type AddLabelRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	ItemUUID string   `json:"item_uuid"`
	Label    Label    `json:"label"`
}

// SetDueRequest replaces an item's due date.
type SetDueRequest struct {
	ToodleID ToodleID `json:"toodle_id"`
	ID       string   `json:"id"`
	Due      int64    `json:"due"`
}

// RequestType implements Request.
func (NewToodleRequest) RequestType() Type     { return TypeNewToodle }
func (DestroyToodleRequest) RequestType() Type { return TypeDestroyToodle }
func (GetLabelsRequest) RequestType() Type     { return TypeGetLabels }
func (GetTodosRequest) RequestType() Type      { return TypeGetTodos }
func (CreateTodoRequest) RequestType() Type    { return TypeCreateTodo }
func (DeleteTodoRequest) RequestType() Type    { return TypeDeleteTodo }
func (MarkCompletedRequest) RequestType() Type { return TypeMarkCompleted }
func (CreateLabelRequest) RequestType() Type   { return TypeCreateLabel }
func (AddLabelRequest) RequestType() Type      { return TypeAddLabel }
func (SetDueRequest) RequestType() Type        { return TypeSetDue }
