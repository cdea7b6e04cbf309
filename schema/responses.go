package schema

// Response is the closed set of protocol responses: one success variant
// per request plus Err.
type Response interface {
	ResponseType() Type
}

// NewToodleResponse reports the id assigned to a new session.
type NewToodleResponse struct {
	ToodleID ToodleID `json:"toodle_id"`
}

// DestroyToodleResponse reports whether the id was present in the table.
type DestroyToodleResponse struct {
	Destroyed bool `json:"destroyed"`
}

// GetLabelsResponse reports every label in the store.
type GetLabelsResponse struct {
	Labels []Label `json:"labels"`
}

// GetTodosResponse reports the matching items.
type GetTodosResponse struct {
	Items []Item `json:"items"`
}

// CreateTodoResponse reports the created item.
type CreateTodoResponse struct {
	Item Item `json:"item"`
}

// DeleteTodoResponse acknowledges a deletion.
type DeleteTodoResponse struct{}

// MarkCompletedResponse reports the completed item.
type MarkCompletedResponse struct {
	Item Item `json:"item"`
}

// CreateLabelResponse reports the created label.
type CreateLabelResponse struct {
	Label Label `json:"label"`
}

// AddLabelResponse acknowledges a label attach.
type AddLabelResponse struct{}

// SetDueResponse reports the item with its updated due date.
type SetDueResponse struct {
	Item Item `json:"item"`
}

// ErrResponse carries a failure kind back to the peer.
type ErrResponse struct {
	Error ErrorKind `json:"error"`
}

// ResponseType implements Response.
func (NewToodleResponse) ResponseType() Type     { return TypeNewToodle }
func (DestroyToodleResponse) ResponseType() Type { return TypeDestroyToodle }
func (GetLabelsResponse) ResponseType() Type     { return TypeGetLabels }
func (GetTodosResponse) ResponseType() Type      { return TypeGetTodos }
func (CreateTodoResponse) ResponseType() Type    { return TypeCreateTodo }
func (DeleteTodoResponse) ResponseType() Type    { return TypeDeleteTodo }
func (MarkCompletedResponse) ResponseType() Type { return TypeMarkCompleted }
func (CreateLabelResponse) ResponseType() Type   { return TypeCreateLabel }
func (AddLabelResponse) ResponseType() Type      { return TypeAddLabel }
func (SetDueResponse) ResponseType() Type        { return TypeSetDue }
func (ErrResponse) ResponseType() Type           { return TypeErr }
