package bridge

import (
	"encoding/json"
	"fmt"

	"pkt.systems/toodle/schema"
)

// DecodeRequest parses a frame body into its request variant by the
// `type` tag. Unknown tags and shape mismatches fail with
// schema.ErrBadRequest.
func DecodeRequest(body []byte) (schema.Request, error) {
	var envelope struct {
		Type schema.Type `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode request envelope: %w", schema.ErrBadRequest)
	}
	var req schema.Request
	switch envelope.Type {
	case schema.TypeNewToodle:
		req = &schema.NewToodleRequest{}
	case schema.TypeDestroyToodle:
		req = &schema.DestroyToodleRequest{}
	case schema.TypeGetLabels:
		req = &schema.GetLabelsRequest{}
	case schema.TypeGetTodos:
		req = &schema.GetTodosRequest{}
	case schema.TypeCreateTodo:
		req = &schema.CreateTodoRequest{}
	case schema.TypeDeleteTodo:
		req = &schema.DeleteTodoRequest{}
	case schema.TypeMarkCompleted:
		req = &schema.MarkCompletedRequest{}
	case schema.TypeCreateLabel:
		req = &schema.CreateLabelRequest{}
	case schema.TypeAddLabel:
		req = &schema.AddLabelRequest{}
	case schema.TypeSetDue:
		req = &schema.SetDueRequest{}
	default:
		return nil, fmt.Errorf("unknown request tag %q: %w", envelope.Type, schema.ErrBadRequest)
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("decode %s request: %w", envelope.Type, schema.ErrBadRequest)
	}
	return req, nil
}

// EncodeRequest serializes a request with its `type` tag. The bridge
// itself only decodes requests; this is the client half, used by peers
// and tests.
func EncodeRequest(req schema.Request) ([]byte, error) {
	return encodeTagged(req.RequestType(), req)
}

// EncodeResponse serializes a response with its `type` tag.
func EncodeResponse(resp schema.Response) ([]byte, error) {
	return encodeTagged(resp.ResponseType(), resp)
}

// DecodeResponse parses a frame body into its response variant. This is
// the client half of the protocol.
func DecodeResponse(body []byte) (schema.Response, error) {
	var envelope struct {
		Type schema.Type `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", schema.ErrBadRequest)
	}
	var resp schema.Response
	switch envelope.Type {
	case schema.TypeNewToodle:
		resp = &schema.NewToodleResponse{}
	case schema.TypeDestroyToodle:
		resp = &schema.DestroyToodleResponse{}
	case schema.TypeGetLabels:
		resp = &schema.GetLabelsResponse{}
	case schema.TypeGetTodos:
		resp = &schema.GetTodosResponse{}
	case schema.TypeCreateTodo:
		resp = &schema.CreateTodoResponse{}
	case schema.TypeDeleteTodo:
		resp = &schema.DeleteTodoResponse{}
	case schema.TypeMarkCompleted:
		resp = &schema.MarkCompletedResponse{}
	case schema.TypeCreateLabel:
		resp = &schema.CreateLabelResponse{}
	case schema.TypeAddLabel:
		resp = &schema.AddLabelResponse{}
	case schema.TypeSetDue:
		resp = &schema.SetDueResponse{}
	case schema.TypeErr:
		resp = &schema.ErrResponse{}
	default:
		return nil, fmt.Errorf("unknown response tag %q: %w", envelope.Type, schema.ErrBadRequest)
	}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", envelope.Type, schema.ErrBadRequest)
	}
	return resp, nil
}

func encodeTagged(tag schema.Type, v any) ([]byte, error) {
	fields, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", tag, err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(fields, &merged); err != nil {
		return nil, fmt.Errorf("encode %s: %w", tag, err)
	}
	if merged == nil {
		merged = map[string]json.RawMessage{}
	}
	tagRaw, err := json.Marshal(tag)
	if err != nil {
		return nil, fmt.Errorf("encode %s tag: %w", tag, err)
	}
	merged["type"] = tagRaw
	return json.Marshal(merged)
}
