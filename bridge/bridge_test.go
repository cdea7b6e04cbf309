package bridge

import (
	"bytes"
	"context"
	"encoding/binary"
	"path/filepath"
	"testing"

	"pkt.systems/toodle/schema"
	"pkt.systems/toodle/toodle"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	dir := t.TempDir()
	return Deps{
		Open: func(uri string) (*toodle.Toodle, error) {
			return toodle.New(filepath.Join(dir, uri))
		},
	}
}

func createToodle(t *testing.T, table *Table, deps Deps, uri string) schema.ToodleID {
	t.Helper()
	resp := dispatch(context.Background(), table, &schema.NewToodleRequest{URI: uri}, deps)
	created, ok := resp.(schema.NewToodleResponse)
	if !ok {
		t.Fatalf("expected NewToodleResponse, got %#v", resp)
	}
	return created.ToodleID
}

func expectErr(t *testing.T, resp schema.Response, kind schema.ErrorKind) {
	t.Helper()
	errResp, ok := resp.(schema.ErrResponse)
	if !ok {
		t.Fatalf("expected ErrResponse, got %#v", resp)
	}
	if errResp.Error != kind {
		t.Fatalf("expected %s, got %s", kind, errResp.Error)
	}
}

func TestSessionIDsMonotonicAcrossDestroy(t *testing.T) {
	table := NewTable()
	deps := testDeps(t)
	ctx := context.Background()

	var ids []schema.ToodleID
	for i, uri := range []string{"a.db", "b.db", "c.db"} {
		id := createToodle(t, table, deps, uri)
		if want := schema.ToodleID(i + 1); id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
		ids = append(ids, id)
	}

	resp := dispatch(ctx, table, &schema.DestroyToodleRequest{ToodleID: ids[1]}, deps)
	if destroyed, ok := resp.(schema.DestroyToodleResponse); !ok || !destroyed.Destroyed {
		t.Fatalf("expected destroyed:true, got %#v", resp)
	}

	if id := createToodle(t, table, deps, "d.db"); id != 4 {
		t.Fatalf("expected id 4 after destroy, got %d", id)
	}
}

func TestDestroyToodleReportsPresence(t *testing.T) {
	table := NewTable()
	deps := testDeps(t)
	ctx := context.Background()

	resp := dispatch(ctx, table, &schema.DestroyToodleRequest{ToodleID: 42}, deps)
	if destroyed, ok := resp.(schema.DestroyToodleResponse); !ok || destroyed.Destroyed {
		t.Fatalf("expected destroyed:false for unknown id, got %#v", resp)
	}

	id := createToodle(t, table, deps, "a.db")
	resp = dispatch(ctx, table, &schema.DestroyToodleRequest{ToodleID: id}, deps)
	if destroyed, ok := resp.(schema.DestroyToodleResponse); !ok || !destroyed.Destroyed {
		t.Fatalf("expected destroyed:true, got %#v", resp)
	}
	resp = dispatch(ctx, table, &schema.DestroyToodleRequest{ToodleID: id}, deps)
	if destroyed, ok := resp.(schema.DestroyToodleResponse); !ok || destroyed.Destroyed {
		t.Fatalf("expected destroyed:false on second destroy, got %#v", resp)
	}
}

func TestAddLabelIsIdempotent(t *testing.T) {
	table := NewTable()
	deps := testDeps(t)
	ctx := context.Background()
	id := createToodle(t, table, deps, "a.db")

	if resp := dispatch(ctx, table, &schema.CreateLabelRequest{ToodleID: id, Name: "home", Color: "#00ff00"}, deps); resp.ResponseType() != schema.TypeCreateLabel {
		t.Fatalf("create label failed: %#v", resp)
	}
	resp := dispatch(ctx, table, &schema.CreateTodoRequest{ToodleID: id, Name: "mow lawn", Due: 1700000000}, deps)
	created, ok := resp.(schema.CreateTodoResponse)
	if !ok {
		t.Fatalf("expected CreateTodoResponse, got %#v", resp)
	}

	label := schema.Label{Name: "home", Color: "#00ff00"}
	for i := 0; i < 2; i++ {
		resp := dispatch(ctx, table, &schema.AddLabelRequest{ToodleID: id, ItemUUID: created.Item.UUID, Label: label}, deps)
		if _, ok := resp.(schema.AddLabelResponse); !ok {
			t.Fatalf("add label attempt %d failed: %#v", i+1, resp)
		}
	}

	resp = dispatch(ctx, table, &schema.GetTodosRequest{ToodleID: id}, deps)
	todos, ok := resp.(schema.GetTodosResponse)
	if !ok {
		t.Fatalf("expected GetTodosResponse, got %#v", resp)
	}
	if len(todos.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(todos.Items))
	}
	count := 0
	for _, l := range todos.Items[0].Labels {
		if l.Equal(label) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one copy of the label, got %d", count)
	}
}

func TestAddLabelUnknownItem(t *testing.T) {
	table := NewTable()
	deps := testDeps(t)
	ctx := context.Background()
	id := createToodle(t, table, deps, "a.db")

	resp := dispatch(ctx, table, &schema.AddLabelRequest{
		ToodleID: id,
		ItemUUID: "no-such-item",
		Label:    schema.Label{Name: "home", Color: "#00ff00"},
	}, deps)
	expectErr(t, resp, schema.KindBadItem)

	// No item appeared as a side effect.
	todos := dispatch(ctx, table, &schema.GetTodosRequest{ToodleID: id}, deps)
	if got, ok := todos.(schema.GetTodosResponse); !ok || len(got.Items) != 0 {
		t.Fatalf("expected no items, got %#v", todos)
	}
}

func TestUnknownToodleIDEveryOperation(t *testing.T) {
	table := NewTable()
	deps := testDeps(t)
	ctx := context.Background()

	requests := []schema.Request{
		&schema.GetLabelsRequest{ToodleID: 99},
		&schema.GetTodosRequest{ToodleID: 99},
		&schema.CreateTodoRequest{ToodleID: 99, Name: "x"},
		&schema.DeleteTodoRequest{ToodleID: 99, ID: "abc"},
		&schema.MarkCompletedRequest{ToodleID: 99, ID: "abc"},
		&schema.CreateLabelRequest{ToodleID: 99, Name: "home"},
		&schema.AddLabelRequest{ToodleID: 99, ItemUUID: "abc"},
		&schema.SetDueRequest{ToodleID: 99, ID: "abc", Due: 1},
	}
	for _, req := range requests {
		expectErr(t, dispatch(ctx, table, req, deps), schema.KindBadToodle)
	}
}

func TestDestroyedIDBehavesLikeNeverCreated(t *testing.T) {
	table := NewTable()
	deps := testDeps(t)
	ctx := context.Background()

	id := createToodle(t, table, deps, "a.db")
	if resp := dispatch(ctx, table, &schema.DestroyToodleRequest{ToodleID: id}, deps); resp.ResponseType() != schema.TypeDestroyToodle {
		t.Fatalf("destroy failed: %#v", resp)
	}

	destroyed := dispatch(ctx, table, &schema.GetLabelsRequest{ToodleID: id}, deps)
	never := dispatch(ctx, table, &schema.GetLabelsRequest{ToodleID: 1000}, deps)
	expectErr(t, destroyed, schema.KindBadToodle)
	expectErr(t, never, schema.KindBadToodle)
}

func TestServeLoopEndToEnd(t *testing.T) {
	deps := testDeps(t)
	var in bytes.Buffer
	for _, req := range []schema.Request{
		schema.NewToodleRequest{URI: "loop.db"},
		schema.CreateLabelRequest{ToodleID: 1, Name: "home", Color: "#00ff00"},
		schema.GetLabelsRequest{ToodleID: 1},
		schema.DestroyToodleRequest{ToodleID: 1},
	} {
		body, err := EncodeRequest(req)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		if err := WriteFrame(&in, body); err != nil {
			t.Fatalf("write request frame: %v", err)
		}
	}

	var out bytes.Buffer
	table := NewTable()
	if err := Serve(context.Background(), &in, &out, table, deps); err != nil {
		t.Fatalf("serve: %v", err)
	}

	responses := drainResponses(t, &out)
	if len(responses) != 4 {
		t.Fatalf("expected 4 responses, got %d", len(responses))
	}
	if created, ok := responses[0].(*schema.NewToodleResponse); !ok || created.ToodleID != 1 {
		t.Fatalf("expected toodle_id 1, got %#v", responses[0])
	}
	if label, ok := responses[1].(*schema.CreateLabelResponse); !ok || label.Label.Name != "home" {
		t.Fatalf("expected created label, got %#v", responses[1])
	}
	if labels, ok := responses[2].(*schema.GetLabelsResponse); !ok || len(labels.Labels) != 1 {
		t.Fatalf("expected one label, got %#v", responses[2])
	}
	if destroyed, ok := responses[3].(*schema.DestroyToodleResponse); !ok || !destroyed.Destroyed {
		t.Fatalf("expected destroyed:true, got %#v", responses[3])
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table after destroy, got %d", table.Len())
	}
}

func TestServeLoopSurvivesMalformedFrame(t *testing.T) {
	deps := testDeps(t)
	var in bytes.Buffer

	// A prefix declaring an impossible length carries no body, so the
	// loop recovers on the next well-formed frame.
	var bogus [4]byte
	binary.LittleEndian.PutUint32(bogus[:], MaxFrameLen+1)
	in.Write(bogus[:])

	body, err := EncodeRequest(schema.NewToodleRequest{URI: "recover.db"})
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	if err := WriteFrame(&in, body); err != nil {
		t.Fatalf("write request frame: %v", err)
	}

	var out bytes.Buffer
	if err := Serve(context.Background(), &in, &out, NewTable(), deps); err != nil {
		t.Fatalf("serve: %v", err)
	}

	responses := drainResponses(t, &out)
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if errResp, ok := responses[0].(*schema.ErrResponse); !ok || errResp.Error != schema.KindBadRequest {
		t.Fatalf("expected BadRequest for malformed frame, got %#v", responses[0])
	}
	if created, ok := responses[1].(*schema.NewToodleResponse); !ok || created.ToodleID != 1 {
		t.Fatalf("expected session created after recovery, got %#v", responses[1])
	}
}

func TestServeLoopTruncatedBody(t *testing.T) {
	deps := testDeps(t)
	var in bytes.Buffer
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], 64)
	in.Write(prefix[:])
	in.WriteString("short")

	var out bytes.Buffer
	if err := Serve(context.Background(), &in, &out, NewTable(), deps); err != nil {
		t.Fatalf("serve: %v", err)
	}

	responses := drainResponses(t, &out)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if errResp, ok := responses[0].(*schema.ErrResponse); !ok || errResp.Error != schema.KindBadRequest {
		t.Fatalf("expected BadRequest for truncated body, got %#v", responses[0])
	}
}

func TestServeLoopBadJSON(t *testing.T) {
	deps := testDeps(t)
	var in bytes.Buffer
	if err := WriteFrame(&in, []byte(`{"type":"NoSuchThing"}`)); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	var out bytes.Buffer
	if err := Serve(context.Background(), &in, &out, NewTable(), deps); err != nil {
		t.Fatalf("serve: %v", err)
	}
	responses := drainResponses(t, &out)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if errResp, ok := responses[0].(*schema.ErrResponse); !ok || errResp.Error != schema.KindBadRequest {
		t.Fatalf("expected BadRequest, got %#v", responses[0])
	}
}

func drainResponses(t *testing.T, buf *bytes.Buffer) []schema.Response {
	t.Helper()
	var responses []schema.Response
	for buf.Len() > 0 {
		body, err := ReadFrame(buf)
		if err != nil {
			t.Fatalf("read response frame: %v", err)
		}
		resp, err := DecodeResponse(body)
		if err != nil {
			t.Fatalf("decode response: %v", err)
		}
		responses = append(responses, resp)
	}
	return responses
}
