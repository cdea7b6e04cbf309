// Package bridge runs the framed-JSON protocol between a byte stream and
// the session table: read a length-prefixed frame, decode a request,
// dispatch it against the table, write the length-prefixed response.
// One malformed frame or failed request never ends the loop; only the
// input stream ending does.
package bridge

import (
	"context"
	"errors"
	"io"

	"pkt.systems/pslog"

	"pkt.systems/toodle/internal/logx"
	"pkt.systems/toodle/internal/metrics"
	"pkt.systems/toodle/schema"
	"pkt.systems/toodle/toodle"
)

// Deps captures the bridge loop's injectable collaborators.
type Deps struct {
	// Logger receives diagnostics. Defaults to the context logger.
	Logger pslog.Logger
	// Metrics counts bridge activity when set.
	Metrics *metrics.Bridge
	// Open creates a session from a NewToodle uri. Defaults to toodle.New.
	Open func(uri string) (*toodle.Toodle, error)
}

// Serve runs the bridge loop over r and w until r ends or ctx is
// canceled. Requests are processed strictly one at a time: a frame is
// fully read, dispatched, and answered before the next read.
func Serve(ctx context.Context, r io.Reader, w io.Writer, table *Table, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	if deps.Open == nil {
		deps.Open = func(uri string) (*toodle.Toodle, error) {
			return toodle.NewWithLogger(uri, logger)
		}
	}

	logger.Info("bridge loop start")
	for {
		if err := ctx.Err(); err != nil {
			logger.Info("bridge loop canceled")
			return err
		}

		var resp schema.Response
		body, err := ReadFrame(r)
		switch {
		case errors.Is(err, io.EOF):
			logger.Info("bridge input closed", "sessions", table.Len())
			return nil
		case err != nil:
			// Framing failure aborts only this cycle. A stream that can
			// no longer produce a prefix surfaces as EOF next iteration.
			logger.Warn("frame read failed", "err", err)
			resp = schema.ErrResponse{Error: schema.KindBadRequest}
		default:
			deps.Metrics.FrameRead()
			req, decodeErr := DecodeRequest(body)
			if decodeErr != nil {
				logger.Warn("request decode failed", "err", decodeErr)
				resp = schema.ErrResponse{Error: schema.KindBadRequest}
			} else {
				resp = dispatch(ctx, table, req, deps)
			}
		}

		payload, err := EncodeResponse(resp)
		if err != nil {
			logger.Error("response encode failed", "err", err)
			continue
		}
		if err := WriteFrame(w, payload); err != nil {
			deps.Metrics.WriteFailed()
			logger.Warn("response write failed", "err", err)
			continue
		}
		deps.Metrics.ResponseWritten(string(resp.ResponseType()))
	}
}

// dispatch executes one decoded request against the table. Store
// failures and table misses become Err responses; they never unwind.
func dispatch(ctx context.Context, table *Table, req schema.Request, deps Deps) schema.Response {
	switch req := req.(type) {
	case *schema.NewToodleRequest:
		session, err := deps.Open(req.URI)
		if err != nil {
			logx.Ctx(ctx).Warn("toodle open failed", "uri", req.URI, "err", err)
			return errResponse(err)
		}
		id := table.Add(session)
		logx.WithToodle(ctx, id).Info("toodle created", "uri", req.URI)
		return schema.NewToodleResponse{ToodleID: id}

	case *schema.DestroyToodleRequest:
		destroyed := table.Remove(req.ToodleID)
		logx.WithToodle(ctx, req.ToodleID).Info("toodle destroy", "destroyed", destroyed)
		return schema.DestroyToodleResponse{Destroyed: destroyed}

	case *schema.GetLabelsRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		labels, err := session.Store().AllLabels()
		if err != nil {
			return errResponse(err)
		}
		return schema.GetLabelsResponse{Labels: labels}

	case *schema.GetTodosRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		items, err := session.List().ItemsWithLabels(req.Labels)
		if err != nil {
			return errResponse(err)
		}
		return schema.GetTodosResponse{Items: items}

	case *schema.CreateTodoRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		item, err := session.List().CreateTodo(req.Name, req.Due, req.Labels)
		if err != nil {
			return errResponse(err)
		}
		logx.WithItem(logx.WithToodle(ctx, req.ToodleID), item.UUID).Info("todo created")
		return schema.CreateTodoResponse{Item: item}

	case *schema.DeleteTodoRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		if err := session.List().DeleteTodo(req.ID); err != nil {
			return errResponse(err)
		}
		logx.WithItem(logx.WithToodle(ctx, req.ToodleID), req.ID).Info("todo deleted")
		return schema.DeleteTodoResponse{}

	case *schema.MarkCompletedRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		item, err := session.List().MarkCompleted(req.ID)
		if err != nil {
			return errResponse(err)
		}
		return schema.MarkCompletedResponse{Item: item}

	case *schema.CreateLabelRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		label, err := session.Store().CreateLabel(req.Name, req.Color)
		if err != nil {
			return errResponse(err)
		}
		logx.WithLabel(logx.WithToodle(ctx, req.ToodleID), label.Name).Info("label created")
		return schema.CreateLabelResponse{Label: label}

	case *schema.AddLabelRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		item, err := session.Store().FetchItem(req.ItemUUID)
		if err != nil {
			return errResponse(err)
		}
		// Attaching an already-present label succeeds without a write.
		if !item.HasLabel(req.Label) {
			item.Labels = append(item.Labels, req.Label)
			if err := session.Store().UpdateItem(item); err != nil {
				return errResponse(err)
			}
		}
		return schema.AddLabelResponse{}

	case *schema.SetDueRequest:
		session, ok := table.Get(req.ToodleID)
		if !ok {
			return errResponse(schema.ErrBadToodle)
		}
		item, err := session.List().SetDue(req.ID, req.Due)
		if err != nil {
			return errResponse(err)
		}
		return schema.SetDueResponse{Item: item}

	default:
		return schema.ErrResponse{Error: schema.KindBadRequest}
	}
}

func errResponse(err error) schema.Response {
	return schema.ErrResponse{Error: schema.KindOf(err)}
}
