package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/stream"
)

// streamFrame is one websocket message during streaming generation.
type streamFrame struct {
	Status string        `json:"status"` // "progress", "done", or "error"
	Result stream.Result `json:"result"`
	Error  string        `json:"error,omitempty"`
}

// handleStreamInstructions generates instructions for a path while pushing
// each incremental parse state over a websocket, so the canvas can render
// instructions as they arrive. Closing the socket cancels the generation;
// nothing is persisted for a cancelled or failed run.
func (s *Server) handleStreamInstructions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.String("path_id", id), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A read failure means the client went away; cancel generation.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	writeFrame := func(frame streamFrame) error {
		wctx, wcancel := context.WithTimeout(ctx, 5*time.Second)
		defer wcancel()
		return wsjson.Write(wctx, conn, frame)
	}

	set, err := s.generator.GeneratePath(ctx, id, func(res stream.Result) {
		if werr := writeFrame(streamFrame{Status: "progress", Result: res}); werr != nil {
			cancel()
		}
	})
	if err != nil {
		s.logger.Warn("streaming generation failed", zap.String("path_id", id), zap.Error(err))
		_ = writeFrame(streamFrame{Status: "error", Error: err.Error()})
		conn.Close(websocket.StatusNormalClosure, "generation failed")
		return
	}

	_ = writeFrame(streamFrame{Status: "done", Result: stream.Result{
		Steps:               set.DescriptiveInstructions,
		ConciseInstructions: set.ConciseInstructions,
	}})
	conn.Close(websocket.StatusNormalClosure, "")
}
