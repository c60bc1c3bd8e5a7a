// Package liveview broadcasts a Document's committed mutations to
// WebSocket-connected viewers and accepts inbound edit messages from them,
// so a browser-based grid view stays in sync with edits made anywhere
// (including other connected viewers).
package liveview

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"gridline/document"
	"gridline/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server serves one Document to any number of WebSocket viewers.
type Server struct {
	Doc *document.Document
	Log *logrus.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer returns a Server for doc. A nil logger falls back to a
// standard logrus.New().
func NewServer(doc *document.Document, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{Doc: doc, Log: log, clients: make(map[*websocket.Conn]bool)}
}

// EditMessage is an inbound edit from a viewer.
type EditMessage struct {
	Type  string `json:"type"` // "set_cell" | "clear_cell" | "undo" | "redo"
	Ref   string `json:"ref,omitempty"`
	Value string `json:"value,omitempty"`
}

// CellUpdate is one cell's rendered state, sent both in the initial
// snapshot and in per-edit broadcasts.
type CellUpdate struct {
	Ref     string `json:"ref"`
	Display string `json:"display"`
}

// Snapshot is the full-grid message sent to a newly connected viewer and
// rebroadcast after any structural edit.
type Snapshot struct {
	Type  string       `json:"type"`
	Cells []CellUpdate `json:"cells"`
}

// ErrorMessage reports an edit the server rejected.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleWebSocket upgrades the request and serves one viewer connection
// until it disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.WithError(err).Warn("liveview: upgrade failed")
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	if err := conn.WriteJSON(s.snapshot()); err != nil {
		return
	}

	for {
		var msg EditMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleEdit(conn, msg)
	}
}

func (s *Server) handleEdit(conn *websocket.Conn, msg EditMessage) {
	var err error
	switch msg.Type {
	case "set_cell":
		ref, ok := engine.ParseCellRef(msg.Ref)
		if !ok {
			err = errInvalidRef
			break
		}
		err = s.Doc.SetCellFromInput(ref, msg.Value)
	case "clear_cell":
		ref, ok := engine.ParseCellRef(msg.Ref)
		if !ok {
			err = errInvalidRef
			break
		}
		err = s.Doc.ClearCell(ref)
	case "undo":
		err = s.Doc.Undo()
	case "redo":
		err = s.Doc.Redo()
	default:
		err = errUnknownMessageType
	}

	if err != nil {
		conn.WriteJSON(ErrorMessage{Type: "error", Error: err.Error()})
		return
	}
	s.BroadcastSnapshot()
}

// BroadcastSnapshot sends the full current grid state to every connected
// viewer; call it after any edit made outside a viewer connection (e.g.
// from the CLI or a changefeed subscriber) to keep viewers current.
func (s *Server) BroadcastSnapshot() {
	snap := s.snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(snap); err != nil {
			s.Log.WithError(err).Warn("liveview: broadcast failed, dropping client")
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) snapshot() Snapshot {
	refs := s.Doc.SortedRefs()
	cells := make([]CellUpdate, 0, len(refs))
	for _, ref := range refs {
		cells = append(cells, CellUpdate{Ref: ref.String(), Display: s.Doc.Display(ref)})
	}
	return Snapshot{Type: "snapshot", Cells: cells}
}

var (
	errInvalidRef         = jsonErr("invalid cell reference")
	errUnknownMessageType = jsonErr("unknown message type")
)

type jsonErr string

func (e jsonErr) Error() string { return string(e) }
