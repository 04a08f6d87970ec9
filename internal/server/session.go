package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Browser → server message types.
const (
	msgInput  = "input"
	msgResize = "resize"
)

const closeGracePeriod = time.Second

// clientMessage is one frame sent by the browser terminal.
type clientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// terminal upgrades the request and runs one dashboard session on it.
func (s *Server) terminal(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log := s.log.WithField("session", uuid.NewString())
	log.WithField("remote", c.ClientIP()).Info("session opened")
	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	ws := &wsConn{conn: conn}
	if err := s.serve(c.Request.Context(), ws, log); err != nil {
		log.WithError(err).Warn("session ended with error")
	}
	if err := ws.close(); err != nil {
		log.WithError(err).Debug("close websocket")
	}
	log.Info("session closed")
}

// serve runs a tea.Program fed by the websocket until either side quits.
func (s *Server) serve(ctx context.Context, ws *wsConn, log logrus.FieldLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inR, inW := io.Pipe()
	defer inR.Close()

	p := tea.NewProgram(s.newModel(ctx),
		tea.WithContext(ctx),
		tea.WithInput(inR),
		tea.WithOutput(ws),
		tea.WithAltScreen(),
	)

	go func() {
		defer inW.Close()
		for {
			_, data, err := ws.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.WithError(err).Debug("websocket closed unexpectedly")
				}
				cancel()
				return
			}
			if err := dispatch(p, inW, data); err != nil {
				log.WithError(err).Debug("dropping client message")
			}
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// programSender is the part of *tea.Program that dispatch needs.
type programSender interface {
	Send(msg tea.Msg)
}

// dispatch routes one browser frame: keystrokes go to the program's input
// stream, resizes become WindowSizeMsg.
func dispatch(p programSender, input io.Writer, data []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	switch msg.Type {
	case msgInput:
		_, err := io.WriteString(input, msg.Data)
		return err
	case msgResize:
		if msg.Cols <= 0 || msg.Rows <= 0 {
			return errors.New("invalid terminal size")
		}
		p.Send(tea.WindowSizeMsg{Width: msg.Cols, Height: msg.Rows})
		return nil
	default:
		return errors.New("unknown message type " + msg.Type)
	}
}

// wsConn adapts a websocket to the io.Writer the program renders into.
// gorilla/websocket allows one concurrent writer, hence the mutex.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) close() error {
	w.mu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	err := w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	w.mu.Unlock()
	if cerr := w.conn.Close(); err == nil {
		err = cerr
	}
	return err
}
