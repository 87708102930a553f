package session

import (
	"context"
	"io"
	"net/http"

	messages "github.com/gunnermanx/simplematchmaker/session/messages"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type Player interface {
	GetID() int
	GetContext() context.Context
	Read() (messages.SessionMessage, error)
	Write(messages.SessionMessage) error
	CloseConnection()
	CloseConnectionWithError(error)
}

// WSPlayer is a player connected over a websocket
type WSPlayer struct {
	ID     int
	WSConn *websocket.Conn

	RWCtx       context.Context
	RWCtxCancel context.CancelFunc
}

func NewWSPlayer(id int, w http.ResponseWriter, r *http.Request) (p *WSPlayer, err error) {
	p = &WSPlayer{
		ID: id,
	}
	if p.WSConn, err = websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	}); err != nil {
		err = errors.Wrap(err, "failed creating player")
		return
	}
	p.RWCtx, p.RWCtxCancel = context.WithCancel(context.Background())
	return
}

func (p *WSPlayer) GetID() int {
	return p.ID
}

func (p *WSPlayer) GetContext() context.Context {
	return p.RWCtx
}

func (p *WSPlayer) Read() (msg messages.SessionMessage, err error) {
	if err = wsjson.Read(p.RWCtx, p.WSConn, &msg); err != nil {
		if errors.Is(err, context.Canceled) {
			p.WSConn.Close(websocket.StatusInternalError, "context cancelled")
			err = ErrContextCancelled
		} else if errors.Is(err, io.EOF) || websocket.CloseStatus(err) != -1 {
			p.WSConn.Close(websocket.StatusNormalClosure, "socket closed")
			err = ErrPlayerConnectionClosed
		} else {
			p.WSConn.Close(websocket.StatusProtocolError, "bad session message")
			err = ErrPlayerBadMessage
		}
	}
	return
}

func (p *WSPlayer) Write(msg messages.SessionMessage) (err error) {
	if err = wsjson.Write(p.RWCtx, p.WSConn, &msg); err != nil {
		p.WSConn.Close(websocket.StatusInternalError, "failed to write session message")
		err = errors.Wrap(err, "failed to write session message")
	}
	return
}

func (p *WSPlayer) CloseConnection() {
	p.RWCtxCancel()
	p.WSConn.Close(websocket.StatusNormalClosure, "player connection closed")
}

func (p *WSPlayer) CloseConnectionWithError(err error) {
	p.RWCtxCancel()
	p.WSConn.Close(websocket.StatusPolicyViolation, err.Error())
}
