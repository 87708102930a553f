package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

type authedctxkey int

const (
	KeyUID authedctxkey = iota
)

const (
	PLAYER_ID_HEADER = "X-Player-ID"
	PLAYER_ID_PARAM  = "playerID"
)

var (
	ErrMissingPlayerID = errors.New("missing player id")
	ErrInvalidPlayerID = errors.New("player id must be a non-zero integer")
)

type AuthProvider interface {
	AuthenticateRequest(context.Context, *http.Request) (context.Context, error)
	GetUIDFromRequest(*http.Request) (string, error)
}

// HeaderAuthProvider trusts the player id sent in the X-Player-ID header, or
// in the playerID query parameter for browser websocket clients that cannot
// set headers. It is meant to sit behind a gateway that already verified the
// caller.
type HeaderAuthProvider struct{}

func NewHeaderAuthProvider() *HeaderAuthProvider {
	return &HeaderAuthProvider{}
}

func (p *HeaderAuthProvider) AuthenticateRequest(ctx context.Context, r *http.Request) (context.Context, error) {
	uid := r.Header.Get(PLAYER_ID_HEADER)
	if uid == "" {
		uid = r.URL.Query().Get(PLAYER_ID_PARAM)
	}
	if uid == "" {
		return ctx, ErrMissingPlayerID
	}
	if id, err := strconv.Atoi(uid); err != nil || id == 0 {
		return ctx, ErrInvalidPlayerID
	}
	return context.WithValue(ctx, KeyUID, uid), nil
}

func (p *HeaderAuthProvider) GetUIDFromRequest(r *http.Request) (string, error) {
	uid, ok := r.Context().Value(KeyUID).(string)
	if !ok || uid == "" {
		return "", ErrMissingPlayerID
	}
	return uid, nil
}
