package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderAuthProvider(t *testing.T) {
	ap := NewHeaderAuthProvider()

	t.Run("header", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/match/find", nil)
		r.Header.Set(PLAYER_ID_HEADER, "42")

		ctx, err := ap.AuthenticateRequest(context.Background(), r)
		require.NoError(t, err)

		uid, err := ap.GetUIDFromRequest(r.WithContext(ctx))
		require.NoError(t, err)
		require.Equal(t, "42", uid)
	})

	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/match/ws?playerID=7", nil)
		ctx, err := ap.AuthenticateRequest(context.Background(), r)
		require.NoError(t, err)
		uid, err := ap.GetUIDFromRequest(r.WithContext(ctx))
		require.NoError(t, err)
		require.Equal(t, "7", uid)
	})

	t.Run("missing or invalid", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/match/find", nil)
		_, err := ap.AuthenticateRequest(context.Background(), r)
		require.ErrorIs(t, err, ErrMissingPlayerID)

		for _, bad := range []string{"0", "abc"} {
			r.Header.Set(PLAYER_ID_HEADER, bad)
			_, err = ap.AuthenticateRequest(context.Background(), r)
			require.ErrorIs(t, err, ErrInvalidPlayerID)
		}

		_, err = ap.GetUIDFromRequest(r)
		require.ErrorIs(t, err, ErrMissingPlayerID)
	})
}
