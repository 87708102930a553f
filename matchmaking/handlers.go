package matchmaking

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gunnermanx/simplematchmaker/common"
	"github.com/gunnermanx/simplematchmaker/datastore/model"
	"github.com/gunnermanx/simplematchmaker/engine"
	engine_errors "github.com/gunnermanx/simplematchmaker/engine/errors"
	"github.com/gunnermanx/simplematchmaker/session"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	REQUEST_TIMEOUT_S = 5
)

const (
	FIND_MATCH_PATH   = "/match/find"
	CANCEL_MATCH_PATH = "/match/cancel"
	HISTORY_PATH      = "/match/history"
	STATS_PATH        = "/match/stats"
	WS_PATH           = "/match/ws"
	METRICS_PATH      = "/metrics"
)

const (
	STATUS_WAITING = "waiting"
	STATUS_MATCHED = "matched"
)

func (sms *SimpleMatchmakingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == METRICS_PATH {
		sms.metrics.ServeHTTP(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), REQUEST_TIMEOUT_S*time.Second)
	defer cancel()

	var err error
	if ctx, err = sms.authProvider.AuthenticateRequest(ctx, r); err != nil {
		common.WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	sms.serveMux.ServeHTTP(w, r.WithContext(ctx))
}

// RegisterHandler is used by custom matchmaking servers to register new http handlers for the given pattern
func (sms *SimpleMatchmakingServer) RegisterHandler(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	sms.serveMux.HandleFunc(pattern, handler)
}

func (sms *SimpleMatchmakingServer) setupHandlers() {
	sms.serveMux.HandleFunc(FIND_MATCH_PATH, sms.findMatchHandler)
	sms.serveMux.HandleFunc(CANCEL_MATCH_PATH, sms.cancelMatchHandler)
	sms.serveMux.HandleFunc(HISTORY_PATH, sms.historyHandler)
	sms.serveMux.HandleFunc(STATS_PATH, sms.statsHandler)
	sms.serveMux.HandleFunc(WS_PATH, sms.wsHandler)
}

func (sms *SimpleMatchmakingServer) playerID(r *http.Request) (playerID int, err error) {
	var uid string
	if uid, err = sms.authProvider.GetUIDFromRequest(r); err != nil {
		return
	}
	if playerID, err = strconv.Atoi(uid); err != nil {
		err = errors.Wrapf(engine_errors.ErrInvalidPlayerID, "player id %q", uid)
	}
	return
}

func (sms *SimpleMatchmakingServer) findMatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		common.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var err error
	var playerID int
	if playerID, err = sms.playerID(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var statusCode int
	var req FindMatchRequest
	if statusCode, err = common.UnmarshalJSONRequestBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, statusCode, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = defaultName(playerID)
	}

	logger := sms.logger.WithFields(logrus.Fields{
		"playerID": playerID,
		"rating":   req.Rating,
	})
	logger.Infof("player %s joined matchmaking", req.Name)

	var matched []*engine.Match
	if matched, err = sms.findMatch(model.Player{ID: playerID, Name: req.Name, Rating: req.Rating}); err != nil {
		logger.Warnf("failed to register player: %s", err.Error())
		common.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	resp := FindMatchResponse{
		Status: STATUS_WAITING,
	}
	for _, m := range matched {
		if m.Player1ID == playerID || m.Player2ID == playerID {
			resp.Status = STATUS_MATCHED
			resp.Match = m
			if s, ok := sms.sessions.SessionFor(playerID); ok {
				resp.SessionID = s.ID
			}
		}
	}
	statusCode = http.StatusAccepted
	if resp.Status == STATUS_MATCHED {
		statusCode = http.StatusOK
	}
	common.WriteJSONResponse(w, statusCode, resp)
}

func (sms *SimpleMatchmakingServer) cancelMatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		common.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var err error
	var playerID int
	if playerID, err = sms.playerID(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = sms.engine.Cancel(playerID); err != nil {
		common.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}
	sms.datastore.DeletePlayer(playerID)
	sms.logger.WithField("playerID", playerID).Info("player left matchmaking")
	common.WriteResponse(w, http.StatusOK, common.ResponseData{
		"status": "cancelled",
	})
}

func (sms *SimpleMatchmakingServer) historyHandler(w http.ResponseWriter, r *http.Request) {
	common.WriteJSONResponse(w, http.StatusOK, HistoryResponse{
		Matches: sms.engine.Matches(),
	})
}

func (sms *SimpleMatchmakingServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	common.WriteJSONResponse(w, http.StatusOK, sms.engine.Stats())
}

func (sms *SimpleMatchmakingServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	var playerID int
	if playerID, err = sms.playerID(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var player *session.WSPlayer
	if player, err = session.NewWSPlayer(playerID, w, r); err != nil {
		sms.logger.WithFields(logrus.Fields{
			"playerID": playerID,
			"error":    err.Error(),
		}).Error("failed to accept websocket")
		return
	}

	// blocks until the player disconnects
	sms.sessions.Connect(player)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, engine_errors.ErrPlayerAlreadyWaiting):
		return http.StatusConflict
	case errors.Is(err, engine_errors.ErrInvalidPlayerID):
		return http.StatusBadRequest
	case errors.Is(err, engine_errors.ErrPlayerNotWaiting):
		return http.StatusNotFound
	case errors.Is(err, engine_errors.ErrTableCapacityExceeded),
		errors.Is(err, engine_errors.ErrMatchHistoryFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
