package matchmaking

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gunnermanx/simplematchmaker/auth"
	"github.com/gunnermanx/simplematchmaker/config"
	"github.com/gunnermanx/simplematchmaker/datastore"
	"github.com/gunnermanx/simplematchmaker/datastore/model"
	"github.com/gunnermanx/simplematchmaker/engine"
	"github.com/gunnermanx/simplematchmaker/session"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	GRACEFUL_SHUTDOWN_TIME_S = 10
)

type SimpleMatchmakingServer struct {
	config   *config.MatchmakingServerConfig
	serveMux *http.ServeMux
	server   *http.Server
	logger   *logrus.Logger

	engine   *engine.Engine
	sessions *session.Manager
	metrics  http.Handler

	datastore    datastore.Datastore
	authProvider auth.AuthProvider
}

func New(
	conf *config.MatchmakingServerConfig,
	logger *logrus.Logger,
	ap auth.AuthProvider,
	ds datastore.Datastore,
	eng *engine.Engine,
	registry *prometheus.Registry,
) (s *SimpleMatchmakingServer) {

	s = &SimpleMatchmakingServer{
		config:       conf,
		logger:       logger,
		authProvider: ap,
		datastore:    ds,
		engine:       eng,
		sessions:     session.NewManager(logger),
		metrics:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		serveMux:     http.NewServeMux(),
	}

	s.setupHandlers()
	s.server = &http.Server{
		Handler: s,
	}

	return
}

// Start the matchmaking server
func (sms *SimpleMatchmakingServer) Start() (err error) {
	var listener net.Listener
	if listener, err = net.Listen("tcp", fmt.Sprintf(":%s", sms.config.Port)); err != nil {
		err = errors.Wrap(err, "failed to start matchmaking server")
		sms.logger.Error(err)
		return
	}

	// Start the http server
	errc := make(chan error, 1)
	go func() {
		sms.logger.Infof("Starting matchmaking server on: %s", listener.Addr().String())
		errc <- sms.server.Serve(listener)
	}()

	// Wait for termination or errors
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err = <-errc:
		sms.logger.Errorf("failed to serve: %s", err.Error())
	case sig := <-sigs:
		sms.logger.Errorf("terminating on sig: %v", sig)
	}

	// Gracefully shutdown with timeout of 10s
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*GRACEFUL_SHUTDOWN_TIME_S)
	defer cancel()
	return sms.server.Shutdown(ctx)
}

// findMatch registers the player and pairs as many waiting players as the
// engine allows. Sessions are started after the engine has released its lock.
func (sms *SimpleMatchmakingServer) findMatch(player model.Player) (matched []*engine.Match, err error) {
	if err = sms.engine.AddPlayer(player.ID, player.Rating); err != nil {
		return
	}
	if err = sms.datastore.SavePlayer(player); err != nil {
		err = errors.Wrap(err, "failed to save player profile")
		if cancelErr := sms.engine.Cancel(player.ID); cancelErr != nil {
			sms.logger.WithField("playerID", player.ID).Errorf("failed to withdraw player: %s", cancelErr.Error())
		}
		return
	}

	for {
		var m *engine.Match
		if m, err = sms.engine.RequestMatch(); err != nil {
			sms.logger.WithField("playerID", player.ID).Errorf("failed to request match: %s", err.Error())
			err = nil
			break
		}
		if m == nil {
			break
		}
		matched = append(matched, m)
	}

	for _, m := range matched {
		sms.sessions.StartSession(m.ID, sms.profile(m.Player1ID), sms.profile(m.Player2ID))
	}
	return
}

func (sms *SimpleMatchmakingServer) profile(playerID int) model.Player {
	p, err := sms.datastore.FindPlayer(playerID)
	if err != nil {
		rating, _ := sms.engine.Rating(playerID)
		return model.Player{
			ID:     playerID,
			Name:   defaultName(playerID),
			Rating: rating,
		}
	}
	return p
}

func defaultName(playerID int) string {
	return fmt.Sprintf("Player%d", playerID)
}
