package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

type Server struct {
	Accounts *service.AccountService
	Config   *config.Config
	Router   *mux.Router
	DB       *gorm.DB
	srv      *http.Server
}

func NewServer(
	accounts *service.AccountService,
	cfg *config.Config,
	db *gorm.DB,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()

	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, router),
		Addr:         host + ":" + port,
		WriteTimeout: timeout,
		ReadTimeout:  timeout,
	}

	return &Server{
		Accounts: accounts,
		Config:   cfg,
		Router:   router,
		DB:       db,
		srv:      srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an existing listener. Used by tests that need
// to bind an ephemeral port before starting the server.
func (s *Server) StartWithListener(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown drains in-flight requests before closing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
