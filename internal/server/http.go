package server

import (
	nethttp "net/http"

	"linkboard/internal/config"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server that hosts the page router.
//
// Every path is delegated to handler; chi does the routing and middleware.
// A zero ServerTimeout leaves request contexts without a deadline.
func NewHTTPServer(c *config.Config, handler nethttp.Handler, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Address(c.Addr()),
		http.Timeout(c.ServerTimeout),
	}
	srv := http.NewServer(opts...)
	srv.HandlePrefix("/", handler)

	log.NewHelper(logger).Infof("http server configured on %s", c.Addr())
	return srv
}
