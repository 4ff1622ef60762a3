// Command carbond is a minimal example binary wiring http11, server, and
// netutil together behind a toy router.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hxyulin/carbon-http-server/pkg/carbon/http11"
	"github.com/hxyulin/carbon-http-server/pkg/carbon/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := server.DefaultConfig()
	cfg.Addr = *addr
	cfg.Logger = log

	srv := server.New(cfg, http11.RouterFunc(echoRoute))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", *addr).Info("carbond: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("carbond: server stopped")
		}
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("carbond: shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("carbond: forcing close after shutdown timeout")
			_ = srv.Close()
		}
	}
}

// echoRoute answers every request with a small plaintext body, enough to
// exercise the full parse-dispatch-serialize path end to end.
func echoRoute(req *http11.Request) (*http11.Response, error) {
	body := []byte("ok: " + req.Method.String() + " " + req.Path())
	resp := http11.NewResponse(http11.StatusOK).
		WithHeader([]byte("Content-Type"), []byte("text/plain; charset=utf-8")).
		WithBody(body).
		Build()
	return resp, nil
}
