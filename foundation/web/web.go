// Package web is a thin layer over gin that gives handlers an error return
// and a small set of request helpers.
package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles a single request. A returned error is logged by the App;
// handlers are expected to have written the response already.
type Handler func(*Context) error

// Middleware wraps a Handler with extra behaviour.
type Middleware func(Handler) Handler

type App struct {
	*gin.Engine
	log *zap.Logger
	mw  []Middleware
}

func NewApp(log *zap.Logger, mw ...Middleware) *App {
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &App{
		Engine: engine,
		log:    log,
		mw:     mw,
	}
}

func (a *App) Log() *zap.Logger {
	return a.log
}

// Handle registers handler for the given method and path. Route middleware
// runs inside the application wide middleware.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	a.Engine.Handle(method, path, func(gc *gin.Context) {
		c := &Context{
			Context: gc,
			Ctx:     gc.Request.Context(),
			log:     a.log,
		}

		if err := handler(c); err != nil {
			a.log.Error("unhandled error",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err))

			if !gc.Writer.Written() {
				gc.JSON(http.StatusInternalServerError, gin.H{
					"error":  http.StatusText(http.StatusInternalServerError),
					"status": false,
				})
			}
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, handler, mw...)
}

func (a *App) Put(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPut, path, handler, mw...)
}

func (a *App) Patch(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPatch, path, handler, mw...)
}

func (a *App) Delete(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, handler, mw...)
}

// Serve runs the engine on addr until ctx is cancelled or SIGINT/SIGTERM is
// received, then shuts down within shutdownTimeout.
func (a *App) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", zap.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case sig := <-shutdown:
		a.log.Info("shutdown started", zap.String("signal", sig.String()))
	case <-ctx.Done():
		a.log.Info("shutdown started", zap.Error(ctx.Err()))
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		_ = srv.Close()
		return err
	}

	return nil
}

func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if h := mw[i]; h != nil {
			handler = h(handler)
		}
	}

	return handler
}
