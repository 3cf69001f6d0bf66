package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lbriand/otpgate/internal/pkg/clock"
	"github.com/lbriand/otpgate/internal/pkg/config"
	"github.com/lbriand/otpgate/internal/pkg/goroutine"
	"github.com/lbriand/otpgate/internal/pkg/hash"
	"github.com/lbriand/otpgate/internal/pkg/idempotency"
	"github.com/lbriand/otpgate/internal/pkg/instrument"
	"github.com/lbriand/otpgate/internal/pkg/jwt"
	"github.com/lbriand/otpgate/internal/pkg/messaging"
	"github.com/lbriand/otpgate/internal/pkg/router"
	"github.com/lbriand/otpgate/internal/pkg/sms"
	"github.com/lbriand/otpgate/internal/pkg/uid"
	"github.com/lbriand/otpgate/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	sms       sms.Sender
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initSMS()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
