package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"student-mess-api/auth"
	"student-mess-api/cache"
	"student-mess-api/handlers"
	"student-mess-api/middleware"
	"student-mess-api/routes"
	"student-mess-api/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(true)
		if err != nil {
			return err
		}
		defer rt.close()
		return serve(cmd.Context(), rt)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port")
	serveCmd.Flags().String("mode", "", "gin mode (debug, release, test)")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.mode", serveCmd.Flags().Lookup("mode"))
}

// app is the assembled service layer.
type app struct {
	auth      *auth.Service
	providers *services.ProviderService
	subs      *services.SubscriptionService
	orders    *services.OrderService
	accounts  *services.AccountService
	closeFn   func()
}

func buildApp(ctx context.Context, rt *runtime) *app {
	store, closeFn := openCache(ctx, rt)
	providers := services.NewProviderService(rt.db, store, rt.cfg.Cache.TTL, rt.log)
	return &app{
		auth:      auth.NewService(rt.db, auth.NewTokenIssuer(rt.cfg.JWT.Secret, rt.cfg.JWT.Expiry), rt.log),
		providers: providers,
		subs:      services.NewSubscriptionService(rt.db, rt.log),
		orders:    services.NewOrderService(rt.db, rt.log),
		accounts:  services.NewAccountService(rt.db, providers),
		closeFn:   closeFn,
	}
}

// openCache uses redis when configured and falls back to the in-process cache.
func openCache(ctx context.Context, rt *runtime) (cache.Store, func()) {
	if rt.cfg.Redis.URL == "" {
		return cache.NewMemory(), func() {}
	}
	rc, err := cache.NewRedisCache(ctx, rt.cfg.Redis.URL, rt.log)
	if err != nil {
		rt.log.Warn("redis unavailable, using in-process cache", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	return rc, func() { _ = rc.Close() }
}

func serve(parent context.Context, rt *runtime) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(rt.cfg.Server.Mode)
	a := buildApp(ctx, rt)
	defer a.closeFn()

	h := handlers.New(a.auth, a.providers, a.subs, a.orders, a.accounts, rt.log)
	router := routes.NewRouter(routes.Deps{
		Handler:     h,
		Sessions:    a.auth,
		Limiter:     middleware.NewRateLimiter(rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst, rt.log),
		CORSOrigins: rt.cfg.Server.CORSOrigin,
		ErrorDetail: rt.cfg.Server.ErrorDetail,
		Log:         rt.log,
	})

	if schedule := rt.cfg.Scheduler.ExpireCron; schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(schedule, func() {
			if _, err := a.subs.ExpireSubscriptions(ctx, time.Now()); err != nil {
				rt.log.Error("scheduled expiry failed", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("scheduler.expire_cron %q: %w", schedule, err)
		}
		c.Start()
		defer c.Stop()
		rt.log.Info("subscription expiry scheduled", zap.String("cron", schedule))
	}

	srv := &http.Server{
		Addr:              ":" + rt.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", rt.cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
