package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	cartservice "github.com/entoun8/alshami-store/pkg/cart/domain/service"
	cartmysql "github.com/entoun8/alshami-store/pkg/cart/infrastructure/mysql"
	catalogservice "github.com/entoun8/alshami-store/pkg/catalog/domain/service"
	catalogmysql "github.com/entoun8/alshami-store/pkg/catalog/infrastructure/mysql"
	"github.com/entoun8/alshami-store/pkg/catalog/infrastructure/supabase"
	"github.com/entoun8/alshami-store/pkg/common/infrastructure/config"
	"github.com/entoun8/alshami-store/pkg/common/infrastructure/event"
	"github.com/entoun8/alshami-store/pkg/common/infrastructure/mysql"
	"github.com/entoun8/alshami-store/pkg/common/infrastructure/transport"
	identityservice "github.com/entoun8/alshami-store/pkg/identity/domain/service"
	"github.com/entoun8/alshami-store/pkg/identity/infrastructure/jwt"
	identitymysql "github.com/entoun8/alshami-store/pkg/identity/infrastructure/mysql"
	notificationservice "github.com/entoun8/alshami-store/pkg/notification/domain/service"
	notificationmysql "github.com/entoun8/alshami-store/pkg/notification/infrastructure/mysql"
	"github.com/entoun8/alshami-store/pkg/notification/infrastructure/resend"
	orderservice "github.com/entoun8/alshami-store/pkg/order/domain/service"
	ordermysql "github.com/entoun8/alshami-store/pkg/order/infrastructure/mysql"
	paymentservice "github.com/entoun8/alshami-store/pkg/payment/domain/service"
	"github.com/entoun8/alshami-store/pkg/payment/infrastructure/stripe"
)

const appID = "alshami-store"

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "Storefront backend for the Alshami herbs, coffee and spice store",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("app failed")
	}
}

func migrate(_ *cli.Context) error {
	c, err := config.Parse()
	if err != nil {
		return err
	}
	return mysql.Migrate(c.DatabaseDSN, c.MigrationsDir)
}

func serve(_ *cli.Context) error {
	c, err := config.Parse()
	if err != nil {
		return err
	}

	if err := mysql.Migrate(c.DatabaseDSN, c.MigrationsDir); err != nil {
		return err
	}

	db, err := mysql.Connect(c.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	dispatcher := event.NewLogDispatcher()

	productRepo := catalogmysql.NewProductRepository(db)
	userRepo := identitymysql.NewUserRepository(db)
	cartRepo := cartmysql.NewCartRepository(db)
	orderRepo := ordermysql.NewOrderRepository(db)
	notificationRepo := notificationmysql.NewNotificationRepository(db)

	catalog := catalogservice.NewCatalogService(
		productRepo,
		supabase.NewStorage(c.SupabaseURL, c.SupabaseServiceKey, c.SupabaseBucket),
		dispatcher,
	)
	carts := cartservice.NewCartService(cartRepo, productRepo, dispatcher)
	identity := identityservice.NewIdentityService(userRepo, jwt.NewVerifier(c.AuthTokenSecret), carts, dispatcher)
	orders := orderservice.NewOrderService(orderRepo, userRepo, cartRepo, productRepo, dispatcher)
	notifications := notificationservice.NewNotificationService(
		notificationRepo,
		resend.NewSender(c.ResendAPIKey, c.EmailFromAddress),
		dispatcher,
	)
	payments := paymentservice.NewPaymentService(
		orderRepo,
		userRepo,
		stripe.NewGateway(c.StripeSecretKey, c.StripeWebhookSecret),
		notifications,
		c.Currency,
		dispatcher,
	)

	router := transport.Router(catalog, identity, carts, orders, payments)
	srv := &http.Server{Addr: ":" + c.Port, Handler: router}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithField("port", c.Port).Info("Starting server")

	var group errgroup.Group
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down...")
		return srv.Shutdown(context.Background())
	})

	return group.Wait()
}
