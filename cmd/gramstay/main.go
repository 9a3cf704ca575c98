package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/dto"
	availabilityapp "gramstay/internal/app/handlers/availability"
	bookingapp "gramstay/internal/app/handlers/booking"
	listingsapp "gramstay/internal/app/handlers/listings"
	"gramstay/internal/app/middleware"
	appoutbox "gramstay/internal/app/outbox"
	"gramstay/internal/app/policies"
	"gramstay/internal/app/queries"
	authsvc "gramstay/internal/app/services/auth"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainpricing "gramstay/internal/domain/pricing"
	domainuser "gramstay/internal/domain/user"
	"gramstay/internal/infra/broker/kafka"
	"gramstay/internal/infra/config"
	mongodb "gramstay/internal/infra/db/mongo"
	ginserver "gramstay/internal/infra/http/gin"
	"gramstay/internal/infra/notify"
	"gramstay/internal/infra/obs"
	infraoutbox "gramstay/internal/infra/outbox"
	"gramstay/internal/infra/payments"
	"gramstay/internal/infra/security"
	"gramstay/internal/infra/storage/memory"
	"gramstay/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var (
		factory       uow.UoWFactory
		box           appoutbox.Outbox
		idemStore     middleware.IdempotencyStore
		usersRepo     domainuser.Repository
		sessionsStore domainauth.SessionStore
		ready         func() error
		background    []func(context.Context) error
		closers       []func(context.Context) error
	)

	hasher := security.BcryptHasher{}
	tokens := security.RandomTokenGenerator{}

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		closers = append(closers, client.Close)

		usersRepo = mongodb.NewUserRepository(client.DB)
		sessionsStore = mongodb.NewSessionStore(client.DB)
		factory = mongodb.Factory{
			DB:               client.DB,
			ListingsRepo:     mongodb.NewListingRepository(client.DB),
			AvailabilityRepo: mongodb.NewCalendarRepository(client.DB),
			BookingRepo:      mongodb.NewBookingRepository(client.DB),
			UsersRepo:        usersRepo,
			SessionsStore:    sessionsStore,
		}
		idemStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)

		store := infraoutbox.NewStore(client.DB)
		box = store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return err
			}
			closers = append(closers, func(context.Context) error { return producer.Close() })
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			background = append(background, worker.Run)
		} else {
			logger.Warn("kafka brokers not configured, outbox records stay queued")
		}
	default:
		usersRepo = memory.NewUserRepository()
		sessionsStore = memory.NewSessionStore()
		factory = memory.Factory{
			ListingsRepo:     memory.NewListingRepository(),
			AvailabilityRepo: memory.NewAvailabilityRepository(),
			BookingRepo:      memory.NewBookingRepository(),
			UsersRepo:        usersRepo,
			SessionsStore:    sessionsStore,
		}
		box = memory.NewOutbox()
		idemStore = memory.NewIdempotencyStore()
		ready = func() error { return nil }
	}

	authSvc := &authsvc.Service{
		Users:    usersRepo,
		Sessions: sessionsStore,
		Hasher:   hasher,
		Tokens:   tokens,
		TTL:      cfg.SessionTTL,
	}

	var payPort policies.PaymentsPort
	if cfg.PaymentsURL != "" {
		payPort = payments.NewClient(cfg.PaymentsURL, cfg.PaymentsTimeout)
	}
	notifier := notify.LogNotifier{Logger: logger}

	var media s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		mediaClient, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return err
		}
		media = mediaClient
	}

	fees := domainpricing.FeePolicy{
		PlatformFeeBps:  cfg.PlatformFeeBps,
		CommunityFeeBps: cfg.CommunityFeeBps,
	}
	if err := fees.Validate(); err != nil {
		return err
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	registerBookingHandlers(commandBus, queryBus, factory, fees, cfg, payPort, notifier, box, encoder)
	registerListingHandlers(commandBus, queryBus, factory, fees, box, encoder)
	registerAvailabilityHandlers(commandBus, queryBus, factory, box, encoder)

	dispatcher := middleware.ChainCommands(commandBus,
		middleware.Idempotency(idemStore, middleware.JSONResultCodec{}),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	asker := middleware.ChainQueries(queryBus)

	srv := ginserver.NewServer(cfg.Env, cfg.HTTPAddr, logger, ginserver.Handlers{
		Auth:     ginserver.AuthHandler{Service: authSvc, Logger: logger},
		Bookings: ginserver.BookingHandler{Commands: dispatcher, Queries: asker, Payments: payPort, Logger: logger},
		Listings: ginserver.ListingHandler{Queries: asker, Logger: logger},
		Host:     ginserver.HostHandler{Commands: dispatcher, Queries: asker, Media: media, Logger: logger},
		Admin:    ginserver.AdminHandler{Commands: dispatcher, Queries: asker, Users: authSvc.Users, Logger: logger},
		Health:   obs.HealthHandlers{Ready: ready},
		Session:  ginserver.AuthMiddleware{Service: authSvc, Logger: logger},
	})

	for _, job := range background {
		job := job
		go func() {
			if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background job stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(shutdownCtx); err != nil {
			logger.Error("close", "error", err)
		}
	}
	logger.Info("stopped")
	return nil
}

func registerBookingHandlers(
	cmdBus *commands.InMemoryBus,
	qryBus *queries.InMemoryBus,
	factory uow.UoWFactory,
	fees domainpricing.FeePolicy,
	cfg config.Config,
	payPort policies.PaymentsPort,
	notifier policies.NotifierPort,
	box appoutbox.Outbox,
	encoder appoutbox.EventEncoder,
) {
	commands.RegisterHandler(cmdBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory:  factory,
		Fees:        fees,
		AutoApprove: cfg.AutoApproval,
		Payments:    payPort,
		Notifier:    notifier,
		Outbox:      box,
		Encoder:     encoder,
	})
	commands.RegisterHandler(cmdBus, bookingapp.ApproveBookingCommand{}.Key(), &bookingapp.ApproveBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
		Notifier:   notifier,
	})
	commands.RegisterHandler(cmdBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory:         factory,
		Payments:           payPort,
		CancellationWindow: cfg.CancellationWindow,
		Outbox:             box,
		Encoder:            encoder,
		Notifier:           notifier,
	})
	commands.RegisterHandler(cmdBus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(cmdBus, bookingapp.PaymentConfirmedCommand{}.Key(), &bookingapp.PaymentConfirmedHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})

	queries.RegisterHandler(qryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: factory})
	queries.RegisterHandler(qryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{UoWFactory: factory})
}

func registerListingHandlers(
	cmdBus *commands.InMemoryBus,
	qryBus *queries.InMemoryBus,
	factory uow.UoWFactory,
	fees domainpricing.FeePolicy,
	box appoutbox.Outbox,
	encoder appoutbox.EventEncoder,
) {
	commands.RegisterHandler(cmdBus, listingsapp.CreateListingCommand{}.Key(), &listingsapp.CreateListingHandler{
		UoWFactory: factory, Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(cmdBus, listingsapp.UpdateListingCommand{}.Key(), &listingsapp.UpdateListingHandler{
		UoWFactory: factory, Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(cmdBus, listingsapp.SubmitListingCommand{}.Key(), &listingsapp.SubmitListingHandler{
		UoWFactory: factory, Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(cmdBus, listingsapp.AddPhotoCommand{}.Key(), &listingsapp.AddPhotoHandler{
		UoWFactory: factory, Outbox: box, Encoder: encoder,
	})

	review := &listingsapp.ReviewListingHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler(cmdBus, listingsapp.ApproveListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.ApproveListingCommand, *dto.ListingView](review.HandleApprove))
	commands.RegisterHandler(cmdBus, listingsapp.RejectListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.RejectListingCommand, *dto.ListingView](review.HandleReject))
	commands.RegisterHandler(cmdBus, listingsapp.SuspendListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.SuspendListingCommand, *dto.ListingView](review.HandleSuspend))

	queries.RegisterHandler(qryBus, listingsapp.SearchCatalogQuery{}.Key(), &listingsapp.SearchCatalogHandler{UoWFactory: factory})
	queries.RegisterHandler(qryBus, listingsapp.GetListingQuery{}.Key(), &listingsapp.GetListingHandler{UoWFactory: factory})
	queries.RegisterHandler(qryBus, listingsapp.QuoteStayQuery{}.Key(), &listingsapp.QuoteStayHandler{UoWFactory: factory, Fees: fees})
	queries.RegisterHandler(qryBus, listingsapp.HostListingsQuery{}.Key(), &listingsapp.HostListingsHandler{UoWFactory: factory})
	queries.RegisterHandler(qryBus, listingsapp.ReviewQueueQuery{}.Key(), &listingsapp.ReviewQueueHandler{UoWFactory: factory})
}

func registerAvailabilityHandlers(
	cmdBus *commands.InMemoryBus,
	qryBus *queries.InMemoryBus,
	factory uow.UoWFactory,
	box appoutbox.Outbox,
	encoder appoutbox.EventEncoder,
) {
	commands.RegisterHandler(cmdBus, availabilityapp.SetAvailabilityCommand{}.Key(), &availabilityapp.SetAvailabilityHandler{
		UoWFactory: factory, Outbox: box, Encoder: encoder,
	})
	queries.RegisterHandler(qryBus, availabilityapp.GetMonthQuery{}.Key(), &availabilityapp.GetMonthHandler{UoWFactory: factory})
}
