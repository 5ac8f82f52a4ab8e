package main

import (
	"database/sql"
	"log"
	"log/slog"

	"firebase.google.com/go/messaging"

	"cuidaBack/internal/config"
	"cuidaBack/internal/handlers"
	"cuidaBack/internal/repositories"
	"cuidaBack/internal/services"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	paymentHandler      *handlers.PaymentHandler
	libelulaHandler     *handlers.LibelulaHandler
	notificationHandler *handlers.NotificationHandler
}

func initializeApp(db *sql.DB, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	transactionRepo := repositories.NewTransactionRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Services
	gateway, err := services.NewLibelulaService(services.LibelulaConfig{
		AppKey:        cfg.Libelula.AppKey,
		BaseURL:       cfg.Libelula.BaseURL,
		PublicBaseURL: cfg.Libelula.PublicBaseURL,
		Logger:        slog.Default(),
	})
	if err != nil {
		errorLog.Fatal(err)
	}

	txIndex := services.NewTxIndex()

	var notificationService *services.NotificationService
	if fcmClient != nil {
		notificationService = &services.NotificationService{
			Client:  fcmClient,
			Tokens:  userRepo,
			InfoLog: infoLog,
		}
	}

	creditService := &services.CreditService{
		Payments: paymentRepo,
		Users:    userRepo,
		InfoLog:  infoLog,
		ErrorLog: errorLog,
	}
	if notificationService != nil {
		creditService.Notifier = notificationService
	}

	debtService := &services.DebtService{
		Gateway:      gateway,
		Transactions: transactionRepo,
		Index:        txIndex,
		InfoLog:      infoLog,
	}

	reconcileService := &services.ReconcileService{
		Transactions: transactionRepo,
		Credits:      creditService,
		Gateway:      gateway,
		Index:        txIndex,
		Verify:       services.ParseVerifyMode(cfg.Libelula.Verify),
		InfoLog:      infoLog,
		ErrorLog:     errorLog,
	}

	// Handlers
	return &application{
		errorLog:            errorLog,
		infoLog:             infoLog,
		db:                  db,
		paymentHandler:      handlers.NewPaymentHandler(debtService, errorLog),
		libelulaHandler:     handlers.NewLibelulaHandler(reconcileService, infoLog, errorLog),
		notificationHandler: handlers.NewNotificationHandler(notificationService, errorLog),
	}
}
