package main

import (
	"context"
	"os/signal"
	"syscall"

	"ledger-service/internal/analysis"
	"ledger-service/internal/audit"
	"ledger-service/internal/config"
	"ledger-service/internal/consumer"
	"ledger-service/internal/database"
	"ledger-service/internal/forecast"
	"ledger-service/internal/ledger"
	"ledger-service/internal/logger"
	"ledger-service/internal/monitor"
	"ledger-service/internal/notify"
	"ledger-service/internal/repository"
	"ledger-service/internal/wallet"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	// Initialize database
	db, err := database.New(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	sqlDB, _ := db.DB.DB()
	defer sqlDB.Close()

	// Initialize repositories
	expenseRepo := repository.NewExpenseRepository(db.DB, log)
	incomeRepo := repository.NewIncomeRepository(db.DB, log)
	budgetRepo := repository.NewBudgetRepository(db.DB, log)
	alertRepo := repository.NewAlertEventRepository(db.DB, log)
	allowanceRepo := repository.NewAllowanceRepository(db.DB, log)
	historyRepo := repository.NewBudgetHistoryRepository(db.DB, log)
	categoryRepo := repository.NewCategoryRepository(db.DB, log)
	auditor := audit.NewGormRecorder(db.DB, log)

	// Assemble the engine
	walletCalc := wallet.NewCalculator(expenseRepo, incomeRepo, allowanceRepo, cfg.Engine.DefaultDailyAllowance, log)
	budgetMonitor := monitor.New(budgetRepo, expenseRepo, alertRepo, log)
	predictor := forecast.NewPredictor(expenseRepo)
	analyzer := analysis.New(budgetRepo, expenseRepo, historyRepo, log)

	dispatcher, err := notify.NewAMQPDispatcher(cfg.Rabbit, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize notification publisher")
	}
	defer dispatcher.Close()

	svc := ledger.New(ledger.Deps{
		Expenses:   expenseRepo,
		Incomes:    incomeRepo,
		Budgets:    budgetRepo,
		Alerts:     alertRepo,
		Allowances: allowanceRepo,
		History:    historyRepo,
		Categories: categoryRepo,
		Wallet:     walletCalc,
		Monitor:    budgetMonitor,
		Predictor:  predictor,
		Analyzer:   analyzer,
		Dispatcher: dispatcher,
		Audit:      auditor,
		Log:        log,
		Policy:     cfg.Engine,
	})

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize and start RabbitMQ consumer
	rmqConsumer, err := consumer.New(cfg.Rabbit, cfg.Engine.EvaluateTimeout, log, svc)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize RabbitMQ consumer")
	}
	defer rmqConsumer.Close()

	// Start consuming messages
	if err := rmqConsumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("consumer stopped unexpectedly")
	}

	log.Info("graceful shutdown complete")
}
