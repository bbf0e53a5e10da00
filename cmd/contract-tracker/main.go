package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/nurpe/contract-tracker/internal/auth"
	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/clock"
	"github.com/nurpe/contract-tracker/internal/config"
	"github.com/nurpe/contract-tracker/internal/db"
	"github.com/nurpe/contract-tracker/internal/excel"
	httphandler "github.com/nurpe/contract-tracker/internal/http"
	"github.com/nurpe/contract-tracker/internal/http/middleware"
	"github.com/nurpe/contract-tracker/internal/logger"
	"github.com/nurpe/contract-tracker/internal/pdf"
	"github.com/nurpe/contract-tracker/internal/portfolio"
	"github.com/nurpe/contract-tracker/internal/repository"
	"github.com/nurpe/contract-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	store := repository.NewStore(database)
	clk := clock.System{}
	engine := burn.NewEngine(clk, burn.Options{DefaultHourlyRate: cfg.Burn.DefaultHourlyRate})
	aggregator := portfolio.New(engine, log, portfolio.Options{
		MonthlyHours: cfg.Burn.MonthlyHours,
		Workers:      cfg.Portfolio.Workers,
	})

	contractService := service.NewContractService(store, engine, pdf.NewGenerator(), log, service.ContractOptions{
		StandardFTEHours: cfg.Burn.StandardFTEHours,
	})
	resourceService := service.NewResourceService(store, clk, log)
	lcatService := service.NewLCATService(store, clk, log)
	dashboardService := service.NewDashboardService(store, aggregator, excel.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, resourceService, lcatService, dashboardService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, log, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contract tracker")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
