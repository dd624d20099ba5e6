// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package main

import (
	"safechild/internal/api"
	"safechild/internal/api/handlers"
	"safechild/internal/azure"
	"safechild/internal/banner"
	"safechild/internal/config"
	"safechild/internal/database"
	"safechild/internal/database/repositories"
	"safechild/internal/enrichment"
	"safechild/internal/intake"
	"safechild/internal/review"
	"safechild/internal/triage"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

func main() {
	banner.Print()

	cfg, err := config.Load()
	if err != nil {
		pterm.DefaultLogger.WithCaller().Fatal("Failed to load configuration", pterm.DefaultLogger.Args("error", err))
	}

	logger := pterm.DefaultLogger.WithLevel(logLevel(cfg.LogLevel))

	db, err := database.NewConnection(&database.Config{
		Path:         cfg.DatabasePath,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		ConnMaxLife:  cfg.ConnMaxLife,
	}, logger)
	if err != nil {
		logger.WithCaller().Fatal("Failed to open database", logger.Args("error", err))
	}

	reportRepo := repositories.NewReportRepository(db, logger)

	geocoder := enrichment.NewAzureMapsGeocoder(cfg.MapsKey, logger)
	ipLocator := enrichment.NewIPLocator(cfg.GeoIPCityDB, logger)
	defer ipLocator.Close()

	translator := azure.NewTranslatorClient(cfg.TranslatorKey, cfg.TranslatorEndpoint, cfg.TranslatorRegion, logger)
	analyzer := azure.NewTextAnalyticsClient(cfg.TextAnalyticsKey, cfg.TextAnalyticsHost, logger)

	screen := triage.NewKeywordScreen(logger)
	if cfg.PrankKeywordFile != "" {
		if err := screen.WatchFile(cfg.PrankKeywordFile); err != nil {
			logger.Warn("Keyword file watching unavailable", logger.Args("error", err))
		}
	}
	defer screen.Stop()

	blacklist := triage.NewBlacklist(reportRepo, cfg.BlacklistThreshold)

	intakeService := intake.NewService(reportRepo, geocoder, ipLocator, screen, translator, analyzer, logger)
	reviewFlow := review.NewFlow(reportRepo, blacklist, cfg.DefaultRadiusKm, logger)

	reportHandler := handlers.NewReportHandler(intakeService, reviewFlow, logger)
	dashboardHandler := handlers.NewDashboardHandler(reportRepo, blacklist, geocoder, translator, analyzer, logger)
	systemHandler := handlers.NewSystemHandler(reportRepo, logger, cfg.DatabasePath)

	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(reportHandler, dashboardHandler, systemHandler)

	logger.Info("SafeChild API listening", logger.Args("addr", cfg.ListenAddr))
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.WithCaller().Fatal("HTTP server stopped", logger.Args("error", err))
	}
}

func logLevel(level string) pterm.LogLevel {
	switch level {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}
