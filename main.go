package main

import (
	"flag"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/cdr-extraction/client"
	"github.com/Aashish23092/cdr-extraction/config"
	"github.com/Aashish23092/cdr-extraction/extraction"
	"github.com/Aashish23092/cdr-extraction/handler"
	"github.com/Aashish23092/cdr-extraction/middleware"
	"github.com/Aashish23092/cdr-extraction/repository"
	"github.com/Aashish23092/cdr-extraction/service"
	"github.com/Aashish23092/cdr-extraction/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := middleware.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := repository.Open(cfg.Database.DSN, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	repo := repository.New(db)

	store, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	catalog, err := loadCatalog(cfg.Engine.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load heading catalog: %v", err)
	}
	engine := extraction.NewEngine(catalog,
		extraction.WithDateOrder(cfg.Engine.DateOrder),
		extraction.WithLowConfidenceThreshold(cfg.Engine.LowConfidence),
	)

	tesseractClient := client.NewTesseractClient(cfg.OCR.TesseractDataPath, cfg.OCR.Languages)
	remoteOCR := client.NewRemoteOCRClient(cfg.OCR.RemoteURL, cfg.OCR.RemoteTimeout)
	pdfProcessor := service.NewPDFProcessor()

	cdrService := service.NewCDRService(
		repo, store, pdfProcessor, tesseractClient, remoteOCR,
		engine, log, cfg.Server.MaxFileSize)
	cdrHandler := handler.NewCDRHandler(cdrService, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", cdrHandler.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/cdr/upload", cdrHandler.Upload)
		api.POST("/cdr/:id/confirm", cdrHandler.Confirm)
		api.POST("/cdr/extract-apm", cdrHandler.ExtractAPM)
		api.GET("/files", cdrHandler.ListFiles)
		api.GET("/files/:id", cdrHandler.GetFile)
		api.GET("/files/:id/download", cdrHandler.DownloadFile)
	}

	log.Infof("Starting CDR extraction service on %s", cfg.Server.Addr())
	if err := router.Run(cfg.Server.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadCatalog(path string) (*extraction.Catalog, error) {
	if path == "" {
		return extraction.DefaultCatalog(), nil
	}
	return extraction.LoadCatalogFile(path)
}
