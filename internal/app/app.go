package app

import (
	"CourseLoom/internal/app/server"
	"CourseLoom/internal/config"
	"CourseLoom/internal/delivery/http"
	"CourseLoom/internal/service"
	"CourseLoom/internal/service/auth"
	"CourseLoom/internal/service/category"
	"CourseLoom/internal/service/course"
	"CourseLoom/internal/service/file"
	"CourseLoom/internal/service/section"
	"CourseLoom/internal/storage/elastic"
	"CourseLoom/internal/storage/minio_storage"
	"CourseLoom/internal/storage/postgres"
	"CourseLoom/internal/storage/redis_cache"
	"CourseLoom/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	minioStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	blobs, err := minio_storage.NewBlobStorage(minioStorage, cfg.Minio.Bucket, cfg.Minio.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing blob bucket", err)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error creating search index", err)
	}

	cache, err := redis_cache.NewCatalogCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
	if err != nil {
		log.FatalErr("error connecting to redis", err)
	}
	defer cache.Close()

	userRepo := postgres.NewUserPostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	categoryRepo := postgres.NewCategoryPostgres(pg.Pool)
	sectionRepo := postgres.NewSectionPostgres(pg.Pool)
	fileRepo := postgres.NewFilePostgres(pg.Pool)
	subRepo := postgres.NewSubscriptionPostgres(pg.Pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "courseloom", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(log, jwtManager, userRepo, tokenRepo)
	fileService := file.NewFileService(log, blobs, fileRepo)
	courseService := course.NewCourseService(log, courseRepo, categoryRepo, fileService, searchRepo, subRepo, cache)
	categoryService := category.NewCategoryService(log, categoryRepo, courseService)
	sectionService := section.NewSectionService(log, sectionRepo, courseRepo)

	u := service.Collection{
		AuthService:     authService,
		CourseService:   courseService,
		CategoryService: categoryService,
		SectionService:  sectionService,
		FileService:     fileService,
	}

	r := http.InitRoutes(log, u)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown failed", err)
	}
}
