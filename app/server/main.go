package main

import (
	"context"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/config"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/api/handlers"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/api/middleware"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/api/routes"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/audio"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/cache"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/logger"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/providers/stt"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories"
	memoryrepo "github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories/memory"
	mongorepo "github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories/mongo"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/services"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/storage"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	cfg := config.Load()
	ctx := context.Background()

	// Stores: Mongo when configured, in-memory otherwise.
	var (
		recordings repositories.RecordingRepository
		jobs       repositories.JobRepository
	)
	if os.Getenv("MONGO_URI") != "" {
		if err := config.InitMongo(); err != nil {
			log.WithError(err).Fatal("mongodb init failed")
		}
		if err := config.EnsureMongoIndexes(); err != nil {
			log.WithError(err).Fatal("mongodb index setup failed")
		}
		db := config.MongoDatabase()
		recordings = mongorepo.NewRecordingRepo(db)
		jobs = mongorepo.NewJobRepo(db)
		log.Info("using mongodb store")
	} else {
		recordings = memoryrepo.NewRecordingRepo()
		jobs = memoryrepo.NewJobRepo()
		log.Info("using in-memory store")
	}

	// Optional Redis snapshot cache.
	var snapshots cache.Cache
	if os.Getenv("REDIS_ADDR")+os.Getenv("REDIS_URI")+os.Getenv("REDIS_URL") != "" {
		if err := config.InitRedis(); err != nil {
			log.WithError(err).Fatal("redis init failed")
		}
		snapshots = cache.NewRedisCache(config.RedisClient)
		log.Info("redis snapshot cache enabled")
	}

	// Optional GCS archival of raw uploads.
	var uploader storage.Uploader
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCSBucket)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		defer gcs.Close()
		uploader = gcs
		log.WithField("bucket", cfg.GCSBucket).Info("raw audio archival enabled")
	}

	// Speech provider behind the per-segment retry policy.
	var provider stt.Provider
	switch cfg.STTProvider {
	case "google":
		g, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.WithError(err).Fatal("google speech init failed")
		}
		provider = g
	default:
		if cfg.SarvamAPIKey == "" {
			log.Fatal("SARVAM_API_KEY is not set")
		}
		s := stt.NewSarvam(cfg.SarvamAPIKey)
		if cfg.SarvamEndpoint != "" {
			s.Endpoint = cfg.SarvamEndpoint
		}
		provider = s
	}
	defer provider.Close()

	pool := &workers.ChunkPool{
		Recordings:  recordings,
		Jobs:        jobs,
		Transcribe:  stt.NewRetrying(provider),
		Logger:      log,
		MaxInFlight: cfg.ChunkWorkers,
	}

	segmenter := &audio.Segmenter{
		Fallback: &audio.FFmpegDecoder{Binary: cfg.FFmpegBin},
	}

	svc := services.NewRecordingService(recordings, jobs, segmenter, pool, log, services.Options{
		Uploader: uploader,
		Cache:    snapshots,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Recordings: handlers.NewRecordingHandler(svc),
	})

	log.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
