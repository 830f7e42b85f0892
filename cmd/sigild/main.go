package main

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/openclave/sigil/adapters/events"
	"github.com/openclave/sigil/adapters/ledger"
	"github.com/openclave/sigil/adapters/store"
	"github.com/openclave/sigil/adapters/tokenizer"
	"github.com/openclave/sigil/internal/config"
	"github.com/openclave/sigil/ports"
	"github.com/openclave/sigil/service"
	"github.com/openclave/sigil/transport/http"
)

const version = "1.0.0"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.AssetID == 0 {
		log.Warn("NFT_ASSET_ID is not configured; /auth/verify will fail closed until it is set")
	}
	if cfg.SecretGenerated {
		log.Warn("JWT_SECRET not set, generated a random one; tokens will not survive a restart")
	}

	// Challenge store: Redis when reachable, in-process fallback otherwise.
	// The fallback loses cross-instance sharing but keeps single-instance
	// atomicity.
	var challengeStore ports.ChallengeStore
	var eventPub ports.EventPublisher
	storeBackend := "memory"

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pingErr := redisClient.Ping(pingCtx).Err()
	cancel()

	if pingErr != nil {
		log.WithError(pingErr).Warn("Redis unreachable, using in-process challenge store")
		challengeStore = store.NewMemoryStore()
	} else {
		challengeStore = store.NewRedisStore(redisClient)
		storeBackend = "redis"

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.WithError(err).Warn("Failed to create event publisher, login events disabled")
		} else {
			eventPub = events.NewWatermillPublisher(publisher)
		}
	}

	ownershipLedger, err := ledger.NewIndexerLedger(cfg.IndexerURL, cfg.IndexerToken, cfg.IndexerTimeout)
	if err != nil {
		log.Fatalf("Failed to create indexer client: %v", err)
	}

	jwtTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret))

	authService := service.NewAuthService(challengeStore, ownershipLedger, jwtTokenizer, eventPub, log, service.Config{
		AssetID:          cfg.AssetID,
		Domain:           cfg.Domain,
		ChallengeTTL:     cfg.ChallengeTTL,
		TokenTTL:         cfg.TokenTTL,
		RecheckOwnership: cfg.RecheckOwnership,
	})

	router := http.SetupRouter(authService, http.ServiceInfo{
		Name:         "NFT API Access Control",
		Version:      version,
		StoreBackend: storeBackend,
		IndexerURL:   cfg.IndexerURL,
	})

	log.WithFields(logrus.Fields{
		"listen_addr":     cfg.ListenAddr,
		"indexer":         cfg.IndexerURL,
		"nft_asset_id":    cfg.AssetID,
		"challenge_store": storeBackend,
	}).Info("starting server")

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
