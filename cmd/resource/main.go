package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-resources/handlers"
	"github.com/gogotex/gogotex/backend/go-resources/internal/config"
	"github.com/gogotex/gogotex/backend/go-resources/internal/database"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/repository"
	"github.com/gogotex/gogotex/backend/go-resources/pkg/logger"
)

// Minimal resource service: one collection set, no auth, no rate limiting.
// Falls back to the in-memory store when MongoDB is unreachable.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("RESOURCE_SERVICE_PORT")
	if port == "" {
		port = "5021"
	}
	collections := config.SplitList(envOr("RESOURCE_COLLECTIONS", "items,parts"))
	joins, err := config.ParseJoins(envOr("RESOURCE_JOINS", "items:parts:itemId"))
	if err != nil {
		logger.Fatalf("%v", err)
	}
	res := config.ResourcesConfig{Collections: collections, Joins: joins}

	r := gin.New()
	r.Use(gin.Recovery())

	var store repository.Store = repository.NewMemoryStore(collections...)
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		client, err := database.ConnectMongo(context.Background(), uri, 10*time.Second)
		if err != nil {
			logger.Warnf("cannot connect to MongoDB (%v), using memory store", err)
		} else {
			store = repository.NewMongoStore(client.Database(envOr("MONGODB_DATABASE", "gogotex")))
		}
	}

	if err := handlers.RegisterResourceRoutes(r, store, res, nil); err != nil {
		logger.Fatalf("%v", err)
	}

	logger.Infof("go-resource service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("%v", err)
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
