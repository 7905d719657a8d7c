package main

import (
	"log"
	"os"
	"strings"

	"biolink_back/proxy"
	"biolink_back/siteconfig"
	"biolink_back/views"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func mustLoadEnv() {
	_ = godotenv.Load()
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "X-Visitor-Id", "X-Admin-Password"}

	origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	if origins == "" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, origin := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, trimmed)
		}
	}
	return cfg
}

func main() {
	mustLoadEnv()

	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	if _, err := siteconfig.RegisterRoutes(r); err != nil {
		log.Fatalf("register config routes: %v", err)
	}
	if _, err := views.RegisterRoutes(r); err != nil {
		log.Fatalf("register view counter routes: %v", err)
	}
	proxy.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("start server: %v", err)
	}
}
