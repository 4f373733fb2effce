package handler

import (
	"log"
	"net/http"

	"github.com/arnavshah/roster-compliance-go/pkg/app"
	"github.com/arnavshah/roster-compliance-go/pkg/config"
	"github.com/gin-gonic/gin"
)

var (
	r       http.Handler
	initErr error
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	// Serverless functions only get a writable /tmp
	if cfg.DatabaseURL == "" && cfg.DataPath == "roster.db" {
		cfg.DataPath = "/tmp/roster.db"
	}
	cfg.GinMode = gin.ReleaseMode

	a, err := app.Build(cfg, log.Default())
	if err != nil {
		initErr = err
		log.Printf("init failed: %v", err)
		return
	}
	r = a.Router
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, `{"error":"service not configured"}`, http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
