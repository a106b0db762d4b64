package app

import (
	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/modules/arxiv"
	"github.com/paperlab/core/internal/modules/assets"
	"github.com/paperlab/core/internal/modules/chat"
	"github.com/paperlab/core/internal/modules/ingest"
	"github.com/paperlab/core/internal/modules/paper"
	"github.com/paperlab/core/internal/modules/scholar"
	pkgredis "github.com/paperlab/core/internal/pkg/redis"
	"github.com/paperlab/core/internal/pkg/response"
)

func (a *App) registerRoutes(cache *pkgredis.Client) {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Shared services
	assetSvc := assets.NewService(db)
	paperSvc := paper.NewService(db, assetSvc)
	chatSvc := chat.NewService(db, a.cfg)
	arxivClient := arxiv.NewClient(a.cfg.Arxiv, cache, a.logger)
	scholarClient := scholar.NewClient(a.cfg.Scholar)
	orch := ingest.NewOrchestrator(a.cfg.Mineru, assetSvc, a.logger)

	paperContext := func(id uint) (string, string, error) {
		p, err := paperSvc.GetByID(id)
		if err != nil || p == nil {
			return "", "", err
		}
		text := p.Original
		if text == "" {
			text = p.Abstract
		}
		return p.Title, text, nil
	}

	api := r.Group("/api")

	r.GET("/", func(c *gin.Context) {
		response.OK(c, gin.H{
			"service": "paper-core",
			"version": "1.0.0",
		})
	})

	ingest.NewHandler(orch, paperSvc, arxivClient, a.cfg, a.logger).RegisterRoutes(api)
	paper.NewHandler(paperSvc, chatSvc).RegisterRoutes(api)
	assets.NewHandler(assetSvc).RegisterRoutes(api)
	chat.NewHandler(chatSvc, paperContext, a.logger).RegisterRoutes(api)
	arxiv.NewHandler(arxivClient).RegisterRoutes(api)
	scholar.NewHandler(scholarClient).RegisterRoutes(api)
}
