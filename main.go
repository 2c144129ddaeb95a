package main

import (
	"hugo-micropub/pkg/config"
	"hugo-micropub/pkg/handlers"
	"hugo-micropub/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	srv := config.LoadServer()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(srv.LogLevel); err == nil {
		log.SetLevel(level)
	}

	site, err := config.LoadSite(srv.ConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load site config")
	}

	registry := services.NewRegistry()
	for uid, target := range site.Syndication {
		switch target.Kind {
		case "mastodon":
			registry.Register(uid, services.NewMastodon(target))
		default:
			log.WithFields(logrus.Fields{"target": uid, "kind": target.Kind}).
				Warn("unknown syndication kind, target skipped")
		}
	}

	paths := services.NewPathResolver(site)
	builder := services.NewBuilder(site.BuildCommand, site.SourcePath, log)
	git := services.NewGit(site.SourcePath, site.GitCheckpoint, log)
	content := services.NewContentService(site, paths, builder, git, registry, log)
	media := services.NewMediaStore(site)
	api := handlers.NewAPI(site, content, media, registry, log)

	r := gin.Default()

	micropub := r.Group("/micropub")
	micropub.Use(handlers.IndieAuth(site, log))
	{
		micropub.GET("", api.Query)
		micropub.POST("", api.Handle)
		micropub.POST("/media", api.Media)
	}

	r.Run(srv.Addr)
}
