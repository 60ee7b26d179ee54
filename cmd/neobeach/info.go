package main

import (
	"log/slog"
	"net/http"

	"github.com/neobeach/core/internal/config"
	"github.com/neobeach/core/internal/response"
	"github.com/neobeach/core/internal/routing"
	"github.com/neobeach/core/internal/status"
)

type info struct {
	Name        string `json:"name" xml:"name"`
	Version     string `json:"version" xml:"version"`
	Engine      string `json:"engine" xml:"engine"`
	Environment string `json:"environment" xml:"environment"`
}

// infoRouter serves the application identity under /api/info.
func infoRouter(cfg *config.Config, logger *slog.Logger) *routing.Router {
	body := info{
		Name:        cfg.App.Name,
		Version:     cfg.App.Version,
		Engine:      config.EngineName + " " + config.EngineVersion,
		Environment: cfg.App.Environment,
	}

	c, err := routing.NewController("info", logger)
	if err != nil {
		panic(err)
	}
	must(c.Get("/", func(res *response.Response, r *http.Request) error {
		return res.JSON(status.Success, body)
	}))
	must(c.Get("/xml", func(res *response.Response, r *http.Request) error {
		res.XML(body)
		return nil
	}))
	must(c.Head("/", func(res *response.Response, r *http.Request) error {
		res.Status(http.StatusOK)
		return nil
	}))

	router, err := routing.NewRouter("api", logger)
	if err != nil {
		panic(err)
	}
	must(router.Add("/api/info", c))
	return router
}

// must panics on a route declaration error. Declarations are static, so an
// error is a programming mistake.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
