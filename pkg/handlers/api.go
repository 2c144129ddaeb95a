package handlers

import (
	"net/http"

	"hugo-micropub/pkg/models"
	"hugo-micropub/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// API serves the micropub endpoint.
type API struct {
	cfg      *models.SiteConfig
	content  *services.ContentService
	media    *services.MediaStore
	registry *services.Registry
	log      *logrus.Logger
}

func NewAPI(cfg *models.SiteConfig, content *services.ContentService, media *services.MediaStore, registry *services.Registry, log *logrus.Logger) *API {
	return &API{cfg: cfg, content: content, media: media, registry: registry, log: log}
}

// Handle dispatches a mutating micropub request.
func (h *API) Handle(c *gin.Context) {
	req, err := ParseRequest(c)
	if err != nil {
		abortError(c, err)
		return
	}

	switch req.Action {
	case "create":
		photos, err := h.savePhotos(c)
		if err != nil {
			abortError(c, err)
			return
		}
		res, err := h.content.Create(services.CreateInput{
			Type:        req.Type,
			Properties:  req.Properties,
			Body:        req.Body,
			Photos:      photos,
			SyndicateTo: req.SyndicateTo,
		})
		if err != nil {
			abortError(c, err)
			return
		}
		// The client gets its 201 as soon as the file is durable and the
		// build is triggered; syndication is best effort afterwards.
		c.Header("Location", res.URL)
		c.Status(http.StatusCreated)
		go h.content.Syndicate(res)
	case "update":
		if err := h.content.Update(req.URL, req.Update); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusOK)
	case "delete":
		if err := h.content.Delete(req.URL); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusOK)
	case "undelete":
		if err := h.content.Undelete(req.URL); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusOK)
	default:
		abortError(c, services.NewError(400, "invalid_request", "Unknown action."))
	}
}

// Query answers the read side: endpoint config, syndication targets, and
// post source lookups.
func (h *API) Query(c *gin.Context) {
	switch c.Query("q") {
	case "config":
		c.JSON(http.StatusOK, gin.H{
			"media-endpoint": h.cfg.BaseURL + "micropub/media",
			"syndicate-to":   h.syndicateTargets(),
		})
	case "syndicate-to":
		c.JSON(http.StatusOK, gin.H{"syndicate-to": h.syndicateTargets()})
	case "source":
		props := c.QueryArray("properties[]")
		if len(props) == 0 {
			props = c.QueryArray("properties")
		}
		source, err := h.content.Source(c.Query("url"), props)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"properties": source})
	case "":
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte(`<p>This is a <a href="https://www.w3.org/TR/micropub/">micropub</a> endpoint.</p>`))
	default:
		abortError(c, services.NewError(400, "invalid_request", "Unknown query."))
	}
}

// Media implements the standalone media endpoint.
func (h *API) Media(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		abortError(c, services.NewError(400, "invalid_request", "No file uploaded."))
		return
	}
	stored, err := h.media.Save(file)
	if err != nil {
		abortError(c, err)
		return
	}
	c.Header("Location", stored.URL)
	c.JSON(http.StatusCreated, stored)
}

// savePhotos stores photo uploads that arrived alongside a multipart create
// and returns their public URLs.
func (h *API) savePhotos(c *gin.Context) ([]string, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}
	var urls []string
	for _, key := range []string{"photo", "photo[]"} {
		for _, header := range c.Request.MultipartForm.File[key] {
			stored, err := h.media.Save(header)
			if err != nil {
				return nil, err
			}
			urls = append(urls, stored.URL)
		}
	}
	return urls, nil
}

func (h *API) syndicateTargets() []gin.H {
	targets := make([]gin.H, 0)
	for _, uid := range h.registry.UIDs() {
		targets = append(targets, gin.H{"uid": uid, "name": uid})
	}
	return targets
}

func abortError(c *gin.Context, err error) {
	mpErr := services.AsError(err)
	c.AbortWithStatusJSON(mpErr.Status, mpErr)
}
