package rest

import (
	"bytes"
	"encoding/json"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	domainRelease "github.com/releaserr/releaserr/domains/release"
	"github.com/releaserr/releaserr/pkg/security"
	"github.com/releaserr/releaserr/pkg/utils"
)

type Release struct {
	Service  domainRelease.IReleaseUsecase
	Template *template.Template
	Version  string
}

func InitRestRelease(app fiber.Router, api fiber.Router, service domainRelease.IReleaseUsecase, tmpl *template.Template, version string) Release {
	rest := Release{Service: service, Template: tmpl, Version: version}
	app.Get("/", rest.Index)
	api.Get("/releases", rest.List)
	api.Post("/refresh", rest.Refresh)

	return rest
}

type indexData struct {
	ReleasesJSON  template.JS
	CSRFToken     string
	LastUpdate    string
	LastUpdateAgo string
	Version       string
}

// Index renders the dashboard with the release list inlined, so the page
// works without a follow-up API call. A fresh CSRF token is issued per view.
func (handler *Release) Index(c *fiber.Ctx) error {
	releases := handler.Service.Releases(c.UserContext())
	releasesJSON, err := json.Marshal(releases)
	utils.PanicIfNeeded(err)

	data := indexData{
		ReleasesJSON: template.JS(releasesJSON),
		CSRFToken:    security.GenerateCSRFToken(),
		Version:      handler.Version,
	}
	if lastUpdate := handler.Service.LastUpdate(c.UserContext()); !lastUpdate.IsZero() {
		data.LastUpdate = lastUpdate.UTC().Format(time.RFC3339)
		data.LastUpdateAgo = humanize.Time(lastUpdate)
	}

	var buf bytes.Buffer
	utils.PanicIfNeeded(handler.Template.Execute(&buf, data))

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (handler *Release) List(c *fiber.Ctx) error {
	releases := handler.Service.Releases(c.UserContext())

	results := fiber.Map{"releases": releases}
	if lastUpdate := handler.Service.LastUpdate(c.UserContext()); !lastUpdate.IsZero() {
		results["last_update"] = lastUpdate.UTC().Format(time.RFC3339)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Releases retrieved",
		Results: results,
	})
}

func (handler *Release) Refresh(c *fiber.Ctx) error {
	err := handler.Service.Refresh(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Releases refreshed successfully",
		Results: fiber.Map{"count": len(handler.Service.Releases(c.UserContext()))},
	})
}
