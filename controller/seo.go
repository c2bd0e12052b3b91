package controller

import (
	"encoding/xml"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const seoCacheControl = "public, max-age=300"

type ISeoController interface {
	Robots(c *fiber.Ctx) error
	Sitemap(c *fiber.Ctx) error
}

type SeoController struct {
	baseURL string
}

func NewSeoController(baseURL string) ISeoController {
	return &SeoController{baseURL: baseURL}
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (sc *SeoController) Robots(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, seoCacheControl)
	return c.SendString(fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml", baseURL(c, sc.baseURL)))
}

func (sc *SeoController) Sitemap(c *fiber.Ctx) error {
	domain := baseURL(c, sc.baseURL)
	body, err := xml.MarshalIndent(urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: domain + "/"},
			{Loc: domain + "/login"},
		},
	}, "", "  ")
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, seoCacheControl)
	c.Type("xml")
	return c.Send(append([]byte(xml.Header), body...))
}
