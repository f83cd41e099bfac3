package handler

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed shell.html
var shellHTML string

var shellTemplate = template.Must(template.New("shell").Parse(shellHTML))

// PageHandler serves the application shell for every page route. Which pages
// a visitor may reach is decided upstream by the route-guard middleware; by
// the time this handler runs the request is allowed to render.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Shell(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return shellTemplate.Execute(c.Response(), struct{ Page string }{Page: c.Request().URL.Path})
}
