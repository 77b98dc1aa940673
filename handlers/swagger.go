package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-resources/internal/config"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/handler"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the resource service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> OpenAPI JSON generated from the configured routes
func RegisterSwagger(rg gin.IRouter, cfg config.ResourcesConfig) {
	doc := openAPI(ResourceRoutes(cfg))

	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})
}

var ginParam = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

var summaries = map[handler.Action]string{
	handler.ActionIndex:  "List all documents",
	handler.ActionShow:   "Get one document (null when absent)",
	handler.ActionPost:   "Create a document; sets createdAt, updatedAt=null",
	handler.ActionPut:    "Merge fields into a document; refreshes updatedAt",
	handler.ActionDelete: "Delete a document; true when one was removed",
	handler.ActionSearch: "Documents where key equals value (value coerced to bool/number/string)",
	handler.ActionJoin:   "Document with matching member documents attached",
	handler.ActionMember: "Member documents referencing the document",
}

func openAPI(routes []Route) gin.H {
	paths := gin.H{}
	for _, rt := range routes {
		p := ginParam.ReplaceAllString(rt.Path, "{$1}")
		item, ok := paths[p].(gin.H)
		if !ok {
			item = gin.H{}
			paths[p] = item
		}
		op := gin.H{
			"summary": summaries[rt.Action],
			"tags":    []string{rt.Collection},
			"responses": gin.H{
				"200": gin.H{"description": "ok"},
				"500": gin.H{"description": "store error"},
			},
		}
		var params []gin.H
		for _, m := range ginParam.FindAllStringSubmatch(rt.Path, -1) {
			params = append(params, gin.H{"name": m[1], "in": "path", "required": true, "schema": gin.H{"type": "string"}})
		}
		if len(params) > 0 {
			op["parameters"] = params
		}
		if rt.Action == handler.ActionPost || rt.Action == handler.ActionPut {
			op["requestBody"] = gin.H{"content": gin.H{"application/json": gin.H{"schema": gin.H{"type": "object"}}}}
			op["responses"].(gin.H)["400"] = gin.H{"description": "body is not a JSON object"}
		}
		item[strings.ToLower(rt.Method)] = op
	}
	paths["/health"] = gin.H{"get": gin.H{"summary": "Liveness check", "responses": gin.H{"200": gin.H{"description": "healthy"}}}}
	paths["/ready"] = gin.H{"get": gin.H{"summary": "Readiness check", "responses": gin.H{"200": gin.H{"description": "ready"}, "503": gin.H{"description": "not ready"}}}}
	return gin.H{
		"openapi": "3.0.0",
		"info":    gin.H{"title": "gogotex-resources", "version": "v0.1.0"},
		"paths":   paths,
	}
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>gogotex-resources — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`
