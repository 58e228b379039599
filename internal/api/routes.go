package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/roarlabs/clubgpt/internal/api/middleware"
	"github.com/roarlabs/clubgpt/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/ask").
			To(handler.Ask).
			Doc("Answer a natural-language question about the club's match data").
			Metadata(restfulspec.KeyOpenAPITags, []string{"ask"}).
			Reads(AskRequest{}).
			Writes(models.AnswerResult{}).
			Returns(200, "OK", models.AnswerResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(413, "Prompt Too Large", middleware.ErrorResponse{}).
			Returns(503, "Generation Unavailable", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/matches").
			To(handler.Matches).
			Doc("List loaded match records").
			Metadata(restfulspec.KeyOpenAPITags, []string{"matches"}).
			Writes([]MatchSummary{}).
			Returns(200, "OK", []MatchSummary{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the generated OpenAPI document at /apidocs.json.
func RegisterOpenAPI(container *restful.Container) {
	cfg := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(cfg))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "ClubGPT API",
			Description: "Natural-language question answering over club match data",
			Version:     "1.0.0",
		},
	}
}
