package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/convsearch/retrieval-eval/internal/api/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/search").
			To(handler.Search).
			Doc("Search the passage collection").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Reads(SearchRequest{}).
			Writes(SearchResponse{}).
			Returns(200, "OK", SearchResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Search Backend Unavailable", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/evaluate").
			To(handler.Evaluate).
			Doc("Score retrieval quality for a query against gold passages").
			Metadata(restfulspec.KeyOpenAPITags, []string{"evaluate"}).
			Reads(EvaluateRequest{}).
			Writes(EvaluateResponse{}).
			Returns(200, "OK", EvaluateResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Search Backend Unavailable", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/respond").
			To(handler.Respond).
			Doc("Generate a response from retrieved passages").
			Metadata(restfulspec.KeyOpenAPITags, []string{"respond"}).
			Reads(RespondRequest{}).
			Writes(RespondResponse{}).
			Returns(200, "OK", RespondResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Model Unavailable", middleware.ErrorResponse{}))

	container.Add(ws)
}
