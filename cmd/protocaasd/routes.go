package main

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/protocaas/protocaas/cmd/protocaasd/handlers"
	"github.com/protocaas/protocaas/pkg/auth"
	kschema "github.com/protocaas/protocaas/pkg/domain/schema/db"
	"github.com/protocaas/protocaas/pkg/gateway"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/metrics"
)

// core is what routes are served by.
type core struct {
	engine  *lifecycle.Engine
	gateway *gateway.Gateway
	schema  kschema.SchemaInterface

	users            *auth.Users
	computeResources *auth.ComputeResources
	jobKeys          *auth.JobKeys

	metrics metrics.Metrics

	// gatherer of /metrics. When nil, /metrics is not served.
	gatherer prometheus.Gatherer
}

const (
	paramJobId             = "jobId"
	paramProjectId         = "projectId"
	paramComputeResourceId = "computeResourceId"
	paramOutputName        = "outputName"
)

func routes(e *echo.Echo, c core) {
	e.GET("/healthz", handlers.HealthzHandler(c.schema))
	if c.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})))
	}

	{
		gui := e.Group("/api/gui")
		signedIn := c.users.Middleware(true, c.metrics)
		anyone := c.users.Middleware(false, c.metrics)

		gui.POST("/jobs", handlers.CreateJobHandler(c.engine), signedIn)
		gui.GET("/jobs/:jobId", handlers.GetJobHandler(c.engine, paramJobId), anyone)
		gui.DELETE("/jobs/:jobId", handlers.DeleteJobHandler(c.engine, paramJobId), signedIn)

		gui.GET("/projects/:projectId/jobs", handlers.FindJobsHandler(c.engine, paramProjectId), anyone)
		gui.GET("/projects/:projectId/files", handlers.FindFilesHandler(c.engine, paramProjectId), anyone)
		gui.GET("/projects/:projectId/files/*", handlers.GetFileHandler(c.engine, paramProjectId), anyone)
		gui.PUT("/projects/:projectId/files/*", handlers.PutFileHandler(c.engine, paramProjectId), signedIn)
		gui.DELETE("/projects/:projectId/files/*", handlers.DeleteFileHandler(c.engine, paramProjectId), signedIn)

		gui.POST("/compute_resources/register", handlers.RegisterComputeResourceHandler(c.gateway), signedIn)
		gui.GET(
			"/compute_resources/:computeResourceId",
			handlers.GetComputeResourceHandler(c.gateway, paramComputeResourceId), signedIn,
		)
		gui.GET(
			"/compute_resources/:computeResourceId/jobs",
			handlers.JobsForOwnerHandler(c.gateway, paramComputeResourceId), signedIn,
		)
		gui.PUT(
			"/compute_resources/:computeResourceId/apps",
			handlers.SetAppsHandler(c.gateway, paramComputeResourceId), signedIn,
		)
	}

	{
		cr := e.Group(
			"/api/compute_resource/compute_resources/:computeResourceId",
			c.computeResources.Middleware(paramComputeResourceId, c.metrics),
		)
		cr.GET("/unfinished_jobs", handlers.UnfinishedJobsHandler(c.gateway, paramComputeResourceId))
		cr.GET("/apps", handlers.AppsHandler(c.gateway, paramComputeResourceId))
		cr.GET("/pubsub_subscription", handlers.SubscriptionHandler(c.gateway, paramComputeResourceId))
		cr.PUT("/spec", handlers.SetSpecHandler(c.gateway, paramComputeResourceId))
	}

	{
		proc := e.Group("/api/processor/jobs/:jobId", c.jobKeys.Middleware(paramJobId, c.metrics))
		proc.GET("", handlers.ProcessorJobHandler(c.engine, paramJobId))
		proc.PUT("/status", handlers.SetStatusHandler(c.engine, paramJobId))
		proc.PUT("/console_output", handlers.SetConsoleOutputHandler(c.engine, paramJobId))
		proc.GET("/outputs/:outputName/upload_url", handlers.UploadURLHandler(c.engine, paramJobId, paramOutputName))
	}
}
