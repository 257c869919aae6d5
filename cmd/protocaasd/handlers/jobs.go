package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	bindjobs "github.com/protocaas/protocaas/pkg/api-types-binding/jobs"
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/utils"
)

func CreateJobHandler(engine *lifecycle.Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apijobs.CreateJobRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}

		jobId, err := engine.Create(c.Request().Context(), auth.UserIdOf(c), bindjobs.ParseCreateRequest(req))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.CreateJobResponse{JobId: jobId, Success: true})
	}
}

func GetJobHandler(engine *lifecycle.Engine, paramJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := engine.GetJob(c.Request().Context(), auth.UserIdOf(c), c.Param(paramJobId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.GetJobResponse{Job: bindjobs.Compose(job), Success: true})
	}
}

func DeleteJobHandler(engine *lifecycle.Engine, paramJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := engine.DeleteJob(c.Request().Context(), auth.UserIdOf(c), c.Param(paramJobId)); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}

func FindJobsHandler(engine *lifecycle.Engine, paramProjectId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobs, err := engine.FindJobs(c.Request().Context(), auth.UserIdOf(c), c.Param(paramProjectId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.GetJobsResponse{
			Jobs:    utils.Map(jobs, bindjobs.Compose),
			Success: true,
		})
	}
}
