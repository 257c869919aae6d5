package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	bindjobs "github.com/protocaas/protocaas/pkg/api-types-binding/jobs"
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/lifecycle"
)

// Handlers in this file are for job processes.
// Requests should be authenticated with the private key of the job before them.

func ProcessorJobHandler(engine *lifecycle.Engine, paramJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := engine.ProcessorJob(c.Request().Context(), c.Param(paramJobId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.GetJobResponse{Job: bindjobs.Compose(job), Success: true})
	}
}

func SetStatusHandler(engine *lifecycle.Engine, paramJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apijobs.SetStatusRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}
		update, err := bindjobs.ParseStatusRequest(req)
		if err != nil {
			return binderr.From(err)
		}
		if err := engine.SetStatus(c.Request().Context(), c.Param(paramJobId), update); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}

func SetConsoleOutputHandler(engine *lifecycle.Engine, paramJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apijobs.SetConsoleOutputRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}
		if err := engine.SetConsoleOutput(c.Request().Context(), c.Param(paramJobId), req.ConsoleOutput); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}

func UploadURLHandler(engine *lifecycle.Engine, paramJobId string, paramOutputName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := engine.UploadURL(c.Request().Context(), c.Param(paramJobId), c.Param(paramOutputName))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.UploadURLResponse{UploadURL: u, Success: true})
	}
}
