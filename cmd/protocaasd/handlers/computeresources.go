package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindcr "github.com/protocaas/protocaas/pkg/api-types-binding/computeresources"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	bindjobs "github.com/protocaas/protocaas/pkg/api-types-binding/jobs"
	apicr "github.com/protocaas/protocaas/pkg/api/types/computeresources"
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/gateway"
	"github.com/protocaas/protocaas/pkg/utils"
)

//
// for GUI users
//

func RegisterComputeResourceHandler(gw *gateway.Gateway) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apicr.RegisterRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}
		if err := gw.Register(
			c.Request().Context(), auth.UserIdOf(c), req.ComputeResourceId, req.ResourceCode, req.Name,
		); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}

func GetComputeResourceHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cr, err := gw.Get(c.Request().Context(), auth.UserIdOf(c), c.Param(paramComputeResourceId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apicr.GetComputeResourceResponse{
			ComputeResource: bindcr.Compose(cr),
			Success:         true,
		})
	}
}

func JobsForOwnerHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobs, err := gw.JobsForOwner(c.Request().Context(), auth.UserIdOf(c), c.Param(paramComputeResourceId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.GetJobsResponse{
			Jobs:    utils.Map(jobs, bindjobs.Compose),
			Success: true,
		})
	}
}

func SetAppsHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apicr.SetAppsRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}
		if err := gw.SetApps(
			c.Request().Context(), auth.UserIdOf(c), c.Param(paramComputeResourceId),
			utils.Map(req.Apps, bindcr.ParseApp),
		); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}

//
// for compute resource daemons.
// Requests should be verified with signatures before them.
//

func UnfinishedJobsHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header
		node := gateway.Node{
			NodeId:   header.Get(auth.HeaderComputeResourceNodeId),
			NodeName: header.Get(auth.HeaderComputeResourceNodeName),
		}
		jobs, err := gw.UnfinishedJobs(c.Request().Context(), c.Param(paramComputeResourceId), node)
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.GetJobsResponse{
			Jobs:    utils.Map(jobs, bindjobs.Compose),
			Success: true,
		})
	}
}

func AppsHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		apps, err := gw.Apps(c.Request().Context(), c.Param(paramComputeResourceId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apicr.GetAppsResponse{
			Apps:    utils.Map(apps, bindcr.ComposeApp),
			Success: true,
		})
	}
}

func SubscriptionHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		sub, err := gw.Subscription(c.Request().Context(), c.Param(paramComputeResourceId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apicr.GetSubscriptionResponse{
			Subscription: bindcr.ComposeSubscription(sub),
			Success:      true,
		})
	}
}

func SetSpecHandler(gw *gateway.Gateway, paramComputeResourceId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apicr.SetSpecRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}
		if err := gw.SetSpec(
			c.Request().Context(), c.Param(paramComputeResourceId), bindcr.ParseSpec(req.Spec),
		); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}
