package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	bindfiles "github.com/protocaas/protocaas/pkg/api-types-binding/files"
	apifiles "github.com/protocaas/protocaas/pkg/api/types/files"
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/utils"
)

func FindFilesHandler(engine *lifecycle.Engine, paramProjectId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		files, err := engine.FindFiles(c.Request().Context(), auth.UserIdOf(c), c.Param(paramProjectId))
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apifiles.GetFilesResponse{
			Files:   utils.Map(files, bindfiles.Compose),
			Success: true,
		})
	}
}

// GetFileHandler responds the file whose name is the wildcard of the route.
func GetFileHandler(engine *lifecycle.Engine, paramProjectId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		fileName, err := wildcard(c)
		if err != nil {
			return err
		}
		f, err := engine.GetFile(c.Request().Context(), auth.UserIdOf(c), c.Param(paramProjectId), fileName)
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apifiles.GetFileResponse{File: bindfiles.Compose(f), Success: true})
	}
}

// PutFileHandler puts the file whose name is the wildcard of the route.
func PutFileHandler(engine *lifecycle.Engine, paramProjectId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		fileName, err := wildcard(c)
		if err != nil {
			return err
		}
		body := apifiles.SetFileRequest{}
		if err := decode(c, &body); err != nil {
			return err
		}
		req, err := bindfiles.ParseSetRequest(c.Param(paramProjectId), fileName, body)
		if err != nil {
			return binderr.From(err)
		}

		fileId, err := engine.SetFile(c.Request().Context(), auth.UserIdOf(c), req)
		if err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apifiles.SetFileResponse{FileId: fileId, Success: true})
	}
}

func DeleteFileHandler(engine *lifecycle.Engine, paramProjectId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		fileName, err := wildcard(c)
		if err != nil {
			return err
		}
		if err := engine.DeleteFile(c.Request().Context(), auth.UserIdOf(c), c.Param(paramProjectId), fileName); err != nil {
			return binderr.From(err)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}
