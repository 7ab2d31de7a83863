package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
)

type APIError struct {
	Code   utils.Code `json:"code"`
	Detail string     `json:"detail"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:   ae.Code,
			Detail: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:   utils.CodeInternal,
		Detail: http.StatusText(status),
	})
}
