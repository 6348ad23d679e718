package handler

import (
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// Response 统一响应结构
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse returns a successful response
func SuccessResponse(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusOK, Response{
		Code:    "SUCCESS",
		Message: "operation successful",
		Data:    data,
	})
}

// ErrorResponse maps a domain error to a status code and a user-safe message
func ErrorResponse(c *app.RequestContext, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		c.JSON(consts.StatusInternalServerError, Response{
			Code:    string(entity.CodeInternal),
			Message: "internal server error",
		})
		return
	}

	status := consts.StatusInternalServerError
	switch {
	case domain.IsNotFound(err):
		status = consts.StatusNotFound
	case domain.IsInvalidInput(err), domain.IsValidation(err):
		status = consts.StatusBadRequest
	case domain.IsTransport(err):
		status = consts.StatusBadGateway
	}

	message := domainErr.UserMessage()
	if status == consts.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, Response{Code: string(domainErr.Code), Message: message})
}
