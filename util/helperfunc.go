package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LoggerKey is the gin context key holding the request-scoped zerolog logger.
const LoggerKey = "logger"

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

var baseLogger = zerolog.Nop()

// SetBaseLogger sets the logger used when a request carries none.
func SetBaseLogger(l zerolog.Logger) {
	baseLogger = l
}

// Logger returns the request logger installed by the request-id middleware,
// or the base logger.
func Logger(c *gin.Context) *zerolog.Logger {
	if c != nil {
		if v, ok := c.Get(LoggerKey); ok {
			if l, ok := v.(*zerolog.Logger); ok && l != nil {
				return l
			}
		}
	}
	return &baseLogger
}

func errorResponse(params APIErrorParams) APIResponse {
	response := APIResponse{
		Success: false,
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	}
	if params.Err != nil {
		response.Error = params.Err.Error()
	} else {
		response.Error = params.Msg
	}
	return response
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusNotFound, errorResponse(params))
}

// CallUserError is for return error from user side
func CallUserError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusBadRequest, errorResponse(params))
}

// CallUserNotAuthorized answers 401 for a missing or invalid credential.
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(params))
}

// CallForbidden answers 403 for an authenticated caller lacking the role or ownership.
func CallForbidden(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusForbidden, errorResponse(params))
}

// CallTooManyRequests answers 429.
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(params))
}

// CallServerError logs the underlying error and answers 500 with a generic
// message; store errors never reach the client.
func CallServerError(c *gin.Context, params APIErrorParams) {
	Logger(c).Error().Err(params.Err).Str("path", c.Request.URL.Path).Msg(params.Msg)
	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Error:   "Internal server error",
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Msg: params.Msg, Data: params.Data})
}

// CallCreated answers 201 for a newly created resource.
func CallCreated(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Msg: params.Msg, Data: params.Data})
}

// NormalizeName trims surrounding whitespace and collapses internal runs of spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeEmail lower-cases and trims an email so uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
