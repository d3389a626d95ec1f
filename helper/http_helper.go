package helper

import (
	"errors"
	"net/http"
	"strconv"

	"journal-desk/client"
	"journal-desk/models"

	"github.com/gin-gonic/gin"
)

const (
	textError             = `error`
	textOk                = `ok`
	codeSuccess           = 200
	codeBadRequestError   = 400
	codeUnauthorizedError = 401
	codeForbiddenError    = 403
	codeNotFound          = 404
	codeConflict          = 409
	codePayloadTooLarge   = 413
	codeValidationError   = 422
	codeUpstreamError     = 502

	// LoginPath is where the front end sends a user whose session ended.
	LoginPath = "/login"
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  string
	Data     interface{}
	Code     int // also used as the http status
	CodeType string
}

// HTTPHelper ...
type HTTPHelper struct{}

// GetStatusCode maps a desk error to the status sent to the front end.
// Backend client errors keep their status; anything else from the backend
// is a bad gateway.
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var verr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSubmissionInFlight), errors.Is(err, models.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, models.ErrPublishedIssue), errors.Is(err, models.ErrFieldSelfParent), errors.Is(err, models.ErrNothingToSubmit):
		return http.StatusBadRequest
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	}

	if status := client.StatusCode(err); status >= 400 && status < 500 {
		return status
	}
	var opErr *models.OpError
	var upErr *models.UploadError
	if errors.As(err, &opErr) || errors.As(err, &upErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string) error {
	res := u.SetResponse(c, textError, message, data, code, codeType)

	return u.SendResponse(res)
}

// SendErrorFor sends err with the status GetStatusCode picks for it. The
// message is the store's user-facing text when there is one.
func (u *HTTPHelper) SendErrorFor(c *gin.Context, err error, data interface{}) error {
	code := u.GetStatusCode(err)
	message := err.Error()
	var opErr *models.OpError
	if errors.As(err, &opErr) {
		message = opErr.Message
	} else if code >= 500 {
		message = http.StatusText(code)
	}
	return u.SendError(c, message, data, code, codeTypeFor(code))
}

func codeTypeFor(code int) string {
	switch code {
	case codeBadRequestError:
		return `badRequest`
	case codeUnauthorizedError:
		return `unAuthorized`
	case codeForbiddenError:
		return `forbidden`
	case codeNotFound:
		return `notFound`
	case codeConflict:
		return `conflict`
	case codePayloadTooLarge:
		return `payloadTooLarge`
	case codeValidationError:
		return `validationError`
	case codeUpstreamError:
		return `upstreamError`
	}
	return `internalError`
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textError, message, data, codeBadRequestError, `badRequest`)

	return u.SendResponse(res)
}

// SendValidationError ...
// Send per-field messages keyed the way the form names its inputs.
func (u *HTTPHelper) SendValidationError(c *gin.Context, fields *models.FieldErrors) error {
	message := "validation failed"
	if key := fields.First(); key != "" {
		message = fields.Get(key)
	}

	c.JSON(codeValidationError, map[string]interface{}{
		"code":         codeValidationError,
		"code_type":    "[Desk] validationError",
		"code_message": message,
		"data":         map[string]interface{}{"errors": fields, "focus": fields.First()},
	})
	return nil
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers. The front end follows redirect.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) error {
	return u.SendError(c, message, map[string]interface{}{"redirect": LoginPath}, codeUnauthorizedError, `unAuthorized`)
}

// SendForbiddenError ...
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string) error {
	return u.SendError(c, message, u.EmptyJsonMap(), codeForbiddenError, `forbidden`)
}

// SendPayloadTooLargeError ...
func (u *HTTPHelper) SendPayloadTooLargeError(c *gin.Context, message string) error {
	return u.SendError(c, message, u.EmptyJsonMap(), codePayloadTooLarge, `payloadTooLarge`)
}

// SendNotFoundError ...
// Send not found response to consumers.
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeNotFound, `notFound`)
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`)

	return u.SendResponse(res)
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	resCode := res.Code
	if resCode < 100 || resCode > 599 {
		resCode = http.StatusBadRequest
	}

	res.C.JSON(resCode, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// get pagination URL
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, limit int) string {
	r := c.Request
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return scheme + "://" + r.Host + r.URL.Path + "?" + q.Encode()
}

// GeneratePaging renders the backend's pagination with navigation links.
func (u *HTTPHelper) GeneratePaging(c *gin.Context, p models.Pagination) map[string]interface{} {
	page, limit, totalPages := p.Page, p.Limit, p.Pages
	if limit <= 0 {
		limit = 10
	}
	if totalPages == 0 && p.Total > 0 {
		totalPages = (p.Total + limit - 1) / limit
	}

	prevURL, nextURL, firstURL, lastURL := "", "", "", ""

	if totalPages >= page && page > 1 {
		prevURL = u.GetPagingUrl(c, page-1, limit)
		firstURL = u.GetPagingUrl(c, 1, limit)
	}

	if totalPages > page {
		nextURL = u.GetPagingUrl(c, page+1, limit)
	}

	if totalPages >= page && totalPages != page {
		lastURL = u.GetPagingUrl(c, totalPages, limit)
	}

	links := map[string]interface{}{
		"previous": prevURL,
		"next":     nextURL,
		"first":    firstURL,
		"last":     lastURL,
	}

	return map[string]interface{}{
		"total_records": p.Total,
		"per_page":      limit,
		"current_page":  page,
		"total_pages":   totalPages,
		"links":         links,
	}
}
