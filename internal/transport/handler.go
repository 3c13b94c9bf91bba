package transport

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/asl-inspector-go/internal/analyzer"
	"github.com/anime-shed/asl-inspector-go/internal/config"
	apperrors "github.com/anime-shed/asl-inspector-go/internal/errors"
	"github.com/anime-shed/asl-inspector-go/internal/logger"
	"github.com/anime-shed/asl-inspector-go/internal/observer"
	"github.com/anime-shed/asl-inspector-go/internal/service"
	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

const version = "1.0.0"

const requestIDKey = "request_id"

var uploadForm = template.Must(template.New("index").Parse(`<!doctype html>
<title>ASL G vs U Classifier</title>
<h2>Upload an ASL hand image (G or U)</h2>
<form method=post enctype=multipart/form-data action="/upload">
  <input type=file name=file>
  <input type=submit value=Upload>
</form>
`))

// Handler serves the classification API
type Handler struct {
	service service.ClassificationService
	metrics *observer.MetricsObserver
	pool    *analyzer.WorkerPool
	cfg     *config.Config
}

// NewHandler builds the gin engine. metrics and pool may be nil, in which
// case /stats omits them.
func NewHandler(svc service.ClassificationService, metrics *observer.MetricsObserver, pool *analyzer.WorkerPool, cfg *config.Config) http.Handler {
	h := &Handler{service: svc, metrics: metrics, pool: pool, cfg: cfg}

	r := gin.New()
	r.SetHTMLTemplate(uploadForm)

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/", h.index)
	r.GET("/health", healthCheck)
	r.GET("/stats", h.stats)
	r.POST("/upload", h.upload)
	r.POST("/classify/url", h.classifyURL)
	r.POST("/classify/batch", h.classifyBatch)

	return r
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index", nil)
}

// upload classifies the multipart field "file"
func (h *Handler) upload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	form, err := c.MultipartForm()
	if err != nil {
		if isBodyTooLarge(err) {
			c.Error(apperrors.NewTooLargeError("Request body too large", err))
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		// a file input submitted without a selection arrives as a plain value
		if _, ok := form.Value["file"]; ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file selected"})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
		return
	}
	fh := files[0]
	if fh.Filename == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file selected"})
		return
	}

	data, err := readUpload(fh, h.cfg.MaxRequestBodySize)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.Classify(ctx, data, service.ClassifyOptions{
		RequestID: c.GetString(requestIDKey),
		Source:    fh.Filename,
		Detailed:  wantDetailed(c, false),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toResponse(result))
}

// classifyURL fetches and classifies the image named in the JSON body
func (h *Handler) classifyURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.URLClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request format", err))
		return
	}

	logger.WithFields(logrus.Fields{
		"url":        req.URL,
		"request_id": c.GetString(requestIDKey),
	}).Debug("Fetching image")

	result, err := h.service.ClassifyURL(ctx, req.URL, service.ClassifyOptions{
		RequestID: c.GetString(requestIDKey),
		Detailed:  wantDetailed(c, req.Detailed),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toResponse(result))
}

// classifyBatch classifies every file of the multipart field "files"
func (h *Handler) classifyBatch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	form, err := c.MultipartForm()
	if err != nil {
		if isBodyTooLarge(err) {
			c.Error(apperrors.NewTooLargeError("Request body too large", err))
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No files uploaded"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No files uploaded"})
		return
	}
	if len(files) > h.cfg.MaxBatchFiles {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Too many files",
			Message: fmt.Sprintf("at most %d files per batch", h.cfg.MaxBatchFiles),
		})
		return
	}

	batchID := c.GetString(requestIDKey)
	items := make([]models.BatchItemResponse, len(files))
	var inputs []service.BatchInput
	var slots []int
	for i, fh := range files {
		items[i].Filename = fh.Filename
		data, err := readUpload(fh, h.cfg.MaxRequestBodySize)
		if err != nil {
			items[i].Error = errorBody(err)
			continue
		}
		inputs = append(inputs, service.BatchInput{Name: fh.Filename, Data: data})
		slots = append(slots, i)
	}

	outcomes := h.service.ClassifyBatch(ctx, inputs, service.ClassifyOptions{
		RequestID: batchID,
		Detailed:  wantDetailed(c, false),
	})
	for k, outcome := range outcomes {
		i := slots[k]
		if outcome.Err != nil {
			items[i].Error = errorBody(outcome.Err)
			continue
		}
		items[i].Result = toResponse(outcome.Result)
	}

	c.JSON(http.StatusOK, models.BatchResponse{
		RequestID: batchID,
		Count:     len(items),
		Items:     items,
	})
}

// stats reports classification counters and worker pool usage
func (h *Handler) stats(c *gin.Context) {
	body := gin.H{
		"backend": h.service.Backend(),
	}
	if h.metrics != nil {
		body["classifications"] = h.metrics.GetMetrics()
	}
	if h.pool != nil {
		body["worker_pool"] = h.pool.GetStats()
	}
	c.JSON(http.StatusOK, body)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// toResponse converts a service result to its JSON form. The angle is
// rounded to two decimals for display only.
func toResponse(result *models.ClassificationResult) *models.ClassificationResponse {
	resp := &models.ClassificationResponse{
		RequestID:        result.ID,
		Source:           result.Source,
		PredictedLetter:  result.Label,
		Error:            result.Reason,
		ProcessingTimeMs: int64(math.Round(result.ProcessingTimeSec * 1000)),
		Diagnostics:      result.Diagnostics,
	}
	if angle, ok := models.Degrees(result.Orientation); ok {
		rounded := math.Round(angle*100) / 100
		resp.DetectedAngle = &rounded
	}
	return resp
}

func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, apperrors.NewTooLargeError(fmt.Sprintf("file %q exceeds %d bytes", fh.Filename, limit), nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to read upload", err)
	}
	if int64(len(data)) > limit {
		return nil, apperrors.NewTooLargeError(fmt.Sprintf("file %q exceeds %d bytes", fh.Filename, limit), nil)
	}
	return data, nil
}

func wantDetailed(c *gin.Context, fallback bool) bool {
	if v := c.Query("detailed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// Middleware and helper functions
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"user_agent":         c.Request.UserAgent(),
			"request_id":         c.GetString(requestIDKey),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case isBodyTooLarge(err):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) *models.ErrorResponse {
	return &models.ErrorResponse{
		Error:   http.StatusText(determineStatusCode(err)),
		Message: errorMessage(err),
	}
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	}
	return err.Error()
}

func respondError(c *gin.Context, code int, err error) {
	// Log the error with context
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
		"request_id":  c.GetString(requestIDKey),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: errorMessage(err),
	})
}
