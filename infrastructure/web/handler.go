package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	appsegment "audio-segment-downloader/application/segment"
	"audio-segment-downloader/domain/segment"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

//go:embed index.html
var indexPage []byte

// ErrorKindHeader names the failure kind on error responses
const ErrorKindHeader = "X-Error-Kind"

// errBusy is the message returned when every pipeline slot is taken
const errBusy = "Server busy, try again later"

// Producer runs one fetch-and-trim pipeline
type Producer interface {
	Produce(ctx context.Context, input appsegment.Input) (*appsegment.Result, error)
}

// Handler serves the form and the download endpoint
type Handler struct {
	producer    Producer
	pool        *ants.Pool
	outputDir   string
	keepOutputs bool
	log         zerolog.Logger
}

// HandlerOption is a functional option for configuring Handler
type HandlerOption func(*Handler)

// WithPool runs pipelines on pool instead of the request goroutine
func WithPool(pool *ants.Pool) HandlerOption {
	return func(h *Handler) {
		h.pool = pool
	}
}

// WithKeepOutputs controls whether served files are left on disk
func WithKeepOutputs(keep bool) HandlerOption {
	return func(h *Handler) {
		h.keepOutputs = keep
	}
}

// WithHandlerLogger sets the logger
func WithHandlerLogger(log zerolog.Logger) HandlerOption {
	return func(h *Handler) {
		h.log = log
	}
}

// NewHandler creates a Handler writing outputs under outputDir/<request-id>/
func NewHandler(producer Producer, outputDir string, opts ...HandlerOption) *Handler {
	h := &Handler{
		producer:    producer,
		outputDir:   outputDir,
		keepOutputs: true,
		log:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// NewPipelinePool creates a non-blocking pool that caps concurrent pipelines at size
func NewPipelinePool(size int) (*ants.Pool, error) {
	return ants.NewPool(size, ants.WithNonblocking(true))
}

// RegisterRoutes registers the form, download and health routes
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.index)
	router.GET("/download", h.download)
	router.GET("/healthz", h.health)
}

type downloadQuery struct {
	URL   string `form:"url" binding:"required"`
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) download(c *gin.Context) {
	var q downloadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.log.Debug().Strs("missing", missingFields(verrs)).Msg("download request rejected")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": segment.ErrMissingParameters.Error()})
		return
	}

	requestID := RequestID(c)
	outputPath := filepath.Join(h.outputDir, requestID, segment.DefaultOutputName)

	result, err := h.run(c.Request.Context(), appsegment.Input{
		SourceURL:  q.URL,
		StartTime:  q.Start,
		EndTime:    q.End,
		OutputPath: outputPath,
		RunID:      requestID,
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errBusy})
		return
	}
	if err != nil {
		kind := segment.KindOf(err)
		if kind != segment.KindUnknown {
			c.Header(ErrorKindHeader, kind.String())
		}
		_ = c.Error(err)
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.FileAttachment(result.OutputPath, segment.DefaultOutputName)

	if !h.keepOutputs {
		if err := os.RemoveAll(filepath.Dir(result.OutputPath)); err != nil {
			h.log.Warn().Err(err).Str("output", result.OutputPath).Msg("failed to remove served output")
		}
	}
}

type outcome struct {
	result *appsegment.Result
	err    error
}

// run executes the pipeline on the pool when one is configured. A full pool
// yields ants.ErrPoolOverload rather than waiting.
func (h *Handler) run(ctx context.Context, input appsegment.Input) (*appsegment.Result, error) {
	if h.pool == nil {
		return h.producer.Produce(ctx, input)
	}

	done := make(chan outcome, 1)
	err := h.pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("pipeline panic: %v", p)}
			}
		}()
		res, err := h.producer.Produce(ctx, input)
		done <- outcome{result: res, err: err}
	})
	if err != nil {
		return nil, err
	}

	o := <-done
	return o.result, o.err
}

// StatusFor maps a pipeline error to its HTTP status
func StatusFor(err error) int {
	switch segment.KindOf(err) {
	case segment.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func missingFields(verrs validator.ValidationErrors) []string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
