package server

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"projectmanager/internal/domain/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// gzipBody closes both the gzip reader and the underlying request body.
type gzipBody struct {
	io.Reader
	gzipReader io.Closer
	bodyCloser io.Closer
}

func (b *gzipBody) Close() error {
	var gzErr, bodyErr error
	if b.gzipReader != nil {
		gzErr = b.gzipReader.Close()
	}
	if b.bodyCloser != nil {
		bodyErr = b.bodyCloser.Close()
	}
	if gzErr != nil {
		return gzErr
	}
	return bodyErr
}

// GzipRequestDecompress transparently inflates request bodies sent with
// Content-Encoding: gzip. A body that is not valid gzip is rejected.
func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		encoding := strings.ToLower(ctx.GetHeader("Content-Encoding"))
		if !strings.Contains(encoding, "gzip") || ctx.Request.Body == nil {
			ctx.Next()
			return
		}

		gr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			abortWithError(ctx, errors.ErrInvalidGzipRequest)
			return
		}

		ctx.Request.Body = &gzipBody{
			Reader:     gr,
			gzipReader: gr,
			bodyCloser: ctx.Request.Body,
		}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1

		ctx.Next()
	}
}

// RequestLogger assigns a request id and writes one structured line per
// request once the handler chain has finished.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Header(requestIDHeader, requestID)
		ctx.Set(requestIDKey, requestID)

		ctx.Next()

		status := ctx.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if last := ctx.Errors.Last(); last != nil {
			event = event.Err(last.Err)
		}

		event.
			Str("request_id", requestID).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", ctx.ClientIP()).
			Msg("request")
	}
}

// Recovery turns a panic in a handler into a 500 carrying the panic message.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, recovered any) {
		msg := fmt.Sprint(recovered)
		log.Error().Str("panic", msg).Str("path", ctx.Request.URL.Path).Msg("recovered from panic")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: msg})
	})
}
