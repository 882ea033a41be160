package codeserver

import (
	"bufio"
	"context"
	"time"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/telemetry/logger"
	"github.com/yndnr/discountd/internal/telemetry/metric"
)

// CodeService is the business layer the server dispatches to.
type CodeService interface {
	GenerateCode(count uint16, length uint8) bool
	UseCode(code string) domain.UseResult
}

// RequestHandler dispatches decoded requests to a CodeService.
type RequestHandler struct {
	svc     CodeService
	metrics *metric.Registry
}

// NewRequestHandler creates a request handler.
func NewRequestHandler(svc CodeService, metrics *metric.Registry) *RequestHandler {
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	return &RequestHandler{svc: svc, metrics: metrics}
}

// Handle executes req and buffers the response in w.
// It reports whether a response was written; unknown opcodes get none.
func (h *RequestHandler) Handle(ctx context.Context, w *bufio.Writer, req *Request) (bool, error) {
	start := time.Now()

	switch req.Op {
	case OpGenerate:
		ok := h.svc.GenerateCode(req.Count, req.Length)
		h.metrics.RequestDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
		logger.L(ctx).Debug("generate handled",
			"count", req.Count,
			"length", req.Length,
			"ok", ok)
		return true, WriteGenerateResponse(w, ok)

	case OpUse:
		result := h.svc.UseCode(req.Code)
		h.metrics.RequestDuration.WithLabelValues("use").Observe(time.Since(start).Seconds())
		logger.L(ctx).Debug("use handled",
			logger.CodeKey, req.Code,
			"result", result.String())
		return true, WriteUseResponse(w, result)

	default:
		h.metrics.UnknownOpcodes.Inc()
		logger.L(ctx).Warn("not implemented opcode", "opcode", req.Op)
		return false, nil
	}
}
