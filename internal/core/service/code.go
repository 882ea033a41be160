package service

import (
	"log/slog"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/telemetry/metric"
)

// DefaultMaxAttempts is the default per-code attempt budget for generation.
const DefaultMaxAttempts = 1000

// CodeRepository defines the storage interface for code operations.
type CodeRepository interface {
	// Insert adds code as unused. It returns false if the code already exists.
	Insert(code string) bool

	// Redeem atomically flips code from unused to used.
	Redeem(code string) domain.UseResult

	// MarkDirty requests a snapshot write. It must not block.
	MarkDirty()
}

// CodeServiceConfig holds configuration for CodeService.
type CodeServiceConfig struct {
	// MaxAttempts bounds random draws per code before a generate call gives up.
	MaxAttempts int

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// DefaultCodeServiceConfig returns default configuration.
func DefaultCodeServiceConfig() *CodeServiceConfig {
	return &CodeServiceConfig{
		MaxAttempts: DefaultMaxAttempts,
	}
}

// CodeService implements code generation and redemption rules.
//
// Business outcomes are returned as values. The service is safe for
// concurrent use; all synchronization lives in the repository.
type CodeService struct {
	repo        CodeRepository
	maxAttempts int
	generate    func(length int) (string, error)

	logger  *slog.Logger
	metrics *metric.Registry
}

// NewCodeService creates a new CodeService.
func NewCodeService(repo CodeRepository, config *CodeServiceConfig) *CodeService {
	if config == nil {
		config = DefaultCodeServiceConfig()
	}
	s := &CodeService{
		repo:        repo,
		maxAttempts: config.MaxAttempts,
		generate:    domain.GenerateCode,
		logger:      config.Logger,
		metrics:     config.Metrics,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = metric.NewRegistry()
	}
	return s
}

// GenerateCode inserts count new unused codes of the given length.
//
// It returns false without side effects if count exceeds
// domain.MaxCodesPerRequest or length is not 7 or 8. It also returns false
// if a code cannot be placed within the attempt budget; codes inserted
// before that point are kept and persisted.
func (s *CodeService) GenerateCode(count uint16, length uint8) bool {
	if int(count) > domain.MaxCodesPerRequest || !domain.ValidCodeLength(int(length)) {
		s.metrics.GenerateRequests.WithLabelValues("rejected").Inc()
		s.logger.Debug("generate rejected", "count", count, "length", length)
		return false
	}

	inserted := 0
	defer func() {
		if inserted > 0 {
			s.metrics.CodesGenerated.Add(float64(inserted))
			s.repo.MarkDirty()
		}
	}()

	for i := 0; i < int(count); i++ {
		if !s.insertOne(int(length)) {
			s.metrics.GenerateRequests.WithLabelValues("exhausted").Inc()
			s.logger.Error("code generation gave up",
				"requested", count,
				"inserted", inserted,
				"length", length,
				"max_attempts", s.maxAttempts)
			return false
		}
		inserted++
	}

	s.metrics.GenerateRequests.WithLabelValues("ok").Inc()
	s.logger.Debug("codes generated", "count", inserted, "length", length)
	return true
}

// insertOne draws codes until one is inserted or the budget runs out.
func (s *CodeService) insertOne(length int) bool {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := s.generate(length)
		if err != nil {
			s.logger.Error("code generation failed", "error", err)
			return false
		}
		if s.repo.Insert(code) {
			return true
		}
	}
	return false
}

// UseCode redeems a code.
//
// Codes whose length is not 7 or 8 are UseInvalid. Among concurrent callers
// for the same unused code exactly one observes UseSuccess.
func (s *CodeService) UseCode(code string) domain.UseResult {
	result := domain.UseInvalid
	if domain.ValidCodeLength(len(code)) {
		result = s.repo.Redeem(code)
	}

	if result == domain.UseSuccess {
		s.repo.MarkDirty()
	}
	s.metrics.Redemptions.WithLabelValues(result.String()).Inc()
	s.logger.Debug("code use", "code", code, "result", result.String())
	return result
}
