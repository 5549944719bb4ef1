// internal/workers/lending/assess-loan-viability/handler.go
package assessloanviability

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"lending-workers/internal/assessment"
	"lending-workers/internal/common/camunda"
	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TaskType = "assess-loan-viability"
)

// CommunityLookup resolves a community snapshot by id.
type CommunityLookup interface {
	Lookup(ctx context.Context, id string) (assessment.CommunityContext, error)
}

// Dependencies are the collaborators of the handler. Community, Validator
// and Observability are optional.
type Dependencies struct {
	Engine        *assessment.Engine
	Community     CommunityLookup
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config       *Config
	engine       *assessment.Engine
	community    CommunityLookup
	validator    *validation.Validator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	newSource    func() assessment.Source
	now          func() time.Time
	logger       logger.Logger
}

func NewHandler(config *Config, deps Dependencies) *Handler {
	log := deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       deps.Engine,
		community:    deps.Community,
		validator:    deps.Validator,
		obs:          deps.Observability,
		errorHandler: errors.NewErrorHandler(log),
		newSource:    assessment.NewSource,
		now:          time.Now,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err, start)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err, start)
		return
	}

	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.validator != nil {
		res, err := h.validator.ValidateVariables(TaskType, variables)
		if err != nil {
			return nil, errors.NewInputParseError(err)
		}
		if !res.Valid {
			return nil, errors.NewLoanValidationError(strings.Join(res.GetErrorMessages(), "; "))
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputParseError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := h.obs.StartSpan(ctx, "assessment.assess",
		attribute.String("loan.purpose", string(input.Application.Purpose)),
		attribute.Float64("loan.amount", input.Application.Amount),
	)
	defer span.End()

	community, source, err := h.resolveCommunity(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "community lookup failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewAssessmentTimeoutError(err)
	}

	result, err := h.engine.Assess(input.Application, community, h.newSource())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid application")
		if stderrors.Is(err, assessment.ErrInvalidAmount) {
			return nil, errors.NewLoanValidationError(err.Error())
		}
		return nil, errors.NewInternalError(err)
	}

	span.SetAttributes(
		attribute.Int("assessment.score", result.ViabilityScore),
		attribute.Bool("assessment.approved", result.Approved),
		attribute.String("assessment.risk", string(result.RiskLevel)),
	)
	h.recordDecision(input.Application.Purpose, result)

	output := &Output{
		AssessmentID:    uuid.New().String(),
		ApplicantID:     input.ApplicantID,
		AssessedAt:      h.now().UTC().Format(time.RFC3339),
		CommunitySource: source,
		Approved:        result.Approved,
		RiskLevel:       result.RiskLevel,
		Assessment:      result,
	}
	if input.IncludeMitigation || h.config.IncludeMitigation {
		output.MitigationStrategies = h.engine.MitigationStrategies(result.RiskLevel)
	}

	h.logger.Info("loan assessed", map[string]interface{}{
		"assessmentId":   output.AssessmentID,
		"applicantId":    input.ApplicantID,
		"purpose":        input.Application.Purpose,
		"viabilityScore": result.ViabilityScore,
		"approved":       result.Approved,
		"riskLevel":      result.RiskLevel,
		"community":      source,
	})
	return output, nil
}

// resolveCommunity prefers an inline snapshot, then a lookup by id. With
// neither, the engine defaults apply.
func (h *Handler) resolveCommunity(ctx context.Context, input *Input) (assessment.CommunityContext, string, error) {
	if input.Community != nil {
		return *input.Community, CommunitySourceInline, nil
	}
	if input.CommunityID == "" {
		return assessment.CommunityContext{}, CommunitySourceDefaults, nil
	}
	if h.community == nil {
		h.logger.Warn("community lookup not configured, using defaults", map[string]interface{}{
			"communityId": input.CommunityID,
		})
		return assessment.CommunityContext{}, CommunitySourceDefaults, nil
	}

	c, err := h.community.Lookup(ctx, input.CommunityID)
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			return c, "", stdErr
		}
		return c, "", errors.NewCommunityLookupError(input.CommunityID, err)
	}
	return c, CommunitySourceLookup, nil
}

func (h *Handler) recordDecision(purpose assessment.BusinessType, result assessment.Result) {
	label := string(purpose)
	if _, known := h.engine.Category(purpose); !known {
		label = "other"
	}
	metrics.LoanDecisions.WithLabelValues(strconv.FormatBool(result.Approved), string(result.RiskLevel)).Inc()
	metrics.LoanViabilityScore.WithLabelValues(label).Observe(float64(result.ViabilityScore))
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(context.Background(), TaskType, "failed")
	h.obs.RecordJobDuration(context.Background(), TaskType, time.Since(start), "failed")
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}
