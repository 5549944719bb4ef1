// internal/workers/contract/submit-contract-call/handler.go
package submitcontractcall

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"lending-workers/internal/common/camunda"
	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/contract"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "submit-contract-call"
)

type Handler struct {
	config       *Config
	stub         *contract.Stub
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, stub *contract.Stub, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		stub:         stub,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInputParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	receipt, err := h.stub.Call(input.Method, input.Args)
	if err != nil {
		var unknown *contract.UnknownMethodError
		if stderrors.As(err, &unknown) {
			return nil, errors.NewContractMethodUnknownError(unknown.Method)
		}
		return nil, errors.NewInternalError(err)
	}

	h.logger.Info("contract call prepared", map[string]interface{}{
		"method":   receipt.Method,
		"txId":     receipt.TxID,
		"appIndex": receipt.AppIndex,
		"network":  h.config.Network,
	})

	return &Output{
		Network: h.config.Network,
		Receipt: receipt,
		Message: receipt.Message,
	}, nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}
