package moderation

import (
	"context"
	"fmt"

	"github.com/ToxicGuard/ChatGuard/pkg/classifier/decoder"
	"github.com/ToxicGuard/ChatGuard/pkg/dedup"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/prometheus"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrorCategory marks messages that never got scored because the
// classification call itself failed.
const ErrorCategory = "error"

// Source delivers the next batch of chat messages.
type Source interface {
	GetMessages(ctx context.Context) ([]types.ChatMessage, error)
}

// Classifier returns the raw classifier output for a batch.
type Classifier interface {
	Classify(ctx context.Context, messages []types.ChatMessage) (string, error)
}

// Recorder is the stats/history sink. Implementations must never block the
// pipeline or return errors into it.
type Recorder interface {
	RecordMessage(ctx context.Context, msg types.ChatMessage, decision types.Decision)
	RecordOutcome(ctx context.Context, outcome types.EnforcementOutcome)
}

// Pipeline runs one full moderation cycle: fetch, dedup, classify, decode,
// evaluate, dispatch, record. Cycles are strictly sequential; the caller
// waits for RunCycle to return before starting the next one. Messages inside
// a cycle are processed in arrival order because escalation counters depend
// on it.
type Pipeline struct {
	source     Source
	classifier Classifier
	engine     *Engine
	dispatcher *Dispatcher
	seen       *dedup.Cache
	recorder   Recorder
	logger     *logrus.Logger
}

func NewPipeline(
	source Source,
	classifier Classifier,
	engine *Engine,
	dispatcher *Dispatcher,
	seen *dedup.Cache,
	recorder Recorder,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		classifier: classifier,
		engine:     engine,
		dispatcher: dispatcher,
		seen:       seen,
		recorder:   recorder,
		logger:     logger,
	}
}

// RunCycle processes one batch to completion. Only a failure to obtain the
// batch is returned; everything downstream degrades per message and never
// aborts the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	batch, err := p.source.GetMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch message batch: %w", err)
	}

	fresh := make([]types.ChatMessage, 0, len(batch))
	for _, msg := range batch {
		if p.seen.Seen(msg.ID) {
			continue
		}
		fresh = append(fresh, msg)
	}
	if len(fresh) == 0 {
		return nil
	}

	ids := make([]string, 0, len(fresh))
	for _, msg := range fresh {
		ids = append(ids, msg.ID)
	}
	p.seen.Add(ids...)

	p.logger.WithFields(logrus.Fields{
		"cycle_id": uuid.NewString(),
		"count":    len(fresh),
	}).Info("processing new messages")

	scored := p.classifyBatch(ctx, fresh)

	for _, s := range scored {
		prometheus.MessagesProcessed.Inc()

		order := p.engine.Evaluate(s.Message, s.Decision)
		outcome := p.dispatcher.Dispatch(ctx, order)

		if order.Action != types.ActionNone {
			prometheus.ActionsTotal.WithLabelValues(order.Action.String()).Inc()
		}
		if !outcome.Succeeded {
			prometheus.EnforcementFailures.WithLabelValues(outcome.FailureKind.String()).Inc()
		}

		p.recorder.RecordMessage(ctx, s.Message, s.Decision)
		p.recorder.RecordOutcome(ctx, outcome)
	}
	return nil
}

// classifyBatch obtains a decision for every message of the batch. A total
// classification failure marks the whole batch unscored rather than dropping
// it; a decodable-but-useless response fails open per message via Realign.
func (p *Pipeline) classifyBatch(ctx context.Context, batch []types.ChatMessage) []decoder.Scored {
	raw, err := p.classifier.Classify(ctx, batch)
	if err != nil {
		prometheus.ClassifierErrors.Inc()
		p.logger.WithError(err).Error("classification failed; treating batch as unscored")
		scored := make([]decoder.Scored, 0, len(batch))
		for i, msg := range batch {
			scored = append(scored, decoder.Scored{
				Message: msg,
				Decision: types.Decision{
					MessageIndex: i,
					Category:     ErrorCategory,
					Reasoning:    decoder.NoAnalysisReasoning,
					Action:       types.ActionNone,
				},
			})
		}
		return scored
	}

	decisions := decoder.Decode(raw, len(batch))
	if len(decisions) == 0 {
		prometheus.DecodeFallbacks.Inc()
		p.logger.Warn("no decisions extracted from classifier response; storing messages with default values")
	}
	return decoder.Realign(batch, decisions)
}

// Cleanup wipes escalation state and the dedup window. Driven by the
// periodic scheduler; safe to call while a cycle is running.
func (p *Pipeline) Cleanup() {
	p.engine.Cleanup()
	p.seen.Cleanup()
}
