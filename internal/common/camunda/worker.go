// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
	"github.com/Ananya-0081/insightx-upi/internal/common/observability"
)

// HandlerFunc is the raw Zeebe job handler signature used by every worker.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Instrument wraps a job handler with the shared telemetry: an active-jobs
// gauge, a duration histogram and a span per job. Success/failure counters
// stay inside the handlers, which know the outcome.
func Instrument(taskType string, obs *observability.Observability, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()

		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("job.processInstanceKey", job.ProcessInstanceKey),
		)

		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobDuration(ctx, elapsed, "processed")
			obs.RecordJobProcessed(ctx, "processed")
			span.End()
		}()

		handler(client, job)
	}
}
