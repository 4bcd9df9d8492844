package client

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/simviz/sceneclient/internal/client"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics holds the synchronizer's OTel instruments. With no meter
// provider configured they are no-ops.
type metrics struct {
	ticks          metric.Int64Counter
	reinits        metric.Int64Counter
	decodeFailures metric.Int64Counter
	frameBytes     metric.Int64Counter
	stepDuration   metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	out.ticks, err = m.Int64Counter(
		"client.ticks",
		metric.WithDescription("Total protocol ticks processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	out.reinits, err = m.Int64Counter(
		"client.scene.reinits",
		metric.WithDescription("Total scene reinitializations triggered by configuration changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reinits counter: %w", err)
	}

	out.decodeFailures, err = m.Int64Counter(
		"client.decode.failures",
		metric.WithDescription("Total protocol steps aborted by a decode or I/O error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decode failures counter: %w", err)
	}

	out.frameBytes, err = m.Int64Counter(
		"client.frame.bytes",
		metric.WithDescription("Total payload bytes received"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame bytes counter: %w", err)
	}

	out.stepDuration, err = m.Float64Histogram(
		"client.step.duration",
		metric.WithDescription("Duration of one request/response step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating step duration histogram: %w", err)
	}

	return &out, nil
}
