package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)

	GenerationRequestsTotal.WithLabelValues("success").Inc()
	RateLimitRejectedTotal.WithLabelValues("daily").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{
		"imagestudio_generation_requests_total",
		"imagestudio_rate_limit_rejected_total",
		"imagestudio_active_requests",
	} {
		if !names[want] {
			t.Errorf("expected %s to be gathered", want)
		}
	}
}
