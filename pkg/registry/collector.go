package registry

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// NewCollector returns a prometheus.Collector that renders the registry's
// currently committed snapshot as const gauges.
func NewCollector(r Registry) prometheus.Collector {
	return &collector{registry: r}
}

type collector struct {
	registry Registry
}

// Describe sends no descriptors on purpose; the set of series changes from
// pass to pass, making this an unchecked collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, sample := range c.registry.Samples() {

		labelKeys := make([]string, 0, len(sample.Labels))
		for key := range sample.Labels {
			labelKeys = append(labelKeys, key)
		}
		sort.Strings(labelKeys)

		labelValues := make([]string, 0, len(labelKeys))
		for _, key := range labelKeys {
			labelValues = append(labelValues, sample.Labels[key])
		}

		desc := prometheus.NewDesc(sample.Name, sample.Help, labelKeys, nil)
		metric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, sample.Value, labelValues...)
		if err != nil {
			log.Warn().Err(err).Str("metric", sample.Name).Msg("Failed rendering sample as const metric")
			continue
		}

		ch <- metric
	}
}
