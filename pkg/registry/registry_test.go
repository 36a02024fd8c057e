package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCommit(t *testing.T) {

	t.Run("ReplacesThePreviousSnapshotEntirely", func(t *testing.T) {

		metricsRegistry := NewRegistry()
		metricsRegistry.Commit([]Sample{
			{Name: "jenkins_job_duration", Labels: map[string]string{"job": "build-app"}, Value: 1200},
			{Name: "jenkins_job_duration", Labels: map[string]string{"job": "deploy-app"}, Value: 800},
		})

		// act
		metricsRegistry.Commit([]Sample{
			{Name: "jenkins_job_duration", Labels: map[string]string{"job": "build-app"}, Value: 1500},
		})

		samples := metricsRegistry.Samples()
		assert.Equal(t, 1, len(samples))
		assert.Equal(t, float64(1500), samples[0].Value)
	})

	t.Run("KeepsThePreviousSnapshotWhenNothingIsCommitted", func(t *testing.T) {

		metricsRegistry := NewRegistry()
		committed := []Sample{
			{Name: "jenkins_job_building", Labels: map[string]string{"job": "build-app"}, Value: 0},
		}
		metricsRegistry.Commit(committed)

		// act
		samples := metricsRegistry.Samples()

		assert.Equal(t, committed, samples)
	})

	t.Run("DoesNotRaceWithConcurrentReaders", func(t *testing.T) {

		metricsRegistry := NewRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func(value float64) {
				defer wg.Done()
				metricsRegistry.Commit([]Sample{
					{Name: "jenkins_job_duration", Labels: map[string]string{"job": "build-app"}, Value: value},
					{Name: "jenkins_job_building", Labels: map[string]string{"job": "build-app"}, Value: value},
				})
			}(float64(i))
			go func() {
				defer wg.Done()

				// act
				samples := metricsRegistry.Samples()

				// a read always sees one whole committed snapshot
				if len(samples) > 0 {
					assert.Equal(t, 2, len(samples))
					assert.Equal(t, samples[0].Value, samples[1].Value)
				}
			}()
		}
		wg.Wait()
	})
}

func TestCollector(t *testing.T) {

	t.Run("RendersCommittedSamplesAsGauges", func(t *testing.T) {

		metricsRegistry := NewRegistry()
		metricsRegistry.Commit([]Sample{
			{Name: "jenkins_job_duration", Help: "Duration of the last build in milliseconds.", Labels: map[string]string{"job": "build-app"}, Value: 1200},
		})

		collector := NewCollector(metricsRegistry)

		expected := `
			# HELP jenkins_job_duration Duration of the last build in milliseconds.
			# TYPE jenkins_job_duration gauge
			jenkins_job_duration{job="build-app"} 1200
		`

		// act
		err := testutil.CollectAndCompare(collector, strings.NewReader(expected))

		assert.Nil(t, err)
	})

	t.Run("RendersOneHotResultSeriesUnderASingleMetricName", func(t *testing.T) {

		metricsRegistry := NewRegistry()
		metricsRegistry.Commit([]Sample{
			{Name: "jenkins_job_last_build_result", Help: "One-hot encoded result of the last build.", Labels: map[string]string{"job": "build-app", "result": "SUCCESS"}, Value: 1},
			{Name: "jenkins_job_last_build_result", Help: "One-hot encoded result of the last build.", Labels: map[string]string{"job": "build-app", "result": "FAILURE"}, Value: 0},
		})

		collector := NewCollector(metricsRegistry)

		expected := `
			# HELP jenkins_job_last_build_result One-hot encoded result of the last build.
			# TYPE jenkins_job_last_build_result gauge
			jenkins_job_last_build_result{job="build-app",result="FAILURE"} 0
			jenkins_job_last_build_result{job="build-app",result="SUCCESS"} 1
		`

		// act
		err := testutil.CollectAndCompare(collector, strings.NewReader(expected))

		assert.Nil(t, err)
	})

	t.Run("RendersNothingBeforeTheFirstCommit", func(t *testing.T) {

		metricsRegistry := NewRegistry()
		collector := NewCollector(metricsRegistry)

		// act
		count := testutil.CollectAndCount(collector)

		assert.Equal(t, 0, count)
	})
}
