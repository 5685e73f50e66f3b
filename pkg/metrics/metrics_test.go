package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with defaults", func() {
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.RecordProposal(OutcomeOK)

			Convey("Then collectors use the teamsplit namespace", func() {
				names := gatheredNames(registry)
				So(names, ShouldContain, "teamsplit_proposals_total")
			})
		})

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("league"),
				WithSubsystem("friday"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
			)
			manager.RecordTieBreak()

			Convey("Then names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() != "league_friday_tiebreak_draws_total" {
						continue
					}
					found = true
					labels := mf.GetMetric()[0].GetLabel()
					So(labels, ShouldHaveLength, 1)
					So(labels[0].GetName(), ShouldEqual, "env")
					So(labels[0].GetValue(), ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording proposals", func() {
			manager.RecordProposal(OutcomeOK)
			manager.RecordProposal(OutcomeOK)
			manager.RecordProposal(OutcomeError)

			So(testutil.ToFloat64(manager.proposals.WithLabelValues(OutcomeOK)), ShouldEqual, 2)
			So(testutil.ToFloat64(manager.proposals.WithLabelValues(OutcomeError)), ShouldEqual, 1)
		})

		Convey("When recording searches", func() {
			manager.RecordSearch(10, 126, 0, 10, 1.5)
			manager.RecordSearch(4, 3, 2, 1, 0.1)

			Convey("Then counters accumulate and gauges hold the last value", func() {
				So(testutil.ToFloat64(manager.partitionsEnumerated), ShouldEqual, 129)
				So(testutil.ToFloat64(manager.bestScore), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.rosterSize), ShouldEqual, 4)
				So(testutil.CollectAndCount(manager.ties), ShouldEqual, 1)
			})
		})

		Convey("When recording ingestion", func() {
			manager.RecordHistoryLoad(12, 3)
			manager.RecordIngestionError("bad_token")
			manager.RecordIngestionError("bad_token")

			So(testutil.ToFloat64(manager.historyColumns), ShouldEqual, 12)
			So(testutil.ToFloat64(manager.ingestionErrors.WithLabelValues("bad_token")), ShouldEqual, 2)
		})

		Convey("When recording HTTP traffic", func() {
			manager.RecordHTTPRequest("/proposals", "POST", "200")
			manager.RecordHTTPRequestDuration("/proposals", "POST", "200", 12)
			manager.RecordErrorByEndpoint("/proposals", "POST", "bad_request")
			manager.RecordRateLimited("/proposals")

			So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("/proposals", "POST", "200")), ShouldEqual, 1)
			So(testutil.ToFloat64(manager.errorRateByEndpoint.WithLabelValues("/proposals", "POST", "bad_request")), ShouldEqual, 1)
			So(testutil.ToFloat64(manager.rateLimited.WithLabelValues("/proposals")), ShouldEqual, 1)
		})
	})
}

func TestGlobalManager(t *testing.T) {
	Convey("Given the global manager swapped for a test one", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		prev := SetGlobal(manager)
		defer SetGlobal(prev)

		RecordProposal(OutcomeOK)
		RecordSearch(6, 10, 1, 2, 0.2)
		RecordTieBreak()
		RecordHistoryLoad(6, 1)
		RecordIngestionError("read")
		RecordHTTPRequest("/players", "GET", "200")
		RecordHTTPRequestDuration("/players", "GET", "200", 1)
		RecordErrorByEndpoint("/players", "GET", "not_found")
		RecordRateLimited("/proposals")

		Convey("Then package functions reach it", func() {
			So(testutil.ToFloat64(manager.proposals.WithLabelValues(OutcomeOK)), ShouldEqual, 1)
			So(testutil.ToFloat64(manager.tieBreakDraws), ShouldEqual, 1)
			So(testutil.ToFloat64(manager.partitionsEnumerated), ShouldEqual, 10)
		})

		Convey("And GetRegistry returns the served registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestLatencyBuckets(t *testing.T) {
	Convey("Given a manager with default buckets", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When a search takes 150ms", func() {
			manager.RecordSearch(20, 92378, 0, 1, 150)

			Convey("Then it lands between the 100 and 250 millisecond buckets", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				counts := map[float64]uint64{}
				for _, mf := range families {
					if mf.GetName() != "teamsplit_search_latency_milliseconds" {
						continue
					}
					for _, b := range mf.GetMetric()[0].GetHistogram().GetBucket() {
						counts[b.GetUpperBound()] = b.GetCumulativeCount()
					}
				}
				So(counts, ShouldHaveLength, len(MillisecondBuckets))
				So(counts[100], ShouldEqual, 0)
				So(counts[250], ShouldEqual, 1)
				So(counts[10000], ShouldEqual, 1)
			})
		})
	})
}

func gatheredNames(registry *prometheus.Registry) []string {
	families, err := registry.Gather()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(families))
	for _, mf := range families {
		out = append(out, mf.GetName())
	}
	return out
}
