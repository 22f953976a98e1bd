package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/andig/vinfast/util"
	"github.com/prometheus/client_golang/prometheus"
)

type roundTripper struct {
	log  *util.Logger
	base http.RoundTripper
}

var (
	reqMetric *prometheus.SummaryVec
	resMetric *prometheus.CounterVec
)

func init() {
	labels := []string{"host"}

	reqMetric = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "vinfast",
		Subsystem:  "http",
		Name:       "request_duration_seconds",
		Help:       "A summary of HTTP request durations",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, labels)

	resMetric = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vinfast",
		Subsystem: "http",
		Name:      "request_total",
		Help:      "Total count of HTTP requests by response status",
	}, append(labels, "status"))

	prometheus.MustRegister(reqMetric, resMetric)
}

// NewTripper creates a logging and metrics-recording roundtrip handler
func NewTripper(log *util.Logger, base http.RoundTripper) http.RoundTripper {
	tripper := &roundTripper{
		log:  log,
		base: base,
	}

	return tripper
}

// RoundTrip executes the request and records status codes and timing
func (r *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r.log.TRACE.Println(r.log.Redacted(req.Method + " " + req.URL.String()))

	var code string
	startTime := time.Now()

	resp, err := r.base.RoundTrip(req)

	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
		r.log.TRACE.Printf("%s %s: %d (%v)", req.Method, req.URL.Host, resp.StatusCode, time.Since(startTime).Round(time.Millisecond))
	} else {
		code = "error"
	}

	reqMetric.WithLabelValues(req.URL.Host).Observe(time.Since(startTime).Seconds())
	resMetric.WithLabelValues(req.URL.Host, code).Add(1)

	return resp, err
}
