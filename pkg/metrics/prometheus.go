package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RefererKey        = "X-Referer"
	defaultMetricPath = "/metrics"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

type Logger interface {
	Errorf(format string, v ...interface{})
}

// Prometheus is gin middleware that records request count and latency and
// serves /metrics, either on the API engine or on its own listen address.
type Prometheus struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec

	listenAddress string
	metricsPath   string
	urlLabel      func(c *gin.Context) string
	logger        Logger
	server        *http.Server
}

type NewPrometheusOptions struct {
	Subsystem   string
	MetricsPath string
	// ReqCntURLLabelMappingFn keeps the url label low-cardinality; the default
	// uses the matched route template and falls back to the raw path.
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Registerer              prometheus.Registerer
	Logger                  Logger
}

func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		reqCnt:      NewMetric(reqCnt, opts.Subsystem).(*prometheus.CounterVec),
		reqDur:      NewMetric(reqDur, opts.Subsystem).(*prometheus.HistogramVec),
		metricsPath: opts.MetricsPath,
		urlLabel:    opts.ReqCntURLLabelMappingFn,
		logger:      opts.Logger,
	}
	if p.metricsPath == "" {
		p.metricsPath = defaultMetricPath
	}
	if p.urlLabel == nil {
		p.urlLabel = func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return c.Request.URL.Path
		}
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{p.reqCnt, p.reqDur} {
		if err := reg.Register(c); err != nil && p.logger != nil {
			p.logger.Errorf("metric could not be registered in Prometheus, err=%v", err)
		}
	}
	return p
}

// SetListenAddress exposes metrics on a separate address, keeping scrapes
// out of the API access log.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
}

// Use adds the middleware to e and mounts the metrics endpoint.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.listenAddress == "" {
		e.GET(p.metricsPath, gin.WrapH(promhttp.Handler()))
		return
	}
	mux := http.NewServeMux()
	mux.Handle(p.metricsPath, promhttp.Handler())
	p.server = &http.Server{Addr: p.listenAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed && p.logger != nil {
			p.logger.Errorf("metrics server error: %v", err)
		}
	}()
}

// Close stops the separate metrics listener, if any.
func (p *Prometheus) Close() error {
	if p.server == nil {
		return nil
	}
	return p.server.Close()
}

// HandlerFunc defines handler function for middleware
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.metricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := p.urlLabel(c)
		ref := c.Request.Header.Get(RefererKey)

		p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(MillisecondsSince(start))
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
	}
}
