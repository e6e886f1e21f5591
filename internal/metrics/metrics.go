package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 应用的 Prometheus 指标
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ItemsCreatedTotal      *prometheus.CounterVec
	EngagementActionsTotal *prometheus.CounterVec
	RateLimitBlockedTotal  *prometheus.CounterVec
	OTPSentTotal           *prometheus.CounterVec
	LoginsTotal            *prometheus.CounterVec
	FeedQueryDuration      *prometheus.HistogramVec
	ErrorsTotal            *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get 返回单例，首次调用时注册
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_http_requests_total",
				Help: "HTTP requests by method, route and status",
			}, []string{"method", "route", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "communityhub_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route"}),
			ItemsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_items_created_total",
				Help: "Items created by type",
			}, []string{"type"}),
			EngagementActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_engagement_actions_total",
				Help: "Likes, comments, shares and follows",
			}, []string{"action"}),
			RateLimitBlockedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_rate_limit_blocked_total",
				Help: "Requests rejected by the rate limiter",
			}, []string{"type"}),
			OTPSentTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_otp_sent_total",
				Help: "One-time codes mailed by purpose and result",
			}, []string{"purpose", "result"}),
			LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_logins_total",
				Help: "Successful logins by method",
			}, []string{"method"}),
			FeedQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "communityhub_feed_query_duration_seconds",
				Help:    "Feed and trending assembly latency",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
			}, []string{"view"}),
			ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "communityhub_errors_total",
				Help: "Error responses by code",
			}, []string{"code"}),
		}
	})
	return instance
}
