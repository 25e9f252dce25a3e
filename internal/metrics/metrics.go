// Package metrics holds the portal's domain counters. HTTP request metrics
// live in the middleware package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"planportal/internal/model"
)

// Domain counts verification and upload outcomes. A nil *Domain is valid and
// records nothing, so services can run without a registry in tests.
type Domain struct {
	otpSent     *prometheus.CounterVec
	otpVerified *prometheus.CounterVec
	uploads     *prometheus.CounterVec
}

// NewDomain registers the domain counters on reg.
func NewDomain(reg prometheus.Registerer) (*Domain, error) {
	d := &Domain{
		otpSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_otp_sent_total",
				Help: "One-time codes issued, by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		otpVerified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_otp_verifications_total",
				Help: "One-time code verification attempts, by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_uploads_total",
				Help: "Idempotent uploads, by purpose and whether a new object was written.",
			},
			[]string{"purpose", "result"},
		),
	}
	for _, c := range []prometheus.Collector{d.otpSent, d.otpVerified, d.uploads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Domain) OTPSent(ch model.OTPChannel, outcome string) {
	if d == nil {
		return
	}
	d.otpSent.WithLabelValues(string(ch), outcome).Inc()
}

func (d *Domain) OTPVerified(ch model.OTPChannel, outcome string) {
	if d == nil {
		return
	}
	d.otpVerified.WithLabelValues(string(ch), outcome).Inc()
}

// Upload records one upload; created is false for deduplicated content.
func (d *Domain) Upload(purpose model.DocumentPurpose, created bool) {
	if d == nil {
		return
	}
	result := "deduplicated"
	if created {
		result = "created"
	}
	d.uploads.WithLabelValues(string(purpose), result).Inc()
}
