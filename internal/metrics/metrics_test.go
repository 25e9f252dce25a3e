package metrics

import (
	"testing"

	"planportal/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := NewDomain(reg)
	require.NoError(t, err)

	d.OTPSent(model.ChannelSMS, "ok")
	d.OTPVerified(model.ChannelEmail, "invalid")
	d.Upload(model.DocPhoto, true)
	d.Upload(model.DocPhoto, false)
	d.Upload(model.DocPhoto, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(d.otpSent.WithLabelValues("sms", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.otpVerified.WithLabelValues("email", "invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.uploads.WithLabelValues("photo", "deduplicated")))

	_, err = NewDomain(reg)
	assert.Error(t, err, "second registration on the same registry")
}

func TestDomain_Nil(t *testing.T) {
	var d *Domain
	assert.NotPanics(t, func() {
		d.OTPSent(model.ChannelSMS, "ok")
		d.Upload(model.DocPhoto, true)
	})
}
