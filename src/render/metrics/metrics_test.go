package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector("test")
	require.NotNil(t, c)
	require.NotNil(t, c.Registry())

	require.NotNil(t, NewCollector("").Registry(), "default namespace")
}

func TestCollectorLifecycle(t *testing.T) {
	c := NewCollector("test")

	c.RecordCreated("Buffer", time.Millisecond)
	c.RecordCreated("Buffer", 2*time.Millisecond)
	c.RecordCreated("Image", time.Millisecond)
	c.RecordDestroyed("Buffer", nil)
	c.RecordDestroyed("Image", errors.New("device lost"))
	c.RecordCreateFailure("Buffer", "VK_ERROR_OUT_OF_DEVICE_MEMORY")

	require.Equal(t, 2.0, testutil.ToFloat64(c.created.WithLabelValues("Buffer")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.live.WithLabelValues("Buffer")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.live.WithLabelValues("Image")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.destroyErrors.WithLabelValues("Image")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.destroyErrors.WithLabelValues("Buffer")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("Buffer", "VK_ERROR_OUT_OF_DEVICE_MEMORY")))
}

func TestCollectorRefs(t *testing.T) {
	c := NewCollector("test")
	for i := 0; i < 3; i++ {
		c.RecordRetain()
	}
	c.RecordRelease()

	require.Equal(t, 3.0, testutil.ToFloat64(c.retains))
	require.Equal(t, 1.0, testutil.ToFloat64(c.releases))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector("test")
	c.RecordCreated("Fence", time.Microsecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `test_objects_created_total{kind="Fence"} 1`))
}
