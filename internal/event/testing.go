// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hashicorp/eventlogger"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

// TestConfig defines a configuration suitable for testing an eventer.
type TestConfig struct {
	EventerConfig     EventerConfig
	AllEvents         *os.File
	ErrorEvents       *os.File
	AuditEvents       *os.File
	ObservationEvents *os.File
	SysEvents         *os.File
}

// TestEventerConfig creates a test config for the eventer: an every-type file
// sink and an error file sink, plus whatever the TestOptions add.  Supports
// opts: TestWithStderrSink, TestWithAuditSink, TestWithObservationSink,
// TestWithSysSink, testWithSinkFormat
func TestEventerConfig(t testing.TB, testName string, opt ...TestOption) TestConfig {
	t.Helper()
	require := require.New(t)
	opts := getTestOpts(opt...)
	if opts.withSinkFormat == "" {
		opts.withSinkFormat = JSONHclogSinkFormat
	}

	tmpAllFile, err := os.CreateTemp("./", "tmp-all-events-"+testName)
	require.NoError(err)
	t.Cleanup(func() {
		_ = tmpAllFile.Close()
		_ = os.Remove(tmpAllFile.Name())
	})

	tmpErrFile, err := os.CreateTemp("./", "tmp-errors-"+testName)
	require.NoError(err)
	t.Cleanup(func() {
		_ = tmpErrFile.Close()
		_ = os.Remove(tmpErrFile.Name())
	})

	c := TestConfig{
		EventerConfig: EventerConfig{
			ObservationsEnabled: true,
			ObservationDelivery: Enforced,
			AuditEnabled:        true,
			AuditDelivery:       Enforced,
			SysEventsEnabled:    true,
			Sinks: []*SinkConfig{
				{
					Name:       "every-type-file-sink",
					Type:       FileSink,
					EventTypes: []Type{EveryType},
					Format:     opts.withSinkFormat,
					FileConfig: &FileSinkTypeConfig{
						Path:     "./",
						FileName: tmpAllFile.Name(),
					},
				},
				{
					Name:       "err-file-sink",
					Type:       FileSink,
					EventTypes: []Type{ErrorType},
					Format:     opts.withSinkFormat,
					FileConfig: &FileSinkTypeConfig{
						Path:     "./",
						FileName: tmpErrFile.Name(),
					},
				},
			},
		},
		AllEvents:   tmpAllFile,
		ErrorEvents: tmpErrFile,
	}
	if opts.withStderrSink {
		c.EventerConfig.Sinks = append(c.EventerConfig.Sinks, &SinkConfig{
			Name:       "stderr-sink",
			Type:       StderrSink,
			EventTypes: []Type{EveryType},
			Format:     opts.withSinkFormat,
		})
	}
	if opts.withAuditSink {
		tmpFile, err := os.CreateTemp("./", "tmp-audit-"+testName)
		require.NoError(err)
		t.Cleanup(func() {
			_ = tmpFile.Close()
			_ = os.Remove(tmpFile.Name())
		})
		c.EventerConfig.Sinks = append(c.EventerConfig.Sinks, &SinkConfig{
			Name:       "audit-file-sink",
			Type:       FileSink,
			EventTypes: []Type{AuditType},
			Format:     opts.withSinkFormat,
			FileConfig: &FileSinkTypeConfig{
				Path:     "./",
				FileName: tmpFile.Name(),
			},
		})
		c.AuditEvents = tmpFile
	}
	if opts.withObservationSink {
		tmpFile, err := os.CreateTemp("./", "tmp-observation-"+testName)
		require.NoError(err)
		t.Cleanup(func() {
			_ = tmpFile.Close()
			_ = os.Remove(tmpFile.Name())
		})
		c.EventerConfig.Sinks = append(c.EventerConfig.Sinks, &SinkConfig{
			Name:       "observation-file-sink",
			Type:       FileSink,
			EventTypes: []Type{ObservationType},
			Format:     opts.withSinkFormat,
			FileConfig: &FileSinkTypeConfig{
				Path:     "./",
				FileName: tmpFile.Name(),
			},
		})
		c.ObservationEvents = tmpFile
	}
	if opts.withSysSink {
		tmpFile, err := os.CreateTemp("./", "tmp-sysevents-"+testName)
		require.NoError(err)
		t.Cleanup(func() {
			_ = tmpFile.Close()
			_ = os.Remove(tmpFile.Name())
		})
		c.EventerConfig.Sinks = append(c.EventerConfig.Sinks, &SinkConfig{
			Name:       "sys-file-sink",
			Type:       FileSink,
			EventTypes: []Type{SystemType},
			Format:     opts.withSinkFormat,
			FileConfig: &FileSinkTypeConfig{
				Path:     "./",
				FileName: tmpFile.Name(),
			},
		})
		c.SysEvents = tmpFile
	}
	return c
}

// TestRequestInfo provides a test RequestInfo
func TestRequestInfo(t testing.TB) *RequestInfo {
	t.Helper()
	return &RequestInfo{
		EventId:  "test-event-id",
		Id:       "test-request-info",
		Method:   "check",
		Path:     "/kdcpolicy/xrealmauthz",
		ClientIp: "127.0.0.1",
	}
}

func testAuth(t testing.TB) *Auth {
	t.Helper()
	return &Auth{
		Principal: "admin/admin@REALM1.COM",
	}
}

func testRequest(t testing.TB) *Request {
	t.Helper()
	return &Request{
		Operation: "attribute-add",
		Details: map[string]any{
			"principal": "krbtgt/REALM1.COM@REALM2.COM",
			"value":     "@REALM2.COM",
		},
	}
}

func testResponse(t testing.TB) *Response {
	t.Helper()
	return &Response{
		StatusCode: 200,
		Details: map[string]any{
			"attribute": "xr:@REALM2.COM",
		},
	}
}

func testLogger(t *testing.T, testLock hclog.Locker) hclog.Logger {
	t.Helper()
	return hclog.New(&hclog.LoggerOptions{
		Mutex:      testLock,
		Name:       "test",
		JSONFormat: true,
	})
}

// TestResetSystEventer will reset event.syseventer to nil for testing
func TestResetSystEventer(t testing.TB) {
	t.Helper()
	sysEventerLock.Lock()
	defer sysEventerLock.Unlock()
	sysEventer = nil
}

// TestGetEventerConfig returns the config of the eventer
func TestGetEventerConfig(t testing.TB, e *Eventer) EventerConfig {
	t.Helper()
	require.NotNil(t, e)
	return e.conf
}

type testOptions struct {
	withStderrSink      bool
	withAuditSink       bool
	withObservationSink bool
	withSysSink         bool
	withSinkFormat      SinkFormat
}

// TestOption - how testOptions are passed as arguments.
type TestOption func(*testOptions)

func getTestOpts(opt ...TestOption) testOptions {
	opts := testOptions{}
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// TestWithStderrSink adds a stderr sink for every event type to the test
// config
func TestWithStderrSink(t testing.TB) TestOption {
	return func(o *testOptions) {
		t.Helper()
		o.withStderrSink = true
	}
}

// TestWithAuditSink adds an audit file sink to the test config
func TestWithAuditSink(t testing.TB) TestOption {
	return func(o *testOptions) {
		t.Helper()
		o.withAuditSink = true
	}
}

// TestWithObservationSink adds an observation file sink to the test config
func TestWithObservationSink(t testing.TB) TestOption {
	return func(o *testOptions) {
		t.Helper()
		o.withObservationSink = true
	}
}

// TestWithSysSink adds a sysevents file sink to the test config
func TestWithSysSink(t testing.TB) TestOption {
	return func(o *testOptions) {
		t.Helper()
		o.withSysSink = true
	}
}

// testWithSinkFormat overrides the format used for the test config's sinks
func testWithSinkFormat(t testing.TB, f SinkFormat) TestOption {
	return func(o *testOptions) {
		t.Helper()
		o.withSinkFormat = f
	}
}

// TestWithBroker is a test option for substituting the eventer's broker
func TestWithBroker(t testing.TB, b broker) Option {
	return func(o *options) {
		t.Helper()
		o.withBroker = b
	}
}

// testMockBroker is a mock broker for testing the eventer without an
// eventlogger backend.
type testMockBroker struct {
	reopened          bool
	stopTimeAt        time.Time
	registeredNodeIds []eventlogger.NodeID
	pipelines         []eventlogger.Pipeline
	successThresholds map[eventlogger.EventType]int

	errorOnSend error
}

func (b *testMockBroker) Send(ctx context.Context, t eventlogger.EventType, payload any) (eventlogger.Status, error) {
	if b.errorOnSend != nil {
		return eventlogger.Status{}, b.errorOnSend
	}
	return eventlogger.Status{}, nil
}

func (b *testMockBroker) Reopen(ctx context.Context) error {
	b.reopened = true
	return nil
}

func (b *testMockBroker) StopTimeAt(t time.Time) {
	b.stopTimeAt = t
}

func (b *testMockBroker) RegisterNode(id eventlogger.NodeID, node eventlogger.Node, opt ...eventlogger.Option) error {
	b.registeredNodeIds = append(b.registeredNodeIds, id)
	return nil
}

func (b *testMockBroker) SetSuccessThreshold(t eventlogger.EventType, successThreshold int) error {
	if b.successThresholds == nil {
		b.successThresholds = map[eventlogger.EventType]int{}
	}
	b.successThresholds[t] = successThreshold
	return nil
}

func (b *testMockBroker) RegisterPipeline(def eventlogger.Pipeline, opt ...eventlogger.Option) error {
	b.pipelines = append(b.pipelines, def)
	return nil
}
