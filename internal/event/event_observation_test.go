// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"testing"
	"time"

	"github.com/hashicorp/eventlogger"
	"github.com/hashicorp/eventlogger/filters/gated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_newObservation(t *testing.T) {
	t.Parallel()

	now := time.Now()

	testHeader := []any{"local-realm", "REALM1.COM", "now", now}

	testDetails := []any{"client", "alice@REALM2.COM"}

	tests := []struct {
		name            string
		fromOp          Op
		opts            []Option
		want            *observation
		wantErrIs       error
		wantErrContains string
	}{
		{
			name:            "missing-op",
			wantErrIs:       ErrInvalidParameter,
			wantErrContains: "missing operation",
		},
		{
			name:   "reserved-header-op",
			fromOp: Op("reserved-header-op"),
			opts: []Option{
				WithHeader(OpField, "value"),
			},
			wantErrIs:       ErrInvalidParameter,
			wantErrContains: "op is a reserved field name",
		},
		{
			name:   "reserved-header-version",
			fromOp: Op("reserved-header-version"),
			opts: []Option{
				WithHeader(VersionField, "value"),
			},
			wantErrIs:       ErrInvalidParameter,
			wantErrContains: "version is a reserved field name",
		},
		{
			name:   "reserved-header-request-info",
			fromOp: Op("reserved-header-request-info"),
			opts: []Option{
				WithHeader(RequestInfoField, "value"),
			},
			wantErrIs:       ErrInvalidParameter,
			wantErrContains: "request_info is a reserved field name",
		},
		{
			name:   "valid-no-opts",
			fromOp: Op("valid-no-opts"),
			want: &observation{
				Version: observationVersion,
				Op:      Op("valid-no-opts"),
			},
		},
		{
			name:   "valid-all-opts",
			fromOp: Op("valid-all-opts"),
			opts: []Option{
				WithId("valid-all-opts"),
				WithRequestInfo(TestRequestInfo(t)),
				WithHeader(testHeader...),
				WithDetails(testDetails...),
				WithFlush(),
			},
			want: &observation{
				ID:          "valid-all-opts",
				Header:      map[string]any{"local-realm": "REALM1.COM", "now": now},
				Detail:      map[string]any{"client": "alice@REALM2.COM"},
				Flush:       true,
				Version:     observationVersion,
				Op:          Op("valid-all-opts"),
				RequestInfo: TestRequestInfo(t),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := newObservation(tt.fromOp, tt.opts...)
			if tt.wantErrIs != nil {
				require.Error(err)
				assert.Nil(got)
				assert.ErrorIs(err, tt.wantErrIs)
				if tt.wantErrContains != "" {
					assert.Contains(err.Error(), tt.wantErrContains)
				}
				return
			}
			require.NoError(err)
			require.NotNil(got)
			opts := getOpts(tt.opts...)
			if opts.withId == "" {
				tt.want.ID = got.ID
			}
			assert.Equal(tt.want, got)
		})
	}
}

func Test_observationvalidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name            string
		id              string
		op              Op
		wantErrIs       error
		wantErrContains string
	}{
		{
			name:            "missing-id",
			op:              Op("missing-id"),
			wantErrIs:       ErrInvalidParameter,
			wantErrContains: "missing id",
		},
		{
			name:            "missing-operation",
			id:              "missing-operation",
			wantErrIs:       ErrInvalidParameter,
			wantErrContains: "missing operation",
		},
		{
			name: "valid",
			op:   Op("valid"),
			id:   "valid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			e := observation{
				Op: tt.op,
				ID: tt.id,
			}
			err := e.validate()
			if tt.wantErrIs != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantErrIs)
				if tt.wantErrContains != "" {
					assert.Contains(err.Error(), tt.wantErrContains)
				}
				return
			}
			assert.NoError(err)
		})
	}
}

func Test_observationEventType(t *testing.T) {
	t.Parallel()
	e := &observation{}
	assert.Equal(t, string(ObservationType), e.EventType())
}

func Test_observationComposeFrom(t *testing.T) {
	t.Parallel()

	now := time.Now()

	testObservation := func(t *testing.T, fromOp Op, opt ...Option) *observation {
		t.Helper()
		o, err := newObservation(fromOp, opt...)
		require.NoError(t, err)
		return o
	}

	tests := []struct {
		name            string
		events          []*eventlogger.Event
		wantPayload     map[string]any
		wantErrContains string
	}{
		{
			name:            "missing-events",
			wantErrContains: "missing events",
		},
		{
			name: "not-an-observation",
			events: []*eventlogger.Event{
				{
					Type:      "observation",
					CreatedAt: now,
					Payload:   "not-an-observation",
				},
			},
			wantErrContains: "not an observation",
		},
		{
			name: "headers-only",
			events: []*eventlogger.Event{
				{
					Type:      "observation",
					CreatedAt: now,
					Payload: testObservation(t, "headers-only",
						WithHeader("local-realm", "REALM1.COM")),
				},
			},
			wantPayload: map[string]any{
				"local-realm": "REALM1.COM",
			},
		},
		{
			name: "headers-and-request-info",
			events: []*eventlogger.Event{
				{
					Type:      "observation",
					CreatedAt: now,
					Payload: testObservation(t, "headers-and-request-info",
						WithHeader("local-realm", "REALM1.COM"),
						WithRequestInfo(TestRequestInfo(t))),
				},
			},
			wantPayload: map[string]any{
				"local-realm":    "REALM1.COM",
				RequestInfoField: TestRequestInfo(t),
			},
		},
		{
			name: "details-are-gathered",
			events: []*eventlogger.Event{
				{
					Type:      "observation",
					CreatedAt: now,
					Payload: testObservation(t, "check-tgs",
						WithDetails("client", "alice@REALM2.COM", "service", "host/web.realm1.com@REALM1.COM")),
				},
				{
					Type:      "observation",
					CreatedAt: now,
					Payload: testObservation(t, "check-tgs",
						WithDetails("verdict", "allow")),
				},
			},
			wantPayload: map[string]any{
				DetailsField: []gated.EventPayloadDetails{
					{
						Type:      "check-tgs",
						CreatedAt: now.String(),
						Payload: map[string]any{
							"client":  "alice@REALM2.COM",
							"service": "host/web.realm1.com@REALM1.COM",
						},
					},
					{
						Type:      "check-tgs",
						CreatedAt: now.String(),
						Payload: map[string]any{
							"verdict": "allow",
						},
					},
				},
			},
		},
		{
			name: "headers-merge-across-events",
			events: []*eventlogger.Event{
				{
					Type:      "observation",
					CreatedAt: now,
					Payload: testObservation(t, "headers-merge",
						WithHeader("local-realm", "REALM1.COM")),
				},
				{
					Type:      "observation",
					CreatedAt: now,
					Payload: testObservation(t, "headers-merge",
						WithHeader("enforcing", true)),
				},
			},
			wantPayload: map[string]any{
				"local-realm": "REALM1.COM",
				"enforcing":   true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			var composeFrom observation
			gotType, gotPayload, err := composeFrom.ComposeFrom(tt.events)
			if tt.wantErrContains != "" {
				require.Error(err)
				assert.Contains(err.Error(), tt.wantErrContains)
				return
			}
			require.NoError(err)
			assert.Equal(tt.events[0].Type, gotType)
			assert.Equal(tt.wantPayload, gotPayload)
		})
	}
}
