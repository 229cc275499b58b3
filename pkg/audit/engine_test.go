package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"

	"github.com/carverauto/netaudit/pkg/connector"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.MockStore, *connector.MockRegistry) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := store.NewMockStore(ctrl)
	reg := connector.NewMockRegistry(ctrl)

	e := NewEngine(st, reg, &models.CoreConfig{}, logger.NewTestLogger())
	e.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return e, st, reg
}

func auditTestDevice() *models.Device {
	return &models.Device{
		ID:     "dev-1",
		Vendor: models.VendorCiscoIOSXE,
	}
}

func TestAuditEvaluatesEveryCheck(t *testing.T) {
	e, st, reg := newTestEngine(t)
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	device := auditTestDevice()
	rules := []*models.AuditRule{{
		ID:       "rule-1",
		Name:     "baseline",
		Severity: models.SeverityHigh,
		Enabled:  true,
		Checks: []models.RuleCheck{
			{Locator: "/system/name", Operator: models.OpEquals, Expected: "core-1"},
			{Locator: "/system/mtu", Operator: models.OpEquals, Expected: "9000"},
			{Locator: "/system/uptime", Operator: models.OpNumericRange, Expected: "10,100"},
		},
	}}

	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device, nil)
	st.EXPECT().GetRules(gomock.Any(), gomock.Any()).Return(rules, nil)
	reg.EXPECT().Get(device, gomock.Any(), gomock.Any()).Return(conn, nil)

	conn.EXPECT().Connect(gomock.Any()).Return(nil)
	conn.EXPECT().GetState(gomock.Any(), "/system/name").Return("core-1", nil)
	conn.EXPECT().GetState(gomock.Any(), "/system/mtu").Return("1500", nil)
	conn.EXPECT().GetState(gomock.Any(), "/system/uptime").Return("abc", nil)
	conn.EXPECT().Disconnect()

	var saved *models.AuditResult

	st.EXPECT().SaveAuditResult(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.AuditResult) error {
			saved = r
			return nil
		})
	st.EXPECT().UpdateDeviceStatus(gomock.Any(), device).Return(nil)

	results, err := e.Audit(context.Background(), []string{"dev-1"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	require.Len(t, result.Findings, 3)
	assert.Equal(t, models.FindingPass, result.Findings[0].Status)
	assert.Equal(t, models.FindingFail, result.Findings[1].Status)
	assert.Equal(t, models.FindingError, result.Findings[2].Status)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Errors)
	assert.InDelta(t, 33.3, result.Compliance, 0.001)

	assert.Same(t, result, saved)
	assert.Equal(t, result.Compliance, device.ComplianceScore)
	assert.Equal(t, models.DeviceStatusOnline, device.Status)
	assert.Zero(t, device.ConsecutiveFailures)
}

func TestAuditConnectFailureShortCircuits(t *testing.T) {
	e, st, reg := newTestEngine(t)
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	device := auditTestDevice()
	rules := []*models.AuditRule{{
		ID:      "rule-1",
		Name:    "baseline",
		Enabled: true,
		Checks:  []models.RuleCheck{{Locator: "/x", Operator: models.OpExists}},
	}}

	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device, nil)
	st.EXPECT().GetRules(gomock.Any(), gomock.Any()).Return(rules, nil)
	reg.EXPECT().Get(device, gomock.Any(), gomock.Any()).Return(conn, nil)

	conn.EXPECT().Connect(gomock.Any()).
		Return(&connector.ConnectionError{Host: "192.0.2.1:830", Err: errors.New("auth failed")})

	st.EXPECT().SaveAuditResult(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateDeviceStatus(gomock.Any(), device).Return(nil)

	results, err := e.Audit(context.Background(), []string{"dev-1"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Empty(t, result.Findings)
	assert.Contains(t, result.Message, "auth failed")
	assert.Zero(t, result.Compliance)

	assert.Equal(t, 1, device.ConsecutiveFailures)
	assert.Equal(t, models.DeviceStatusUnreachable, device.Status)
	require.NotNil(t, device.NextCheckDue)
	assert.Equal(t, e.now().Add(5*time.Minute), *device.NextCheckDue)
}

func TestAuditOneResultPerDevice(t *testing.T) {
	e, st, reg := newTestEngine(t)
	ctrl := gomock.NewController(t)

	devices := []*models.Device{
		{ID: "dev-1", Vendor: models.VendorCiscoIOSXE},
		{ID: "dev-2", Vendor: models.VendorCiscoIOSXE},
	}
	rules := []*models.AuditRule{{
		ID:      "rule-1",
		Name:    "baseline",
		Enabled: true,
		Checks:  []models.RuleCheck{{Locator: "/x", Operator: models.OpEquals, Expected: "y"}},
	}}

	for _, device := range devices {
		st.EXPECT().GetDevice(gomock.Any(), device.ID).Return(device, nil)
	}

	st.EXPECT().GetRules(gomock.Any(), gomock.Any()).Return(rules, nil)

	for range devices {
		conn := connector.NewMockConnector(ctrl)
		conn.EXPECT().Connect(gomock.Any()).Return(nil)
		conn.EXPECT().GetState(gomock.Any(), "/x").Return("y", nil)
		conn.EXPECT().Disconnect()
		reg.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(conn, nil)
	}

	st.EXPECT().SaveAuditResult(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	st.EXPECT().UpdateDeviceStatus(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	results, err := e.Audit(context.Background(), []string{"dev-1", "dev-2"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "dev-1", results[0].DeviceID)
	assert.Equal(t, "dev-2", results[1].DeviceID)
}

func TestAuditUnknownDeviceDoesNotEraseBatch(t *testing.T) {
	e, st, reg := newTestEngine(t)
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	device := auditTestDevice()
	rules := []*models.AuditRule{{
		ID:      "rule-1",
		Name:    "baseline",
		Enabled: true,
		Checks:  []models.RuleCheck{{Locator: "/x", Operator: models.OpEquals, Expected: "y"}},
	}}

	st.EXPECT().GetRules(gomock.Any(), gomock.Any()).Return(rules, nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device, nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-gone").Return(nil, errors.New("device dev-gone not found"))

	reg.EXPECT().Get(device, gomock.Any(), gomock.Any()).Return(conn, nil)
	conn.EXPECT().Connect(gomock.Any()).Return(nil)
	conn.EXPECT().GetState(gomock.Any(), "/x").Return("y", nil)
	conn.EXPECT().Disconnect()

	st.EXPECT().SaveAuditResult(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateDeviceStatus(gomock.Any(), device).Return(nil)

	results, err := e.Audit(context.Background(), []string{"dev-1", "dev-gone"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "dev-1", results[0].DeviceID)
	assert.Equal(t, 1, results[0].Passed)

	assert.Equal(t, "dev-gone", results[1].DeviceID)
	assert.Empty(t, results[1].Findings)
	assert.Contains(t, results[1].Message, "not found")
}

func TestAuditLimiterAbortLeavesBackoffAlone(t *testing.T) {
	e, st, _ := newTestEngine(t)
	e.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	device := auditTestDevice()
	rules := []*models.AuditRule{{
		ID:      "rule-1",
		Name:    "baseline",
		Enabled: true,
		Checks:  []models.RuleCheck{{Locator: "/x", Operator: models.OpEquals, Expected: "y"}},
	}}

	// Token bucket drained, so the expired context aborts the wait before
	// any connection attempt.
	e.limiter.AllowN(time.Now(), 1)

	st.EXPECT().GetRules(gomock.Any(), gomock.Any()).Return(rules, nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device, nil)
	st.EXPECT().SaveAuditResult(gomock.Any(), gomock.Any()).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.Audit(ctx, []string{"dev-1"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Contains(t, results[0].Message, "aborted")
	assert.Zero(t, device.ConsecutiveFailures)
	assert.Nil(t, device.NextCheckDue)
	assert.Nil(t, device.LastCheckAttempt)
	assert.Empty(t, device.Status)
}

func TestEvaluateCheckExistence(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctrl := gomock.NewController(t)

	rule := &models.AuditRule{
		Name:     "presence",
		Severity: models.SeverityMedium,
		Checks: []models.RuleCheck{
			{Locator: "/a", Operator: models.OpExists},
			{Locator: "/b", Operator: models.OpNotExists},
		},
	}

	notFound := &connector.RetrievalError{Locator: "/a", Err: errors.New("empty reply")}

	t.Run("exists fails on unresolved locator", func(t *testing.T) {
		conn := connector.NewMockConnector(ctrl)
		conn.EXPECT().GetState(gomock.Any(), "/a").Return(nil, notFound)

		finding := e.evaluateCheck(context.Background(), conn, rule, 0)
		assert.Equal(t, models.FindingFail, finding.Status)
	})

	t.Run("not-exists passes on unresolved locator", func(t *testing.T) {
		conn := connector.NewMockConnector(ctrl)
		conn.EXPECT().GetState(gomock.Any(), "/b").Return(nil, notFound)

		finding := e.evaluateCheck(context.Background(), conn, rule, 1)
		assert.Equal(t, models.FindingPass, finding.Status)
	})

	t.Run("transport error is an error finding", func(t *testing.T) {
		conn := connector.NewMockConnector(ctrl)
		conn.EXPECT().GetState(gomock.Any(), "/a").Return(nil, errors.New("session dropped"))

		finding := e.evaluateCheck(context.Background(), conn, rule, 0)
		assert.Equal(t, models.FindingError, finding.Status)
		assert.Contains(t, finding.Error, "session dropped")
	})
}

func TestEvaluateCheckRetrievalError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	rule := &models.AuditRule{
		Name:     "mtu",
		Severity: models.SeverityLow,
		Checks:   []models.RuleCheck{{Locator: "/mtu", Operator: models.OpEquals, Expected: "9000"}},
	}

	conn.EXPECT().GetState(gomock.Any(), "/mtu").
		Return(nil, &connector.RetrievalError{Locator: "/mtu", Err: errors.New("no such path")})

	finding := e.evaluateCheck(context.Background(), conn, rule, 0)
	assert.Equal(t, models.FindingError, finding.Status)
	assert.Contains(t, finding.Error, "no such path")
}

func TestStringifyState(t *testing.T) {
	assert.Equal(t, "plain", stringifyState("plain"))
	assert.Empty(t, stringifyState(nil))
	assert.JSONEq(t, `{"mtu":"9000"}`, stringifyState(map[string]any{"mtu": "9000"}))
	assert.JSONEq(t, `["a","b"]`, stringifyState([]any{"a", "b"}))
}
