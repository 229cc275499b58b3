package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/netaudit/pkg/connector"
	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

func newTestEngine(t *testing.T, cfg models.DeployConfig) (*Engine, *store.MockStore, *connector.MockRegistry) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := store.NewMockStore(ctrl)
	reg := connector.NewMockRegistry(ctrl)

	e := NewEngine(st, reg, &models.CoreConfig{Deploy: cfg}, logger.NewTestLogger())
	e.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return e, st, reg
}

func ntpTemplate() *models.ConfigTemplate {
	return &models.ConfigTemplate{
		ID:     "tpl-1",
		Name:   "ntp",
		Vendor: models.VendorCiscoIOSXE,
		Body:   "ntp server {{server}}",
		Variables: []models.TemplateVariable{
			{Name: "server", Required: true},
		},
	}
}

func ciscoDevice(id string) *models.Device {
	return &models.Device{ID: id, Vendor: models.VendorCiscoIOSXR}
}

func TestDeployRenderFailureNeverConnects(t *testing.T) {
	e, st, _ := newTestEngine(t, models.DeployConfig{})

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(ntpTemplate(), nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(ciscoDevice("dev-1"), nil)

	// No registry expectation: any connector acquisition fails the test.
	deployment := e.Deploy(context.Background(), "tpl-1", "dev-1", nil, false)

	assert.Equal(t, models.DeploymentFailed, deployment.Status)
	assert.Contains(t, deployment.Error, `"server"`)
	assert.Empty(t, deployment.Rendered)
}

func TestDeployVendorFamilyMismatch(t *testing.T) {
	e, st, _ := newTestEngine(t, models.DeployConfig{})

	tmpl := ntpTemplate()
	tmpl.Vendor = models.VendorNokiaSROS

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(tmpl, nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(ciscoDevice("dev-1"), nil)

	deployment := e.Deploy(context.Background(), "tpl-1", "dev-1", map[string]string{"server": "192.0.2.10"}, false)

	assert.Equal(t, models.DeploymentFailed, deployment.Status)
	assert.Contains(t, deployment.Error, "does not match")
}

func TestDeployFamilyMatchAcrossConcreteTags(t *testing.T) {
	// cisco-iosxe template deploys to a cisco-iosxr device: family match,
	// not byte equality.
	e, st, reg := newTestEngine(t, models.DeployConfig{})
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(ntpTemplate(), nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(ciscoDevice("dev-1"), nil)
	st.EXPECT().SaveDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().IncrementTemplateUsage(gomock.Any(), "tpl-1").Return(nil)

	reg.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(conn, nil)
	conn.EXPECT().Connect(gomock.Any()).Return(nil)
	conn.EXPECT().EditConfig(gomock.Any(), gomock.Any()).Return(nil)
	conn.EXPECT().Disconnect()

	deployment := e.Deploy(context.Background(), "tpl-1", "dev-1", map[string]string{"server": "192.0.2.10"}, false)

	assert.Equal(t, models.DeploymentSuccess, deployment.Status)
	assert.Equal(t, "ntp server 192.0.2.10", deployment.Rendered)
	require.NotNil(t, deployment.CompletedAt)
}

func TestDeployDryRun(t *testing.T) {
	e, st, _ := newTestEngine(t, models.DeployConfig{BackupEnabled: true})

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(ntpTemplate(), nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(ciscoDevice("dev-1"), nil)
	st.EXPECT().SaveDeployment(gomock.Any(), gomock.Any()).Return(nil)

	var updated *models.TemplateDeployment

	st.EXPECT().UpdateDeployment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *models.TemplateDeployment) error {
			updated = d
			return nil
		})

	deployment := e.Deploy(context.Background(), "tpl-1", "dev-1", map[string]string{"server": "192.0.2.10"}, true)

	assert.Equal(t, models.DeploymentValidated, deployment.Status)
	assert.True(t, deployment.DryRun)
	assert.Equal(t, "ntp server 192.0.2.10", deployment.Rendered)
	assert.Same(t, deployment, updated)
}

func TestDeployApplyFailure(t *testing.T) {
	e, st, reg := newTestEngine(t, models.DeployConfig{})
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(ntpTemplate(), nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(ciscoDevice("dev-1"), nil)
	st.EXPECT().SaveDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateDeployment(gomock.Any(), gomock.Any()).Return(nil)

	reg.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(conn, nil)
	conn.EXPECT().Connect(gomock.Any()).Return(nil)
	conn.EXPECT().EditConfig(gomock.Any(), gomock.Any()).
		Return(&connector.ConfigApplyError{Reason: "invalid input"})
	conn.EXPECT().Disconnect()

	// Usage counter must not move on failure: no IncrementTemplateUsage
	// expectation.
	deployment := e.Deploy(context.Background(), "tpl-1", "dev-1", map[string]string{"server": "192.0.2.10"}, false)

	assert.Equal(t, models.DeploymentFailed, deployment.Status)
	assert.Contains(t, deployment.Error, "invalid input")
}

func TestDeployModelDrivenLocator(t *testing.T) {
	e, st, reg := newTestEngine(t, models.DeployConfig{})
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	tmpl := &models.ConfigTemplate{
		ID:      "tpl-2",
		Name:    "port-mtu",
		Vendor:  models.VendorNokiaSROS,
		Body:    `{"mtu": "{{mtu}}"}`,
		Locator: "/configure/port[port-id='1/1/1']",
		Variables: []models.TemplateVariable{
			{Name: "mtu", Required: true},
		},
	}
	device := &models.Device{ID: "dev-1", Vendor: models.VendorNokiaSRLinux}

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-2").Return(tmpl, nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device, nil)
	st.EXPECT().SaveDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().IncrementTemplateUsage(gomock.Any(), "tpl-2").Return(nil)

	reg.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(conn, nil)
	conn.EXPECT().Connect(gomock.Any()).Return(nil)

	var captured *connector.EditRequest

	conn.EXPECT().EditConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *connector.EditRequest) error {
			captured = req
			return nil
		})
	conn.EXPECT().Disconnect()

	deployment := e.Deploy(context.Background(), "tpl-2", "dev-1", map[string]string{"mtu": "9000"}, false)

	assert.Equal(t, models.DeploymentSuccess, deployment.Status)
	require.NotNil(t, captured)
	assert.Equal(t, map[string]any{"mtu": "9000"}, captured.Structured)
	assert.Equal(t, "/configure/port[port-id='1/1/1']", captured.Locator)
	assert.Empty(t, captured.Payload)
}

func TestDeployBackupRecorded(t *testing.T) {
	e, st, reg := newTestEngine(t, models.DeployConfig{BackupEnabled: true})
	ctrl := gomock.NewController(t)
	conn := connector.NewMockConnector(ctrl)

	st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(ntpTemplate(), nil)
	st.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(ciscoDevice("dev-1"), nil)
	st.EXPECT().SaveDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateDeployment(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().IncrementTemplateUsage(gomock.Any(), "tpl-1").Return(nil)

	var backup *models.ConfigBackup

	st.EXPECT().SaveBackup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.ConfigBackup) error {
			backup = b
			return nil
		})

	reg.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(conn, nil)
	conn.EXPECT().Connect(gomock.Any()).Return(nil)
	conn.EXPECT().GetConfig(gomock.Any()).Return("hostname r1\n", nil)
	conn.EXPECT().EditConfig(gomock.Any(), gomock.Any()).Return(nil)
	conn.EXPECT().Disconnect()

	deployment := e.Deploy(context.Background(), "tpl-1", "dev-1", map[string]string{"server": "192.0.2.10"}, false)

	assert.Equal(t, models.DeploymentSuccess, deployment.Status)
	require.NotNil(t, backup)
	assert.Equal(t, "deployment", backup.TriggeredBy)
	assert.Equal(t, backup.ID, deployment.BackupID)
}

func TestDeployGroupsDeduplicates(t *testing.T) {
	e, st, _ := newTestEngine(t, models.DeployConfig{Concurrency: 1})

	groupA := []*models.Device{{ID: "dev-1"}, {ID: "dev-2"}}
	groupB := []*models.Device{{ID: "dev-2"}, {ID: "dev-3"}}

	st.EXPECT().GetGroupDevices(gomock.Any(), "grp-a").Return(groupA, nil)
	st.EXPECT().GetGroupDevices(gomock.Any(), "grp-b").Return(groupB, nil)

	// Each unique device is deployed to exactly once; dry-run keeps the
	// pipeline off the network.
	for _, id := range []string{"dev-1", "dev-2", "dev-3"} {
		st.EXPECT().GetTemplate(gomock.Any(), "tpl-1").Return(ntpTemplate(), nil)
		st.EXPECT().GetDevice(gomock.Any(), id).Return(ciscoDevice(id), nil)
	}

	st.EXPECT().SaveDeployment(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	st.EXPECT().UpdateDeployment(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	summary, err := e.DeployGroups(context.Background(), "tpl-1", []string{"grp-a", "grp-b"},
		map[string]string{"server": "192.0.2.10"}, true)
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, 3, summary.Successful)
	assert.Zero(t, summary.Failed)
}
