package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/netaudit/pkg/logger"
	"github.com/carverauto/netaudit/pkg/models"
	"github.com/carverauto/netaudit/pkg/store"
)

func newTestChecker(t *testing.T) (*SNMPChecker, *store.MockStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := store.NewMockStore(ctrl)

	c := NewSNMPChecker(st, logger.NewTestLogger())
	c.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return c, st
}

func TestCheckSuccessResetsBackoff(t *testing.T) {
	c, st := newTestChecker(t)
	c.probe = func(context.Context, *models.Device) error { return nil }

	due := time.Now()
	device := &models.Device{ID: "dev-1", ConsecutiveFailures: 3, NextCheckDue: &due}

	st.EXPECT().UpdateDeviceStatus(gomock.Any(), device).Return(nil)

	require.NoError(t, c.Check(context.Background(), device))

	assert.Zero(t, device.ConsecutiveFailures)
	assert.Nil(t, device.NextCheckDue)
	assert.Equal(t, models.DeviceStatusOnline, device.Status)
}

func TestCheckFailureGrowsBackoff(t *testing.T) {
	c, st := newTestChecker(t)
	c.probe = func(context.Context, *models.Device) error { return errors.New("timeout") }

	device := &models.Device{ID: "dev-1", ConsecutiveFailures: 1}

	st.EXPECT().UpdateDeviceStatus(gomock.Any(), device).Return(nil)

	err := c.Check(context.Background(), device)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")

	assert.Equal(t, 2, device.ConsecutiveFailures)
	assert.Equal(t, models.DeviceStatusUnreachable, device.Status)
	require.NotNil(t, device.NextCheckDue)
	assert.Equal(t, c.now().Add(10*time.Minute), *device.NextCheckDue)
}

func TestBuildClient(t *testing.T) {
	c, _ := newTestChecker(t)

	t.Run("defaults to v2c", func(t *testing.T) {
		client, err := c.buildClient(&models.Device{
			IP:       "192.0.2.1",
			Metadata: map[string]string{metaSNMPCommunity: "public"},
		})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.Version2c, client.Version)
		assert.Equal(t, "public", client.Community)
		assert.Equal(t, uint16(161), client.Port)
	})

	t.Run("v3 from metadata", func(t *testing.T) {
		client, err := c.buildClient(&models.Device{
			IP: "192.0.2.1",
			Metadata: map[string]string{
				metaSNMPVersion:   "3",
				metaSNMPUsername:  "probe",
				metaSNMPAuthProto: "SHA256",
				metaSNMPAuthPass:  "authpass",
				metaSNMPPrivProto: "AES",
				metaSNMPPrivPass:  "privpass",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.Version3, client.Version)

		usm, ok := client.SecurityParameters.(*gosnmp.UsmSecurityParameters)
		require.True(t, ok)
		assert.Equal(t, "probe", usm.UserName)
		assert.Equal(t, gosnmp.SHA256, usm.AuthenticationProtocol)
		assert.Equal(t, gosnmp.AES, usm.PrivacyProtocol)
		assert.Equal(t, gosnmp.AuthPriv, client.MsgFlags)
	})

	t.Run("v3 without privacy is authNoPriv", func(t *testing.T) {
		client, err := c.buildClient(&models.Device{
			IP: "192.0.2.1",
			Metadata: map[string]string{
				metaSNMPVersion:   "3",
				metaSNMPUsername:  "probe",
				metaSNMPAuthProto: "SHA",
				metaSNMPAuthPass:  "authpass",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.AuthNoPriv, client.MsgFlags)
	})

	t.Run("v3 with username only is noAuthNoPriv", func(t *testing.T) {
		client, err := c.buildClient(&models.Device{
			IP: "192.0.2.1",
			Metadata: map[string]string{
				metaSNMPVersion:  "3",
				metaSNMPUsername: "probe",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.NoAuthNoPriv, client.MsgFlags)
	})

	t.Run("missing community is an error", func(t *testing.T) {
		_, err := c.buildClient(&models.Device{IP: "192.0.2.1"})
		require.ErrorIs(t, err, errNoSNMPAccess)
	})

	t.Run("unknown version is an error", func(t *testing.T) {
		_, err := c.buildClient(&models.Device{
			IP:       "192.0.2.1",
			Metadata: map[string]string{metaSNMPVersion: "v9"},
		})
		require.ErrorIs(t, err, ErrUnsupportedSNMPVersion)
	})
}
