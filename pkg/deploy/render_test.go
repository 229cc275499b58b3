package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netaudit/pkg/models"
)

func TestRender(t *testing.T) {
	t.Run("substitutes placeholders", func(t *testing.T) {
		out, err := Render("ntp", "ntp server {{server}}\nsource {{ iface }}", map[string]string{
			"server": "192.0.2.10",
			"iface":  "Loopback0",
		})
		require.NoError(t, err)
		assert.Equal(t, "ntp server 192.0.2.10\nsource Loopback0", out)
	})

	t.Run("missing value is a render error", func(t *testing.T) {
		_, err := Render("ntp", "ntp server {{server}}", nil)

		var renderErr *TemplateRenderError

		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, "server", renderErr.Variable)
	})

	t.Run("body without placeholders passes through", func(t *testing.T) {
		out, err := Render("static", "hostname r1", nil)
		require.NoError(t, err)
		assert.Equal(t, "hostname r1", out)
	})
}

func TestValidateVariables(t *testing.T) {
	tmpl := &models.ConfigTemplate{
		Name: "ntp",
		Variables: []models.TemplateVariable{
			{Name: "server", Required: true},
			{Name: "iface", Required: true, Default: "Loopback0"},
			{Name: "comment", Required: false},
		},
	}

	t.Run("all required present", func(t *testing.T) {
		assert.NoError(t, ValidateVariables(tmpl, map[string]string{"server": "192.0.2.10"}))
	})

	t.Run("missing required names the variable", func(t *testing.T) {
		err := ValidateVariables(tmpl, nil)

		var renderErr *TemplateRenderError

		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, "server", renderErr.Variable)
	})

	t.Run("empty value counts as missing", func(t *testing.T) {
		err := ValidateVariables(tmpl, map[string]string{"server": ""})
		require.Error(t, err)
	})
}

func TestResolveVariables(t *testing.T) {
	tmpl := &models.ConfigTemplate{
		Variables: []models.TemplateVariable{
			{Name: "iface", Default: "Loopback0"},
			{Name: "server"},
		},
	}

	resolved := resolveVariables(tmpl, map[string]string{"server": "192.0.2.10"})

	assert.Equal(t, "Loopback0", resolved["iface"])
	assert.Equal(t, "192.0.2.10", resolved["server"])

	// Provided values win over defaults.
	resolved = resolveVariables(tmpl, map[string]string{"iface": "Loopback1"})
	assert.Equal(t, "Loopback1", resolved["iface"])
}
