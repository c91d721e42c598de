package main

import (
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *StackConfig {
	return &StackConfig{
		VpcCidr:            "10.0.0.0/16",
		AvailabilityZones:  2,
		InstanceType:       "t3.micro",
		AsgMinSize:         2,
		AsgMaxSize:         4,
		AsgDesiredCapacity: 2,
		DbInstanceClass:    "db.t3.micro",
		DbEngineVersion:    "8.0",
		DbName:             "webapp",
		DbUsername:         "admin",
		AccessLogGroupName: defaultAccessLogGroupName,
	}
}

// loadConfigWith runs loadStackConfig against the given stack configuration
// and returns what it produced.
func loadConfigWith(t *testing.T, values map[string]string) (*StackConfig, error) {
	t.Helper()
	var cfg *StackConfig
	var loadErr error
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		cfg, loadErr = loadStackConfig(ctx)
		return nil
	}, pulumi.WithMocks("web-service-lab", "test", newStackMocks()), withTestConfig(values))
	require.NoError(t, err)
	return cfg, loadErr
}

func TestLoadStackConfig(t *testing.T) {
	t.Run("defaults apply when nothing is configured", func(t *testing.T) {
		cfg, err := loadConfigWith(t, nil)
		require.NoError(t, err)
		assert.Equal(t, validConfig(), cfg)
	})

	t.Run("configured values override defaults", func(t *testing.T) {
		cfg, err := loadConfigWith(t, map[string]string{
			"web-service-lab:availabilityZones": "3",
			"web-service-lab:asgMaxSize":        "6",
			"web-service-lab:instanceType":      "t3.small",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.AvailabilityZones)
		assert.Equal(t, 6, cfg.AsgMaxSize)
		assert.Equal(t, "t3.small", cfg.InstanceType)
	})

	t.Run("explicit zero zones fails validation instead of reverting to the default", func(t *testing.T) {
		_, err := loadConfigWith(t, map[string]string{
			"web-service-lab:availabilityZones": "0",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "availabilityZones must be at least 1")
	})

	t.Run("explicit zero min size fails validation", func(t *testing.T) {
		_, err := loadConfigWith(t, map[string]string{
			"web-service-lab:asgMinSize": "0",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "asgMinSize must be at least 1")
	})

	t.Run("non-integer value is rejected", func(t *testing.T) {
		_, err := loadConfigWith(t, map[string]string{
			"web-service-lab:availabilityZones": "two",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be an integer")
	})

	t.Run("access log group name is a config key", func(t *testing.T) {
		cfg, err := loadConfigWith(t, map[string]string{
			"web-service-lab:accessLogGroupName": "custom-access-logs",
		})
		require.NoError(t, err)
		assert.Equal(t, "custom-access-logs", cfg.AccessLogGroupName)
	})
}

func TestStackConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*StackConfig)
		wantErr string
	}{
		{
			name:    "zero availability zones",
			mutate:  func(c *StackConfig) { c.AvailabilityZones = 0 },
			wantErr: "availabilityZones must be at least 1",
		},
		{
			name:    "negative availability zones",
			mutate:  func(c *StackConfig) { c.AvailabilityZones = -1 },
			wantErr: "availabilityZones must be at least 1",
		},
		{
			name:    "too many availability zones",
			mutate:  func(c *StackConfig) { c.AvailabilityZones = 5 },
			wantErr: "availabilityZones must be at most 4",
		},
		{
			name:    "malformed CIDR",
			mutate:  func(c *StackConfig) { c.VpcCidr = "10.0.0.0/33" },
			wantErr: "not a valid CIDR block",
		},
		{
			name:    "not a CIDR at all",
			mutate:  func(c *StackConfig) { c.VpcCidr = "bogus" },
			wantErr: "not a valid CIDR block",
		},
		{
			name:    "IPv6 CIDR",
			mutate:  func(c *StackConfig) { c.VpcCidr = "2001:db8::/32" },
			wantErr: "must be an IPv4 block",
		},
		{
			name:    "CIDR too small for subnet layout",
			mutate:  func(c *StackConfig) { c.VpcCidr = "10.0.0.0/24" },
			wantErr: "too small to carve /24 subnets",
		},
		{
			name:    "zero min size",
			mutate:  func(c *StackConfig) { c.AsgMinSize = 0 },
			wantErr: "asgMinSize must be at least 1",
		},
		{
			name:    "max below min",
			mutate:  func(c *StackConfig) { c.AsgMinSize = 3; c.AsgMaxSize = 2; c.AsgDesiredCapacity = 3 },
			wantErr: "below asgMinSize",
		},
		{
			name:    "desired outside bounds",
			mutate:  func(c *StackConfig) { c.AsgDesiredCapacity = 9 },
			wantErr: "outside [2, 4]",
		},
		{
			name:    "empty access log group name",
			mutate:  func(c *StackConfig) { c.AccessLogGroupName = "" },
			wantErr: "accessLogGroupName must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStackConfig_SubnetCidrs(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "10.0.0.0/24", cfg.PublicSubnetCidr(0))
	assert.Equal(t, "10.0.1.0/24", cfg.PublicSubnetCidr(1))
	assert.Equal(t, "10.0.10.0/24", cfg.PrivateSubnetCidr(0))
	assert.Equal(t, "10.0.11.0/24", cfg.PrivateSubnetCidr(1))

	t.Run("public and private tiers never overlap", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < cfg.AvailabilityZones; i++ {
			for _, cidr := range []string{cfg.PublicSubnetCidr(i), cfg.PrivateSubnetCidr(i)} {
				assert.False(t, seen[cidr], "duplicate subnet CIDR %s", cidr)
				seen[cidr] = true
			}
		}
	})
}
