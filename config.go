package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// StackConfig holds the literal parameters for the web service stack.
type StackConfig struct {
	VpcCidr            string
	AvailabilityZones  int
	InstanceType       string
	AsgMinSize         int
	AsgMaxSize         int
	AsgDesiredCapacity int
	DbInstanceClass    string
	DbEngineVersion    string
	DbName             string
	DbUsername         string
	AccessLogGroupName string
}

// tryInt returns the configured value when the key is set, otherwise the
// default. An explicitly configured value is parsed and passed through
// unchanged, so an explicit zero still reaches validation.
func tryInt(cfg *config.Config, key string, def int) (int, error) {
	raw, err := cfg.Try(key)
	if err != nil {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}

// tryString returns the configured value when the key is set, otherwise the
// default.
func tryString(cfg *config.Config, key, def string) string {
	if raw, err := cfg.Try(key); err == nil {
		return raw
	}
	return def
}

// loadStackConfig reads configuration values with their defaults and
// validates them before any resource is declared.
func loadStackConfig(ctx *pulumi.Context) (*StackConfig, error) {
	projectCfg := config.New(ctx, "web-service-lab")

	cfg := &StackConfig{
		VpcCidr:            tryString(projectCfg, "vpcCidr", "10.0.0.0/16"),
		InstanceType:       tryString(projectCfg, "instanceType", "t3.micro"),
		DbInstanceClass:    tryString(projectCfg, "dbInstanceClass", "db.t3.micro"),
		DbEngineVersion:    tryString(projectCfg, "dbEngineVersion", "8.0"),
		DbName:             tryString(projectCfg, "dbName", "webapp"),
		DbUsername:         tryString(projectCfg, "dbUsername", "admin"),
		AccessLogGroupName: tryString(projectCfg, "accessLogGroupName", defaultAccessLogGroupName),
	}

	var err error
	if cfg.AvailabilityZones, err = tryInt(projectCfg, "availabilityZones", 2); err != nil {
		return nil, err
	}
	if cfg.AsgMinSize, err = tryInt(projectCfg, "asgMinSize", 2); err != nil {
		return nil, err
	}
	if cfg.AsgMaxSize, err = tryInt(projectCfg, "asgMaxSize", 4); err != nil {
		return nil, err
	}
	if cfg.AsgDesiredCapacity, err = tryInt(projectCfg, "asgDesiredCapacity", 2); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects invalid literal parameters before graph construction starts.
func (c *StackConfig) Validate() error {
	if c.AvailabilityZones < 1 {
		return fmt.Errorf("availabilityZones must be at least 1, got %d", c.AvailabilityZones)
	}
	// Subnet CIDRs are carved per AZ out of the third octet, so the zone
	// count is bounded by the addressing layout.
	if c.AvailabilityZones > 4 {
		return fmt.Errorf("availabilityZones must be at most 4, got %d", c.AvailabilityZones)
	}
	ip, network, err := net.ParseCIDR(c.VpcCidr)
	if err != nil {
		return fmt.Errorf("vpcCidr %q is not a valid CIDR block: %w", c.VpcCidr, err)
	}
	if ip.To4() == nil {
		return fmt.Errorf("vpcCidr %q must be an IPv4 block", c.VpcCidr)
	}
	if ones, _ := network.Mask.Size(); ones > 16 {
		return fmt.Errorf("vpcCidr %q is too small to carve /24 subnets, need /16 or larger", c.VpcCidr)
	}
	if c.AsgMinSize < 1 {
		return fmt.Errorf("asgMinSize must be at least 1, got %d", c.AsgMinSize)
	}
	if c.AsgMaxSize < c.AsgMinSize {
		return fmt.Errorf("asgMaxSize %d is below asgMinSize %d", c.AsgMaxSize, c.AsgMinSize)
	}
	if c.AsgDesiredCapacity < c.AsgMinSize || c.AsgDesiredCapacity > c.AsgMaxSize {
		return fmt.Errorf("asgDesiredCapacity %d is outside [%d, %d]", c.AsgDesiredCapacity, c.AsgMinSize, c.AsgMaxSize)
	}
	if c.AccessLogGroupName == "" {
		return fmt.Errorf("accessLogGroupName must not be empty")
	}
	return nil
}

// PublicSubnetCidr returns the CIDR block for the i-th public subnet.
func (c *StackConfig) PublicSubnetCidr(i int) string {
	ip, _, _ := net.ParseCIDR(c.VpcCidr)
	v4 := ip.To4()
	return fmt.Sprintf("%d.%d.%d.0/24", v4[0], v4[1], i)
}

// PrivateSubnetCidr returns the CIDR block for the i-th private subnet.
// Private subnets start at the .10 third octet to keep the two tiers apart.
func (c *StackConfig) PrivateSubnetCidr(i int) string {
	ip, _, _ := net.ParseCIDR(c.VpcCidr)
	v4 := ip.To4()
	return fmt.Sprintf("%d.%d.%d.0/24", v4[0], v4[1], 10+i)
}
