package main

import (
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/rds"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ssm"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// DatabaseResources holds the managed MySQL database resources
type DatabaseResources struct {
	SubnetGroup *rds.SubnetGroup
	Instance    *rds.Instance
}

// createDatabaseResources creates the MySQL instance in the private subnets
func createDatabaseResources(ctx *pulumi.Context, cfg *StackConfig, network *NetworkResources, security *SecurityResources) (*DatabaseResources, error) {
	// Create subnet group spanning the private subnets
	subnetGroup, err := rds.NewSubnetGroup(ctx, "db-subnet-group", &rds.SubnetGroupArgs{
		SubnetIds: subnetIds(network.PrivateSubnets),
		Tags: pulumi.StringMap{
			"Name": pulumi.String("web-db-subnet-group"),
		},
	})
	if err != nil {
		return nil, err
	}

	// Create MySQL instance
	instance, err := rds.NewInstance(ctx, "web-db", &rds.InstanceArgs{
		Engine:              pulumi.String("mysql"),
		EngineVersion:       pulumi.String(cfg.DbEngineVersion),
		InstanceClass:       pulumi.String(cfg.DbInstanceClass),
		AllocatedStorage:    pulumi.Int(20),
		DbName:              pulumi.String(cfg.DbName),
		Username:            pulumi.String(cfg.DbUsername),
		Password:            pulumi.String(dbMasterPassword),
		DbSubnetGroupName:   subnetGroup.Name,
		VpcSecurityGroupIds: pulumi.StringArray{security.DbSecurityGroup.ID()},
		PubliclyAccessible:  pulumi.Bool(false),
		StorageEncrypted:    pulumi.Bool(true),
		SkipFinalSnapshot:   pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name": pulumi.String("web-db"),
		},
	})
	if err != nil {
		return nil, err
	}

	// Store the database address in SSM Parameter Store for the fleet
	_, err = ssm.NewParameter(ctx, "db-endpoint-param", &ssm.ParameterArgs{
		Name:  pulumi.String("/web-service-lab/db-endpoint"),
		Type:  pulumi.String("String"),
		Value: instance.Address,
		Tags: pulumi.StringMap{
			"Name": pulumi.String("web-db-endpoint"),
		},
	})
	if err != nil {
		return nil, err
	}

	return &DatabaseResources{
		SubnetGroup: subnetGroup,
		Instance:    instance,
	}, nil
}
