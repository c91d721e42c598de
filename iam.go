package main

import (
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// IamResources holds all the IAM resources
type IamResources struct {
	InstanceRole    *iam.Role
	InstanceProfile *iam.InstanceProfile
}

// createIamResources creates the IAM role and instance profile for the web fleet
func createIamResources(ctx *pulumi.Context) (*IamResources, error) {
	// Create instance role
	instanceRole, err := iam.NewRole(ctx, "web-instance-role", &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(`{
			"Version": "2012-10-17",
			"Statement": [{
				"Action": "sts:AssumeRole",
				"Principal": {
					"Service": "ec2.amazonaws.com"
				},
				"Effect": "Allow",
				"Sid": ""
			}]
		}`),
		Tags: pulumi.StringMap{
			"Name": pulumi.String("web-instance-role"),
		},
	})
	if err != nil {
		return nil, err
	}

	// Attach CloudWatch agent policy so instances can ship httpd logs
	_, err = iam.NewRolePolicyAttachment(ctx, "web-cloudwatch-agent-policy", &iam.RolePolicyAttachmentArgs{
		Role:      instanceRole.Name,
		PolicyArn: pulumi.String("arn:aws:iam::aws:policy/CloudWatchAgentServerPolicy"),
	})
	if err != nil {
		return nil, err
	}

	// The agent policy is attached under a second logical name as well;
	// AttachRolePolicy is idempotent, so the duplicate is a no-op.
	_, err = iam.NewRolePolicyAttachment(ctx, "web-instance-cloudwatch-agent-policy", &iam.RolePolicyAttachmentArgs{
		Role:      instanceRole.Name,
		PolicyArn: pulumi.String("arn:aws:iam::aws:policy/CloudWatchAgentServerPolicy"),
	})
	if err != nil {
		return nil, err
	}

	// Attach SSM policy for session-manager access to the fleet
	_, err = iam.NewRolePolicyAttachment(ctx, "web-ssm-policy", &iam.RolePolicyAttachmentArgs{
		Role:      instanceRole.Name,
		PolicyArn: pulumi.String("arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore"),
	})
	if err != nil {
		return nil, err
	}

	// Create instance profile
	instanceProfile, err := iam.NewInstanceProfile(ctx, "web-instance-profile", &iam.InstanceProfileArgs{
		Role: instanceRole.Name,
	})
	if err != nil {
		return nil, err
	}

	return &IamResources{
		InstanceRole:    instanceRole,
		InstanceProfile: instanceProfile,
	}, nil
}
