package main

import (
	"encoding/base64"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/autoscaling"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// ComputeResources holds the web fleet resources
type ComputeResources struct {
	LaunchTemplate   *ec2.LaunchTemplate
	AutoScalingGroup *autoscaling.Group
}

// createComputeResources creates the launch template and autoscaling group
// for the web fleet in the private subnets. Fleet instances join the target
// group through the autoscaling group attachment.
func createComputeResources(ctx *pulumi.Context, cfg *StackConfig, network *NetworkResources, security *SecurityResources, iamRes *IamResources, loadBalancer *LoadBalancerResources) (*ComputeResources, error) {
	// Get the latest Amazon Linux 2023 AMI
	ami, err := ec2.LookupAmi(ctx, &ec2.LookupAmiArgs{
		Owners:     []string{"amazon"},
		MostRecent: pulumi.BoolRef(true),
		NameRegex:  pulumi.StringRef("^al2023-ami-2023.*-x86_64$"),
		Filters: []ec2.GetAmiFilter{
			{
				Name:   "root-device-type",
				Values: []string{"ebs"},
			},
			{
				Name:   "virtualization-type",
				Values: []string{"hvm"},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	// Create launch template with the bootstrap script as user data
	launchTemplate, err := ec2.NewLaunchTemplate(ctx, "web-launch-template", &ec2.LaunchTemplateArgs{
		NamePrefix:   pulumi.String("web-"),
		ImageId:      pulumi.String(ami.Id),
		InstanceType: pulumi.String(cfg.InstanceType),
		VpcSecurityGroupIds: pulumi.StringArray{
			security.WebSecurityGroup.ID(),
		},
		IamInstanceProfile: &ec2.LaunchTemplateIamInstanceProfileArgs{
			Arn: iamRes.InstanceProfile.Arn,
		},
		UserData: pulumi.String(base64.StdEncoding.EncodeToString([]byte(bootstrapScript(cfg.AccessLogGroupName)))),
		TagSpecifications: ec2.LaunchTemplateTagSpecificationArray{
			&ec2.LaunchTemplateTagSpecificationArgs{
				ResourceType: pulumi.String("instance"),
				Tags: pulumi.StringMap{
					"Name": pulumi.String("web-server"),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	// Create autoscaling group spanning the private subnets
	autoScalingGroup, err := autoscaling.NewGroup(ctx, "web-asg", &autoscaling.GroupArgs{
		MinSize:            pulumi.Int(cfg.AsgMinSize),
		MaxSize:            pulumi.Int(cfg.AsgMaxSize),
		DesiredCapacity:    pulumi.Int(cfg.AsgDesiredCapacity),
		VpcZoneIdentifiers: subnetIds(network.PrivateSubnets),
		TargetGroupArns:    pulumi.StringArray{loadBalancer.TargetGroup.Arn},
		HealthCheckType:    pulumi.String("ELB"),
		LaunchTemplate: &autoscaling.GroupLaunchTemplateArgs{
			Id:      launchTemplate.ID(),
			Version: pulumi.String("$Latest"),
		},
		Tags: autoscaling.GroupTagArray{
			&autoscaling.GroupTagArgs{
				Key:               pulumi.String("Name"),
				Value:             pulumi.String("web-asg"),
				PropagateAtLaunch: pulumi.Bool(true),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &ComputeResources{
		LaunchTemplate:   launchTemplate,
		AutoScalingGroup: autoScalingGroup,
	}, nil
}
