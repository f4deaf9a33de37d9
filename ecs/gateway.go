package ecs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// Gateway is the read-only slice of the ECS and EC2 APIs the resolver
// needs. It hides pagination and reservation grouping. It does not retry;
// failed cycles are the poll loop's problem.
type Gateway interface {
	// ListTaskIDs returns the family's task ARNs in the API's page batches
	// (up to 100 ARNs per batch).
	ListTaskIDs(ctx context.Context, cluster, family string) ([][]string, error)
	DescribeTasks(ctx context.Context, cluster string, ids []string) ([]ecstypes.Task, error)
	DescribeContainerInstances(ctx context.Context, cluster string, arns []string) ([]ecstypes.ContainerInstance, error)
	// DescribeInstances flattens EC2 reservations into one map keyed by
	// instance ID.
	DescribeInstances(ctx context.Context, ids []string) (map[string]ec2types.Instance, error)
}

type awsGateway struct {
	aws *AWSClients
}

// NewGateway wraps the AWS clients in the Gateway interface.
func NewGateway(clients *AWSClients) Gateway {
	return &awsGateway{aws: clients}
}

func (g *awsGateway) ListTaskIDs(ctx context.Context, cluster, family string) ([][]string, error) {
	paginator := awsecs.NewListTasksPaginator(g.aws.ECS, &awsecs.ListTasksInput{
		Cluster: aws.String(cluster),
		Family:  aws.String(family),
	})

	var pages [][]string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page.TaskArns)
	}
	return pages, nil
}

func (g *awsGateway) DescribeTasks(ctx context.Context, cluster string, ids []string) ([]ecstypes.Task, error) {
	result, err := g.aws.ECS.DescribeTasks(ctx, &awsecs.DescribeTasksInput{
		Cluster: aws.String(cluster),
		Tasks:   ids,
	})
	if err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

func (g *awsGateway) DescribeContainerInstances(ctx context.Context, cluster string, arns []string) ([]ecstypes.ContainerInstance, error) {
	result, err := g.aws.ECS.DescribeContainerInstances(ctx, &awsecs.DescribeContainerInstancesInput{
		Cluster:            aws.String(cluster),
		ContainerInstances: arns,
	})
	if err != nil {
		return nil, err
	}
	return result.ContainerInstances, nil
}

func (g *awsGateway) DescribeInstances(ctx context.Context, ids []string) (map[string]ec2types.Instance, error) {
	paginator := ec2.NewDescribeInstancesPaginator(g.aws.EC2, &ec2.DescribeInstancesInput{
		InstanceIds: ids,
	})

	instances := make(map[string]ec2types.Instance)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				instances[aws.ToString(instance.InstanceId)] = instance
			}
		}
	}
	return instances, nil
}
