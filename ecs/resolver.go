package ecs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

const statusRunning = "RUNNING"

// resolveBackends queries the cluster inventory and turns every RUNNING
// task of the family into at most one Backend. Batches are resolved
// sequentially; any API or port-selection error fails the whole cycle.
func resolveBackends(ctx context.Context, gw Gateway, cfg Config) ([]api.Backend, error) {
	pages, err := gw.ListTaskIDs(ctx, cfg.Cluster, cfg.Family)
	if err != nil {
		return nil, err
	}

	var backends []api.Backend
	for _, ids := range pages {
		if len(ids) == 0 {
			continue
		}
		batch, err := resolveBatch(ctx, gw, cfg, ids)
		if err != nil {
			return nil, err
		}
		backends = append(backends, batch...)
	}
	return backends, nil
}

func resolveBatch(ctx context.Context, gw Gateway, cfg Config, ids []string) ([]api.Backend, error) {
	tasks, err := gw.DescribeTasks(ctx, cfg.Cluster, ids)
	if err != nil {
		return nil, err
	}

	containerInstances, err := containerInstanceLookup(ctx, gw, cfg.Cluster, tasks)
	if err != nil {
		return nil, err
	}
	instances, err := instanceLookup(ctx, gw, containerInstances)
	if err != nil {
		return nil, err
	}

	var backends []api.Backend
	for _, task := range tasks {
		// list and describe race; re-check status on the described record
		if aws.ToString(task.LastStatus) != statusRunning {
			continue
		}

		hostPort, ok, err := selectHostPort(cfg, task)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		ci, ok := containerInstances[aws.ToString(task.ContainerInstanceArn)]
		if !ok {
			continue
		}
		instance, ok := instances[aws.ToString(ci.Ec2InstanceId)]
		if !ok {
			continue
		}

		name, host := instanceAddress(instance, cfg.Interface)
		backends = append(backends, api.Backend{Name: name, Host: host, Port: int(hostPort)})
	}
	return backends, nil
}

// containerInstanceLookup maps container-instance ARN to its record for
// every placement in the batch. First match wins on duplicates.
func containerInstanceLookup(ctx context.Context, gw Gateway, cluster string, tasks []ecstypes.Task) (map[string]ecstypes.ContainerInstance, error) {
	lookup := make(map[string]ecstypes.ContainerInstance)

	var arns []string
	seen := make(map[string]bool)
	for _, task := range tasks {
		arn := aws.ToString(task.ContainerInstanceArn)
		if arn == "" || seen[arn] {
			continue
		}
		seen[arn] = true
		arns = append(arns, arn)
	}
	if len(arns) == 0 {
		return lookup, nil
	}

	described, err := gw.DescribeContainerInstances(ctx, cluster, arns)
	if err != nil {
		return nil, err
	}
	for _, ci := range described {
		arn := aws.ToString(ci.ContainerInstanceArn)
		if _, dup := lookup[arn]; !dup {
			lookup[arn] = ci
		}
	}
	return lookup, nil
}

// instanceLookup fetches the EC2 instances referenced by the batch's
// container instances, keyed by instance ID.
func instanceLookup(ctx context.Context, gw Gateway, containerInstances map[string]ecstypes.ContainerInstance) (map[string]ec2types.Instance, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, ci := range containerInstances {
		id := aws.ToString(ci.Ec2InstanceId)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[string]ec2types.Instance{}, nil
	}
	return gw.DescribeInstances(ctx, ids)
}

// selectHostPort picks the single host port a task contributes. ok is false
// when the task has no mapped bindings at all (it contributes no backend).
func selectHostPort(cfg Config, task ecstypes.Task) (port int32, ok bool, err error) {
	var bindings []ecstypes.NetworkBinding
	for _, container := range task.Containers {
		for _, nb := range container.NetworkBindings {
			if nb.HostPort == nil {
				continue // not mapped yet
			}
			bindings = append(bindings, nb)
		}
	}
	if len(bindings) == 0 {
		return 0, false, nil
	}

	if cfg.ContainerPort == 0 {
		if len(bindings) > 1 {
			return 0, false, &AmbiguousPortError{Service: cfg.Service, Bindings: len(bindings)}
		}
		return aws.ToInt32(bindings[0].HostPort), true, nil
	}

	var matches []ecstypes.NetworkBinding
	for _, nb := range bindings {
		if int(aws.ToInt32(nb.ContainerPort)) == cfg.ContainerPort {
			matches = append(matches, nb)
		}
	}
	switch len(matches) {
	case 0:
		return 0, false, &NoMatchingPortError{Service: cfg.Service, ContainerPort: cfg.ContainerPort}
	case 1:
		return aws.ToInt32(matches[0].HostPort), true, nil
	default:
		return 0, false, &AmbiguousPortError{Service: cfg.Service, Bindings: len(matches)}
	}
}

// instanceAddress selects the DNS name and IP for the configured interface.
func instanceAddress(instance ec2types.Instance, iface string) (name, host string) {
	if iface == InterfacePublic {
		return aws.ToString(instance.PublicDnsName), aws.ToString(instance.PublicIpAddress)
	}
	return aws.ToString(instance.PrivateDnsName), aws.ToString(instance.PrivateIpAddress)
}
