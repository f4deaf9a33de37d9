package ecs

import (
	"testing"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

var (
	b1 = api.Backend{Name: "ip-10-0-0-5.ec2.internal", Host: "10.0.0.5", Port: 32768}
	b2 = api.Backend{Name: "ip-10-0-0-6.ec2.internal", Host: "10.0.0.6", Port: 32769}
	b3 = api.Backend{Name: "static1", Host: "10.0.0.9", Port: 8080}
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		previous    []api.Backend
		current     []api.Backend
		defaults    []api.Backend
		want        []api.Backend
		wantChanged bool
	}{
		{
			name:        "first discovery publishes",
			current:     []api.Backend{b1},
			want:        []api.Backend{b1},
			wantChanged: true,
		},
		{
			name:        "unchanged list does not republish",
			previous:    []api.Backend{b1, b2},
			current:     []api.Backend{b1, b2},
			want:        []api.Backend{b1, b2},
			wantChanged: false,
		},
		{
			name:        "reordered list is not a change",
			previous:    []api.Backend{b1, b2},
			current:     []api.Backend{b2, b1},
			want:        []api.Backend{b1, b2},
			wantChanged: false,
		},
		{
			name:        "membership change publishes",
			previous:    []api.Backend{b1},
			current:     []api.Backend{b1, b2},
			want:        []api.Backend{b1, b2},
			wantChanged: true,
		},
		{
			name:        "empty current falls back to defaults",
			previous:    []api.Backend{b1},
			defaults:    []api.Backend{b3},
			want:        []api.Backend{b3},
			wantChanged: true,
		},
		{
			name:        "defaults already published stay put",
			previous:    []api.Backend{b3},
			defaults:    []api.Backend{b3},
			want:        []api.Backend{b3},
			wantChanged: false,
		},
		{
			name:        "empty current and no defaults retains previous",
			previous:    []api.Backend{b1, b2},
			want:        []api.Backend{b1, b2},
			wantChanged: false,
		},
		{
			name:        "everything empty stays empty",
			want:        nil,
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := reconcile(tt.previous, tt.current, tt.defaults)
			if changed != tt.wantChanged {
				t.Errorf("changed: got %v, want %v", changed, tt.wantChanged)
			}
			if !backendsEqual(got, tt.want) {
				t.Errorf("published: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReconcileIdempotent(t *testing.T) {
	published, changed := reconcile(nil, []api.Backend{b1}, nil)
	if !changed {
		t.Fatal("first reconcile should report changed")
	}
	_, changed = reconcile(published, []api.Backend{b1}, nil)
	if changed {
		t.Error("second reconcile with same current should report unchanged")
	}
}

func TestBackendsEqualIgnoresOrder(t *testing.T) {
	a := []api.Backend{b1, b2, b3}
	b := []api.Backend{b3, b1, b2}
	if !backendsEqual(a, b) {
		t.Error("same members in different order should compare equal")
	}
	if backendsEqual(a, []api.Backend{b1, b2}) {
		t.Error("different lengths should not compare equal")
	}
	if backendsEqual([]api.Backend{b1}, []api.Backend{b2}) {
		t.Error("different members should not compare equal")
	}
}
