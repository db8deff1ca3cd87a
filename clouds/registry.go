// Package clouds provides the resource cost handler table.
// Each supported resource type maps to exactly one handler; adding a type
// means adding one table entry.
package clouds

import (
	"fmt"
	"sort"
	"sync"

	"ionos-finops/core/types"
)

// Kind is the closed enumeration of priced resource kinds
type Kind int

const (
	KindComputeInstance Kind = iota + 1
	KindCubeInstance
	KindVCPUInstance
	KindBlockVolume
	KindObjectBucket
	KindBackupUnit
	KindSnapshot
	KindLoadBalancer
	KindIPBlock
	KindNATGateway
	KindCrossConnect
	KindDatabaseCluster
	KindK8sCluster
	KindK8sNodePool
	KindBackupPlan
	KindAutoscalingGroup
	KindPrivateImage
	KindFree
)

var kindNames = map[Kind]string{
	KindComputeInstance:  "compute_instance",
	KindCubeInstance:     "cube_instance",
	KindVCPUInstance:     "vcpu_instance",
	KindBlockVolume:      "block_volume",
	KindObjectBucket:     "object_bucket",
	KindBackupUnit:       "backup_unit",
	KindSnapshot:         "snapshot",
	KindLoadBalancer:     "load_balancer",
	KindIPBlock:          "ip_block",
	KindNATGateway:       "nat_gateway",
	KindCrossConnect:     "cross_connect",
	KindDatabaseCluster:  "database_cluster",
	KindK8sCluster:       "k8s_cluster",
	KindK8sNodePool:      "k8s_node_pool",
	KindBackupPlan:       "backup_plan",
	KindAutoscalingGroup: "autoscaling_group",
	KindPrivateImage:     "private_image",
	KindFree:             "free",
}

// String returns the kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a member of the enumeration
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Kinds returns every kind in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindComputeInstance; k <= KindFree; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// CostFunc computes the cost of one resource. It must be pure: no I/O and
// no mutation of attrs or prices.
type CostFunc func(attrs types.Attributes, prices types.PriceTable) types.CostResult

// Handler binds a resource type to its cost function
type Handler struct {
	// ResourceType is the provider resource type, e.g. "ionos_server"
	ResourceType string

	// Kind classifies the resource
	Kind Kind

	// Category is the catalog category the handler mostly reads from
	Category string

	// Cost computes the resource cost
	Cost CostFunc
}

// Registry manages handler registration
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler to the registry
func (r *Registry) Register(h Handler) error {
	if h.ResourceType == "" {
		return fmt.Errorf("handler has no resource type")
	}
	if !h.Kind.Valid() {
		return fmt.Errorf("handler %s has invalid kind %d", h.ResourceType, int(h.Kind))
	}
	if h.Cost == nil {
		return fmt.Errorf("handler %s has no cost function", h.ResourceType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.ResourceType]; exists {
		return fmt.Errorf("handler already registered: %s", h.ResourceType)
	}

	r.handlers[h.ResourceType] = h
	return nil
}

// MustRegister registers handlers and panics on error. Used for the static
// handler table.
func (r *Registry) MustRegister(handlers ...Handler) {
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the handler for a resource type
func (r *Registry) Lookup(resourceType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[resourceType]
	return h, ok
}

// Has reports whether a resource type is registered
func (r *Registry) Has(resourceType string) bool {
	_, ok := r.Lookup(resourceType)
	return ok
}

// Types returns every registered resource type, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ByKind returns the registered resource types of a kind, sorted
func (r *Registry) ByKind(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for t, h := range r.handlers {
		if h.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
