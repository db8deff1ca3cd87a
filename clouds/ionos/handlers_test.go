package ionos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ionos-finops/clouds"
	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/logging"
)

const delta = 1e-9

func cost(t *testing.T, resourceType string, attrs types.Attributes, prices types.PriceTable) types.CostResult {
	t.Helper()
	h, ok := NewRegistry().Lookup(resourceType)
	require.True(t, ok, "no handler for %s", resourceType)
	return h.Cost(attrs, prices)
}

func TestServerCost(t *testing.T) {
	prices := types.PriceTable{
		"vcpu_hourly":           0.01,
		"ram_gb_hourly":         0.005,
		"storage_ssd_gb_hourly": 0.0001,
	}
	attrs := types.Attributes{
		"cores":  2,
		"ram":    4,
		"volume": map[string]any{"size": 50, "type": "SSD"},
	}

	got := cost(t, "ionos_server", attrs, prices)

	assert.InDelta(t, 0.045, got.Hourly, delta)
	assert.InDelta(t, 32.85, got.Monthly, 1e-6)
	assert.InDelta(t, 14.6, got.Breakdown["vcpu"], 1e-6)
	assert.InDelta(t, 14.6, got.Breakdown["ram"], 1e-6)
	assert.InDelta(t, 3.65, got.Breakdown["storage"], 1e-6)
}

func TestServerVolumeAsList(t *testing.T) {
	prices := types.PriceTable{"storage_hdd_gb_hourly": 0.00005}
	attrs := types.Attributes{
		"volume": []any{map[string]any{"size": 100}},
	}

	got := cost(t, "ionos_server", attrs, prices)

	assert.InDelta(t, 0.005, got.Hourly, delta)
}

func TestServerUnknownTierUsesDefault(t *testing.T) {
	attrs := types.Attributes{"volume": map[string]any{"size": 10, "type": "NVME"}}

	got := cost(t, "ionos_server", attrs, types.PriceTable{})

	assert.InDelta(t, 10*defaultStorageHourly, got.Hourly, delta)
}

func TestBucketCost(t *testing.T) {
	prices := types.PriceTable{
		"s3_storage_gb_monthly": 0.02,
		"s3_requests_per_1000":  0.004,
	}
	attrs := types.Attributes{
		"estimated_size_gb":          100,
		"estimated_requests_monthly": 10000,
	}

	got := cost(t, "ionos_s3_bucket", attrs, prices)

	assert.InDelta(t, 2.04, got.Monthly, delta)
	assert.InDelta(t, 2.04/730, got.Hourly, delta)
	assert.InDelta(t, 2.0, got.Breakdown["storage"], delta)
	assert.InDelta(t, 0.04, got.Breakdown["requests"], delta)
}

func TestDatabaseCost(t *testing.T) {
	prices := types.PriceTable{
		"dbaas_postgres_vcpu_hourly":           0.015,
		"dbaas_postgres_ram_gb_hourly":         0.008,
		"dbaas_postgres_storage_ssd_gb_hourly": 0.00015,
	}
	attrs := types.Attributes{
		"type":         "postgres",
		"cores":        2,
		"ram":          4,
		"storage_size": 50,
		"storage_type": "SSD",
		"instances":    3,
	}

	got := cost(t, "ionos_pg_cluster", attrs, prices)

	assert.InDelta(t, 0.2175, got.Hourly, delta)
	assert.InDelta(t, 0.2175*730, got.Monthly, 1e-6)
}

func TestDatabaseDefaults(t *testing.T) {
	// 1 core, 2 GB, 20 GB HDD, one instance, built-in prices
	want := 1*defaultDBVCPUHourly + 2*defaultDBRAMHourly + 20*defaultDBStorageHourly

	got := cost(t, "ionos_pg_cluster", types.Attributes{}, types.PriceTable{})

	assert.InDelta(t, want, got.Hourly, delta)
}

func TestEngine(t *testing.T) {
	tests := []struct {
		name    string
		attrs   types.Attributes
		implied string
		want    string
	}{
		{"type attribute wins", types.Attributes{"type": "MySQL"}, "postgres", "mysql"},
		{"alias", types.Attributes{"type": "postgresql"}, "", "postgres"},
		{"mongodb alias", types.Attributes{"type": "mongodb"}, "", "mongo"},
		{"implied by resource type", types.Attributes{}, "mariadb", "mariadb"},
		{"unknown type attribute falls through", types.Attributes{"type": "oracle"}, "mongo", "mongo"},
		{"default", types.Attributes{}, "", DefaultEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Engine(tt.attrs, tt.implied))
		})
	}
}

func TestEngineLogsUnknownType(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logging.Logger
	logging.Logger = zap.New(core)
	t.Cleanup(func() { logging.Logger = prev })

	assert.Equal(t, "postgres", Engine(types.Attributes{"type": "Oracle"}, ""))
	assert.Equal(t, "mysql", Engine(types.Attributes{"type": "mysql"}, "postgres"))

	entries := logs.FilterMessage("unknown database engine, using fallback pricing").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "oracle", entries[0].ContextMap()["engine"])
	assert.Equal(t, "postgres", entries[0].ContextMap()["fallback"])
}

func TestDatabaseEngineFromResourceType(t *testing.T) {
	prices := types.PriceTable{
		"dbaas_mongo_vcpu_hourly":    1,
		"dbaas_postgres_vcpu_hourly": 100,
	}
	attrs := types.Attributes{"ram": 0, "storage_size": 0}

	got := cost(t, "ionos_mongo_cluster", attrs, prices)

	assert.InDelta(t, 1.0, got.Hourly, delta)
}

func TestNodePoolCost(t *testing.T) {
	prices := types.PriceTable{
		"k8s_node_vcpu_hourly":           0.01,
		"k8s_node_ram_gb_hourly":         0.005,
		"k8s_node_storage_ssd_gb_hourly": 0.0001,
	}

	got := cost(t, "ionos_k8s_node_pool", types.Attributes{"node_count": 3}, prices)

	// per node: 2×0.01 + 4×0.005 + 50×0.0001
	assert.InDelta(t, 3*0.045, got.Hourly, delta)
}

func TestBackupPlanRetention(t *testing.T) {
	tests := []struct {
		days float64
		want float64
	}{
		{7, 5},
		{30, 5},
		{31, 7.5},
		{90, 7.5},
		{91, 10},
		{365, 10},
	}

	for _, tt := range tests {
		got := cost(t, "ionos_backup_plan", types.Attributes{"retention_days": tt.days}, types.PriceTable{})
		assert.InDelta(t, tt.want, got.Monthly, delta, "retention %v", tt.days)
		assert.InDelta(t, tt.want, got.Breakdown["backup_plan"], delta)
	}
}

func TestAutoscalingGroupCost(t *testing.T) {
	prices := types.PriceTable{
		"vcpu_hourly":             0.01,
		"ram_gb_hourly":           0.005,
		"storage_ssd_gb_hourly":   0.0001,
		"autoscaling_monthly_fee": 73,
	}

	got := cost(t, "ionos_autoscaling_group", types.Attributes{"desired_instances": 3}, prices)

	assert.InDelta(t, 3*0.045+0.1, got.Hourly, delta)
	assert.InDelta(t, 73, got.Breakdown["autoscaling_fee"], 1e-6)
}

func TestCubeServerCost(t *testing.T) {
	prices := types.PriceTable{"cube_template_basic_cube_s_hourly": 0.03}

	got := cost(t, "ionos_cube_server", types.Attributes{"template_name": "Basic Cube-S"}, prices)
	assert.InDelta(t, 0.03, got.Hourly, delta)

	unknown := cost(t, "ionos_cube_server", types.Attributes{"template_uuid": "abc"}, prices)
	assert.Zero(t, unknown.Hourly)
}

func TestCubeTemplateKey(t *testing.T) {
	assert.Equal(t, "cube_template_basic_cube_xl_hourly", CubeTemplateKey(" Basic Cube-XL "))
	assert.Equal(t, "cube_template_15c8f4a2_0001_hourly", CubeTemplateKey("15C8F4A2-0001"))
}

func TestFlatHandlers(t *testing.T) {
	tests := []struct {
		resourceType string
		attrs        types.Attributes
		hourly       float64
		component    string
	}{
		{"ionos_loadbalancer", nil, 0.034, "loadbalancer"},
		{"ionos_networkloadbalancer", nil, 0.034, "loadbalancer"},
		{"ionos_application_loadbalancer", nil, 0.034, "loadbalancer"},
		{"ionos_ipblock", nil, 0.003, "ipv4_addresses"},
		{"ionos_ipblock", types.Attributes{"size": 4}, 0.012, "ipv4_addresses"},
		{"ionos_natgateway", nil, 0.05, "nat_gateway"},
		{"ionos_crossconnect", nil, 100.0 / 730, "cross_connect"},
		{"ionos_k8s_cluster", nil, 0, "control_plane"},
		{"ionos_volume", types.Attributes{"size": 100, "type": "SSD"}, 0.01, "storage_ssd"},
		{"ionos_backup_unit", types.Attributes{"size": 100}, 0.015, "backup_storage"},
		{"ionos_snapshot", types.Attributes{"size": 100}, 0.008, "snapshot_storage"},
		{"ionos_image", types.Attributes{"size": 100}, 0.005, "image_storage"},
	}

	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			got := cost(t, tt.resourceType, tt.attrs, types.PriceTable{})
			assert.InDelta(t, tt.hourly, got.Hourly, delta)
			assert.Contains(t, got.Breakdown, tt.component)
		})
	}
}

func TestAppLoadBalancerPrefersOwnKey(t *testing.T) {
	prices := types.PriceTable{"loadbalancer_hourly": 0.02, "app_loadbalancer_hourly": 0.05}
	assert.InDelta(t, 0.05, cost(t, "ionos_application_loadbalancer", nil, prices).Hourly, delta)

	delete(prices, "app_loadbalancer_hourly")
	assert.InDelta(t, 0.02, cost(t, "ionos_application_loadbalancer", nil, prices).Hourly, delta)
}

func TestFreeTypesCostNothing(t *testing.T) {
	r := NewRegistry()
	for _, rt := range FreeTypes {
		h, ok := r.Lookup(rt)
		require.True(t, ok, rt)
		assert.Equal(t, clouds.KindFree, h.Kind)
		assert.True(t, h.Cost(types.Attributes{"size": 1000}, types.PriceTable{"vcpu_hourly": 1}).IsZero())
	}
}

// Every handler honours monthly = hourly × 730 against the bundled catalog
// and with no catalog at all.
func TestMonthlyIsHourlyTimes730(t *testing.T) {
	attrs := types.Attributes{
		"cores":                      4,
		"ram":                        8,
		"size":                       200,
		"volume":                     map[string]any{"size": 80, "type": "ssd"},
		"storage_size":               120,
		"storage_type":               "SSD",
		"instances":                  2,
		"node_count":                 3,
		"desired_instances":          5,
		"retention_days":             45,
		"estimated_size_gb":          500,
		"estimated_requests_monthly": 250000,
		"template_name":              "basic-cube-m",
	}
	bundled := pricing.Flatten(pricing.LoadBundled(pricing.DefaultRegion))

	for _, h := range Handlers() {
		for name, prices := range map[string]types.PriceTable{"bundled": bundled, "empty": {}} {
			got := h.Cost(attrs, prices)
			assert.InDelta(t, got.Hourly*types.HoursPerMonth, got.Monthly, 1e-9, "%s/%s", h.ResourceType, name)
			assert.GreaterOrEqual(t, got.Hourly, 0.0, h.ResourceType)
			assert.NotNil(t, got.Breakdown, h.ResourceType)

			var sum float64
			for _, v := range got.Breakdown {
				sum += v
			}
			assert.InDelta(t, got.Monthly, sum, 1e-6, "%s/%s breakdown", h.ResourceType, name)
		}
	}
}

func TestZeroSizesCostNothing(t *testing.T) {
	attrs := types.Attributes{
		"cores": 0, "ram": 0, "size": 0, "storage_size": 0,
		"instances": 0, "node_count": 0, "desired_instances": 0,
		"estimated_size_gb": 0, "estimated_requests_monthly": 0,
	}
	sized := []string{
		"ionos_server", "ionos_vcpu_server", "ionos_volume", "ionos_s3_bucket",
		"ionos_backup_unit", "ionos_snapshot", "ionos_image", "ionos_pg_cluster",
		"ionos_k8s_node_pool", "ionos_autoscaling_group",
	}

	for _, rt := range sized {
		assert.True(t, cost(t, rt, attrs, types.PriceTable{}).IsZero(), rt)
	}
}

func TestNewRegistryTable(t *testing.T) {
	r := NewRegistry()

	want := []string{
		"ionos_server", "ionos_cube_server", "ionos_vcpu_server", "ionos_volume",
		"ionos_s3_bucket", "ionos_backup_unit", "ionos_snapshot", "ionos_loadbalancer",
		"ionos_networkloadbalancer", "ionos_application_loadbalancer", "ionos_ipblock",
		"ionos_natgateway", "ionos_crossconnect", "ionos_pg_cluster", "ionos_mongo_cluster",
		"ionos_mysql_cluster", "ionos_mariadb_cluster", "ionos_k8s_cluster",
		"ionos_k8s_node_pool", "ionos_backup_plan", "ionos_autoscaling_group", "ionos_image",
	}
	for _, rt := range want {
		assert.True(t, r.Has(rt), rt)
	}
	assert.Len(t, r.Types(), len(want)+len(FreeTypes))
	assert.ElementsMatch(t, FreeTypes, r.ByKind(clouds.KindFree))
	assert.False(t, r.Has("aws_instance"))
}
