package aclkit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// skipBenchmarkIfNoDatabase skips the benchmark if database is not available
func skipBenchmarkIfNoDatabase(b *testing.B) (*Service, context.Context) {
	if !isDatabaseAvailable() {
		b.Skip("Database not available, skipping benchmark")
		return nil, nil
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	if err != nil {
		b.Fatalf("Failed to setup test database: %v", err)
	}

	return service, WithActorID(ctx, "bench-admin")
}

// benchmarkAcl builds the in-memory fixture the query benchmarks run
// against.
func benchmarkAcl(b *testing.B) *Acl {
	acl, err := NewBuilder().
		AddRole("guest").
		AddRole("user", "guest").
		AddRole("admin", "user").
		AddResource("index").
		AddResource("blog", "index").
		Allow([]string{"guest"}, []string{"index"}, []string{"read"}).
		Allow([]string{"user"}, []string{"blog"}, []string{"read", "comment"}).
		Deny([]string{"user"}, []string{"blog"}, []string{"publish"}).
		Allow([]string{"admin"}, nil, nil).
		Build()
	if err != nil {
		b.Fatalf("Failed to build acl: %v", err)
	}
	return acl
}

// deepAcl builds a linear hierarchy of the given depth on both axes with a
// single rule at the root, so every query walks the full lineage.
func deepAcl(b *testing.B, depth int) *Acl {
	builder := NewBuilder().AddRole("role-0").AddResource("res-0")
	for i := 1; i < depth; i++ {
		builder.AddRole(fmt.Sprintf("role-%d", i), fmt.Sprintf("role-%d", i-1))
		builder.AddResource(fmt.Sprintf("res-%d", i), fmt.Sprintf("res-%d", i-1))
	}
	builder.Allow([]string{"role-0"}, []string{"res-0"}, []string{"read"})

	acl, err := builder.Build()
	if err != nil {
		b.Fatalf("Failed to build deep acl: %v", err)
	}
	return acl
}

// ============================================================================
// Query Benchmarks
// ============================================================================

// BenchmarkIsAllowed benchmarks a direct rule hit
func BenchmarkIsAllowed(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.IsAllowed("user", "blog", "read")
	}
}

// BenchmarkIsAllowedInherited benchmarks a query resolved through both
// hierarchies
func BenchmarkIsAllowedInherited(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.IsAllowed("admin", "blog", "read")
	}
}

// BenchmarkIsAllowedDenied benchmarks the full walk to a default deny
func BenchmarkIsAllowedDenied(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.IsAllowed("guest", "blog", "publish")
	}
}

// BenchmarkIsAllowedDeepHierarchy benchmarks lineage walks over 32 levels
func BenchmarkIsAllowedDeepHierarchy(b *testing.B) {
	acl := deepAcl(b, 32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.IsAllowed("role-31", "res-31", "read")
	}
}

// BenchmarkIsAllowedAny benchmarks the combination query
func BenchmarkIsAllowedAny(b *testing.B) {
	acl := benchmarkAcl(b)
	roles := []string{"guest", "user"}
	resources := []string{"blog"}
	privileges := []string{"publish", "comment"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.IsAllowedAny(roles, resources, privileges)
	}
}

// BenchmarkCheckerCan benchmarks queries through a bound checker
func BenchmarkCheckerCan(b *testing.B) {
	checker := benchmarkAcl(b).Checker("user")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checker.Can("blog", "comment")
	}
}

// BenchmarkConcurrentIsAllowed benchmarks parallel readers on one Acl
func BenchmarkConcurrentIsAllowed(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			acl.IsAllowed("admin", "blog", "read")
		}
	})
}

// ============================================================================
// Construction Benchmarks
// ============================================================================

// BenchmarkBuild benchmarks assembling the fixture Acl
func BenchmarkBuild(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := NewBuilder().
			AddRole("guest").
			AddRole("user", "guest").
			AddRole("admin", "user").
			AddResource("index").
			AddResource("blog", "index").
			Allow([]string{"guest"}, []string{"index"}, []string{"read"}).
			Allow([]string{"user"}, []string{"blog"}, []string{"read", "comment"}).
			Deny([]string{"user"}, []string{"blog"}, []string{"publish"}).
			Allow([]string{"admin"}, nil, nil).
			Build()
		if err != nil {
			b.Fatalf("Build failed: %v", err)
		}
	}
}

// BenchmarkBuildDeep benchmarks building a 64-level hierarchy, which is
// dominated by the cycle check
func BenchmarkBuildDeep(b *testing.B) {
	for i := 0; i < b.N; i++ {
		deepAcl(b, 64)
	}
}

// BenchmarkBuilderFromAcl benchmarks the clone for incremental extension
func BenchmarkBuilderFromAcl(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuilderFromAcl(acl)
	}
}

// BenchmarkAclFromJSON benchmarks the full document path
func BenchmarkAclFromJSON(b *testing.B) {
	doc := []byte(editorialJSON)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := AclFromJSON(doc); err != nil {
			b.Fatalf("AclFromJSON failed: %v", err)
		}
	}
}

// BenchmarkDataExport benchmarks exporting an Acl to a document
func BenchmarkDataExport(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.Data()
	}
}

// ============================================================================
// Allocation Benchmarks
// ============================================================================

// BenchmarkIsAllowedAllocs measures allocations per query
func BenchmarkIsAllowedAllocs(b *testing.B) {
	acl := benchmarkAcl(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acl.IsAllowed("user", "blog", "read")
	}
}

// BenchmarkCheckerCanAllocs measures allocations per checker query
func BenchmarkCheckerCanAllocs(b *testing.B) {
	checker := benchmarkAcl(b).Checker("user")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checker.Can("blog", "read")
	}
}

// ============================================================================
// Database Benchmarks
// ============================================================================

// BenchmarkAddRole benchmarks persisting role definitions
func BenchmarkAddRole(b *testing.B) {
	service, ctx := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		name := fmt.Sprintf("bench-role-%d-%d", time.Now().UnixNano(), i)
		if err := service.AddRole(ctx, name); err != nil {
			b.Errorf("AddRole failed: %v", err)
		}
	}
}

// BenchmarkLoadAcl benchmarks rebuilding the engine from the database
func BenchmarkLoadAcl(b *testing.B) {
	service, ctx := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}

	if err := service.AddRole(ctx, "user", "guest"); err != nil {
		b.Fatalf("Failed to seed definitions: %v", err)
	}
	if err := service.Allow(ctx, []string{"user"}, nil, []string{"read"}); err != nil {
		b.Fatalf("Failed to seed rule: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.LoadAcl(ctx); err != nil {
			b.Errorf("LoadAcl failed: %v", err)
		}
	}
}

// BenchmarkServiceCan benchmarks the rebuild-then-query convenience check
func BenchmarkServiceCan(b *testing.B) {
	service, ctx := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}

	if err := service.AddRole(ctx, "user"); err != nil {
		b.Fatalf("Failed to seed definitions: %v", err)
	}
	if err := service.Allow(ctx, []string{"user"}, nil, []string{"read"}); err != nil {
		b.Fatalf("Failed to seed rule: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		service.Can(ctx, "user", "anything", "read")
	}
}

// BenchmarkTransaction benchmarks transaction wrapping overhead
func BenchmarkTransaction(b *testing.B) {
	service, ctx := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := service.Transaction(ctx, func(tx *Service) error {
			name := fmt.Sprintf("bench-tx-role-%d-%d", time.Now().UnixNano(), i)
			return tx.AddRole(ctx, name)
		})
		if err != nil {
			b.Errorf("Transaction failed: %v", err)
		}
	}
}

// BenchmarkPing benchmarks connectivity checks
func BenchmarkPing(b *testing.B) {
	service, ctx := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}
	hs := NewHealthService(service)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := hs.Ping(ctx); err != nil {
			b.Errorf("Ping failed: %v", err)
		}
	}
}

// BenchmarkIsHealthy benchmarks the boolean health check
func BenchmarkIsHealthy(b *testing.B) {
	service, ctx := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}
	hs := NewHealthService(service)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hs.IsHealthy(ctx)
	}
}

// BenchmarkGetPoolStats benchmarks pool statistics collection
func BenchmarkGetPoolStats(b *testing.B) {
	service, _ := skipBenchmarkIfNoDatabase(b)
	if service == nil {
		return
	}
	hs := NewHealthService(service)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hs.GetPoolStats()
	}
}
