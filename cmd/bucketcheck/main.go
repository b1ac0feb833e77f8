// bucketcheck reports what each key namespace of the bucket currently holds:
// object count and newest key per lineage. Handy when the relay "works" but
// nothing new shows up on the dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/znodanilo2017-byte/harvest-guard/internal/config"
	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

func main() {
	cfg := config.Load()
	logger.Init("warn")

	ctx := context.Background()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	fmt.Printf("🕵️ Checking bucket: %s\n\n", cfg.Bucket)

	report(ctx, st, store.NamespaceRelayed, "field sensor")
	report(ctx, st, store.NamespacePolled, "polled/simulation")
}

func report(ctx context.Context, st store.Store, ns store.Namespace, label string) {
	infos, err := st.List(ctx, string(ns))
	if err != nil {
		fmt.Printf("❌ %s* list failed: %v\n", ns, err)
		return
	}
	if len(infos) == 0 {
		fmt.Printf("❌ no %s* objects found (%s path is not writing)\n", ns, label)
		return
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	fmt.Printf("✅ %d %s objects under %s*\n", len(infos), label, ns)
	fmt.Printf("   newest: %s\n", infos[len(infos)-1].Key)
}
