// Command deliveries summarizes the hook delivery audit stored in ClickHouse.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func main() {
	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		chURL = "clickhouse://localhost:9000/hll_hooks"
	}

	opts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatalf("Failed to parse DSN: %v", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open connection: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	rows, err := conn.Query(ctx, `
		SELECT hook, status, count() AS runs, avg(duration_ms) AS avg_ms, sum(vip_granted) AS vips
		FROM hll_hooks.deliveries
		WHERE timestamp > now() - INTERVAL 1 DAY
		GROUP BY hook, status
		ORDER BY hook, status
	`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	fmt.Printf("%-16s %-10s %8s %10s %6s\n", "hook", "status", "runs", "avg_ms", "vips")
	for rows.Next() {
		var (
			hook, status string
			runs, vips   uint64
			avgMs        float64
		)
		if err := rows.Scan(&hook, &status, &runs, &avgMs, &vips); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("%-16s %-10s %8d %10.1f %6d\n", hook, status, runs, avgMs, vips)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}
}
