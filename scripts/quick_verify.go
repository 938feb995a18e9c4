//go:build ignore

// Prints each driver's routes with delivery counts per status.
//
//	go run scripts/quick_verify.go
package main

import (
	"fmt"
	"log"

	"p9e.in/choferes/config"
)

type routeSummary struct {
	Username  string `gorm:"column:username"`
	Number    int    `gorm:"column:number"`
	Status    string `gorm:"column:status"`
	Total     int    `gorm:"column:total"`
	Completed int    `gorm:"column:completed"`
	Cancelled int    `gorm:"column:cancelled"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	db, err := config.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	fmt.Println("========================================")
	fmt.Println("VERIFICATION: Routes per driver")
	fmt.Println("========================================")

	var results []routeSummary
	query := `
		SELECT
			d.username,
			r.number,
			r.status,
			COUNT(dl.id) AS total,
			COALESCE(SUM(CASE WHEN dl.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN dl.status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled
		FROM routes r
		JOIN drivers d ON d.id = r.driver_id
		LEFT JOIN deliveries dl ON dl.route_id = r.id
		GROUP BY d.username, r.number, r.status
		ORDER BY d.username, r.number
	`

	if err := db.Raw(query).Scan(&results).Error; err != nil {
		log.Fatal("Query failed:", err)
	}

	if len(results) == 0 {
		fmt.Println("❌ No routes found!")
		return
	}

	for _, r := range results {
		status := "🚚"
		if r.Status == "completed" {
			status = "✅"
		}
		fmt.Printf("%s %-20s FEC %-6d %-12s %d/%d finished (%d cancelled)\n",
			status, r.Username, r.Number, r.Status, r.Completed+r.Cancelled, r.Total, r.Cancelled)
	}

	fmt.Printf("\nTotal routes: %d\n", len(results))
}
