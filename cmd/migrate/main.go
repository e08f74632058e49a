package main

import (
	"log"

	"oip/checkout/internal/app/config"
	"oip/checkout/internal/app/infra/persistence/mysql"
)

// 创建/更新 orders、payments、order_logs 表
func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.MySQL.DSN == "" {
		log.Fatalf("mysql dsn is required")
	}

	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer mysql.Close(db)

	if err := mysql.Migrate(db); err != nil {
		log.Fatalf("Migrate failed: %v", err)
	}
	log.Println("Migrate completed")
}
