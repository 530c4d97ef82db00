//go:build ignore

// Dev seed: inserts a few vehicles and clients so the booking endpoints
// have something to work with. Run with:
//
//	go run scripts/seed_data.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/godror/godror"
	"github.com/joho/godotenv"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := sql.Open("godror", cfg.Oracle.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}
	fmt.Println("Connected to Oracle database")

	seedVehicles(ctx, db)
	seedClients(ctx, db)
	printCounts(ctx, db)
}

type seedVehicle struct {
	make, model, plate, currency string
	year                         int
	pricePerDay                  float64
	serviceTypes                 []string
}

func seedVehicles(ctx context.Context, db *sql.DB) {
	vehicles := []seedVehicle{
		{"Renault", "Clio 5", "16-20345-113", "DZD", 2022, 7500, []string{"INDIVIDUAL"}},
		{"Hyundai", "Tucson", "31-11876-114", "DZD", 2023, 14000, []string{"INDIVIDUAL", "ENTERPRISE"}},
		{"Mercedes-Benz", "Classe E", "16-33901-115", "DZD", 2021, 28000, []string{"EVENTS", "ENTERPRISE"}},
		{"Dacia", "Duster", "09-45012-116", "DZD", 2022, 9000, []string{"INDIVIDUAL", "ENTERPRISE"}},
	}

	for _, v := range vehicles {
		var exists int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles WHERE license_plate = :1`, v.plate).Scan(&exists); err != nil {
			log.Fatalf("failed to check vehicle %s: %v", v.plate, err)
		}
		if exists > 0 {
			fmt.Printf("vehicle %s already seeded\n", v.plate)
			continue
		}

		var id int64
		_, err := db.ExecContext(ctx, `
			INSERT INTO vehicles (make, model, year, license_plate, price_per_day, currency, availability, is_active, created_at, updated_at)
			VALUES (:1, :2, :3, :4, :5, :6, 1, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			RETURNING id INTO :7`,
			v.make, v.model, v.year, v.plate, v.pricePerDay, v.currency,
			sql.Out{Dest: &id},
		)
		if err != nil {
			log.Fatalf("failed to seed vehicle %s %s: %v", v.make, v.model, err)
		}
		for _, st := range v.serviceTypes {
			if _, err := db.ExecContext(ctx, `
				INSERT INTO vehicle_service_types (vehicle_id, service_type) VALUES (:1, :2)`, id, st); err != nil {
				log.Fatalf("failed to seed service type %s: %v", st, err)
			}
		}
		fmt.Printf("seeded vehicle %s %s (%s)\n", v.make, v.model, v.plate)
	}
}

func seedClients(ctx context.Context, db *sql.DB) {
	clients := []struct {
		nom, prenom, telephone, email string
	}{
		{"Dupont", "Jean", "+213550123456", "jean.dupont@example.com"},
		{"Benali", "Amina", "+213661234567", "amina.benali@example.com"},
		{"Martin", "Sophie", "+213770345678", "sophie.martin@example.com"},
	}

	for _, c := range clients {
		_, err := db.ExecContext(ctx, `
			INSERT INTO clients (nom, prenom, telephone, email, status, is_active, created_at, updated_at)
			SELECT :1, :2, :3, :4, 'ACTIF', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP FROM dual
			WHERE NOT EXISTS (SELECT 1 FROM clients WHERE email = :5)`,
			c.nom, c.prenom, c.telephone, c.email, c.email,
		)
		if err != nil {
			log.Fatalf("failed to seed client %s %s: %v", c.prenom, c.nom, err)
		}
		fmt.Printf("seeded client %s %s\n", c.prenom, c.nom)
	}
}

func printCounts(ctx context.Context, db *sql.DB) {
	for _, table := range []string{"vehicles", "clients", "contracts", "rent_requests"} {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			log.Printf("failed to count %s: %v", table, err)
			continue
		}
		fmt.Printf("%s: %d rows\n", table, count)
	}
}
