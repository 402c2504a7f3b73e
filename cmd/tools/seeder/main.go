package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedSettings(db)
	seedCustomers(db)
	seedProducts(db)

	log.Println("Seeding completed successfully!")
}

func seedSettings(db *sql.DB) {
	fmt.Println("Seeding Settings...")
	_, err := db.Exec(`
		INSERT INTO settings (id, workspace_name, hourly_rate, currency_code, tax_rate, expiry_warning_min)
		VALUES (1, 'Ruang Kerja', 10.00, 'USD', 0.00, 10)
		ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		log.Printf("Failed to seed settings: %v", err)
	}
}

func seedCustomers(db *sql.DB) {
	customers := []struct {
		ExternalID string
		Name       string
		Phone      string
		Email      string
	}{
		{"C-DEMO0001", "Budi Santoso", "08123456789", "budi@example.com"},
		{"C-DEMO0002", "Siti Aminah", "08123456780", "siti@example.com"},
		{"C-DEMO0003", "Andi Pratama", "08123456781", "andi@example.com"},
		{"C-DEMO0004", "Dewi Lestari", "08123456782", "dewi@example.com"},
		{"C-DEMO0005", "Eko Kurniawan", "08123456783", "eko@example.com"},
	}

	fmt.Println("Seeding Customers...")
	for _, c := range customers {
		_, err := db.Exec(`
			INSERT INTO customers (customer_id, name, phone, email)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (customer_id) DO NOTHING;
		`, c.ExternalID, c.Name, c.Phone, c.Email)
		if err != nil {
			log.Printf("Failed to seed customer %s: %v", c.ExternalID, err)
		}
	}
}

func seedProducts(db *sql.DB) {
	products := []struct {
		Name     string
		Price    string
		Category string
	}{
		{"Espresso", "2.50", "beverage"},
		{"Cappuccino", "3.50", "beverage"},
		{"Latte", "3.75", "beverage"},
		{"Green Tea", "2.00", "beverage"},
		{"Mineral Water", "1.00", "beverage"},
		{"Croissant", "2.25", "snack"},
		{"Banana Bread", "2.75", "snack"},
		{"Club Sandwich", "5.50", "food"},
		{"Chicken Rice Bowl", "6.00", "food"},
		{"Instant Noodles", "3.00", "food"},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, price, category, is_active)
			SELECT $1, $2, $3, true
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1);
		`, p.Name, p.Price, p.Category)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}
