package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wander-api/wander/config"
	"github.com/wander-api/wander/pkg/helpers"
)

type seedTour struct {
	name         string
	duration     int
	maxGroupSize int
	difficulty   string
	price        float64
	summary      string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@wander.dev"
	password := "changeme123"
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, 'admin', $3)
		ON CONFLICT (email) DO UPDATE SET role = 'admin'
		RETURNING id
	`, "Wander Admin", email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)

	tours := []seedTour{
		{"The Forest Hiker", 5, 25, "easy", 397, "Breathtaking hike through the Canadian Banff National Park"},
		{"The Sea Explorer", 7, 15, "medium", 497, "Exploring the jaw-dropping US east coast by foot and by boat"},
		{"The Snow Adventurer", 4, 10, "difficult", 997, "Exciting adventure in the snow with snowboarding and skiing"},
	}
	for _, t := range tours {
		if _, err := db.Exec(`
			INSERT INTO tours (name, duration, max_group_size, difficulty, price, summary)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO NOTHING
		`, t.name, t.duration, t.maxGroupSize, t.difficulty, t.price, t.summary); err != nil {
			log.Fatalf("failed to seed tour %q: %v", t.name, err)
		}
	}
	fmt.Printf("seeded %d tours\n", len(tours))
}
