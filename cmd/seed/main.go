// Command seed provisions a demo guardian with a filled schedule, for local
// frontend work against a fresh database.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/campboard/campboard/internal/accounts"
	"github.com/campboard/campboard/internal/database"
	"github.com/campboard/campboard/internal/identity"
	"github.com/campboard/campboard/internal/schedules"
	"github.com/campboard/campboard/internal/store"
)

func main() {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is required")
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "campboard"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(ctx, mongoURI, 10*time.Second)
	if err != nil {
		log.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	st := store.NewMongoStore(client.Database(dbName), nil)
	accountsSvc := accounts.NewService(st)
	schedulesSvc := schedules.NewService(st)
	passwords := identity.NewPasswordProvider(st)

	const email = "demo@campboard.dev"
	a, err := passwords.SignUp(ctx, email, "demo-password")
	if err != nil {
		if ae := identity.AsAuthError(err); ae.Code == identity.CodeEmailInUse {
			log.Printf("demo guardian already seeded (%s), nothing to do", email)
			return
		}
		log.Fatalf("seed guardian: %v", err)
	}

	for _, kid := range []string{"Mia", "Bo"} {
		if _, err := accountsSvc.AddKid(ctx, a.ID, kid); err != nil {
			log.Fatalf("seed roster: %v", err)
		}
	}

	start := nextMonday(time.Now().UTC())
	d, err := schedulesSvc.Create(ctx, a.ID, "Mia", start, 8)
	if err != nil {
		log.Fatalf("seed schedule: %v", err)
	}
	for _, camp := range []string{"Art", "Robotics", "Soccer"} {
		if _, err := schedulesSvc.AddCamp(ctx, a.ID, d.ID, camp); err != nil {
			log.Fatalf("seed camp %s: %v", camp, err)
		}
	}
	if _, err := schedulesSvc.AddKid(ctx, a.ID, d.ID, "Bo"); err != nil {
		log.Fatalf("seed kid: %v", err)
	}
	// Art gets both kids in week 0, Soccer gets Mia in week 1
	if _, err := schedulesSvc.SetCell(ctx, a.ID, d.ID, 0, 0, []string{"Bo", "Mia"}); err != nil {
		log.Fatalf("seed cell: %v", err)
	}
	if _, err := schedulesSvc.SetCell(ctx, a.ID, d.ID, 2, 1, []string{"Mia"}); err != nil {
		log.Fatalf("seed cell: %v", err)
	}

	log.Printf("seeded guardian %s (password demo-password) with schedule %s", email, d.ID)
}

func nextMonday(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return t.AddDate(0, 0, offset)
}
