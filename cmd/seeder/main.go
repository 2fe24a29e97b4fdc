package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/plateful/plateful/internal/config"
	"github.com/plateful/plateful/internal/database"
	"github.com/plateful/plateful/internal/models"
)

// demoUser is a development account seeded with a few lists
type demoUser struct {
	Email    string
	Username string
	Lists    []demoList
}

type demoList struct {
	Name  string
	Order int
	Items []string
}

var demoUsers = []demoUser{
	{
		Email:    "alice@example.com",
		Username: "alice",
		Lists: []demoList{
			{Name: "Groceries", Order: 0, Items: []string{"Milk", "Eggs", "Bread", "Coffee"}},
			{Name: "Hardware store", Order: 1, Items: []string{"Wood screws", "Sandpaper"}},
		},
	},
	{
		Email:    "bob@example.com",
		Username: "bob",
		Lists: []demoList{
			{Name: "Party supplies", Order: 0, Items: []string{"Paper cups", "Napkins", "Ice"}},
		},
	},
}

func main() {
	password := flag.String("password", "password123", "Password for every seeded account")
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing to database")
	flag.Parse()

	godotenv.Load()
	cfg := config.Load()

	if *dryRun {
		log.Println("DRY RUN - No changes will be made")
		for _, u := range demoUsers {
			log.Printf("would create %s (%s) with %d lists", u.Username, u.Email, len(u.Lists))
		}
		return
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	users := make(map[string]*models.User, len(demoUsers))
	for _, u := range demoUsers {
		user, err := ensureUser(ctx, db, u, string(hash))
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.Username, err)
		}
		users[u.Username] = user

		for _, l := range u.Lists {
			if err := seedList(ctx, db, user, l); err != nil {
				log.Fatalf("Failed to seed list %q: %v", l.Name, err)
			}
		}
	}

	// alice shares her grocery list with bob
	if err := seedShare(ctx, db, users["alice"], "Groceries", "bob"); err != nil {
		log.Fatalf("Failed to seed share: %v", err)
	}

	log.Println("Seeding complete")
}

// ensureUser creates the account, reusing it when a previous run already did
func ensureUser(ctx context.Context, db *database.DB, u demoUser, hash string) (*models.User, error) {
	user, err := db.CreateUser(ctx, u.Email, u.Username, hash)
	if err == nil {
		log.Printf("Created user %s", u.Username)
		return user, nil
	}
	if errors.Is(err, database.ErrEmailExists) || errors.Is(err, database.ErrUsernameExists) {
		log.Printf("User %s already exists, reusing", u.Username)
		return db.GetUserByUsername(ctx, u.Username)
	}
	return nil, err
}

// seedList creates the list with its items unless the user already has one
// with the same name
func seedList(ctx context.Context, db *database.DB, user *models.User, l demoList) error {
	existing, err := db.GetLists(ctx, user.ID, database.MaxListTake)
	if err != nil {
		return err
	}
	for _, dto := range existing {
		if dto.Name == l.Name {
			log.Printf("List %q already exists for %s, skipping", l.Name, user.Username)
			return nil
		}
	}

	order := l.Order
	created, err := db.CreateList(ctx, user.ID, l.Name, &order)
	if err != nil {
		return err
	}

	for _, name := range l.Items {
		created.Items = append(created.Items, models.ShoppingListItemDto{Name: name})
	}
	if err := db.SaveList(ctx, user.ID, created); err != nil {
		return err
	}

	log.Printf("Created list %q for %s with %d items", l.Name, user.Username, len(l.Items))
	return nil
}

// seedShare shares the named list with the target user
func seedShare(ctx context.Context, db *database.DB, owner *models.User, listName, target string) error {
	lists, err := db.GetLists(ctx, owner.ID, database.MaxListTake)
	if err != nil {
		return err
	}
	for _, dto := range lists {
		if dto.Name == listName && dto.IsOwner {
			if _, err := db.ShareList(ctx, owner.ID, dto.ListID, target); err != nil {
				return err
			}
			log.Printf("Shared %q from %s with %s", listName, owner.Username, target)
			return nil
		}
	}
	return nil
}
