package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

var adminPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database to an admin user and three sample items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()

		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		admin, err := seedDatabase(cmd.Context(), st, adminPassword, log.Logger)
		if err != nil {
			return err
		}

		log.Info("Database seeded", "admin", admin.Username, "items", len(sampleItems))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "admin", "Password for the seeded admin account")
}

var sampleItems = []service.CreateItemRequest{
	{
		Title:     "First Article",
		SourceURL: "https://example.com/1",
		ItemType:  domain.ItemTypeArticle,
		Tags:      []service.TagInput{{Name: "welcome"}},
		Authors:   []service.TagInput{{Name: "Bookshelf Team"}},
	},
	{
		Title:     "Second Article",
		SourceURL: "https://example.com/2",
		ItemType:  domain.ItemTypeArticle,
		Tags:      []service.TagInput{{Name: "welcome"}, {Name: "reading"}},
		Authors:   []service.TagInput{{Name: "Bookshelf Team"}},
	},
	{
		Title:     "Third Article",
		SourceURL: "https://example.com/3",
		ItemType:  domain.ItemTypeArticle,
		Tags:      []service.TagInput{{Name: "reading"}},
		Authors:   []service.TagInput{{Name: "Guest Writer"}},
	},
}

// seedDatabase clears st, then inserts an admin with a bcrypt password hash
// and the sample items owned by that admin.
func seedDatabase(ctx context.Context, st *sqlite.Store, password string, logger *slog.Logger) (*domain.User, error) {
	if password == "" {
		return nil, errors.New("admin password cannot be empty")
	}

	if _, err := st.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear database: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	adminID, err := id.Generate(id.User)
	if err != nil {
		return nil, err
	}
	admin := &domain.User{
		ID:           adminID,
		Username:     "admin",
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	activity := service.NewActivityService(st, logger)
	tags := service.NewTagService(st, logger)
	items := service.NewItemService(st, tags, activity, nil, logger)

	for _, req := range sampleItems {
		if _, err := items.CreateItem(ctx, admin.SessionUser(), req); err != nil {
			return nil, fmt.Errorf("create item %q: %w", req.Title, err)
		}
	}

	return admin, nil
}
