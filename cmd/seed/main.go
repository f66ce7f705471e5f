package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bistro/internal/config"
	"bistro/internal/db"
	"bistro/internal/logger"
	"bistro/internal/model"
	"bistro/internal/repository"
	"bistro/internal/seed"
	"bistro/internal/service"
)

var (
	sourceFlag string
	emailFlag  string
	nameFlag   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Load fixtures into the bistro database",
	SilenceUsage: true,
}

// seed menu --source menu.json
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Insert menu items from a JSON file or URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd.Context(), func(ctx context.Context, m *db.Mongo) error {
			data, err := seed.Fetch(ctx, sourceFlag)
			if err != nil {
				return err
			}
			items, skipped, err := seed.MenuItems(data)
			if err != nil {
				return err
			}
			// no cache: the server's menu cache expires on its own
			n, err := service.NewMenuService(repository.NewMenuRepository(m.DB), nil).Import(ctx, items)
			if err != nil {
				return err
			}
			logger.L.Info("menu seeded", "inserted", n, "skipped", skipped)
			return nil
		})
	},
}

// seed reviews --source reviews.json
var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Insert reviews from a JSON file or URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd.Context(), func(ctx context.Context, m *db.Mongo) error {
			data, err := seed.Fetch(ctx, sourceFlag)
			if err != nil {
				return err
			}
			reviews, skipped, err := seed.Reviews(data)
			if err != nil {
				return err
			}
			n, err := service.NewReviewService(repository.NewReviewRepository(m.DB)).Import(ctx, reviews)
			if err != nil {
				return err
			}
			logger.L.Info("reviews seeded", "inserted", n, "skipped", skipped)
			return nil
		})
	},
}

// seed admin --email boss@example.com
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create the user if needed and grant the admin role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd.Context(), func(ctx context.Context, m *db.Mongo) error {
			users := service.NewUserService(repository.NewUserRepository(m.DB))
			user, _, err := users.Upsert(ctx, &model.User{Name: nameFlag, Email: emailFlag})
			if err != nil {
				return err
			}
			if _, err := users.PromoteToAdmin(ctx, user.ID.Hex()); err != nil {
				return err
			}
			logger.L.Info("admin granted", "email", user.Email, "id", user.ID.Hex())
			return nil
		})
	},
}

func withMongo(parent context.Context, fn func(ctx context.Context, m *db.Mongo) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close(context.Background()) }()

	if err := m.EnsureIndexes(ctx); err != nil {
		return err
	}
	return fn(ctx, m)
}

func init() {
	for _, cmd := range []*cobra.Command{menuCmd, reviewsCmd} {
		cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "JSON file path or http(s) URL")
		_ = cmd.MarkFlagRequired("source")
	}
	adminCmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Email of the user to promote")
	adminCmd.Flags().StringVar(&nameFlag, "name", "", "Display name used if the user is created")
	_ = adminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(menuCmd, reviewsCmd, adminCmd)
}
