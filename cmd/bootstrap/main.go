// Command bootstrap runs one-off maintenance tasks against the election database.
//
//	bootstrap -seed-admin       create the superuser from ADMIN_* settings
//	bootstrap -check-admin      verify ADMIN_PASSWORD against the stored admin hash
//	bootstrap -clean-profiles   delete profiles with an empty student ID
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/SAP-F-2025/election-service/internal/config"
	"github.com/SAP-F-2025/election-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/pkg"
)

func main() {
	seedAdmin := flag.Bool("seed-admin", false, "create the admin user if it does not exist")
	checkAdmin := flag.Bool("check-admin", false, "verify the configured admin password")
	cleanProfiles := flag.Bool("clean-profiles", false, "delete user profiles with an empty student_id")
	flag.Parse()

	if !*seedAdmin && !*checkAdmin && !*cleanProfiles {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	defer repo.Close()

	userService := services.NewUserService(repo, db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *seedAdmin {
		created, err := userService.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
		if created {
			fmt.Printf("Admin user %q created\n", cfg.Admin.Username)
		} else {
			fmt.Printf("Admin user %q already exists\n", cfg.Admin.Username)
		}
	}

	if *checkAdmin {
		admin, err := userService.VerifyPassword(ctx, cfg.Admin.Username, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("Admin check failed: %v", err)
		}
		fmt.Printf("Admin user %q verified (role %s)\n", admin.Username, admin.Role())
	}

	if *cleanProfiles {
		deleted, err := userService.CleanEmptyProfiles(ctx)
		if err != nil {
			log.Fatalf("Failed to clean profiles: %v", err)
		}
		fmt.Printf("Deleted %d profiles with empty student_id\n", deleted)
	}
}
