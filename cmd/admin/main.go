// Package main provides admin account management for the visit panel.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"kunjungan/internal/config"
	"kunjungan/internal/database"
	"kunjungan/internal/repository"
	"kunjungan/internal/service"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  admin create <email> <password>          - Create an admin account")
	fmt.Println("  admin list                               - List all accounts")
	fmt.Println("  admin reset-password <email> <password>  - Replace an account password")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	users := service.NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		user, err := users.CreateAdmin(ctx, os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("✓ Admin %s created (ID %d)\n", user.Email, user.ID)

	case "list":
		list, err := users.ListUsers(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("No accounts found")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tEMAIL\tROLE\tCREATED")
		for _, u := range list {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
		}
		_ = w.Flush()

	case "reset-password":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		if err := users.ResetPassword(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Failed to reset password: %v", err)
		}
		fmt.Printf("✓ Password updated for %s\n", os.Args[2])

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}
