// Command clientdir runs a walkthrough of the client directory against a
// PostgreSQL instance: it recreates the schema, creates a few clients,
// exercises updates and searches, and prints the surviving records.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/clientdir/internal/config"
	"github.com/dmitrijs2005/clientdir/internal/directory"
	"github.com/dmitrijs2005/clientdir/internal/logging"
	"github.com/dmitrijs2005/clientdir/internal/models"
	"github.com/dmitrijs2005/clientdir/internal/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := run(ctx, cfg); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func ptr(s string) *string { return &s }

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})
	logger := logging.NewSlogLogger(slog.New(handler))
	svc := directory.NewService(db, repomanager.NewPostgresRepositoryManager(), logger)

	// Recreate the schema from scratch so the walkthrough is reproducible.
	if err := svc.ResetSchema(ctx); err != nil {
		return fmt.Errorf("schema reset error: %w", err)
	}
	if err := svc.InitializeSchema(ctx); err != nil {
		return fmt.Errorf("schema init error: %w", err)
	}

	kate, err := svc.CreateClient(ctx, models.NewClient{
		FirstName: "Kate", LastName: "Ivanova",
		Email:  ptr("kate@example.com"),
		Phones: []string{"+79111111111", "+79112222222"},
	})
	if err != nil {
		return err
	}

	daniel, err := svc.CreateClient(ctx, models.NewClient{
		FirstName: "Daniel", LastName: "Petrov",
		Email:  ptr("danil@example.com"),
		Phones: []string{"+79113333333"},
	})
	if err != nil {
		return err
	}

	sergey, err := svc.CreateClient(ctx, models.NewClient{
		FirstName: "Sergey", LastName: "Sergeev",
		Email:     ptr("sergey@example.com"),
	})
	if err != nil {
		return err
	}

	if err := svc.AddPhone(ctx, sergey, "+79114444444"); err != nil {
		return err
	}

	if err := svc.UpdateClient(ctx, kate, models.ClientUpdate{
		FirstName: ptr("Ivan"),
		Email:     ptr("ivan_new@example.com"),
	}); err != nil {
		return err
	}

	byName, err := svc.FindClients(ctx, models.SearchFilter{FirstName: ptr("Ivan")})
	if err != nil {
		return err
	}
	fmt.Println("Clients found by first name 'Ivan':")
	for _, rec := range byName {
		fmt.Println(directory.FormatClient(rec))
	}

	byPhone, err := svc.FindClients(ctx, models.SearchFilter{Phone: ptr("333")})
	if err != nil {
		return err
	}
	fmt.Println("\nClients found by phone fragment '333':")
	for _, rec := range byPhone {
		fmt.Println(directory.FormatClient(rec))
	}

	if err := svc.DeletePhone(ctx, kate, "+79112222222"); err != nil {
		return err
	}
	if err := svc.DeleteClient(ctx, daniel); err != nil {
		return err
	}

	remaining, err := svc.FindClients(ctx, models.SearchFilter{})
	if err != nil {
		return err
	}
	fmt.Println("\nRemaining clients:")
	for _, rec := range remaining {
		fmt.Println(directory.FormatClient(rec))
	}

	return nil
}
