package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/R-Mend/RMend-Backend/internal/authority"
	"github.com/R-Mend/RMend-Backend/internal/db"
	"github.com/R-Mend/RMend-Backend/internal/taxonomy"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("set DB_DSN or DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the database")
	}
	defer pool.Close()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "authority":
		if err := runAuthority(ctx, authority.NewService(authority.NewRepository(pool)), args); err != nil {
			log.Fatal().Err(err).Msg("failed to create authority")
		}
	case "catalog":
		if err := runCatalog(ctx, taxonomy.NewRepository(pool), args); err != nil {
			log.Fatal().Err(err).Msg("failed to seed catalog")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "seed CLI")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  seed authority --name \"Test Authority\" --boundary-file boundary.geojson [--type council] [--email a@b.org] [--phone ...] [--address ...] [--website ...]")
	fmt.Fprintln(os.Stderr, "  seed catalog --file catalog.json")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "catalog.json format: {\"groups\": [{\"name\": \"Roads\", \"types\": [\"Pothole\", \"Cracked Pavement\"]}]}")
}

func runAuthority(ctx context.Context, service *authority.Service, args []string) error {
	fs := flag.NewFlagSet("authority", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		name         = fs.String("name", "", "authority name (unique)")
		boundaryFile = fs.String("boundary-file", "", "GeoJSON polygon file")
		authType     = fs.String("type", "council", "authority type")
		email        = fs.String("email", "", "contact email")
		phone        = fs.String("phone", "", "contact phone")
		address      = fs.String("address", "", "office address")
		website      = fs.String("website", "", "website URL")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*boundaryFile) == "" {
		return fmt.Errorf("--name and --boundary-file are required")
	}

	boundary, err := os.ReadFile(*boundaryFile)
	if err != nil {
		return fmt.Errorf("boundary: %w", err)
	}
	if !json.Valid(boundary) {
		return fmt.Errorf("boundary: %s is not valid JSON", *boundaryFile)
	}

	created, err := service.Create(ctx, authority.CreateInput{
		Name:          *name,
		Boundary:      boundary,
		AuthorityType: *authType,
		Address:       *address,
		PhoneNumber:   *phone,
		Email:         *email,
		WebsiteURL:    *website,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("id", created.ID.String()).
		Str("name", created.Name).
		Str("access_code", created.AccessCode).
		Msg("authority created")
	return nil
}

type catalogFile struct {
	Groups []struct {
		Name  string   `json:"name"`
		Types []string `json:"types"`
	} `json:"groups"`
}

func runCatalog(ctx context.Context, repo *taxonomy.Repository, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "catalog JSON file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*file) == "" {
		return fmt.Errorf("--file is required")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	var catalog catalogFile
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	for _, group := range catalog.Groups {
		name := taxonomy.NormalizeName(group.Name)
		if name == "" {
			continue
		}

		created, err := repo.EnsureBaseGroup(ctx, name)
		if err != nil {
			return fmt.Errorf("group %q: %w", name, err)
		}

		for _, typeName := range group.Types {
			typeName = taxonomy.NormalizeName(typeName)
			if typeName == "" {
				continue
			}
			if _, err := repo.EnsureBaseType(ctx, created.ID, typeName); err != nil {
				return fmt.Errorf("type %q in %q: %w", typeName, name, err)
			}
		}

		log.Info().Str("group", name).Int("types", len(group.Types)).Msg("seeded")
	}

	return nil
}
