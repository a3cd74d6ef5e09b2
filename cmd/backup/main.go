package main

import (
	"flag"
	"log"

	"wordtrail/internal/config"
	"wordtrail/internal/database"
	"wordtrail/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	var (
		exportPath = flag.String("export", "", "write a backup of the local store to this file")
		importPath = flag.String("import", "", "restore a backup from this file into the local store")
	)
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		log.Fatal("Exactly one of -export or -import must be given")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Initialize(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupService := service.NewBackupService(db)

	if *exportPath != "" {
		if err := backupService.Export(*exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Backup written to %s", *exportPath)
		return
	}

	if err := backupService.Import(*importPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Backup restored from %s", *importPath)
}
