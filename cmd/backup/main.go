package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"xiview-api/config"
	"xiview-api/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()
	logging.Info("Starte Backup-Prozess...")

	cfg, err := config.LoadBackup()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	ctx := context.Background()

	// 1. Datenbank-Dump erstellen
	dumpData, err := createDump(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des DB-Dumps", zap.Error(err))
	}

	// 2. S3-Client erstellen
	store, err := storage.NewBackupStore(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	// 3. Backup nach S3 hochladen
	fileName := backupName(time.Now())
	key, err := store.Upload(ctx, fileName, bytes.NewReader(dumpData))
	if err != nil {
		logging.Fatal("Fehler beim Hochladen nach S3", zap.Error(err))
	}
	logging.Info("Backup hochgeladen",
		zap.String("bucket", cfg.BackupBucket),
		zap.String("key", key),
		zap.Int("bytes", len(dumpData)))

	// 4. Alte Backups rotieren
	deleted, err := store.Rotate(ctx, cfg.KeepBackups)
	for _, k := range deleted {
		logging.Info("Altes Backup gelöscht", zap.String("key", k))
	}
	if err != nil {
		logging.Fatal("Fehler bei der Rotation alter Backups", zap.Error(err))
	}

	logging.Info("Backup-Prozess erfolgreich abgeschlossen.")
}

func backupName(now time.Time) string {
	return fmt.Sprintf("backup-%s.sql.gz", now.UTC().Format("2006-01-02T15-04-05Z"))
}

func dumpArgs(cfg *config.BackupConfig) []string {
	return []string{
		"-h", cfg.DBHost,
		"-p", strconv.Itoa(cfg.DBPort),
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-w", // Passwort wird über PGPASSWORD bereitgestellt
	}
}

func createDump(ctx context.Context, cfg *config.BackupConfig) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump", dumpArgs(cfg)...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", cfg.DBPassword))
	cmd.Stderr = os.Stderr

	var buf bytes.Buffer
	if err := compressOutput(cmd, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// compressOutput startet cmd und schreibt dessen stdout gzip-komprimiert nach dst.
// Der Prozess wird auf jedem Fehlerpfad nach Start beendet und eingesammelt.
func compressOutput(cmd *exec.Cmd, dst io.Writer) error {
	name := filepath.Base(cmd.Path)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	gzipWriter := gzip.NewWriter(dst)
	_, err = io.Copy(gzipWriter, stdout)
	if err == nil {
		err = gzipWriter.Close()
	}
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("compress %s output: %w", name, err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
