package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"onboardkit/internal/config"
	"onboardkit/internal/storage"
)

// backupaudit reconciles the main and backup buckets. Deletions swallow
// backup-leg failures, so orphaned backup objects accumulate over time;
// this tool lists the keys present only in the backup bucket so an
// operator can clean them up.
func main() {
	prefix := flag.String("prefix", "kits/", "key prefix to audit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.HasAWS() {
		log.Fatal("aws credentials and bucket are required")
	}
	s3cfg := cfg.S3Config()
	if s3cfg.BackupBucket == "" {
		log.Fatal("BACKUP_S3_BUCKET is required")
	}

	ctx := context.Background()
	client, err := storage.NewS3Client(ctx, s3cfg)
	if err != nil {
		log.Fatal(err)
	}

	mainObjs, err := client.List(ctx, *prefix)
	if err != nil {
		log.Fatal("list main bucket:", err)
	}
	backup, err := client.ListBackup(ctx, *prefix)
	if err != nil {
		log.Fatal("list backup bucket:", err)
	}

	inMain := make(map[string]struct{}, len(mainObjs))
	for _, obj := range mainObjs {
		inMain[obj.Key] = struct{}{}
	}

	orphans := 0
	var orphanBytes int64
	for _, obj := range backup {
		if _, ok := inMain[obj.Key]; ok {
			continue
		}
		orphans++
		orphanBytes += obj.Size
		log.Printf("orphan key=%s size=%d", obj.Key, obj.Size)
	}

	log.Printf("audit done prefix=%s main=%d backup=%d orphans=%d orphan_bytes=%d",
		*prefix, len(mainObjs), len(backup), orphans, orphanBytes)

	if orphans > 0 {
		os.Exit(1)
	}
}
