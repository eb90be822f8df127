package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"koperasiku/models"
	"koperasiku/pkg/logger"
	"koperasiku/pkg/receipt"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Global DB handle for helper funcs
var db *gorm.DB

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		logger.Fatalf("DB_DSN not set in environment")
	}
	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatalf("failed to open db: %v", err)
	}
	return d
}

// Watches a drop directory for receipt images scanned by the pengurus, OCRs
// each new file and records it as an Upload with a suggested amount. Existing
// files are processed once on startup; recording the actual payment stays a
// manual, reviewed step in the back office.
func main() {
	_ = godotenv.Load()
	dir := flag.String("dir", "uploads/receipt", "directory to watch for receipt images")
	phone := flag.String("phone", "", "member phone to attribute dropped receipts to")
	workers := flag.Int("workers", 0, "worker count (0 = NumCPU)")
	once := flag.Bool("once", false, "process existing files and exit (no watch)")
	flag.Parse()

	if *phone == "" {
		logger.Fatalf("-phone is required")
	}
	db = mustInitDBFromEnv()

	var member models.User
	if err := db.Where("phone = ?", *phone).First(&member).Error; err != nil {
		logger.Fatalf("member with phone %s not found: %v", *phone, err)
	}

	w := effectiveWorkers(*workers)
	initial := listImageFiles(*dir)
	logger.Infof("processing %d existing file(s) in %s with %d worker(s)", len(initial), *dir, w)
	runWorkerPool(*dir, member, initial, w)

	if *once {
		return
	}
	if err := watchDirectory(*dir, member, w); err != nil {
		logger.Fatalf("watch failed: %v", err)
	}
}

func effectiveWorkers(w int) int {
	if w > 0 {
		return w
	}
	return runtime.NumCPU()
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !receipt.IsSupportedImage(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, member models.User, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Infof("watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !receipt.IsSupportedImage(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				logger.Warnf("watch error: %v", err)
			}
		}
	}()

	runWorkerPoolFromChannel(dir, member, workers, fileCh)
	return nil
}

func runWorkerPool(dir string, member models.User, initial []string, workers int) {
	fileCh := make(chan string, 1024)
	go func() {
		for _, name := range initial {
			fileCh <- name
		}
		close(fileCh)
	}()
	runWorkerPoolFromChannel(dir, member, workers, fileCh)
}

func runWorkerPoolFromChannel(dir string, member models.User, workers int, fileCh <-chan string) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processReceiptFile(dir, name, member)
			}
		}()
	}
	wg.Wait()
}

// processReceiptFile is idempotent: a file already recorded for this member is
// skipped, so re-running over a directory is safe.
func processReceiptFile(dir, name string, member models.User) {
	var existing models.Upload
	err := db.Where("user_id = ? AND file_name = ? AND kind = ?", member.ID, name, models.UploadReceipt).
		First(&existing).Error
	if err == nil {
		logger.Infof("skip %s: already recorded (id=%s)", name, existing.ID)
		return
	}

	up := models.Upload{
		UserID:    member.ID,
		Kind:      models.UploadReceipt,
		FileName:  name,
		StorePath: filepath.Join(dir, name),
	}
	amt, raw, err := receipt.ExtractAmount(filepath.Join(dir, name))
	if err != nil {
		up.Failed = true
		up.FailedReason = err.Error()
		if len(up.FailedReason) > 255 {
			up.FailedReason = up.FailedReason[:255]
		}
		logger.Warnf("ocr failed for %s: %v", name, err)
	} else if amt > 0 {
		d := decimal.NewFromInt(amt)
		up.SuggestedAmount = &d
		logger.Infof("receipt %s: suggested amount %d (match %q)", name, amt, raw)
	} else {
		logger.Infof("receipt %s: no amount found", name)
	}
	if err := db.Create(&up).Error; err != nil {
		logger.Errorf("failed to record upload %s: %v", name, err)
	}
}
