package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/makoto-club-services/intake/internal/config"
	"github.com/sngm3741/makoto-club-services/intake/internal/server"
	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
	"github.com/sngm3741/makoto-club-services/intake/internal/submission/domain"
)

type seedOptions struct {
	envFile    string
	count      int
	dryRun     bool
	randomSeed int64
}

var (
	companies = []string{"Acme", "Globex", "Initech", "Umbrella, Inc.", "Hooli", "Stark Industries"}
	roles     = []string{"Eng", "Design", "Ops", "Sales", "Founder"}
)

func main() {
	opts := parseFlags()

	if opts.envFile != "" {
		if err := loadEnvFile(opts.envFile); err != nil {
			log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	commands := generateSubmissions(rng, opts.count)

	if opts.dryRun {
		if err := printDryRun(os.Stdout, commands, time.Now()); err != nil {
			log.Fatalf("dry-run に失敗しました: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}
	logger := cfg.Logger

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	app, err := server.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Fatalf("初期化に失敗しました: %v", err)
	}
	defer app.Shutdown(context.Background())

	for _, cmd := range commands {
		result, err := app.Submissions().Record(ctx, cmd)
		if err != nil {
			logger.WithError(err).WithField("company", cmd.Company).Fatal("提出の記録に失敗しました")
		}
		logger.WithFields(logrus.Fields{
			"id":           result.Submission.ID,
			"company":      cmd.Company,
			"notification": result.Notification.Status,
		}).Info("提出を記録しました")
	}

	contents, err := app.LogStore().Read(ctx)
	if err != nil {
		logger.WithError(err).Fatal("ログの読み込みに失敗しました")
	}
	if err := printLog(os.Stdout, contents.Body); err != nil {
		logger.WithError(err).Fatal("ログの解析に失敗しました")
	}
	logger.Infof("Seed 完了: submissions=%d bucket=%s key=%s", len(commands), cfg.Bucket, cfg.LogKey)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env-file", "", "読み込む env ファイル (例: env/local.env)")
	flag.IntVar(&opts.count, "count", 3, "生成する提出数")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "書き込まずに生成した行を表示する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.count <= 0 {
		log.Fatal("count は 1 以上を指定してください")
	}
	return opts
}

func generateSubmissions(rng *rand.Rand, count int) []application.RecordSubmissionCommand {
	commands := make([]application.RecordSubmissionCommand, 0, count)
	for i := 0; i < count; i++ {
		company := companies[rng.Intn(len(companies))]
		commands = append(commands, application.RecordSubmissionCommand{
			Company: company,
			Email:   fmt.Sprintf("%s%d@example.com", slug(company), i+1),
			Role:    roles[rng.Intn(len(roles))],
			Coords:  fmt.Sprintf("%.4f,%.4f", rng.Float64()*180-90, rng.Float64()*360-180),
		})
	}
	return commands
}

func printDryRun(w io.Writer, commands []application.RecordSubmissionCommand, now time.Time) error {
	var body []byte
	for _, cmd := range commands {
		submission := domain.Submission{
			Company:    cmd.Company,
			Email:      cmd.Email,
			Role:       cmd.Role,
			Coords:     cmd.Coords,
			ReceivedAt: now,
		}
		var err error
		body, err = domain.AppendRecord(body, submission.Record())
		if err != nil {
			return err
		}
	}
	return printLog(w, body)
}

func printLog(w io.Writer, body []byte) error {
	header, rows, err := domain.ParseLog(body)
	if err != nil {
		return err
	}
	if header == nil {
		return errors.New("log is empty")
	}
	fmt.Fprintln(w, strings.Join(header, " | "))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, " | "))
	}
	return nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// loadEnvFile sets KEY=VALUE pairs from path. Variables already present in the
// process environment are left alone so the shell can override the file.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			return fmt.Errorf("%s:%d: KEY=VALUE 形式ではありません", path, lineNo)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: キーが空です", path, lineNo)
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, unquote(strings.TrimSpace(value))); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// unquote strips one pair of matching quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
