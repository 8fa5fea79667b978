package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/makoto-club-services/intake/internal/config"
	mongodoc "github.com/sngm3741/makoto-club-services/intake/internal/infrastructure/mongo"
	s3store "github.com/sngm3741/makoto-club-services/intake/internal/infrastructure/s3"
	sesnotify "github.com/sngm3741/makoto-club-services/intake/internal/infrastructure/ses"
	commonhttp "github.com/sngm3741/makoto-club-services/intake/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/makoto-club-services/intake/internal/interfaces/http/public"
	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
)

// Server は提出受付エンドポイントのコンポジションルート。
// Lambda とローカル HTTP の両方から同じハンドラを利用する。
type Server struct {
	logger      *logrus.Logger
	mongoClient *mongo.Client
	logStore    application.LogStore
	submissions application.SubmissionCommandService
	handler     *publichttp.Handler
	addr        string
}

// Dependencies are the adapters behind the application ports.
type Dependencies struct {
	LogStore            application.LogStore
	Notifier            application.Notifier
	FailedNotifications application.FailedNotificationRepository
	MongoClient         *mongo.Client
}

// New は Config と各アダプタを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
func New(cfg config.Config, deps Dependencies) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	submissions := application.NewSubmissionCommandService(deps.LogStore, deps.Notifier, application.Options{
		NotificationAddress: cfg.NotificationAddress,
		NotificationTimeout: cfg.NotificationTimeout,
		LenientReads:        cfg.LenientLogReads,
		ConditionalWrites:   cfg.ConditionalWrites,
		WriteAttempts:       cfg.WriteConflictAttempts,
		FailedNotifications: deps.FailedNotifications,
		Logger:              logger,
	})

	return &Server{
		logger:      logger,
		mongoClient: deps.MongoClient,
		logStore:    deps.LogStore,
		submissions: submissions,
		handler: publichttp.NewHandler(publichttp.Config{
			Logger:        logger,
			Submissions:   submissions,
			HoneypotField: cfg.HoneypotField,
		}),
		addr: cfg.Addr,
	}
}

// Bootstrap は AWS クライアントと (設定されていれば) MongoDB を初期化して Server を返す。
// クライアントはプロセスごとに一度だけ生成し、呼び出し間で再利用する。
func Bootstrap(ctx context.Context, cfg config.Config) (*Server, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	deps := Dependencies{
		LogStore: s3store.NewLogStore(s3Client, cfg.Bucket, cfg.LogKey),
	}
	if cfg.NotificationAddress != "" {
		deps.Notifier = sesnotify.NewNotifier(sesv2.NewFromConfig(awsCfg))
	}

	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
		defer cancel()

		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		client, err := mongo.Connect(connectCtx, clientOptions)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		deps.MongoClient = client
		deps.FailedNotifications = mongodoc.NewFailedNotificationRepository(
			client.Database(cfg.MongoDatabase),
			cfg.FailedNotificationCollection,
		)
	}

	return New(cfg, deps), nil
}

// Submissions exposes the record use-case for tools running outside HTTP.
func (s *Server) Submissions() application.SubmissionCommandService {
	return s.submissions
}

// LogStore exposes the configured log store.
func (s *Server) LogStore() application.LogStore {
	return s.logStore
}

// LambdaHandler は API Gateway プロキシイベント用のハンドラを返す。
func (s *Server) LambdaHandler() func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return s.handler.HandleAPIGateway
}

// Router はローカル実行用のルーティングとミドルウェアを組み立てる。
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS)

	router.Get("/healthz", s.healthHandler())
	s.handler.Register(router)

	return router
}

// Run はローカル HTTP サーバーを起動し、シグナル受信で graceful shutdown する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// withCORS はプリフライト要求に応答する。通常のレスポンスの CORS ヘッダーはハンドラ側で付与する。
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			commonhttp.WriteResponse(nil, w, commonhttp.Preflight())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// healthHandler は MongoDB が設定されている場合のみ疎通確認を行う。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.mongoClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := s.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
				commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) Shutdown(ctx context.Context) {
	if s.mongoClient == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.mongoClient.Disconnect(shutdownCtx); err != nil {
		s.logger.WithError(err).Warn("MongoDB 切断時にエラー")
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Infof("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.WithError(err).Warn("サーバー停止時にエラー")
		}
	}

	srv.Shutdown(context.Background())
	return runErr
}
