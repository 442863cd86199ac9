package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/zombor/paynotify/internal/corpus"
	"github.com/zombor/paynotify/internal/scanning"
	"github.com/zombor/paynotify/internal/transaction"
)

// IDGenerator generates transaction IDs.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Service turns each input path into a stored transaction and a delivered
// message.
type Service struct {
	db          DB
	storage     Storage
	recognizer  scanning.Recognizer
	assembler   *transaction.Assembler
	notifier    Notifier
	idGenerator IDGenerator
	timeSource  TimeSource
	limiter     *rate.Limiter
	loc         *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.idGenerator = g }
}

// WithTimeSource replaces the system clock.
func WithTimeSource(t TimeSource) Option {
	return func(s *Service) { s.timeSource = t }
}

// WithCaptureInterval admits at most one capture per interval. Zero or
// less disables throttling.
func WithCaptureInterval(d time.Duration) Option {
	return func(s *Service) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLocation sets the zone messages are formatted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates a Service. Captures are throttled to one per second
// unless WithCaptureInterval says otherwise.
func NewService(db DB, storage Storage, recognizer scanning.Recognizer, assembler *transaction.Assembler, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		db:          db,
		storage:     storage,
		recognizer:  recognizer,
		assembler:   assembler,
		notifier:    notifier,
		idGenerator: uuidGenerator{},
		timeSource:  systemClock{},
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		loc:         transaction.Bangkok,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessCapture recognizes a screen capture and records it when it shows
// a transfer with a positive amount. Frames without one return a nil
// transaction and no error.
func (s *Service) ProcessCapture(ctx context.Context, filename string, data []byte, contentType string) (*Transaction, error) {
	if !s.limiter.AllowN(s.timeSource.Now(), 1) {
		return nil, ErrThrottled
	}

	c, err := s.recognizer.Recognize(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to recognize capture",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("recognizing capture: %w", err)
	}

	rec, err := s.assembler.Assemble(c)
	if errors.Is(err, transaction.ErrEmptyCorpus) {
		slog.Debug("Capture has no text", "filename", filename)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assembling capture: %w", err)
	}
	if !rec.HasAmount() {
		slog.Debug("Capture shows no transfer amount", "filename", filename, "bank", rec.Bank)
		return nil, nil
	}

	rec.Source = transaction.SourceCapture
	t := s.newTransaction(rec)

	t.ImagePath, err = s.storage.Save(imageName(t.ID, filename, contentType), data)
	if err != nil {
		return nil, fmt.Errorf("saving capture: %w", err)
	}
	t.ImageType = contentType

	if err := s.db.SaveTransaction(t); err != nil {
		if derr := s.storage.Delete(t.ImagePath); derr != nil {
			slog.Warn("Failed to delete capture", "path", t.ImagePath, "error", derr)
		}
		return nil, fmt.Errorf("saving transaction: %w", err)
	}

	s.deliver(ctx, t)
	return t, nil
}

// ProcessCorpus records text recognized on the device.
func (s *Service) ProcessCorpus(ctx context.Context, c corpus.Corpus) (*Transaction, error) {
	rec, err := s.assembler.Assemble(c)
	if err != nil {
		return nil, fmt.Errorf("assembling corpus: %w", err)
	}
	rec.Source = transaction.SourceCorpus
	return s.record(ctx, rec)
}

// ProcessNotification records a banking app's push notification. The
// posting app's package, when known, identifies the bank.
func (s *Service) ProcessNotification(ctx context.Context, appPackage, title, body string) (*Transaction, error) {
	rec, err := s.assembler.Assemble(corpus.FromNotification(appPackage, title, body))
	if err != nil {
		return nil, fmt.Errorf("assembling notification: %w", err)
	}
	rec.Source = transaction.SourceNotification
	return s.record(ctx, rec)
}

// ProcessPayload records a pre-parsed payload without extraction.
func (s *Service) ProcessPayload(ctx context.Context, p transaction.Payload) (*Transaction, error) {
	rec, err := s.assembler.FromPayload(p)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, rec)
}

func (s *Service) newTransaction(rec transaction.Record) *Transaction {
	rec.ID = s.idGenerator.Generate()
	rec.CreatedAt = s.timeSource.Now()
	return &Transaction{Record: rec}
}

func (s *Service) record(ctx context.Context, rec transaction.Record) (*Transaction, error) {
	t := s.newTransaction(rec)
	if err := s.db.SaveTransaction(t); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}
	s.deliver(ctx, t)
	return t, nil
}

// deliver never fails the request; the transaction is already stored.
func (s *Service) deliver(ctx context.Context, t *Transaction) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, NewMessage(t, s.loc)); err != nil {
		slog.Error("Failed to deliver notification", "id", t.ID, "error", err)
	}
}

// GetTransaction returns one transaction.
func (s *Service) GetTransaction(id string) (*Transaction, error) {
	t, err := s.db.GetTransaction(id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns all transactions, newest first.
func (s *Service) ListTransactions() ([]*Transaction, error) {
	list, err := s.db.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

// DeleteTransaction removes a transaction and its capture.
func (s *Service) DeleteTransaction(id string) error {
	t, err := s.db.GetTransaction(id)
	if err != nil {
		return fmt.Errorf("getting transaction for deletion: %w", err)
	}

	if t.ImagePath != "" {
		if err := s.storage.Delete(t.ImagePath); err != nil {
			slog.Warn("Failed to delete capture", "path", t.ImagePath, "error", err)
		}
	}

	if err := s.db.DeleteTransaction(id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

// GetTransactionImage returns the capture behind a transaction.
func (s *Service) GetTransactionImage(id string) ([]byte, string, error) {
	t, err := s.db.GetTransaction(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting transaction: %w", err)
	}
	if t.ImagePath == "" {
		return nil, "", fmt.Errorf("image for transaction %s: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(t.ImagePath)
	if err != nil {
		return nil, "", fmt.Errorf("getting capture: %w", err)
	}
	return data, t.ImageType, nil
}

// imageName names a stored capture after its transaction, keeping an
// extension for whoever browses the storage directory.
func imageName(id, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 5 {
		ext = ""
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return id + ext
}
