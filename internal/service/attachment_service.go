package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/storage"
)

const sniffBytes = 3072

type attachmentStore interface {
	Create(ctx context.Context, item *models.AppealAttachment) error
	GetByID(ctx context.Context, id string) (*models.AppealAttachment, error)
	ListByAppeal(ctx context.Context, appealID string) ([]models.AppealAttachment, error)
	CountByAppeal(ctx context.Context, appealID string) (int, error)
}

type publicTokenResolver interface {
	ResolvePublicToken(ctx context.Context, token string) (*models.Appeal, error)
}

type appealViewer interface {
	Get(ctx context.Context, actor *models.Principal, id string) (*dto.AppealDetail, error)
}

type attachmentFileStorage interface {
	SaveStream(filename string, r io.Reader, limit int64) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type attachmentURLSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string) (resourceID, relPath string, expiresAt time.Time, err error)
}

// AttachmentUpload carries an uploaded file stream.
type AttachmentUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AttachmentDownload bundles an opened file with its metadata.
type AttachmentDownload struct {
	File      *os.File
	FileName  string
	MimeType  string
	SizeBytes int64
}

// AttachmentServiceConfig holds upload limits.
type AttachmentServiceConfig struct {
	MaxFileSize  int64
	MaxPerAppeal int
	AllowedMIMEs []string
	APIPrefix    string
}

// AttachmentService manages files submitters attach to their appeals.
type AttachmentService struct {
	repo    attachmentStore
	tokens  publicTokenResolver
	appeals appealViewer
	storage attachmentFileStorage
	signer  attachmentURLSigner
	logger  *zap.Logger
	cfg     AttachmentServiceConfig
}

// NewAttachmentService constructs the service with defaults.
func NewAttachmentService(repo attachmentStore, tokens publicTokenResolver, appeals appealViewer, files attachmentFileStorage, signer attachmentURLSigner, logger *zap.Logger, cfg AttachmentServiceConfig) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.MaxPerAppeal <= 0 {
		cfg.MaxPerAppeal = 5
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "application/pdf"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &AttachmentService{
		repo:    repo,
		tokens:  tokens,
		appeals: appeals,
		storage: files,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Upload stores a file for the appeal behind publicToken while it is open.
func (s *AttachmentService) Upload(ctx context.Context, publicToken string, upload AttachmentUpload) (*models.AppealAttachment, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	appeal, err := s.tokens.ResolvePublicToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}
	if appeal.Status == models.AppealStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appeal is closed")
	}
	count, err := s.repo.CountByAppeal(ctx, appeal.ID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to check attachments")
	}
	if count >= s.cfg.MaxPerAppeal {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("appeal already has %d attachments", count))
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !s.mimeAllowed(detected) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file type "+detected.String()+" is not allowed")
	}

	storedName := filepath.ToSlash(filepath.Join(appeal.ID, uuid.NewString()+detected.Extension()))
	path, err := s.storage.SaveStream(storedName, io.MultiReader(bytes.NewReader(head), upload.Content), s.cfg.MaxFileSize)
	if err != nil {
		s.logger.Error("failed to store attachment", zap.String("appeal_id", appeal.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to store attachment")
	}

	item := &models.AppealAttachment{
		AppealID:  appeal.ID,
		FileName:  sanitizeFileName(upload.Filename),
		FilePath:  path,
		MimeType:  baseMIME(detected.String()),
		SizeBytes: upload.Size,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		_ = s.storage.Delete(path)
		return nil, appErrors.Storage(err, "failed to save attachment")
	}
	return item, nil
}

// List returns an appeal's attachments if actor may view the appeal.
func (s *AttachmentService) List(ctx context.Context, actor *models.Principal, appealID string) ([]models.AppealAttachment, error) {
	if _, err := s.appeals.Get(ctx, actor, appealID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByAppeal(ctx, appealID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list attachments")
	}
	return items, nil
}

// DownloadURL issues an expiring signed link for one attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, actor *models.Principal, appealID, attachmentID string) (*dto.AttachmentURLResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	if _, err := s.appeals.Get(ctx, actor, appealID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Storage(err, "failed to load attachment")
	}
	if item.AppealID != appealID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	token, expiresAt, err := s.signer.Generate(item.ID, item.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}
	url := fmt.Sprintf("%s/attachments/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	return &dto.AttachmentURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// Download opens the file referenced by a signed token.
func (s *AttachmentService) Download(ctx context.Context, token string) (*AttachmentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	attachmentID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	item, err := s.repo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Storage(err, "failed to load attachment")
	}
	if item.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to open attachment")
	}
	return &AttachmentDownload{
		File:      file,
		FileName:  item.FileName,
		MimeType:  item.MimeType,
		SizeBytes: item.SizeBytes,
	}, nil
}

func (s *AttachmentService) mimeAllowed(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range s.cfg.AllowedMIMEs {
			if m.Is(strings.TrimSpace(allowed)) {
				return true
			}
		}
	}
	return false
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "attachment"
	}
	if len(name) > 200 {
		name = name[len(name)-200:]
	}
	return name
}

func baseMIME(value string) string {
	if idx := strings.Index(value, ";"); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return value
}

var _ attachmentFileStorage = (*storage.LocalStorage)(nil)
var _ attachmentURLSigner = (*storage.SignedURLSigner)(nil)
