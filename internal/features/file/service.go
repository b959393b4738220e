package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var allowedCategories = map[string]bool{
	"jobticket":  true,
	"safetyform": true,
	"vendordoc":  true,
	"general":    true,
}

type FileService interface {
	Upload(ctx context.Context, d permission.Decision, header *multipart.FileHeader, category, relatedID string) (*FileRecord, error)
	GetURL(ctx context.Context, d permission.Decision, id string) (string, error)
	List(ctx context.Context, d permission.Decision, category, relatedID string) ([]FileRecord, error)
	Delete(ctx context.Context, d permission.Decision, id string) error
}

type FileServiceImpl struct {
	Repo    FileRepository
	Storage ObjectStorage
}

func NewFileService(repo FileRepository, storage ObjectStorage) FileService {
	return &FileServiceImpl{Repo: repo, Storage: storage}
}

func (s *FileServiceImpl) Upload(ctx context.Context, d permission.Decision, header *multipart.FileHeader, category, relatedID string) (*FileRecord, error) {
	if category == "" {
		category = "general"
	}
	if !allowedCategories[category] {
		return nil, apperr.Validation("unknown file category " + category)
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperr.Validation("unreadable upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%s%s",
		category,
		time.Now().Format("2006/01"),
		uuid.New().String(),
		filepath.Ext(header.Filename),
	)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.Storage.Put(key, bytes.NewReader(data), contentType); err != nil {
		return nil, err
	}

	rec := &FileRecord{
		Key:         key,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Category:    category,
		RelatedID:   relatedID,
		Department:  d.Department,
		UploadedBy:  d.UserID,
		CreatedAt:   time.Now(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		// The object is already stored; orphaned keys are cleaned up by a
		// bucket lifecycle rule, not here.
		return nil, err
	}
	return rec, nil
}

func (s *FileServiceImpl) GetURL(ctx context.Context, d permission.Decision, id string) (string, error) {
	rec, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !inScope(d, rec) {
		return "", apperr.NotFound("file not found")
	}
	return s.Storage.URL(rec.Key)
}

func (s *FileServiceImpl) List(ctx context.Context, d permission.Decision, category, relatedID string) ([]FileRecord, error) {
	filter := scopeFilter(d)
	if category != "" {
		filter["category"] = category
	}
	if relatedID != "" {
		filter["related_id"] = relatedID
	}
	return s.Repo.List(ctx, filter)
}

func (s *FileServiceImpl) Delete(ctx context.Context, d permission.Decision, id string) error {
	rec, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, rec) {
		return apperr.NotFound("file not found")
	}

	if err := s.Storage.Delete(rec.Key); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func inScope(d permission.Decision, f *FileRecord) bool {
	switch d.Scope {
	case permission.ScopeSelf:
		return f.UploadedBy == d.UserID
	case permission.ScopeDepartment:
		return f.Department == d.Department
	default:
		return true
	}
}

// scopeFilter mirrors Decision.ScopeFilter but keys self-scope on the
// uploader rather than created_by.
func scopeFilter(d permission.Decision) bson.M {
	switch d.Scope {
	case permission.ScopeSelf:
		return bson.M{"uploaded_by": d.UserID}
	case permission.ScopeDepartment:
		return bson.M{"department": d.Department}
	default:
		return bson.M{}
	}
}
