package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
)

type IStorageService interface {
	Upload(ctx context.Context, req *dto.StorageRequest) (*dto.StorageResponse, error)
	SetupVectorStore(ctx context.Context, req *dto.StorageRequest) (*dto.StorageResponse, error)
	GenerateSignedUrl(ctx context.Context, req *dto.SignedUrlRequest) (*dto.SignedUrlResponse, error)
	CreateFolders(ctx context.Context, req *dto.StorageRequest) (*dto.StorageResponse, error)
	DeleteFiles(ctx context.Context, req *dto.DeleteFileRequest) (*dto.DeleteFileResponse, error)
	ListFiles(ctx context.Context, userId, username string) (*dto.FileListResponse, error)
}

type storageService struct {
	store            storage.DurableStore
	bucket           string
	layout           storage.Layout
	signedURLTTL     time.Duration
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewStorageService(
	store storage.DurableStore,
	bucket string,
	layout storage.Layout,
	signedURLTTL time.Duration,
	publisherService IPublisherService,
	logger logger.ILogger,
) IStorageService {
	return &storageService{
		store:            store,
		bucket:           bucket,
		layout:           layout,
		signedURLTTL:     signedURLTTL,
		publisherService: publisherService,
		logger:           logger,
	}
}

// Upload makes sure the user's folders exist and tells the client where resources go.
func (s *storageService) Upload(ctx context.Context, req *dto.StorageRequest) (*dto.StorageResponse, error) {
	if err := s.store.CreateUserFolders(ctx, s.bucket, s.layout, req.Username); err != nil {
		return nil, err
	}
	return &dto.StorageResponse{
		UserId:   req.UserId,
		Message:  "Folder created successfully",
		Response: s.layout.ResourcePath(req.Username),
	}, nil
}

// SetupVectorStore queues an ingestion job; the vector store is rebuilt in the background.
func (s *storageService) SetupVectorStore(ctx context.Context, req *dto.StorageRequest) (*dto.StorageResponse, error) {
	payload, err := json.Marshal(dto.BuildVectorStoreMessage{
		UserId:   req.UserId,
		Username: req.Username,
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("queue vector store build: %w", err)
	}

	s.logger.Info("STORAGE", "Vector store build queued", map[string]interface{}{
		"user_id":  req.UserId,
		"username": req.Username,
	})

	return &dto.StorageResponse{
		UserId:   req.UserId,
		Message:  "Vector store setup queued",
		Response: s.layout.VectorStorePath(req.Username),
	}, nil
}

func (s *storageService) GenerateSignedUrl(ctx context.Context, req *dto.SignedUrlRequest) (*dto.SignedUrlResponse, error) {
	name, err := s.resourceObject(req.Username, req.Filename)
	if err != nil {
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	url, err := s.store.SignedUploadURL(ctx, s.bucket, name, contentType, s.signedURLTTL)
	if err != nil {
		return nil, err
	}
	return &dto.SignedUrlResponse{
		Url:        url,
		ObjectName: name,
		ExpiresIn:  int64(s.signedURLTTL.Seconds()),
	}, nil
}

func (s *storageService) CreateFolders(ctx context.Context, req *dto.StorageRequest) (*dto.StorageResponse, error) {
	if err := s.store.CreateUserFolders(ctx, s.bucket, s.layout, req.Username); err != nil {
		return nil, err
	}
	return &dto.StorageResponse{
		UserId:   req.UserId,
		Message:  "Folders created successfully",
		Response: s.layout.UserFolder(req.Username),
	}, nil
}

func (s *storageService) DeleteFiles(ctx context.Context, req *dto.DeleteFileRequest) (*dto.DeleteFileResponse, error) {
	res := &dto.DeleteFileResponse{Deleted: []string{}, NotFound: []string{}}
	for _, filename := range req.Filenames {
		name, err := s.resourceObject(req.Username, filename)
		if err != nil {
			return nil, err
		}
		existed, err := s.store.Delete(ctx, s.bucket, name)
		if err != nil {
			return nil, err
		}
		if existed {
			res.Deleted = append(res.Deleted, filename)
		} else {
			res.NotFound = append(res.NotFound, filename)
		}
	}

	s.logger.Info("STORAGE", "Resource files deleted", map[string]interface{}{
		"username":  req.Username,
		"deleted":   len(res.Deleted),
		"not_found": len(res.NotFound),
	})
	return res, nil
}

func (s *storageService) ListFiles(ctx context.Context, userId, username string) (*dto.FileListResponse, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", storage.ErrInvalidPath)
	}
	names, err := s.store.List(ctx, s.bucket, s.layout.ResourcePath(username))
	if err != nil {
		return nil, err
	}
	return &dto.FileListResponse{UserId: userId, Filenames: names}, nil
}

// resourceObject maps a client supplied filename to an object in the user's resource folder.
func (s *storageService) resourceObject(username, filename string) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if username == "" || base != filename || base == "." || base == ".." || base == "/" {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidPath, filename)
	}
	return path.Join(s.layout.ResourcePath(username), base), nil
}
