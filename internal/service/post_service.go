package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/repository"
	"github.com/maheshrc27/postforge/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	ListByStatus(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Select(ctx context.Context, userID int64, su *transfer.SelectionUpdate) error
}

type postService struct {
	pr repository.PostRepository
}

func NewPostService(pr repository.PostRepository) PostService {
	return &postService{pr: pr}
}

// Create is the ingestion path: new posts land as Untouched, or directly in
// Queue when the caller asks for it. Input fields are immutable afterwards.
func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if pc.Instruction == "" {
		err := errors.New("instruction cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	postID, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	status := models.PostStatusUntouched
	if pc.Queue {
		status = models.PostStatusQueue
	}

	post := models.Post{
		PostID:      postID,
		UserID:      userID,
		Status:      status,
		Instruction: pc.Instruction,
		PostType:    pc.PostType,
		Template:    pc.Template,
		Purpose:     pc.Purpose,
		Sample:      pc.Sample,
		Keywords:    pc.Keywords,
	}

	id, err := s.pr.Create(ctx, nil, &post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = id

	return &post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) ListByStatus(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	posts, err := s.pr.ListByStatus(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		return nil, fmt.Errorf("%w: post %d", models.ErrNotFound, postID)
	}

	post, _, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info: %w", err)
	}

	return post, nil
}

// Select records the user's pick among the three variants and three images.
// Only generated (or later) posts carry anything selectable.
func (s *postService) Select(ctx context.Context, userID int64, su *transfer.SelectionUpdate) error {
	if su.SelectedVariant < 0 || su.SelectedVariant > 3 || su.SelectedImage < 0 || su.SelectedImage > 3 {
		err := errors.New("selection must be between 1 and 3")
		slog.Info(err.Error())
		return err
	}

	post, exists, err := s.pr.GetByID(ctx, su.PostID)
	if err != nil {
		return err
	}
	if !exists || post.UserID != userID {
		return fmt.Errorf("%w: post %d", models.ErrNotFound, su.PostID)
	}

	if post.Status == models.PostStatusUntouched || post.Status == models.PostStatusQueue {
		err := errors.New("post has no generated content to select from")
		slog.Info(err.Error())
		return err
	}

	return s.pr.UpdateSelection(ctx, post.ID, su.SelectedVariant, su.SelectedImage)
}
