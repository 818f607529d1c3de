package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// SaveReview writes one review pass under reviews/<taskID>/<seq>.json.
func (s *FileStore) SaveReview(ctx context.Context, r *domain.Review) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(r.TaskID); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	rel := filepath.Join(constants.ReviewsDir, r.TaskID, fmt.Sprintf("%d.json", r.Sequence))
	return s.writeJSON(ctx, rel, r)
}

// ListReviews loads every review pass for a task, ordered by sequence.
// A task with no reviews yields an empty slice.
func (s *FileStore) ListReviews(ctx context.Context, taskID string) ([]domain.Review, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(taskID); err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	paths, err := s.jsonFiles(filepath.Join(constants.ReviewsDir, taskID))
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(paths))
	for _, p := range paths {
		var r domain.Review
		if err := s.readJSONAbs(p, &r); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].Sequence < reviews[j].Sequence })
	return reviews, nil
}

// SaveHumanReview writes or overwrites a human review item.
func (s *FileStore) SaveHumanReview(ctx context.Context, item *domain.HumanReviewItem) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(item.ID); err != nil {
		return fmt.Errorf("saving human review: %w", err)
	}
	return s.writeJSON(ctx, filepath.Join(constants.HumanReviewsDir, item.ID+".json"), item)
}

// ReadHumanReview loads one human review item by id.
func (s *FileStore) ReadHumanReview(ctx context.Context, id string) (*domain.HumanReviewItem, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("reading human review: %w", err)
	}
	var item domain.HumanReviewItem
	rel := filepath.Join(constants.HumanReviewsDir, id+".json")
	if err := s.readJSON(rel, &item, hiveerrors.ErrReviewItemNotFound); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListHumanReviews loads every human review item.
func (s *FileStore) ListHumanReviews(ctx context.Context) ([]*domain.HumanReviewItem, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	paths, err := s.jsonFiles(constants.HumanReviewsDir)
	if err != nil {
		return nil, err
	}
	items := make([]*domain.HumanReviewItem, 0, len(paths))
	for _, p := range paths {
		var item domain.HumanReviewItem
		if err := s.readJSONAbs(p, &item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}
