package service

import (
	"context"
	"errors"
	"fmt"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
	"journal-backend/internal/usergroup"
)

type authorService struct {
	authorRepo repository.AuthorRepository
	groupRepo  repository.UserGroupRepository
}

func NewAuthorService(authorRepo repository.AuthorRepository, groupRepo repository.UserGroupRepository) AuthorService {
	return &authorService{
		authorRepo: authorRepo,
		groupRepo:  groupRepo,
	}
}

func (s *authorService) ListByPublication(ctx context.Context, publicationID int32) ([]domain.Author, error) {
	logger.EnterMethod("AuthorService.ListByPublication", "publication_id", publicationID)

	authors, err := s.authorRepo.ListByPublication(ctx, publicationID)
	if err != nil {
		logger.ExitMethodWithError("AuthorService.ListByPublication", err)
		return nil, err
	}
	groups := usergroup.FromContext(ctx, s.groupRepo)
	for i := range authors {
		if err := s.resolveGroup(ctx, groups, &authors[i]); err != nil {
			return nil, err
		}
	}

	logger.ExitMethod("AuthorService.ListByPublication", "count", len(authors))
	return authors, nil
}

func (s *authorService) GetAuthor(ctx context.Context, id int32) (*domain.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveGroup(ctx, usergroup.FromContext(ctx, s.groupRepo), author); err != nil {
		return nil, err
	}
	return author, nil
}

// resolveGroup attaches the author's user group. A group that no longer exists leaves
// UserGroup nil.
func (s *authorService) resolveGroup(ctx context.Context, groups *usergroup.Cache, a *domain.Author) error {
	if a.UserGroupID == 0 {
		return nil
	}
	g, err := groups.Get(ctx, a.UserGroupID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Author references a missing user group", "author_id", a.ID, "user_group_id", a.UserGroupID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user group %d: %w", a.UserGroupID, err)
	}
	a.UserGroup = g
	return nil
}

func (s *authorService) AddAuthor(ctx context.Context, author *domain.Author) error {
	logger.EnterMethod("AuthorService.AddAuthor", "publication_id", author.PublicationID)

	last, err := s.authorRepo.MaxSeq(ctx, author.PublicationID)
	if err != nil {
		return err
	}
	author.Seq = last + 1
	if err := s.authorRepo.Create(ctx, author); err != nil {
		logger.ExitMethodWithError("AuthorService.AddAuthor", err)
		return err
	}

	logger.ExitMethod("AuthorService.AddAuthor", "author_id", author.ID, "seq", author.Seq)
	return nil
}

func (s *authorService) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	return s.authorRepo.Update(ctx, author)
}

func (s *authorService) DeleteAuthor(ctx context.Context, id int32) error {
	return s.authorRepo.Delete(ctx, id)
}

// ReorderAuthors renumbers the publication's authors in the order given. authorIDs must
// name every author of the publication exactly once.
func (s *authorService) ReorderAuthors(ctx context.Context, publicationID int32, authorIDs []int32) error {
	logger.EnterMethod("AuthorService.ReorderAuthors", "publication_id", publicationID, "count", len(authorIDs))

	authors, err := s.authorRepo.ListByPublication(ctx, publicationID)
	if err != nil {
		return err
	}
	current := make(map[int32]int32, len(authors))
	for _, a := range authors {
		current[a.ID] = a.Seq
	}
	if len(authorIDs) != len(current) {
		return fmt.Errorf("reorder publication %d: got %d authors, want %d: %w", publicationID, len(authorIDs), len(current), domain.ErrMalformedInput)
	}
	seen := make(map[int32]bool, len(authorIDs))
	for _, id := range authorIDs {
		if _, ok := current[id]; !ok || seen[id] {
			return fmt.Errorf("reorder publication %d: author %d: %w", publicationID, id, domain.ErrNotFound)
		}
		seen[id] = true
	}

	for i, id := range authorIDs {
		if current[id] == int32(i) {
			continue
		}
		if err := s.authorRepo.UpdateSeq(ctx, id, int32(i)); err != nil {
			logger.ExitMethodWithError("AuthorService.ReorderAuthors", err)
			return err
		}
	}

	logger.ExitMethod("AuthorService.ReorderAuthors")
	return nil
}
