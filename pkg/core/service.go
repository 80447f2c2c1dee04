package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

const defaultEventBuffer = 100

// Service handles the business logic for posts.
type Service struct {
	repo            Repository
	eventBufferSize int
	mu              sync.RWMutex
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, eventBufferSize: defaultEventBuffer}
}

// SetEventBuffer overrides the size of the Watch event buffer.
// Zero or negative values restore the default.
func (s *Service) SetEventBuffer(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size <= 0 {
		size = defaultEventBuffer
	}
	s.eventBufferSize = size
}

// SavePost validates and persists a post.
func (s *Service) SavePost(ctx context.Context, post Post) error {
	if post.ID == "" {
		return errors.New("post ID cannot be empty")
	}
	if err := post.Matter.Validate(); err != nil {
		return fmt.Errorf("post %s: %w", post.ID, err)
	}
	return s.repo.Save(ctx, post.Document())
}

// GetPost retrieves a post by ID.
func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	if id == "" {
		return Post{}, errors.New("post ID cannot be empty")
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}
	post, err := PostFrom(doc)
	if err != nil {
		return Post{}, fmt.Errorf("post %s: %w", id, err)
	}
	return post, nil
}

// ListPosts retrieves every post in the vault, drafts included,
// sorted newest first. A schema violation in any document fails the
// whole listing; authoring errors are never silently skipped.
func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(docs))
	for _, doc := range docs {
		post, err := PostFrom(doc)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", doc.ID, err)
		}
		posts = append(posts, post)
	}

	sortByDate(posts)
	return posts, nil
}

// ListPublished retrieves all posts that are not drafts, sorted newest first.
func (s *Service) ListPublished(ctx context.Context) ([]Post, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	published := posts[:0]
	for _, p := range posts {
		if p.Published() {
			published = append(published, p)
		}
	}
	return published, nil
}

// ListByTag retrieves published posts carrying the given tag, newest first.
func (s *Service) ListByTag(ctx context.Context, tag string) ([]Post, error) {
	posts, err := s.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	tagged := posts[:0]
	for _, p := range posts {
		if p.HasTag(tag) {
			tagged = append(tagged, p)
		}
	}
	return tagged, nil
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("post ID cannot be empty")
	}
	return s.repo.Delete(ctx, id)
}

// Sync synchronizes the vault with its remote if the repository supports it.
func (s *Service) Sync(ctx context.Context) error {
	sy, ok := s.repo.(Syncable)
	if !ok {
		return errors.New("repository does not support synchronization")
	}
	return sy.Sync(ctx)
}

// Reconcile rescans the backing store and returns the changes that happened
// while no watcher was running, if the repository supports it.
func (s *Service) Reconcile(ctx context.Context) ([]Event, error) {
	r, ok := s.repo.(Reconciler)
	if !ok {
		return nil, errors.New("repository does not support reconciliation")
	}
	return r.Reconcile(ctx)
}

// WithTransaction executes a function within a transaction.
func (s *Service) WithTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	tr, ok := s.repo.(Transactional)
	if !ok {
		return errors.New("repository does not support transactions")
	}

	tx, err := tr.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback(ctx)
		return err
	}

	msg := "batch transaction"
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}
	return tx.Commit(ctx, msg)
}

// Begin initiates a transaction manually.
// Exposed for power users or custom workflows.
func (s *Service) Begin(ctx context.Context) (Transaction, error) {
	tr, ok := s.repo.(Transactional)
	if !ok {
		return nil, errors.New("repository does not support transactions")
	}
	return tr.Begin(ctx)
}

// Watch observes changes in the repository if supported.
//
// The returned channel is buffered and fed by a relay goroutine, so a slow
// consumer does not block the repository's watcher. Events overflowing the
// buffer are dropped rather than applying backpressure upstream.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}

	upstream, err := w.Watch(ctx, pattern)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	size := s.eventBufferSize
	s.mu.RUnlock()

	out := make(chan Event, size)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-upstream:
				if !ok {
					return
				}
				select {
				case out <- e:
				default:
					// Buffer full: drop rather than stall the watcher.
				}
			}
		}
	}()

	return out, nil
}

func sortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[j].Matter.Date.Before(posts[i].Matter.Date)
	})
}
