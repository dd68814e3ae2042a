package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-feedback/internal/feedback"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Record // id -> record
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.ID] = cloneRecord(rec)
	return nil
}

// GetByID returns the owner's record.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok || rec.OwnerID != ownerID {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// ListByOwner returns the owner's records, newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range r.data {
		if rec.OwnerID == ownerID {
			out = append(out, cloneRecord(rec))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Patch applies the non-nil fields of patch.
func (r *MemoryRepo) Patch(ctx context.Context, ownerID, id string, patch Patch) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok || rec.OwnerID != ownerID {
		return Record{}, ErrNotFound
	}
	if patch.Feedback != nil {
		fb := *patch.Feedback
		rec.Feedback = &fb
	}
	if patch.PreviewImageURL != nil {
		rec.PreviewImageURL = *patch.PreviewImageURL
	}
	rec.UpdatedAt = r.now()
	r.data[id] = rec
	return cloneRecord(rec), nil
}

// SetFeedback stores the analysis result on the record.
func (r *MemoryRepo) SetFeedback(ctx context.Context, ownerID, id string, report feedback.Report) (Record, error) {
	return r.Patch(ctx, ownerID, id, Patch{Feedback: &report})
}

// DeleteByID removes the owner's record.
func (r *MemoryRepo) DeleteByID(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok || rec.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// DeleteByOwner removes every record of the owner and returns how many went.
func (r *MemoryRepo) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, rec := range r.data {
		if rec.OwnerID == ownerID {
			delete(r.data, id)
			deleted++
		}
	}
	return deleted, nil
}

func cloneRecord(rec Record) Record {
	if rec.Feedback != nil {
		fb := cloneReport(*rec.Feedback)
		rec.Feedback = &fb
	}
	return rec
}

func cloneReport(rep feedback.Report) feedback.Report {
	clone := func(c feedback.Category) feedback.Category {
		if c.Tips != nil {
			c.Tips = append([]feedback.Tip(nil), c.Tips...)
		}
		return c
	}
	rep.ATS = clone(rep.ATS)
	rep.ToneAndStyle = clone(rep.ToneAndStyle)
	rep.Content = clone(rep.Content)
	rep.Structure = clone(rep.Structure)
	rep.Skills = clone(rep.Skills)
	return rep
}

var _ Repo = (*MemoryRepo)(nil)
