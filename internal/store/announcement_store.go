package store

import (
	"context"
	"time"

	"loyalty/internal/models"

	"github.com/lib/pq"
)

type AnnouncementStore struct {
	db DB
}

func NewAnnouncementStore(db DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

const announcementColumns = `id, store_id, title, body, priority, is_active, end_date, created_at`

type AnnouncementPatch struct {
	Title    *string
	Body     *string
	Priority *int
	IsActive *bool
	EndDate  *time.Time
}

func (s *AnnouncementStore) Create(ctx context.Context, tx Execer, a models.Announcement) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO announcements (id, store_id, title, body, priority, is_active, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.StoreID, a.Title, a.Body, a.Priority, a.IsActive, a.EndDate)
	return err
}

// Update applies the non-nil fields of patch. It returns sql.ErrNoRows for an
// unknown id.
func (s *AnnouncementStore) Update(ctx context.Context, tx Getter, id string, patch AnnouncementPatch) (models.Announcement, error) {
	var row models.Announcement
	err := tx.GetContext(ctx, &row, `
		UPDATE announcements
		SET title = COALESCE($1, title),
		    body = COALESCE($2, body),
		    priority = COALESCE($3, priority),
		    is_active = COALESCE($4, is_active),
		    end_date = COALESCE($5, end_date),
		    updated_at = NOW()
		WHERE id = $6
		RETURNING `+announcementColumns,
		patch.Title, patch.Body, patch.Priority, patch.IsActive, patch.EndDate, id)
	return row, err
}

func (s *AnnouncementStore) Delete(ctx context.Context, tx Execer, id string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActive returns active, unexpired announcements that are global or
// belong to one of storeIDs, highest priority first.
func (s *AnnouncementStore) ListActive(ctx context.Context, storeIDs []string, now time.Time) ([]models.Announcement, error) {
	rows := []models.Announcement{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE is_active = TRUE
		  AND (end_date IS NULL OR end_date > $1)
		  AND (store_id IS NULL OR store_id = ANY($2))
		ORDER BY priority DESC, created_at DESC
	`, now, pq.Array(storeIDs))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AnnouncementStore) ListByStore(ctx context.Context, storeID string, now time.Time) ([]models.Announcement, error) {
	rows := []models.Announcement{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE store_id = $1
		  AND is_active = TRUE
		  AND (end_date IS NULL OR end_date > $2)
		ORDER BY priority DESC, created_at DESC
	`, storeID, now)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
