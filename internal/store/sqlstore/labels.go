package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// labelTable names the storage of one label kind.
type labelTable struct {
	table      string // label rows
	link       string // recipe link table
	linkColumn string // label column of the link table
}

var labelTables = map[domain.LabelKind]labelTable{
	domain.LabelTag:        {table: "tags", link: "recipe_tags", linkColumn: "tag_id"},
	domain.LabelIngredient: {table: "ingredients", link: "recipe_ingredients", linkColumn: "ingredient_id"},
}

func tableFor(kind domain.LabelKind) (labelTable, error) {
	t, ok := labelTables[kind]
	if !ok {
		return labelTable{}, fmt.Errorf("unknown label kind %q", kind)
	}
	return t, nil
}

// labelColumns must match the scan order in scanLabel.
const labelColumns = `id, user_id, name, created_at, updated_at`

func scanLabel(kind domain.LabelKind, scanner interface{ Scan(dest ...any) error }) (*domain.Label, error) {
	l := domain.Label{Kind: kind}

	var createdAt, updatedAt string
	if err := scanner.Scan(&l.ID, &l.OwnerID, &l.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLabel inserts a non-canonical label and assigns its ID.
// Names are not unique: creating the same name twice yields two rows.
func (s *Store) CreateLabel(ctx context.Context, label *domain.Label) error {
	t, err := tableFor(label.Kind)
	if err != nil {
		return err
	}

	id, err := s.insertID(ctx, `
		INSERT INTO `+t.table+` (user_id, name, canonical, created_at, updated_at)
		VALUES (?, ?, FALSE, ?, ?)`,
		label.OwnerID,
		label.Name,
		formatTime(label.CreatedAt),
		formatTime(label.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrReferenceMissing
		}
		return err
	}
	label.ID = id
	return nil
}

// GetLabel retrieves a label by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetLabel(ctx context.Context, kind domain.LabelKind, id int64) (*domain.Label, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	row := s.queryRow(ctx, `SELECT `+labelColumns+` FROM `+t.table+` WHERE id = ?`, id)
	l, err := scanLabel(kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLabels returns the owner's labels of one kind ordered by ID.
func (s *Store) ListLabels(ctx context.Context, kind domain.LabelKind, ownerID int64) ([]*domain.Label, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx,
		`SELECT `+labelColumns+` FROM `+t.table+` WHERE user_id = ? ORDER BY id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []*domain.Label{}
	for rows.Next() {
		l, err := scanLabel(kind, rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// UpdateLabel renames a label. A renamed label gives up its canonical
// status so it can never collide with the reconciled row of its new name.
func (s *Store) UpdateLabel(ctx context.Context, label *domain.Label) error {
	t, err := tableFor(label.Kind)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, `
		UPDATE `+t.table+` SET
			name = ?,
			canonical = CASE WHEN name = ? THEN canonical ELSE FALSE END,
			user_id = ?,
			updated_at = ?
		WHERE id = ?`,
		label.Name,
		label.Name,
		label.OwnerID,
		formatTime(label.UpdatedAt),
		label.ID,
	)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// DeleteLabel removes a label and its recipe links.
func (s *Store) DeleteLabel(ctx context.Context, kind domain.LabelKind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// reconcileLabel upserts the canonical row for (ownerID, name) and returns
// the label that name resolves to. An existing row of the same name, canonical
// or not, suppresses the insert. Lookups prefer the canonical row, then the
// oldest.
func (c conn) reconcileLabel(ctx context.Context, kind domain.LabelKind, ownerID int64, name string) (*domain.Label, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	now := formatTime(time.Now())
	_, err = c.exec(ctx, `
		INSERT INTO `+t.table+` (user_id, name, canonical, created_at, updated_at)
		SELECT CAST(? AS BIGINT), CAST(? AS TEXT), TRUE, CAST(? AS `+c.d.timeType+`), CAST(? AS `+c.d.timeType+`)
		WHERE NOT EXISTS (SELECT 1 FROM `+t.table+` WHERE user_id = ? AND name = ?)
		ON CONFLICT DO NOTHING`,
		ownerID, name, now, now,
		ownerID, name,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrReferenceMissing
		}
		return nil, fmt.Errorf("upsert %s %q: %w", kind, name, err)
	}

	row := c.queryRow(ctx, `
		SELECT `+labelColumns+` FROM `+t.table+`
		WHERE user_id = ? AND name = ?
		ORDER BY canonical DESC, id ASC
		LIMIT 1`,
		ownerID, name,
	)
	l, err := scanLabel(kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrReconcileMiss
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
