package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Node is one leaf of the document tree as a Postgres row. Interior nodes
// are never stored; Read assembles them from the leaves underneath.
type Node struct {
	Path      string `gorm:"primaryKey;size:512"`
	Value     []byte `gorm:"type:jsonb;not null"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

func (Node) TableName() string { return "tree_nodes" }

// DBStore backs the tree with a relational table, one row per scalar leaf.
// Subtree reads select by path prefix.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&Node{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	return &DBStore{db: db}, nil
}

func (s *DBStore) Backend() string { return "postgres" }

func (s *DBStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	p := strings.Trim(path, "/")
	if _, err := splitPath(p); err != nil {
		return nil, err
	}

	var node Node
	err := s.db.WithContext(ctx).First(&node, "path = ?", p).Error
	if err == nil {
		return json.RawMessage(node.Value), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rows []Node
	if err := s.db.WithContext(ctx).
		Where("path LIKE ?", likePrefix(p)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	leaves := make([]leaf, 0, len(rows))
	for _, r := range rows {
		leaves = append(leaves, leaf{
			path:  strings.TrimPrefix(r.Path, p+"/"),
			value: json.RawMessage(r.Value),
		})
	}
	tree, err := assemble(leaves)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

func (s *DBStore) Write(ctx context.Context, path string, value any) error {
	p := strings.Trim(path, "/")
	if _, err := splitPath(p); err != nil {
		return err
	}
	v, err := toTree(value)
	if err != nil {
		return err
	}
	leaves, err := flatten(p, v)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("path = ? OR path LIKE ?", p, likePrefix(p)).
			Delete(&Node{}).Error; err != nil {
			return err
		}
		return upsertLeaves(tx, leaves)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *DBStore) Merge(ctx context.Context, path string, partial any) error {
	p := strings.Trim(path, "/")
	if _, err := splitPath(p); err != nil {
		return err
	}
	v, err := toTree(partial)
	if err != nil {
		return err
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return s.Write(ctx, path, partial)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, fv := range obj {
			fp := p + "/" + k
			if err := tx.Where("path = ? OR path LIKE ?", fp, likePrefix(fp)).
				Delete(&Node{}).Error; err != nil {
				return err
			}
			if fv == nil {
				continue
			}
			leaves, err := flatten(fp, fv)
			if err != nil {
				return err
			}
			if err := upsertLeaves(tx, leaves); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *DBStore) Append(ctx context.Context, path string, value any) (string, error) {
	key := NewPushKey()
	if err := s.Write(ctx, strings.Trim(path, "/")+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *DBStore) Delete(ctx context.Context, path string) error {
	p := strings.Trim(path, "/")
	if _, err := splitPath(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Where("path = ? OR path LIKE ?", p, likePrefix(p)).
		Delete(&Node{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func upsertLeaves(tx *gorm.DB, leaves []leaf) error {
	for _, l := range leaves {
		node := Node{Path: l.path, Value: l.value}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&node).Error; err != nil {
			return err
		}
	}
	return nil
}

func likePrefix(p string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(p)
	return escaped + "/%"
}
