package localstore

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/craftbazaar/pkg/db"
	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvRow maps the local_kv table created by the embedded migrations.
type kvRow struct {
	Namespace  string    `gorm:"column:namespace;primaryKey"`
	StoreKey   string    `gorm:"column:store_key;primaryKey"`
	StoreValue string    `gorm:"column:store_value;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (kvRow) TableName() string { return "local_kv" }

// SQL persists values in the local_kv table of a sqlite or postgres database.
type SQL struct {
	client    *db.Client
	namespace string
	now       func() time.Time
}

func NewSQL(client *db.Client, namespace string) (*SQL, error) {
	if client == nil {
		return nil, errors.New("db client is required")
	}
	if namespace == "" {
		namespace = "default"
	}
	return &SQL{client: client, namespace: namespace, now: time.Now}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var row kvRow
	err := s.client.DB().WithContext(ctx).
		Where("namespace = ? AND store_key = ?", s.namespace, key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read local value")
	}
	return row.StoreValue, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	row := kvRow{
		Namespace:  s.namespace,
		StoreKey:   key,
		StoreValue: value,
		UpdatedAt:  s.now().UTC(),
	}
	err := s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write local value")
	}
	return nil
}

func (s *SQL) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Where("namespace = ? AND store_key IN ?", s.namespace, keys).Delete(&kvRow{}).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete local values")
		}
		return nil
	})
}
