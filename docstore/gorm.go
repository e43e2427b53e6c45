package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one row of the documents table. Data holds the JSON body.
type Document struct {
	Collection string    `gorm:"primaryKey;size:255"`
	ID         string    `gorm:"primaryKey;size:191"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (Document) TableName() string { return "documents" }

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GormStore keeps documents in a single SQL table. Field queries use the
// database's JSON functions; only string-valued fields can be matched.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	if err := validCollection(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	return id, upsert(s.db.WithContext(ctx), collection, id, doc)
}

func (s *GormStore) Set(ctx context.Context, path string, doc any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	return upsert(s.db.WithContext(ctx), collection, id, doc)
}

func (s *GormStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return newGormTx(tx).Merge(path, fields)
	})
}

func (s *GormStore) Get(ctx context.Context, path string, dst any) error {
	return getRow(s.db.WithContext(ctx), path, dst)
}

func (s *GormStore) Where(ctx context.Context, collection, field string, value any, dst any) error {
	if !fieldName.MatchString(field) {
		return fmt.Errorf("docstore: invalid field name %q", field)
	}
	if err := validCollection(collection); err != nil {
		return err
	}
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	v := fmt.Sprint(value)
	switch s.db.Dialector.Name() {
	case "postgres":
		q = q.Where("data::jsonb ->> ? = ?", field, v)
	case "mysql":
		q = q.Where("JSON_UNQUOTE(JSON_EXTRACT(data, ?)) = ?", "$."+field, v)
	default:
		q = q.Where("json_extract(data, ?) = ?", "$."+field, v)
	}
	return s.find(q, dst)
}

func (s *GormStore) List(ctx context.Context, collection string, dst any) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	return s.find(s.db.WithContext(ctx).Where("collection = ?", collection), dst)
}

func (s *GormStore) Delete(ctx context.Context, path string) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Document{}).Error
}

func (s *GormStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newGormTx(tx))
	})
}

func (s *GormStore) find(q *gorm.DB, dst any) error {
	var rows []Document
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return fillSlice(dst, ids, func(i int, target any) error {
		return json.Unmarshal([]byte(rows[i].Data), target)
	})
}

func upsert(db *gorm.DB, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return writeRow(db, collection, id, data)
}

func writeRow(db *gorm.DB, collection, id string, data []byte) error {
	row := Document{Collection: collection, ID: id, Data: string(data)}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func getRow(db *gorm.DB, path string, dst any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	var row Document
	err = db.Where("collection = ? AND id = ?", collection, id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(row.Data), dst); err != nil {
		return err
	}
	assignID(dst, id)
	return nil
}

type gormTx struct {
	db   *gorm.DB
	lock bool
}

// SQLite has no row locks; its transactions already hold the database lock.
func newGormTx(db *gorm.DB) *gormTx {
	return &gormTx{db: db, lock: db.Dialector.Name() != "sqlite"}
}

func (t *gormTx) reader() *gorm.DB {
	if t.lock {
		return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.db
}

func (t *gormTx) Get(path string, dst any) error {
	return getRow(t.reader(), path, dst)
}

func (t *gormTx) Set(path string, doc any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	return upsert(t.db, collection, id, doc)
}

func (t *gormTx) Merge(path string, fields map[string]any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	var row Document
	var current []byte
	err = t.reader().Where("collection = ? AND id = ?", collection, id).Take(&row).Error
	switch {
	case err == nil:
		current = []byte(row.Data)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	data, err := mergeJSON(current, fields)
	if err != nil {
		return err
	}
	return writeRow(t.db, collection, id, data)
}

func (t *gormTx) Create(collection string, doc any) (string, error) {
	if err := validCollection(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	return id, upsert(t.db, collection, id, doc)
}
