package vectorindex

import (
	"context"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rag-chatbot-be/internal/apperr"
)

// vectorCollection is the registry row that pins a collection's dimension.
type vectorCollection struct {
	Name      string    `gorm:"type:text;primaryKey"`
	Dimension int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (vectorCollection) TableName() string {
	return "vector_collections"
}

// vectorChunk is one stored vector. Collection isolation is a filtered
// column here rather than a physical namespace; the registry table keeps the
// per-collection dimension contract.
type vectorChunk struct {
	Id         string          `gorm:"type:uuid;primaryKey"`
	Collection string          `gorm:"type:text;not null;index"`
	Document   string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	ChunkIndex int             `gorm:"default:0"`
	FilePath   string          `gorm:"type:text"`
	ChunkCount int             `gorm:"default:0"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (vectorChunk) TableName() string {
	return "vector_chunks"
}

// PgVectorIndex stores vectors in Postgres via the pgvector extension,
// ordered by cosine distance (`<=>`).
type PgVectorIndex struct {
	db *gorm.DB
}

func NewPgVectorIndex(db *gorm.DB) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

// Migrate creates the pgvector extension and the backing tables.
func (p *PgVectorIndex) Migrate() error {
	if err := p.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to enable pgvector extension", err)
	}
	return p.db.AutoMigrate(&vectorCollection{}, &vectorChunk{})
}

func (p *PgVectorIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	// ON CONFLICT DO NOTHING keeps concurrent first ingests idempotent; the
	// read-back catches a dimension conflict either way.
	record := vectorCollection{Name: name, Dimension: dimension}
	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
	if err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to register collection", err)
	}

	var existing vectorCollection
	if err := p.db.WithContext(ctx).First(&existing, "name = ?", name).Error; err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to read collection registry", err)
	}
	if existing.Dimension != dimension {
		return apperr.Newf(apperr.KindIndex,
			"collection %s has dimension %d, want %d", name, existing.Dimension, dimension)
	}
	return nil
}

func (p *PgVectorIndex) Upsert(ctx context.Context, collection string, items []Item) (UpsertReport, error) {
	report := UpsertReport{}

	for _, item := range items {
		row := vectorChunk{
			Id:         item.ID,
			Collection: collection,
			Document:   item.Payload.Text,
			Embedding:  pgvector.NewVector(item.Vector),
			ChunkIndex: item.Payload.ChunkIndex,
			FilePath:   item.Payload.FilePath,
			ChunkCount: item.Payload.ChunkCount,
		}

		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return report, apperr.Wrap(apperr.KindIndex, "vector store unreachable", err)
			}
			report.FailedIDs = append(report.FailedIDs, item.ID)
			continue
		}
		report.Inserted++
	}

	return report, nil
}

func (p *PgVectorIndex) Search(ctx context.Context, collection string, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, apperr.Invalid("search k must be positive")
	}

	type scoredChunk struct {
		vectorChunk
		Score float64
	}
	var rows []scoredChunk

	queryVector := pgvector.NewVector(vector)

	// Cosine distance in pgvector is 1 - cosine similarity; the id ordering
	// keeps equal scores deterministic.
	err := p.db.WithContext(ctx).
		Table("vector_chunks").
		Select("vector_chunks.*, 1 - (embedding <=> ?) AS score", queryVector).
		Where("collection = ?", collection).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?, id ASC",
			Vars: []interface{}{queryVector},
		}}).
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIndex, "vector search failed", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Score: row.Score,
			Payload: Payload{
				Text:       row.Document,
				ChunkIndex: row.ChunkIndex,
				FilePath:   row.FilePath,
				ChunkCount: row.ChunkCount,
			},
		})
	}

	return results, nil
}

var _ Index = (*PgVectorIndex)(nil)
