package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pickem-app-go/logging"
	"pickem-app-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pickTableDoc is one (week, picker) slice of the pick table. Contest
// ids become string keys because BSON map keys must be strings.
type pickTableDoc struct {
	Week      int                    `bson:"week"`
	Picker    string                 `bson:"picker"`
	Picks     map[string]models.Pick `bson:"picks"`
	UpdatedAt time.Time              `bson:"updated_at"`
}

// MongoPickTableRepository persists the full pick table, one document
// per (week, picker), written through on every mutating operation.
type MongoPickTableRepository struct {
	collection *mongo.Collection
	meta       *mongo.Collection
	logger     *logging.Logger
}

// NewMongoPickTableRepository creates the repository and its indexes
func NewMongoPickTableRepository(db *MongoDB) *MongoPickTableRepository {
	collection := db.GetCollection("pick_table")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "week", Value: 1}, {Key: "picker", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoPickTableRepository{
		collection: collection,
		meta:       db.GetCollection("meta"),
		logger:     logging.WithPrefix("PickTableRepo"),
	}
}

// LoadTable reads the entire persisted pick table. Documents that fail
// to decode are discarded rather than failing the load.
func (r *MongoPickTableRepository) LoadTable(ctx context.Context) (models.PickTable, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load pick table: %w", err)
	}
	defer cursor.Close(ctx)

	table := make(models.PickTable)
	for cursor.Next(ctx) {
		var doc pickTableDoc
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Warnf("Discarding undecodable pick document: %v", err)
			continue
		}
		for contestKey, pick := range doc.Picks {
			contestID, err := strconv.Atoi(contestKey)
			if err != nil {
				r.logger.Warnf("Discarding pick with non-numeric contest key %q (week %d, %s)",
					contestKey, doc.Week, doc.Picker)
				continue
			}
			if !pick.IsEmpty() {
				table.Set(doc.Week, doc.Picker, contestID, pick)
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error loading pick table: %w", err)
	}

	return table, nil
}

// SaveTable writes the whole in-memory table through to storage:
// every (week, picker) slice is upserted and slices no longer present
// are deleted.
func (r *MongoPickTableRepository) SaveTable(ctx context.Context, table models.PickTable) error {
	now := time.Now()
	var keep []bson.M

	for week, byPicker := range table {
		for picker, picks := range byPicker {
			doc := pickTableDoc{
				Week:      week,
				Picker:    picker,
				Picks:     make(map[string]models.Pick, len(picks)),
				UpdatedAt: now,
			}
			for contestID, pick := range picks {
				doc.Picks[strconv.Itoa(contestID)] = pick
			}

			filter := bson.M{"week": week, "picker": picker}
			keep = append(keep, filter)

			opts := options.Replace().SetUpsert(true)
			if _, err := r.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
				return fmt.Errorf("failed to save picks for week %d picker %s: %w", week, picker, err)
			}
		}
	}

	// Remove slices that were emptied or reset
	var stale bson.M
	if len(keep) == 0 {
		stale = bson.M{}
	} else {
		stale = bson.M{"$nor": keep}
	}
	if _, err := r.collection.DeleteMany(ctx, stale); err != nil {
		return fmt.Errorf("failed to prune stale pick documents: %w", err)
	}

	return nil
}

// LegacyImportDone reports whether the one-time legacy blob migration
// has already run.
func (r *MongoPickTableRepository) LegacyImportDone(ctx context.Context) bool {
	var doc bson.M
	err := r.meta.FindOne(ctx, bson.M{"_id": "legacy_import"}).Decode(&doc)
	return err == nil
}

// MarkLegacyImportDone records that migration has run so it is never
// repeated.
func (r *MongoPickTableRepository) MarkLegacyImportDone(ctx context.Context) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.meta.UpdateOne(ctx,
		bson.M{"_id": "legacy_import"},
		bson.M{"$set": bson.M{"done": true, "at": time.Now()}},
		opts)
	if err != nil {
		return fmt.Errorf("failed to mark legacy import done: %w", err)
	}
	return nil
}

// ImportLegacyBlob migrates a serialized pick blob (legacy or current
// shape) into the table store. Corrupt blobs are discarded with a
// warning, never surfaced as a load failure. Runs at most once.
func (r *MongoPickTableRepository) ImportLegacyBlob(ctx context.Context, data []byte, legacyWeek int) (models.PickTable, error) {
	if r.LegacyImportDone(ctx) {
		r.logger.Debug("Legacy import already done, skipping")
		return nil, nil
	}

	table, migrated, err := ParsePickTableBlob(data, legacyWeek)
	if err != nil {
		r.logger.Warnf("Discarding corrupt legacy pick blob: %v", err)
		if markErr := r.MarkLegacyImportDone(ctx); markErr != nil {
			return nil, markErr
		}
		return make(models.PickTable), nil
	}

	if migrated {
		r.logger.Infof("Migrated legacy pick blob into week %d (%d pickers)", legacyWeek, len(table[legacyWeek]))
	}

	if err := r.SaveTable(ctx, table); err != nil {
		return nil, err
	}
	if err := r.MarkLegacyImportDone(ctx); err != nil {
		return nil, err
	}
	return table, nil
}
