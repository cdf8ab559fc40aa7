package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

// commentDoc — BSON-представление комментария.
// parent_id и child_ids хранят hex-строки ObjectID; "" — корень.
type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	PostID     string             `bson:"post_id"`
	ParentID   string             `bson:"parent_id"`
	Author     string             `bson:"author"`
	Content    string             `bson:"content"`
	ChildIDs   []string           `bson:"child_ids"`
	LikedBy    []string           `bson:"liked_by"`
	DislikedBy []string           `bson:"disliked_by"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *commentDoc) toModel() *models.Comment {
	return &models.Comment{
		ID:         d.ID.Hex(),
		PostID:     d.PostID,
		ParentID:   d.ParentID,
		Author:     d.Author,
		Content:    d.Content,
		ChildIDs:   nonNil(d.ChildIDs),
		LikedBy:    nonNil(d.LikedBy),
		DislikedBy: nonNil(d.DislikedBy),
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// parseIDs переводит hex-строки в ObjectID, некорректные отбрасывает.
func parseIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		out = append(out, oid)
	}

	return out
}

// CreateComment вставляет документ и дописывает его id в child_ids родителя.
// Родитель исчез между вставкой и $addToSet — вставка откатывается (ErrParentNotFound).
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	now := toMS(time.Now())
	doc := commentDoc{
		ID:         primitive.NewObjectID(),
		PostID:     comm.PostID,
		ParentID:   strings.TrimSpace(comm.ParentID),
		Author:     comm.Author,
		Content:    comm.Content,
		ChildIDs:   []string{},
		LikedBy:    []string{},
		DislikedBy: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var parentOID primitive.ObjectID
	if doc.ParentID != "" {
		oid, err := primitive.ObjectIDFromHex(doc.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}
		parentOID = oid
	}

	if _, err := m.comments.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	if doc.ParentID == "" {
		return doc.toModel(), nil
	}

	matched, err := m.linkChild(ctx, parentOID, doc.ID.Hex())
	if err != nil {
		return doc.toModel(), fmt.Errorf("%s: %w: %w", op, storage.ErrLinkDeferred, err)
	}

	if !matched {
		// Компенсация: ответ без родителя не должен пережить вставку.
		// Контекст запроса мог истечь, поэтому откат выполняется в отдельном.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if _, err := m.comments.DeleteOne(cctx, bson.D{{Key: "_id", Value: doc.ID}}); err != nil {
			return nil, fmt.Errorf("%s: %w: rollback: %w", op, storage.ErrParentNotFound, err)
		}

		return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
	}

	return doc.toModel(), nil
}

// CommentByID возвращает комментарий; некорректный id трактуется как отсутствие записи.
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// CommentsByIDs — пакетная выборка; отсутствующие и некорректные id пропускаются.
func (m *Mongo) CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	const op = "storage/mongo/CommentsByIDs"

	oids := parseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	out, err := m.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// TopLevelByPost — корни поста. Сортировка: created_at DESC, _id DESC.
func (m *Mongo) TopLevelByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "storage/mongo/TopLevelByPost"

	filter := bson.D{
		{Key: "post_id", Value: strings.TrimSpace(postID)},
		{Key: "parent_id", Value: ""},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	out, err := m.find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// RepliesOf — выборка по полю parent_id (индекс parent_created).
func (m *Mongo) RepliesOf(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	const op = "storage/mongo/RepliesOf"

	if len(parentIDs) == 0 {
		return nil, nil
	}

	out, err := m.find(ctx, bson.D{{Key: "parent_id", Value: bson.D{{Key: "$in", Value: parentIDs}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateContent — атомарная правка с фильтром по автору.
// Не совпало ни одного документа: запись есть — ErrForbidden, нет — ErrNotFound.
func (m *Mongo) UpdateContent(ctx context.Context, id, author, content string) (*models.Comment, error) {
	const op = "storage/mongo/UpdateContent"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	filter := bson.D{{Key: "_id", Value: oid}, {Key: "author", Value: author}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	var doc commentDoc
	err = m.comments.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err == nil {
		return doc.toModel(), nil
	}

	if !errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n, err := m.comments.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	if n > 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrForbidden)
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// ToggleVote — переключение голоса одним pipeline-update: обе ветки $cond вычисляются
// по исходному документу, поэтому liked_by и disliked_by не пересекаются.
func (m *Mongo) ToggleVote(ctx context.Context, id, voterID string, dir models.VoteDirection) (*models.Comment, error) {
	const op = "storage/mongo/ToggleVote"

	if !dir.Valid() {
		return nil, fmt.Errorf("%s: unknown vote direction %d", op, dir)
	}

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	err = m.comments.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		togglePipeline(voterID, dir),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

// togglePipeline строит update-пайплайн для ToggleVote.
func togglePipeline(voterID string, dir models.VoteDirection) mongodriver.Pipeline {
	target, opposite := "liked_by", "disliked_by"
	if dir == models.VoteDislike {
		target, opposite = opposite, target
	}

	arr := func(field string) bson.D {
		return bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
	}
	// $literal: id голосующего не должен интерпретироваться как путь поля ("$...").
	lit := bson.D{{Key: "$literal", Value: voterID}}
	voter := bson.A{lit}
	present := bson.D{{Key: "$in", Value: bson.A{lit, arr(target)}}}

	return mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: target, Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: present},
				{Key: "then", Value: bson.D{{Key: "$setDifference", Value: bson.A{arr(target), voter}}}},
				{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{arr(target), voter}}}},
			}}}},
			{Key: opposite, Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: present},
				{Key: "then", Value: arr(opposite)},
				{Key: "else", Value: bson.D{{Key: "$setDifference", Value: bson.A{arr(opposite), voter}}}},
			}}}},
		}}},
	}
}

// DeleteBatch — физическое удаление набора документов.
func (m *Mongo) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	const op = "storage/mongo/DeleteBatch"

	oids := parseIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := m.comments.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.DeletedCount, nil
}

// AppendChild — связывает ответ с родителем через linkChild.
func (m *Mongo) AppendChild(ctx context.Context, parentID, childID string) error {
	const op = "storage/mongo/AppendChild"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(parentID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	matched, err := m.linkChild(ctx, oid, childID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !matched {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// linkChild идемпотентно добавляет childID в child_ids родителя: вставка и
// ReconcileReplies могут связать один и тот же ответ. false — родителя нет.
func (m *Mongo) linkChild(ctx context.Context, parent primitive.ObjectID, childID string) (bool, error) {
	res, err := m.comments.UpdateByID(ctx, parent, bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "child_ids", Value: childID}}},
	})
	if err != nil {
		return false, err
	}

	return res.MatchedCount > 0, nil
}

// RemoveChild — $pull из child_ids родителя; отсутствие родителя не ошибка.
func (m *Mongo) RemoveChild(ctx context.Context, parentID, childID string) error {
	const op = "storage/mongo/RemoveChild"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(parentID))
	if err != nil {
		return nil
	}

	if _, err := m.comments.UpdateByID(ctx, oid, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "child_ids", Value: childID}}},
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DanglingReplies — ответы, которых нет в child_ids родителя, или чей родитель удалён.
func (m *Mongo) DanglingReplies(ctx context.Context) ([]models.ReplyLink, error) {
	const op = "storage/mongo/DanglingReplies"

	pipeline := mongodriver.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "parent_id", Value: bson.D{{Key: "$ne", Value: ""}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: commentsCollection},
			{Key: "let", Value: bson.D{
				{Key: "pid", Value: bson.D{{Key: "$convert", Value: bson.D{
					{Key: "input", Value: "$parent_id"},
					{Key: "to", Value: "objectId"},
					{Key: "onError", Value: nil},
				}}}},
				{Key: "cid", Value: bson.D{{Key: "$toString", Value: "$_id"}}},
			}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", "$$pid"}}}}}}},
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "linked", Value: bson.D{{Key: "$in", Value: bson.A{"$$cid", bson.D{{Key: "$ifNull", Value: bson.A{"$child_ids", bson.A{}}}}}}}},
				}}},
			}},
			{Key: "as", Value: "parent"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "parent", Value: bson.D{{Key: "$size", Value: 0}}}},
			bson.D{{Key: "parent.linked", Value: false}},
		}}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "parent_id", Value: 1},
			{Key: "parent_exists", Value: bson.D{{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$parent"}}, 0}}}},
		}}},
	}

	cur, err := m.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.ReplyLink
	for cur.Next(ctx) {
		var row struct {
			ID           primitive.ObjectID `bson:"_id"`
			ParentID     string             `bson:"parent_id"`
			ParentExists bool               `bson:"parent_exists"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		out = append(out, models.ReplyLink{ChildID: row.ID.Hex(), ParentID: row.ParentID, ParentExists: row.ParentExists})
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}

// find — общий Find + декодирование курсора.
func (m *Mongo) find(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.Comment, error) {
	cur, err := m.comments.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Comment
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, *doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	return out, nil
}

var _ storage.Storage = (*Mongo)(nil)
