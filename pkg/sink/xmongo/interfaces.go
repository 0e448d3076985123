package xmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// collectionOperations 抽象写入路径依赖的集合操作,便于测试替换。
// *mongo.Collection 经 collectionAdapter 适配后实现此接口。
type collectionOperations interface {
	InsertMany(ctx context.Context, documents []any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error)
}

// collectionAdapter 将 *mongo.Collection 适配为 collectionOperations 接口。
type collectionAdapter struct {
	coll *mongo.Collection
}

func (a *collectionAdapter) InsertMany(ctx context.Context, documents []any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error) {
	return a.coll.InsertMany(ctx, documents, opts...)
}

// adaptCollection 将 *mongo.Collection 适配为 collectionOperations 接口。
func adaptCollection(coll *mongo.Collection) collectionOperations {
	return &collectionAdapter{coll: coll}
}
